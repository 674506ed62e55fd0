package adapter

import (
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
)

// Hooks is the extension surface of the adapter. Each hook takes and returns
// a rule-row collection at a named point of an operation:
//
//   - OnLoad runs on every fetched batch before rows reach the model.
//   - OnSave runs on every per-store batch before a full save inserts it.
//   - OnAddPolicy runs on the rows an add operation is about to insert.
//   - OnRemoveFiltered runs on the rows a remove matched; only the returned
//     rows are deleted.
//
// Hooks compose functionally via ChainHooks; there is no subclassing.
type Hooks interface {
	OnLoad(rows []rules.Rule) []rules.Rule
	OnSave(rows []rules.Rule) []rules.Rule
	OnAddPolicy(rows []rules.Rule) []rules.Rule
	OnRemoveFiltered(rows []rules.Rule) []rules.Rule
}

// NopHooks passes every collection through unchanged.
type NopHooks struct{}

func (NopHooks) OnLoad(rows []rules.Rule) []rules.Rule           { return rows }
func (NopHooks) OnSave(rows []rules.Rule) []rules.Rule           { return rows }
func (NopHooks) OnAddPolicy(rows []rules.Rule) []rules.Rule      { return rows }
func (NopHooks) OnRemoveFiltered(rows []rules.Rule) []rules.Rule { return rows }

// HookFuncs adapts plain functions to the Hooks interface. Nil members pass
// collections through unchanged.
type HookFuncs struct {
	Load           func([]rules.Rule) []rules.Rule
	Save           func([]rules.Rule) []rules.Rule
	AddPolicy      func([]rules.Rule) []rules.Rule
	RemoveFiltered func([]rules.Rule) []rules.Rule
}

func (h HookFuncs) OnLoad(rows []rules.Rule) []rules.Rule {
	if h.Load == nil {
		return rows
	}
	return h.Load(rows)
}

func (h HookFuncs) OnSave(rows []rules.Rule) []rules.Rule {
	if h.Save == nil {
		return rows
	}
	return h.Save(rows)
}

func (h HookFuncs) OnAddPolicy(rows []rules.Rule) []rules.Rule {
	if h.AddPolicy == nil {
		return rows
	}
	return h.AddPolicy(rows)
}

func (h HookFuncs) OnRemoveFiltered(rows []rules.Rule) []rules.Rule {
	if h.RemoveFiltered == nil {
		return rows
	}
	return h.RemoveFiltered(rows)
}

// ChainHooks composes hooks left to right: the first hook's output feeds the
// second, and so on.
func ChainHooks(hooks ...Hooks) Hooks {
	return chainedHooks(hooks)
}

type chainedHooks []Hooks

func (c chainedHooks) OnLoad(rows []rules.Rule) []rules.Rule {
	for _, h := range c {
		rows = h.OnLoad(rows)
	}
	return rows
}

func (c chainedHooks) OnSave(rows []rules.Rule) []rules.Rule {
	for _, h := range c {
		rows = h.OnSave(rows)
	}
	return rows
}

func (c chainedHooks) OnAddPolicy(rows []rules.Rule) []rules.Rule {
	for _, h := range c {
		rows = h.OnAddPolicy(rows)
	}
	return rows
}

func (c chainedHooks) OnRemoveFiltered(rows []rules.Rule) []rules.Rule {
	for _, h := range c {
		rows = h.OnRemoveFiltered(rows)
	}
	return rows
}
