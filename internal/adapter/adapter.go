// Package adapter implements the rule adapter the authorization engine talks
// to: loading rules into the engine's in-memory model and persisting every
// in-memory mutation back to one or more physical stores.
//
// Every mutating operation runs inside exactly one store transaction per
// physical store it touches (auto-save: one logical operation, one commit).
// Commit failures propagate to the caller unmodified and are never retried.
//
// The adapter adds no locking of its own. Operations against one store are
// serialized by that store's transaction discipline, and concurrent calls
// from multiple goroutines against one adapter require an external lock.
package adapter

import (
	"context"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
	"github.com/casbin-net/efcore-adapter-sub001/internal/common/logging"
	"github.com/casbin-net/efcore-adapter-sub001/internal/router"
	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

// Model is the engine's in-memory rule set as the adapter sees it: a sink for
// loaded rules and a snapshot source for full saves.
type Model interface {
	// AddRule feeds one loaded rule into the model.
	AddRule(ruleType string, values []string)

	// Rules snapshots the model as rule type -> ordered value lists.
	Rules() map[string][][]string
}

// Adapter is the engine-facing rule adapter.
type Adapter struct {
	router *router.Router
	hooks  Hooks
	logger logging.Logger

	isFiltered bool
}

// Option configures an Adapter at construction.
type Option func(*Adapter)

// WithHooks injects the extension hooks applied around each operation.
func WithHooks(h Hooks) Option {
	return func(a *Adapter) {
		if h != nil {
			a.hooks = h
		}
	}
}

// WithLogger injects the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New builds an adapter over a single store handling every rule type.
func New(store storage.Store, opts ...Option) (*Adapter, error) {
	r, err := router.NewSingle(store)
	if err != nil {
		return nil, err
	}
	return NewWithRouter(r, opts...)
}

// NewWithRouter builds an adapter over a caller-assembled router, used for
// type-partitioned multi-store setups.
func NewWithRouter(r *router.Router, opts ...Option) (*Adapter, error) {
	if r == nil {
		return nil, errors.ConfigError("router is nil")
	}

	a := &Adapter{
		router: r,
		hooks:  NopHooks{},
		logger: logging.Nop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Router exposes the adapter's context router.
func (a *Adapter) Router() *router.Router {
	return a.router
}

// IsFiltered reports whether the last load applied a filter. A full save
// after a filtered load would persist a partial view; the flag lets callers
// detect that state.
func (a *Adapter) IsFiltered() bool {
	return a.isFiltered
}

// UpdateFilteredPolicies replaces all rules matching a filter in one step.
// Earlier adapter generations never implemented it and this one keeps that
// contract explicit instead of silently doing nothing.
func (a *Adapter) UpdateFilteredPolicies(ruleType string, offset int, newValuesList [][]string, fieldValues ...string) error {
	return errors.UnsupportedError("UpdateFilteredPolicies")
}

// syncCtx is the context used by the synchronous operation forms. They are
// semantically identical to the ctx forms, which have their single suspension
// point at the store fetch/commit boundary.
func syncCtx() context.Context {
	return context.Background()
}
