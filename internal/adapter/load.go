package adapter

import (
	"context"
	"sort"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/logging"
	"github.com/casbin-net/efcore-adapter-sub001/internal/filter"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

// LoadPolicy loads every rule from every store into the model.
func (a *Adapter) LoadPolicy(m Model) error {
	return a.LoadPolicyCtx(syncCtx(), m)
}

// LoadPolicyCtx is the asynchronous form of LoadPolicy.
func (a *Adapter) LoadPolicyCtx(ctx context.Context, m Model) error {
	total := 0
	for _, store := range a.router.Stores() {
		rows, err := store.QueryRules(ctx, nil)
		if err != nil {
			return err
		}

		rows = a.hooks.OnLoad(rows)
		for _, r := range rows {
			m.AddRule(r.PType, r.Values())
		}
		total += len(rows)
	}

	a.isFiltered = false
	a.logger.Debug("loaded policy", logging.Int("rules", total))
	return nil
}

// LoadFilteredPolicy loads only the rules matching the filter specification
// into the model and marks the adapter as filtered.
func (a *Adapter) LoadFilteredPolicy(m Model, spec filter.Spec) error {
	return a.LoadFilteredPolicyCtx(syncCtx(), m, spec)
}

// LoadFilteredPolicyCtx is the asynchronous form of LoadFilteredPolicy.
//
// Each section clause fetches independently; rows fetched from one store by
// more than one clause are unioned by row identity, never duplicated.
func (a *Adapter) LoadFilteredPolicyCtx(ctx context.Context, m Model, spec filter.Spec) error {
	clauses, err := spec.Clauses()
	if err != nil {
		return err
	}

	// Group fetched row sets per physical store so identity-union stays
	// within the store that assigned the identities.
	var storeOrder []storage.Store
	groups := make(map[storage.Store][][]rules.Rule)

	for _, clause := range clauses {
		coll := a.router.Collection(clause.PType)
		rows, err := coll.FetchWhere(ctx, clause)
		if err != nil {
			return err
		}

		store := coll.Store()
		if _, ok := groups[store]; !ok {
			storeOrder = append(storeOrder, store)
		}
		groups[store] = append(groups[store], rows)
	}

	total := 0
	for _, store := range storeOrder {
		merged := a.hooks.OnLoad(filter.MergeByID(groups[store]...))
		for _, r := range merged {
			m.AddRule(r.PType, r.Values())
		}
		total += len(merged)
	}

	a.isFiltered = true
	a.logger.Debug("loaded filtered policy",
		logging.Int("rules", total),
		logging.Int("sections", len(clauses)))
	return nil
}

// SavePolicy persists a full model snapshot: every rule in the model is
// converted and inserted, one commit per touched store. The store is not
// cleared first; callers intending a full overwrite must clear it themselves.
// An empty model is a no-op.
func (a *Adapter) SavePolicy(m Model) error {
	return a.SavePolicyCtx(syncCtx(), m)
}

// SavePolicyCtx is the asynchronous form of SavePolicy.
func (a *Adapter) SavePolicyCtx(ctx context.Context, m Model) error {
	snapshot := m.Rules()

	// Conversion happens for the whole snapshot before any store is
	// touched, so a malformed rule aborts the save with nothing committed.
	ruleTypes := make([]string, 0, len(snapshot))
	for ruleType := range snapshot {
		ruleTypes = append(ruleTypes, ruleType)
	}
	sort.Strings(ruleTypes)

	var storeOrder []storage.Store
	groups := make(map[storage.Store][]rules.Rule)

	for _, ruleType := range ruleTypes {
		store := a.router.StoreFor(ruleType)
		for _, values := range snapshot[ruleType] {
			r, err := rules.FromValues(ruleType, values)
			if err != nil {
				return err
			}
			if _, ok := groups[store]; !ok {
				storeOrder = append(storeOrder, store)
			}
			groups[store] = append(groups[store], r)
		}
	}

	if len(storeOrder) == 0 {
		return nil
	}

	total := 0
	for _, store := range storeOrder {
		batch := a.hooks.OnSave(groups[store])
		if len(batch) == 0 {
			continue
		}

		err := store.Tx(ctx, func(tx storage.RuleTx) error {
			return tx.InsertBatch(batch)
		})
		if err != nil {
			return err
		}
		total += len(batch)
	}

	a.logger.Debug("saved policy", logging.Int("rules", total))
	return nil
}
