package adapter

import (
	"context"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/logging"
	"github.com/casbin-net/efcore-adapter-sub001/internal/filter"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

// AddPolicy persists one rule: convert, insert, commit.
// An empty value list is a no-op, not an error.
func (a *Adapter) AddPolicy(ruleType string, values []string) error {
	return a.AddPolicyCtx(syncCtx(), ruleType, values)
}

// AddPolicyCtx is the asynchronous form of AddPolicy.
func (a *Adapter) AddPolicyCtx(ctx context.Context, ruleType string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	return a.addPolicies(ctx, ruleType, [][]string{values})
}

// AddPolicies persists a batch of rules of one type under a single commit.
// An empty batch is a no-op.
func (a *Adapter) AddPolicies(ruleType string, valuesList [][]string) error {
	return a.AddPoliciesCtx(syncCtx(), ruleType, valuesList)
}

// AddPoliciesCtx is the asynchronous form of AddPolicies.
func (a *Adapter) AddPoliciesCtx(ctx context.Context, ruleType string, valuesList [][]string) error {
	if len(valuesList) == 0 {
		return nil
	}
	return a.addPolicies(ctx, ruleType, valuesList)
}

func (a *Adapter) addPolicies(ctx context.Context, ruleType string, valuesList [][]string) error {
	// Convert the whole batch before touching the store.
	batch := make([]rules.Rule, 0, len(valuesList))
	for _, values := range valuesList {
		r, err := rules.FromValues(ruleType, values)
		if err != nil {
			return err
		}
		batch = append(batch, r)
	}

	batch = a.hooks.OnAddPolicy(batch)
	if len(batch) == 0 {
		return nil
	}

	store := a.router.StoreFor(ruleType)
	err := store.Tx(ctx, func(tx storage.RuleTx) error {
		return tx.InsertBatch(batch)
	})
	if err != nil {
		return err
	}

	a.logger.Debug("added policy rules",
		logging.String("rule_type", ruleType),
		logging.Int("rules", len(batch)))
	return nil
}

// RemovePolicy deletes every row matching the exact tuple. Duplicate rows all
// match the tuple, so all duplicates are removed.
func (a *Adapter) RemovePolicy(ruleType string, values []string) error {
	return a.RemovePolicyCtx(syncCtx(), ruleType, values)
}

// RemovePolicyCtx is the asynchronous form of RemovePolicy.
func (a *Adapter) RemovePolicyCtx(ctx context.Context, ruleType string, values []string) error {
	return a.RemoveFilteredPolicyCtx(ctx, ruleType, 0, values...)
}

// RemoveFilteredPolicy deletes every row matching the field filter and
// commits. An empty value list is a no-op; it never deletes the whole type.
func (a *Adapter) RemoveFilteredPolicy(ruleType string, offset int, values ...string) error {
	return a.RemoveFilteredPolicyCtx(syncCtx(), ruleType, offset, values...)
}

// RemoveFilteredPolicyCtx is the asynchronous form of RemoveFilteredPolicy.
func (a *Adapter) RemoveFilteredPolicyCtx(ctx context.Context, ruleType string, offset int, values ...string) error {
	if len(values) == 0 {
		return nil
	}

	clause, err := filter.New(ruleType, offset, values)
	if err != nil {
		return err
	}

	store := a.router.StoreFor(ruleType)
	matched, err := a.matchedRows(ctx, store, clause)
	if err != nil {
		return err
	}

	ids := rowIDs(a.hooks.OnRemoveFiltered(matched))
	if len(ids) == 0 {
		return nil
	}

	return a.deleteIDs(ctx, store, ruleType, ids)
}

// RemovePolicies deletes a batch of exact tuples of one type under a single
// trailing commit. An empty batch is a no-op.
func (a *Adapter) RemovePolicies(ruleType string, valuesList [][]string) error {
	return a.RemovePoliciesCtx(syncCtx(), ruleType, valuesList)
}

// RemovePoliciesCtx is the asynchronous form of RemovePolicies.
func (a *Adapter) RemovePoliciesCtx(ctx context.Context, ruleType string, valuesList [][]string) error {
	if len(valuesList) == 0 {
		return nil
	}

	store := a.router.StoreFor(ruleType)

	var ids []int64
	for _, values := range valuesList {
		if len(values) == 0 {
			continue
		}

		clause, err := filter.New(ruleType, 0, values)
		if err != nil {
			return err
		}

		matched, err := a.matchedRows(ctx, store, clause)
		if err != nil {
			return err
		}
		ids = append(ids, rowIDs(a.hooks.OnRemoveFiltered(matched))...)
	}

	if len(ids) == 0 {
		return nil
	}

	return a.deleteIDs(ctx, store, ruleType, ids)
}

// UpdatePolicy replaces the fields of the first row matching the old tuple
// and commits. Remove deletes all duplicates of a tuple, Update deliberately
// touches only the first match; no match is a silent no-op.
func (a *Adapter) UpdatePolicy(ruleType string, oldValues, newValues []string) error {
	return a.UpdatePolicyCtx(syncCtx(), ruleType, oldValues, newValues)
}

// UpdatePolicyCtx is the asynchronous form of UpdatePolicy.
func (a *Adapter) UpdatePolicyCtx(ctx context.Context, ruleType string, oldValues, newValues []string) error {
	newRule, clause, err := a.updateArgs(ruleType, oldValues, newValues)
	if err != nil {
		return err
	}

	store := a.router.StoreFor(ruleType)
	return store.Tx(ctx, func(tx storage.RuleTx) error {
		return updateFirst(tx, clause, newRule)
	})
}

// UpdatePolicies applies UpdatePolicy pairwise under a single commit. A
// length mismatch between the old and new lists makes the whole batch a
// no-op; there is no partial application.
func (a *Adapter) UpdatePolicies(ruleType string, oldValuesList, newValuesList [][]string) error {
	return a.UpdatePoliciesCtx(syncCtx(), ruleType, oldValuesList, newValuesList)
}

// UpdatePoliciesCtx is the asynchronous form of UpdatePolicies.
func (a *Adapter) UpdatePoliciesCtx(ctx context.Context, ruleType string, oldValuesList, newValuesList [][]string) error {
	if len(oldValuesList) != len(newValuesList) || len(oldValuesList) == 0 {
		return nil
	}

	type pair struct {
		clause  *filter.Clause
		newRule rules.Rule
	}

	// Validate the whole batch before touching the store.
	pairs := make([]pair, 0, len(oldValuesList))
	for i := range oldValuesList {
		newRule, clause, err := a.updateArgs(ruleType, oldValuesList[i], newValuesList[i])
		if err != nil {
			return err
		}
		pairs = append(pairs, pair{clause: clause, newRule: newRule})
	}

	store := a.router.StoreFor(ruleType)
	return store.Tx(ctx, func(tx storage.RuleTx) error {
		for _, p := range pairs {
			if err := updateFirst(tx, p.clause, p.newRule); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *Adapter) updateArgs(ruleType string, oldValues, newValues []string) (rules.Rule, *filter.Clause, error) {
	newRule, err := rules.FromValues(ruleType, newValues)
	if err != nil {
		return rules.Rule{}, nil, err
	}

	clause, err := filter.New(ruleType, 0, oldValues)
	if err != nil {
		return rules.Rule{}, nil, err
	}

	return newRule, clause, nil
}

func updateFirst(tx storage.RuleTx, clause *filter.Clause, newRule rules.Rule) error {
	existing, found, err := tx.First(clause)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return tx.UpdateFields(existing.ID, newRule)
}

func (a *Adapter) matchedRows(ctx context.Context, store storage.Store, clause *filter.Clause) ([]rules.Rule, error) {
	return store.QueryRules(ctx, clause)
}

func (a *Adapter) deleteIDs(ctx context.Context, store storage.Store, ruleType string, ids []int64) error {
	err := store.Tx(ctx, func(tx storage.RuleTx) error {
		_, err := tx.DeleteByIDs(ids)
		return err
	})
	if err != nil {
		return err
	}

	a.logger.Debug("removed policy rules",
		logging.String("rule_type", ruleType),
		logging.Int("rules", len(ids)))
	return nil
}

func rowIDs(rows []rules.Rule) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
