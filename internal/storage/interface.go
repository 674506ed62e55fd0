// Package storage defines the relational store surface the rule adapter
// consumes: a queryable, filterable rule-row collection with transactional
// mutation, plus a factory registry for concrete backends.
//
// One Tx call is one commit. The adapter maps each logical operation to a
// single Tx, which is what gives every mutation its one-commit auto-save
// discipline. Stores never retry and never roll back beyond the failed
// transaction itself; driver errors propagate to the caller unmodified.
package storage

import (
	"context"
	"database/sql"

	"github.com/casbin-net/efcore-adapter-sub001/internal/filter"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
)

// Store is one physical rule store. Implementations own a *sql.DB for the
// lifetime of the store; the adapter never opens or closes connections.
type Store interface {
	// Connection management
	Connect(config StoreConfig) error
	Close() error
	Health() error

	// Dialect returns the SQL placeholder dialect (filter.DialectSQLite or
	// filter.DialectPostgres).
	Dialect() string

	// TableName returns the rule table this store reads and writes.
	TableName() string

	// Conn exposes the low-level connection handle. The router compares
	// these to detect stores sharing one physical connection.
	Conn() *sql.DB

	// QueryRules fetches rule rows matching the clause, ordered by their
	// store-assigned key. A nil clause fetches every row.
	QueryRules(ctx context.Context, where *filter.Clause) ([]rules.Rule, error)

	// Tx runs fn inside one transaction and commits when fn returns nil.
	// A non-nil return from fn rolls back and is returned unmodified.
	Tx(ctx context.Context, fn func(tx RuleTx) error) error
}

// RuleTx is the mutation surface available inside one Tx call.
type RuleTx interface {
	// Insert stages one rule row.
	Insert(r rules.Rule) error

	// InsertBatch stages a batch of rule rows.
	InsertBatch(rs []rules.Rule) error

	// Delete removes every row matching the clause and reports the count.
	Delete(where *filter.Clause) (int64, error)

	// DeleteByIDs removes the rows with the given store-assigned keys and
	// reports the count. An empty id list is a no-op.
	DeleteByIDs(ids []int64) (int64, error)

	// First fetches the matching row with the smallest store-assigned key.
	// The second return is false when nothing matches.
	First(where *filter.Clause) (rules.Rule, bool, error)

	// UpdateFields overwrites the type and field slots of the row with the
	// given key.
	UpdateFields(id int64, r rules.Rule) error
}

// StoreConfig carries backend-specific connection settings.
type StoreConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StoreFactory builds a connected Store from its config.
type StoreFactory interface {
	Create(config StoreConfig) (Store, error)
	GetType() string
}

// GenericConfig is a simple map-based implementation of StoreConfig
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil // Basic configs don't need validation
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}
