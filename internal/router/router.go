// Package router maps rule types to the physical store responsible for them.
//
// A router is built once with a fixed classification and a fixed set of named
// stores; the same rule type resolves to the same store handle for the
// router's whole lifetime. Per (store, rule type) pair the router caches a
// collection handle so repeated operations on one type do not re-resolve
// collection access.
package router

import (
	"context"
	"database/sql"
	"sync"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
	"github.com/casbin-net/efcore-adapter-sub001/internal/filter"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

// Store names used by the partitioned constructor.
const (
	PrimaryStore   = "primary"
	SecondaryStore = "secondary"
)

// Router resolves rule types to store handles.
type Router struct {
	classify func(ptype string) string
	stores   map[string]storage.Store
	order    []string // registration order, first entry is the default

	mu    sync.RWMutex
	cache map[collectionKey]*Collection
}

// The cache key is the (store, rule type) pair, not the store alone: two rule
// types routed to one store are distinct collections.
type collectionKey struct {
	store storage.Store
	ptype string
}

// NewSingle builds a router sending every rule type to one store.
func NewSingle(store storage.Store) (*Router, error) {
	if store == nil {
		return nil, errors.ConfigError("store handle is nil")
	}

	return &Router{
		classify: func(string) string { return PrimaryStore },
		stores:   map[string]storage.Store{PrimaryStore: store},
		order:    []string{PrimaryStore},
		cache:    make(map[collectionKey]*Collection),
	}, nil
}

// NewPartitioned builds a two-store router: rule types whose first character
// equals marker route to primary, everything else to secondary.
func NewPartitioned(marker byte, primary, secondary storage.Store) (*Router, error) {
	classify := func(ptype string) string {
		if len(ptype) > 0 && ptype[0] == marker {
			return PrimaryStore
		}
		return SecondaryStore
	}

	return New(classify, map[string]storage.Store{
		PrimaryStore:   primary,
		SecondaryStore: secondary,
	})
}

// New builds a router from a caller-supplied classification and named stores.
// The classification must be pure: it is consulted on every resolution, and a
// type switching stores mid-session is undefined behavior. A classification
// naming an unknown store resolves to the default (first) store.
func New(classify func(ptype string) string, stores map[string]storage.Store) (*Router, error) {
	if classify == nil {
		return nil, errors.ConfigError("classification function is nil")
	}
	if len(stores) == 0 {
		return nil, errors.ConfigError("router needs at least one store")
	}

	r := &Router{
		classify: classify,
		stores:   make(map[string]storage.Store, len(stores)),
		cache:    make(map[collectionKey]*Collection),
	}

	// Fixed name order keeps Stores() and the default store deterministic.
	for _, name := range []string{PrimaryStore, SecondaryStore} {
		if store, ok := stores[name]; ok {
			if store == nil {
				return nil, errors.ConfigError("store handle is nil").WithContext("store", name)
			}
			r.stores[name] = store
			r.order = append(r.order, name)
		}
	}
	for name, store := range stores {
		if _, ok := r.stores[name]; ok {
			continue
		}
		if store == nil {
			return nil, errors.ConfigError("store handle is nil").WithContext("store", name)
		}
		r.stores[name] = store
		r.order = append(r.order, name)
	}

	return r, nil
}

// StoreFor resolves the store responsible for a rule type.
func (r *Router) StoreFor(ptype string) storage.Store {
	if store, ok := r.stores[r.classify(ptype)]; ok {
		return store
	}
	return r.stores[r.order[0]]
}

// Stores enumerates the distinct store handles in use, in a stable order.
// Two names bound to one handle yield a single entry.
func (r *Router) Stores() []storage.Store {
	seen := make(map[storage.Store]struct{}, len(r.order))
	result := make([]storage.Store, 0, len(r.order))

	for _, name := range r.order {
		store := r.stores[name]
		if _, ok := seen[store]; ok {
			continue
		}
		seen[store] = struct{}{}
		result = append(result, store)
	}

	return result
}

// SharedConn returns the low-level connection handle shared by every store,
// or false when the stores hold independent connections. Callers use it to
// group cross-store work into one transaction where the backend allows it.
func (r *Router) SharedConn() (*sql.DB, bool) {
	stores := r.Stores()
	conn := stores[0].Conn()

	for _, store := range stores[1:] {
		if store.Conn() != conn {
			return nil, false
		}
	}

	return conn, conn != nil
}

// Collection returns the cached query handle for a rule type's rows in its
// routed store.
func (r *Router) Collection(ptype string) *Collection {
	store := r.StoreFor(ptype)
	key := collectionKey{store: store, ptype: ptype}

	r.mu.RLock()
	coll, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return coll
	}

	// The type-only clause cannot fail validation.
	base, _ := filter.New(ptype, 0, nil)
	coll = &Collection{store: store, ptype: ptype, base: base}

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		coll = cached
	} else {
		r.cache[key] = coll
	}
	r.mu.Unlock()

	return coll
}

// Collection is the addressable set of rows of one rule type in one store.
type Collection struct {
	store storage.Store
	ptype string
	base  *filter.Clause
}

// Store returns the physical store backing the collection.
func (c *Collection) Store() storage.Store {
	return c.store
}

// PType returns the rule type the collection addresses.
func (c *Collection) PType() string {
	return c.ptype
}

// Fetch retrieves every row of the collection's type.
func (c *Collection) Fetch(ctx context.Context) ([]rules.Rule, error) {
	return c.store.QueryRules(ctx, c.base)
}

// FetchWhere retrieves the rows matching the clause, which must target the
// collection's own type.
func (c *Collection) FetchWhere(ctx context.Context, where *filter.Clause) ([]rules.Rule, error) {
	if where == nil {
		return c.Fetch(ctx)
	}
	if where.PType != c.ptype {
		return nil, errors.ValidationError("filter targets a different rule type").
			WithContext("collection_type", c.ptype).
			WithContext("filter_type", where.PType)
	}
	return c.store.QueryRules(ctx, where)
}
