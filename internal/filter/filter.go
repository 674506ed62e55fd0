// Package filter builds predicates over rule rows from a
// (rule type, start offset, values) specification.
//
// A clause matches rows whose type equals the clause type and whose field at
// offset+i equals values[i] for every non-empty values[i]. Empty values are
// wildcards. The same clause compiles to an in-memory predicate and to a SQL
// WHERE fragment, and both forms must select the same rows.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
)

// SQL placeholder dialects understood by Clause.SQL.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Clause is a single-type field filter.
type Clause struct {
	PType  string
	Offset int
	Values []string
}

// New validates and builds a clause. The last targeted slot
// (offset + len(values) - 1) must not pass the last field index; violating
// that is a caller error reported before any predicate is built.
func New(ptype string, offset int, values []string) (*Clause, error) {
	if offset < 0 {
		return nil, errors.RangeError("filter offset is negative").
			WithContext("offset", offset)
	}
	if offset+len(values) > rules.MaxFields {
		return nil, errors.RangeError("filter extends past the last field slot").
			WithContext("rule_type", ptype).
			WithContext("offset", offset).
			WithContext("value_count", len(values))
	}

	return &Clause{PType: ptype, Offset: offset, Values: values}, nil
}

// Empty reports whether the clause constrains no field at all, i.e. every
// value is a wildcard. An empty clause still constrains the rule type.
func (c *Clause) Empty() bool {
	for _, v := range c.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Match is the in-memory predicate form of the clause.
func (c *Clause) Match(r rules.Rule) bool {
	if r.PType != c.PType {
		return false
	}
	for i, v := range c.Values {
		if v != "" && r.V[c.Offset+i] != v {
			return false
		}
	}
	return true
}

// SQL compiles the clause to a WHERE fragment and its arguments. The type
// condition always comes first, then one equality per non-empty value.
// startArg is the first placeholder ordinal, used for the postgres $n style;
// sqlite ignores it. Fragments chain with AND, so applying two clauses to the
// same query selects the intersection.
func (c *Clause) SQL(dialect string, startArg int) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(c.Values)+1)

	sb.WriteString("ptype = ")
	sb.WriteString(placeholder(dialect, startArg))
	args = append(args, c.PType)

	for i, v := range c.Values {
		if v == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf(" AND v%d = ", c.Offset+i))
		sb.WriteString(placeholder(dialect, startArg+len(args)))
		args = append(args, v)
	}

	return sb.String(), args
}

func placeholder(dialect string, ordinal int) string {
	if dialect == DialectPostgres {
		return fmt.Sprintf("$%d", ordinal)
	}
	return "?"
}

// Set is a union of independently built single-type clauses, used for
// compound filtered loads that must cover more than one rule type. Union
// semantics are a logical OR over matched rows, deduplicated by row identity,
// never a join.
type Set struct {
	Clauses []*Clause
}

// Union builds a set from its member clauses. Nil clauses are skipped.
func Union(clauses ...*Clause) *Set {
	s := &Set{}
	for _, c := range clauses {
		if c != nil {
			s.Clauses = append(s.Clauses, c)
		}
	}
	return s
}

// Match reports whether any member clause matches the row.
func (s *Set) Match(r rules.Rule) bool {
	for _, c := range s.Clauses {
		if c.Match(r) {
			return true
		}
	}
	return false
}

// MergeByID unions row groups fetched per clause into one result keyed by
// store-assigned identity, so a row matched by two clauses appears once.
// The result is ordered by ID. All groups must come from one physical store,
// since identities are only unique per store.
func MergeByID(groups ...[]rules.Rule) []rules.Rule {
	seen := make(map[int64]struct{})
	var merged []rules.Rule

	for _, group := range groups {
		for _, r := range group {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged
}

// Spec is the engine-facing filter specification accepted by filtered loads.
// Each section names an ordered value list starting at offset 0; empty
// strings are wildcards. A nil section list means that section is omitted and
// loads nothing, so callers wanting a whole section alongside a filtered one
// must pass an explicit all-wildcard list.
type Spec struct {
	// PType and GType select the exact rule types the section lists apply
	// to. They default to "p" and "g".
	PType string
	GType string

	P []string
	G []string
}

// Clauses builds the per-section clauses of the spec. Omitted sections
// produce no clause.
func (s Spec) Clauses() ([]*Clause, error) {
	ptype := s.PType
	if ptype == "" {
		ptype = "p"
	}
	gtype := s.GType
	if gtype == "" {
		gtype = "g"
	}

	var clauses []*Clause

	if s.P != nil {
		c, err := New(ptype, 0, s.P)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}

	if s.G != nil {
		c, err := New(gtype, 0, s.G)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}

	return clauses, nil
}
