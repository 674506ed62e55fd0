// Package rules defines the physical rule row and the codec between rows and
// the ordered value lists the authorization engine works with.
//
// A rule row is one tuple of a rule type tag and up to six ordered string
// fields. Unset fields are empty strings, never NULL, and always form a
// trailing run: no field may be empty while a later field holds a value.
// The codec relies on that right-packing to infer the value count by scanning
// from the front and stopping at the first empty field.
package rules

import (
	"strings"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
)

// MaxFields is the number of ordered field slots a rule row carries.
const MaxFields = 6

// Rule is one persisted rule row. The ID is assigned by the physical store
// and is unique and sortable within that store.
type Rule struct {
	ID    int64     `json:"id"`
	PType string    `json:"ptype"`
	V     [6]string `json:"v"`
}

// FromValues builds a rule row from an ordered value list. Values fill slots
// 0..len-1 and the remaining slots stay empty. A list longer than MaxFields
// is a caller error, never truncated.
func FromValues(ptype string, values []string) (Rule, error) {
	if len(values) > MaxFields {
		return Rule{}, errors.RangeError("rule has too many fields").
			WithContext("rule_type", ptype).
			WithContext("field_count", len(values))
	}

	r := Rule{PType: ptype}
	copy(r.V[:], values)
	return r, nil
}

// Values returns the ordered value list of the row. Scanning stops at the
// first empty field; under the right-packing invariant that is exactly the
// set values. A sparse row (empty field followed by a set one) loses the
// values after the gap, which is why such rows must never be constructed.
func (r Rule) Values() []string {
	values := make([]string, 0, MaxFields)
	for _, v := range r.V {
		if v == "" {
			break
		}
		values = append(values, v)
	}
	return values
}

// Section returns the logical section of the rule type: the leading
// alphabetic token shared by related types ("p" for "p", "p2"; "g" for
// "g", "g3"). An empty type has an empty section.
func Section(ptype string) string {
	for i := 0; i < len(ptype); i++ {
		if ptype[i] >= '0' && ptype[i] <= '9' {
			return ptype[:i]
		}
	}
	return ptype
}

// Join serializes a rule type and value list as one comma-separated line,
// the exchange format the admin CLI reads and writes.
func Join(ptype string, values []string) string {
	parts := make([]string, 0, len(values)+1)
	parts = append(parts, ptype)
	parts = append(parts, values...)
	return strings.Join(parts, ", ")
}

// Split parses a comma-separated rule line into its type and values.
// Surrounding whitespace on each token is discarded; trailing empty tokens
// are dropped so a line never produces a sparse value list.
func Split(line string) (string, []string) {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	for len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	return parts[0], parts[1:]
}
