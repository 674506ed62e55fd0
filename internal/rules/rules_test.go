package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
)

func TestFromValues_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		ptype  string
		values []string
	}{
		{"empty", "p", []string{}},
		{"one field", "p", []string{"alice"}},
		{"three fields", "p", []string{"alice", "data1", "read"}},
		{"grouping rule", "g", []string{"alice", "admin"}},
		{"five fields", "p2", []string{"alice", "data1", "read", "allow", "dom1"}},
		{"all six fields", "p", []string{"a", "b", "c", "d", "e", "f"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := FromValues(tt.ptype, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.ptype, r.PType)
			assert.Equal(t, tt.values, r.Values())
		})
	}
}

func TestFromValues_TooManyFields(t *testing.T) {
	_, err := FromValues("p", []string{"a", "b", "c", "d", "e", "f", "g"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeRange))
}

func TestValues_StopsAtFirstEmptyField(t *testing.T) {
	// A sparse row violates the right-packing invariant; the codec must not
	// recover values past the gap.
	r := Rule{PType: "p", V: [6]string{"alice", "", "read"}}
	assert.Equal(t, []string{"alice"}, r.Values())
}

func TestValues_TrailingSlotsStayEmpty(t *testing.T) {
	r, err := FromValues("p", []string{"alice", "data1"})
	require.NoError(t, err)
	assert.Equal(t, "", r.V[2])
	assert.Equal(t, "", r.V[5])
}

func TestSection(t *testing.T) {
	tests := []struct {
		ptype string
		want  string
	}{
		{"p", "p"},
		{"p2", "p"},
		{"g", "g"},
		{"g3", "g"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Section(tt.ptype), "Section(%q)", tt.ptype)
	}
}

func TestJoinSplit(t *testing.T) {
	line := Join("p", []string{"alice", "data1", "read"})
	assert.Equal(t, "p, alice, data1, read", line)

	ptype, values := Split(line)
	assert.Equal(t, "p", ptype)
	assert.Equal(t, []string{"alice", "data1", "read"}, values)
}

func TestSplit_DropsTrailingEmptyTokens(t *testing.T) {
	ptype, values := Split("p, alice, data1, read, , ")
	assert.Equal(t, "p", ptype)
	assert.Equal(t, []string{"alice", "data1", "read"}, values)
}

func TestSplit_TypeOnly(t *testing.T) {
	ptype, values := Split("g")
	assert.Equal(t, "g", ptype)
	assert.Empty(t, values)
}
