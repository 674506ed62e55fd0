package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
)

func mustRule(t *testing.T, id int64, ptype string, values ...string) rules.Rule {
	t.Helper()
	r, err := rules.FromValues(ptype, values)
	require.NoError(t, err)
	r.ID = id
	return r
}

func TestNew_RangeValidation(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		values    []string
		wantError bool
	}{
		{"offset 0 full width", 0, []string{"a", "b", "c", "d", "e", "f"}, false},
		{"offset 5 single value", 5, []string{"a"}, false},
		{"offset 0 empty values", 0, []string{}, false},
		{"offset past last slot", 5, []string{"a", "b"}, true},
		{"offset 6", 6, []string{"a"}, true},
		{"negative offset", -1, []string{"a"}, true},
		{"seven values", 0, []string{"a", "b", "c", "d", "e", "f", "g"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("p", tt.offset, tt.values)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeRange))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClause_Match(t *testing.T) {
	alice := mustRule(t, 1, "p", "alice", "data1", "read")
	bob := mustRule(t, 2, "p", "bob", "data2", "write")
	group := mustRule(t, 3, "g", "alice", "admin")

	tests := []struct {
		name   string
		ptype  string
		offset int
		values []string
		rule   rules.Rule
		want   bool
	}{
		{"exact match", "p", 0, []string{"alice", "data1", "read"}, alice, true},
		{"wildcard middle", "p", 0, []string{"alice", "", "read"}, alice, true},
		{"all wildcards", "p", 0, []string{"", "", ""}, bob, true},
		{"value mismatch", "p", 0, []string{"alice", "data2", ""}, alice, false},
		{"type mismatch", "p", 0, []string{"alice", "", ""}, group, false},
		{"offset match", "p", 1, []string{"data2"}, bob, true},
		{"offset mismatch", "p", 1, []string{"data1"}, bob, false},
		{"empty values type only", "p", 0, nil, alice, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.ptype, tt.offset, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Match(tt.rule))
		})
	}
}

func TestClause_Empty(t *testing.T) {
	c, err := New("p", 0, []string{"", "", ""})
	require.NoError(t, err)
	assert.True(t, c.Empty())

	c, err = New("p", 0, []string{"", "data1"})
	require.NoError(t, err)
	assert.False(t, c.Empty())

	c, err = New("p", 0, nil)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestClause_SQL(t *testing.T) {
	c, err := New("p", 1, []string{"data1", "", "read"})
	require.NoError(t, err)

	sqliteSQL, sqliteArgs := c.SQL(DialectSQLite, 1)
	assert.Equal(t, "ptype = ? AND v1 = ? AND v3 = ?", sqliteSQL)
	assert.Equal(t, []interface{}{"p", "data1", "read"}, sqliteArgs)

	pgSQL, pgArgs := c.SQL(DialectPostgres, 1)
	assert.Equal(t, "ptype = $1 AND v1 = $2 AND v3 = $3", pgSQL)
	assert.Equal(t, sqliteArgs, pgArgs)
}

func TestClause_SQL_StartArgOffset(t *testing.T) {
	c, err := New("g", 0, []string{"alice"})
	require.NoError(t, err)

	sql, args := c.SQL(DialectPostgres, 3)
	assert.Equal(t, "ptype = $3 AND v0 = $4", sql)
	assert.Len(t, args, 2)
}

func TestClause_SQL_TypeOnly(t *testing.T) {
	c, err := New("g", 0, nil)
	require.NoError(t, err)

	sql, args := c.SQL(DialectSQLite, 1)
	assert.Equal(t, "ptype = ?", sql)
	assert.Equal(t, []interface{}{"g"}, args)
}

func TestUnion_Match(t *testing.T) {
	p, err := New("p", 0, []string{"alice", "", ""})
	require.NoError(t, err)
	g, err := New("g", 0, []string{"alice", ""})
	require.NoError(t, err)

	set := Union(p, g)

	assert.True(t, set.Match(mustRule(t, 1, "p", "alice", "data1", "read")))
	assert.True(t, set.Match(mustRule(t, 2, "g", "alice", "admin")))
	assert.False(t, set.Match(mustRule(t, 3, "p", "bob", "data2", "write")))
	assert.False(t, set.Match(mustRule(t, 4, "g2", "alice", "admin")))
}

func TestMergeByID_Deduplicates(t *testing.T) {
	a := mustRule(t, 1, "p", "alice", "data1", "read")
	b := mustRule(t, 2, "p", "bob", "data2", "write")

	merged := MergeByID([]rules.Rule{b, a}, []rules.Rule{a})

	require.Len(t, merged, 2)
	assert.Equal(t, int64(1), merged[0].ID)
	assert.Equal(t, int64(2), merged[1].ID)
}

func TestSpec_Clauses(t *testing.T) {
	t.Run("both sections", func(t *testing.T) {
		spec := Spec{P: []string{"alice", "", ""}, G: []string{"alice", ""}}
		clauses, err := spec.Clauses()
		require.NoError(t, err)
		require.Len(t, clauses, 2)
		assert.Equal(t, "p", clauses[0].PType)
		assert.Equal(t, "g", clauses[1].PType)
	})

	t.Run("omitted section produces no clause", func(t *testing.T) {
		spec := Spec{P: []string{"alice", "", ""}}
		clauses, err := spec.Clauses()
		require.NoError(t, err)
		require.Len(t, clauses, 1)
		assert.Equal(t, "p", clauses[0].PType)
	})

	t.Run("custom rule types", func(t *testing.T) {
		spec := Spec{PType: "p2", GType: "g3", P: []string{"bob"}, G: []string{"bob"}}
		clauses, err := spec.Clauses()
		require.NoError(t, err)
		require.Len(t, clauses, 2)
		assert.Equal(t, "p2", clauses[0].PType)
		assert.Equal(t, "g3", clauses[1].PType)
	})

	t.Run("range error surfaces", func(t *testing.T) {
		spec := Spec{P: []string{"a", "b", "c", "d", "e", "f", "g"}}
		_, err := spec.Clauses()
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeRange))
	})
}
