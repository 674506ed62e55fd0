package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	storeType string
	created   int
}

func (f *stubFactory) Create(config StoreConfig) (Store, error) {
	f.created++
	return nil, nil
}

func (f *stubFactory) GetType() string {
	return f.storeType
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	registry := NewRegistry()
	factory := &stubFactory{storeType: "stub"}

	registry.Register("stub", factory)
	assert.True(t, registry.IsRegistered("stub"))
	assert.False(t, registry.IsRegistered("missing"))

	_, err := registry.Create("stub", GenericConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, factory.created)
}

func TestRegistry_CreateUnregistered(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Create("missing", GenericConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_GetAvailableTypes(t *testing.T) {
	registry := NewRegistry()
	registry.Register("a", &stubFactory{storeType: "a"})
	registry.Register("b", &stubFactory{storeType: "b"})

	assert.ElementsMatch(t, []string{"a", "b"}, registry.GetAvailableTypes())
}

func TestGenericConfig(t *testing.T) {
	cfg := GenericConfig{
		"type":              "sqlite",
		"connection_string": "file:test.db",
	}

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.GetType())
	assert.Equal(t, "file:test.db", cfg.GetConnectionString())

	empty := GenericConfig{}
	assert.Equal(t, "unknown", empty.GetType())
	assert.Empty(t, empty.GetConnectionString())
}
