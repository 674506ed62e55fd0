package sqlite

import (
	"fmt"

	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StoreConfig) (storage.Store, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)

	case storage.GenericConfig:
		sqliteConfig := DefaultConfig()
		if path, ok := cfg["path"].(string); ok && path != "" {
			sqliteConfig.DatabasePath = path
		}
		if table, ok := cfg["table"].(string); ok && table != "" {
			sqliteConfig.TableName = table
		}
		return NewAdapter(sqliteConfig)

	default:
		return nil, fmt.Errorf("invalid config type for SQLite store")
	}
}

func (f *Factory) GetType() string {
	return "sqlite"
}

func init() {
	storage.Register("sqlite", &Factory{})
}
