package postgres

import (
	"fmt"
	"strconv"

	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StoreConfig) (storage.Store, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)

	case storage.GenericConfig:
		pgConfig := &Config{}
		if host, ok := cfg["host"].(string); ok {
			pgConfig.Host = host
		}
		if port, ok := cfg["port"].(string); ok {
			if p, err := strconv.Atoi(port); err == nil {
				pgConfig.Port = p
			}
		}
		if database, ok := cfg["database"].(string); ok {
			pgConfig.Database = database
		}
		if username, ok := cfg["username"].(string); ok {
			pgConfig.Username = username
		}
		if password, ok := cfg["password"].(string); ok {
			pgConfig.Password = password
		}
		if sslmode, ok := cfg["sslmode"].(string); ok {
			pgConfig.SSLMode = sslmode
		}
		if table, ok := cfg["table"].(string); ok {
			pgConfig.TableName = table
		}
		return NewAdapter(pgConfig)

	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL store")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{})
}
