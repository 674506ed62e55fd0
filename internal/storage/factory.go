package storage

import (
	"fmt"

	"github.com/casbin-net/efcore-adapter-sub001/internal/common/errors"
	"github.com/casbin-net/efcore-adapter-sub001/internal/config"
)

// NewStore creates the primary rule store from configuration.
func NewStore(cfg *config.Config) (Store, error) {
	return buildStore(cfg.DatabaseType, cfg.TableName, cfg, false)
}

// NewSecondaryStore creates the secondary rule store used by partitioned
// routing. It is an error to call it when partitioning is disabled.
func NewSecondaryStore(cfg *config.Config) (Store, error) {
	if !cfg.PartitionEnabled {
		return nil, errors.ConfigError("secondary store requested but partitioning is disabled")
	}
	return buildStore(cfg.SecondaryDatabaseType, cfg.SecondaryTableName, cfg, true)
}

// buildStore assembles a backend config and creates the store through the
// default registry.
func buildStore(databaseType, tableName string, cfg *config.Config, secondary bool) (Store, error) {
	var storeConfig StoreConfig

	switch databaseType {
	case "sqlite":
		path := cfg.DatabasePath
		if secondary {
			path = cfg.SecondaryDatabasePath
		}
		storeConfig = GenericConfig{
			"path":  path,
			"table": tableName,
		}

	case "postgres":
		storeConfig = GenericConfig{
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
			"table":    tableName,
		}

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", databaseType))
	}

	return Create(databaseType, storeConfig)
}
