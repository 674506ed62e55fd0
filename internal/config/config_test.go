package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "TABLE_NAME",
		"DATABASE_TYPE", "DATABASE_PATH",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_SSL_MODE",
		"PARTITION_ENABLED", "PARTITION_MARKER",
		"SECONDARY_DATABASE_TYPE", "SECONDARY_DATABASE_PATH", "SECONDARY_TABLE_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "casbin_rule", cfg.TableName)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "./policy.db", cfg.DatabasePath)
	assert.Equal(t, "5432", cfg.PostgresPort)
	assert.Equal(t, "disable", cfg.PostgresSSLMode)
	assert.False(t, cfg.PartitionEnabled)
	assert.Equal(t, "p", cfg.PartitionMarker)
	assert.Equal(t, "sqlite", cfg.SecondaryDatabaseType)
	assert.Equal(t, "casbin_rule", cfg.SecondaryTableName)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "authz")
	t.Setenv("POSTGRES_USER", "svc")
	t.Setenv("TABLE_NAME", "authz_rule")
	t.Setenv("PARTITION_ENABLED", "true")
	t.Setenv("PARTITION_MARKER", "g")
	t.Setenv("SECONDARY_DATABASE_PATH", "/tmp/secondary.db")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, "authz_rule", cfg.TableName)
	assert.True(t, cfg.PartitionEnabled)
	assert.Equal(t, "g", cfg.PartitionMarker)
	assert.Equal(t, "authz_rule", cfg.SecondaryTableName)

	require.NoError(t, cfg.Validate())
}

func TestLoad_SecondaryTableNameFollowsPrimary(t *testing.T) {
	clearEnv(t)
	t.Setenv("TABLE_NAME", "rules_a")
	t.Setenv("SECONDARY_TABLE_NAME", "rules_b")

	cfg := Load()
	assert.Equal(t, "rules_a", cfg.TableName)
	assert.Equal(t, "rules_b", cfg.SecondaryTableName)
}

func TestGetBoolEnv_InvalidFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PARTITION_ENABLED", "not-a-bool")

	cfg := Load()
	assert.False(t, cfg.PartitionEnabled)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			LogLevel:              "info",
			TableName:             "casbin_rule",
			DatabaseType:          "sqlite",
			DatabasePath:          "./policy.db",
			PostgresHost:          "localhost",
			PostgresPort:          "5432",
			PostgresDB:            "policy",
			PostgresUser:          "postgres",
			PostgresSSLMode:       "disable",
			PartitionMarker:       "p",
			SecondaryDatabaseType: "sqlite",
			SecondaryDatabasePath: "./policy_secondary.db",
			SecondaryTableName:    "casbin_rule",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid sqlite",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid postgres",
			mutate: func(c *Config) { c.DatabaseType = "postgres" },
		},
		{
			name:    "empty table name",
			mutate:  func(c *Config) { c.TableName = "" },
			wantErr: "TABLE_NAME",
		},
		{
			name:    "unknown database type",
			mutate:  func(c *Config) { c.DatabaseType = "mysql" },
			wantErr: "DATABASE_TYPE",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.DatabasePath = ""
			},
			wantErr: "DATABASE_PATH",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.DatabaseType = "postgres"
				c.PostgresHost = ""
			},
			wantErr: "POSTGRES_HOST",
		},
		{
			name: "postgres without database",
			mutate: func(c *Config) {
				c.DatabaseType = "postgres"
				c.PostgresDB = ""
			},
			wantErr: "POSTGRES_DB",
		},
		{
			name: "postgres without user",
			mutate: func(c *Config) {
				c.DatabaseType = "postgres"
				c.PostgresUser = ""
			},
			wantErr: "POSTGRES_USER",
		},
		{
			name: "postgres bad port",
			mutate: func(c *Config) {
				c.DatabaseType = "postgres"
				c.PostgresPort = "notaport"
			},
			wantErr: "POSTGRES_PORT",
		},
		{
			name: "partition marker too long",
			mutate: func(c *Config) {
				c.PartitionEnabled = true
				c.PartitionMarker = "pp"
			},
			wantErr: "PARTITION_MARKER",
		},
		{
			name: "partition secondary sqlite without path",
			mutate: func(c *Config) {
				c.PartitionEnabled = true
				c.SecondaryDatabasePath = ""
			},
			wantErr: "SECONDARY_DATABASE_PATH",
		},
		{
			name: "partition secondary unknown type",
			mutate: func(c *Config) {
				c.PartitionEnabled = true
				c.SecondaryDatabaseType = "mysql"
			},
			wantErr: "SECONDARY_DATABASE_TYPE",
		},
		{
			name: "partition secondary postgres reuses primary",
			mutate: func(c *Config) {
				c.PartitionEnabled = true
				c.SecondaryDatabaseType = "postgres"
				c.SecondaryDatabasePath = ""
			},
		},
		{
			name: "partition empty secondary table",
			mutate: func(c *Config) {
				c.PartitionEnabled = true
				c.SecondaryTableName = ""
			},
			wantErr: "SECONDARY_TABLE_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
