// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_HOST", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DATABASE_POSTGRES_HOST", "DATABASE_POSTGRES_USER", "DATABASE_POSTGRES_DATABASE",
		"SEARCH_BACKEND", "RECONCILER_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}

const minimalConfig = `
database:
  postgres:
    host: db.internal
    database: deals
    user: deals
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "dealsdash", cfg.App.Name)
	assert.Equal(t, ":4000", cfg.HTTP.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "vendors", cfg.Database.Elasticsearch.VendorIndex)
	assert.Equal(t, BackendPostgres, cfg.Search.Backend)
	assert.Equal(t, 5000, cfg.Search.DefaultDistance)
	assert.Equal(t, "0 0 * * *", cfg.Reconciler.Schedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_POSTGRES_HOST", "pg.from.env")
	t.Setenv("SEARCH_BACKEND", BackendPostgres)

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "pg.from.env", cfg.Database.Postgres.Host)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEALS_TEST_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`    password: ${DEALS_TEST_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_FallsBackToDBVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "fallback-host")
	t.Setenv("DB_NAME", "fallback-db")
	t.Setenv("DB_USER", "fallback-user")

	cfg, err := LoadFromFile(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "fallback-host", cfg.Database.Postgres.Host)
	assert.Equal(t, "fallback-db", cfg.Database.Postgres.Database)
	assert.Equal(t, "fallback-user", cfg.Database.Postgres.User)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "unknown backend",
			extra:   "search:\n  backend: mongo\n",
			wantErr: "search.backend",
		},
		{
			name:    "elasticsearch backend without addresses",
			extra:   "search:\n  backend: elasticsearch\n",
			wantErr: "requires database.elasticsearch.enabled",
		},
		{
			name:    "bad cron expression",
			extra:   "reconciler:\n  enabled: true\n  schedule: \"every day\"\n",
			wantErr: "reconciler.schedule",
		},
		{
			name:    "sns without topic",
			extra:   "notifications:\n  sns:\n    enabled: true\n",
			wantErr: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFromFile(writeConfig(t, minimalConfig+tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingPostgres(t *testing.T) {
	clearEnv(t)
	_, err := LoadFromFile(writeConfig(t, "app:\n  name: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.host")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=require", p.GetDSN())
}
