package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestDecode_Defaults(t *testing.T) {
	cfg, err := decode(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8000, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, GuardAdmin, cfg.Security.ProgramWriteGuard)
	assert.Equal(t, 10, cfg.App.PageSize)
	assert.Equal(t, DevSessionSecret, cfg.Security.SessionSecret)
	assert.Equal(t, 30*time.Second, cfg.Queue.ClaimInterval)
}

func TestDecode_TrimsBaseOrigin(t *testing.T) {
	v := newTestViper()
	v.Set("app.baseorigin", "https://example.org/")

	cfg, err := decode(v)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", cfg.App.BaseOrigin)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "unknown guard", key: "security.programwriteguard", val: "everyone"},
		{name: "zero page size", key: "app.pagesize", val: 0},
		{name: "zero claim interval", key: "queue.claiminterval", val: "0s"},
		{name: "negative claim interval", key: "queue.claiminterval", val: "-5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper()
			v.Set(tt.key, tt.val)
			_, err := decode(v)
			require.Error(t, err)
		})
	}
}

func TestDecode_ProductionRequiresSecret(t *testing.T) {
	v := newTestViper()
	v.Set("environment", EnvProduction)
	_, err := decode(v)
	require.Error(t, err)

	v.Set("security.sessionsecret", "s3cret")
	cfg, err := decode(v)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Security.SessionSecret)
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, Name: "main_db", User: "admin", Password: "p@ss"}
	assert.Equal(t, "postgres://admin:p%40ss@db:5432/main_db", cfg.PostgresDSN())

	cfg.DSN = "postgres://other"
	assert.Equal(t, "postgres://other", cfg.PostgresDSN())
}

func TestBindPlainEnv(t *testing.T) {
	t.Setenv("DB_HOST", "plain-host")
	t.Setenv("ADMIN_EMAIL", "root@example.org")

	v := newTestViper()
	require.NoError(t, bindPlainEnv(v))

	cfg, err := decode(v)
	require.NoError(t, err)
	assert.Equal(t, "plain-host", cfg.Postgres.Host)
	assert.Equal(t, "root@example.org", cfg.Security.AdminEmail)
}
