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

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  signing_key: file-key
database:
  driver: sqlite
cache:
  backend: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "referralhub", cfg.Cache.Prefix)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "referralhub.db", cfg.Database.SQLite.Path)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
jwt:
  signing_key: file-key
  access_token_ttl: 10m
database:
  driver: sqlite
cache:
  backend: memory
`)
	t.Setenv("JWT_SIGNING_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.JWT.SigningKey)
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTokenTTL)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing signing key": `
database:
  driver: sqlite
`,
		"unknown driver": `
jwt:
  signing_key: k
database:
  driver: oracle
`,
		"unknown cache backend": `
jwt:
  signing_key: k
cache:
  backend: memcached
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DB: "referrals"}
	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=referrals sslmode=disable TimeZone=UTC",
		cfg.DSN(),
	)
}
