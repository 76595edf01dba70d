// pkg/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
	assert.Equal(t, int64(0), cfg.ScoreSeed)
	assert.Nil(t, cfg.Postgres)
	assert.Nil(t, cfg.Snowflake)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SCORE_SEED", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(42), cfg.ScoreSeed)
}

func TestLoadPostgresConfig_RequiresCredentials(t *testing.T) {
	t.Setenv("POSTGRES_USER", "ingress")

	_, err := LoadPostgresConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{ListenAddr: "", MaxUploadBytes: 1}
	assert.Error(t, cfg.Validate())

	cfg = &Config{ListenAddr: ":8080", MaxUploadBytes: 0}
	assert.Error(t, cfg.Validate())

	cfg = &Config{ListenAddr: ":8080", MaxUploadBytes: 1}
	assert.NoError(t, cfg.Validate())
}
