package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	defaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.LegacySessionFallback)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 15*time.Minute, cfg.LoginRateWindow)
	assert.Equal(t, int64(5), cfg.LoginRateLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"legacy_session_fallback": "false",
		"allowed_origins":         "https://a.example, https://b.example ,",
		"jwt_ttl":                 "30m",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.LegacySessionFallback)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
}

func TestProductionRequiresSecrets(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{"app_env": "production"}))
	assert.Error(t, err)

	_, err = fromViper(newViper(map[string]any{"jwt_ttl": "soon"}))
	assert.Error(t, err)
}
