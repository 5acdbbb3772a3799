package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Padroes(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "segredo")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, time.Minute, cfg.CatalogoTTL)
	assert.Equal(t, 60*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, 100, cfg.RateLimitMaxRequests)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadConfig_LeAmbiente(t *testing.T) {
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://localhost/goficha")
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("JWT_EXPIRY_MIN", "15")
	t.Setenv("CATALOGO_CACHE_TTL_SEC", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 15*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, 30*time.Second, cfg.CatalogoTTL)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
}

func TestLoadConfig_Invalida(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres sem DATABASE_URL", map[string]string{"STORE_DRIVER": "postgres", "JWT_SECRET_KEY": "x"}},
		{"sem segredo JWT", map[string]string{"STORE_DRIVER": "memory"}},
		{"driver desconhecido", map[string]string{"STORE_DRIVER": "sqlite", "JWT_SECRET_KEY": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
