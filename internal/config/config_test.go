package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"esfhub/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8002", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "esf_db", cfg.DB.Name)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Empty(t, cfg.Auth.URL)
	assert.Equal(t, "http://localhost:8003", cfg.GNS.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.GNS.Timeout)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ESF_SERVER_PORT", ":9000")
	t.Setenv("ESF_DB_PORT", "6543")
	t.Setenv("ESF_AUTH_URL", "http://auth:8001/")
	t.Setenv("ESF_GNS_BASE_URL", "https://gns.example/api/")
	t.Setenv("ESF_GNS_EXCHANGE_CODE", "EX-1")
	t.Setenv("ESF_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, "http://auth:8001", cfg.Auth.URL)
	assert.Equal(t, "https://gns.example/api", cfg.GNS.BaseURL)
	assert.Equal(t, "EX-1", cfg.GNS.ExchangeCode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "8080")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)

	t.Setenv("ESF_SERVER_PORT", ":8001")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8001", cfg.Server.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	d := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "esf", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@db:5432/esf?sslmode=disable", d.DSN())
}

func TestGNSConfig_URL(t *testing.T) {
	g := config.GNSConfig{BaseURL: "http://gns:8003"}

	assert.Equal(t, "http://gns:8003/gns/receive", g.URL("/gns/receive"))
	assert.Equal(t, "http://gns:8003/gns/receive", g.URL("gns/receive"))
	assert.Equal(t, "http://gns:8003", g.URL(""))
}
