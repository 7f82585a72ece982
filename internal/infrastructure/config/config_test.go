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

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
gateway:
  webhook_secret: whsec_test
billing:
  tax_basis_points: 500
`)

	cfg, err := Load("test", path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "whsec_test", cfg.Gateway.WebhookSecret)
	assert.Equal(t, int64(500), cfg.Billing.TaxBasisPoints)
	assert.Equal(t, int64(30000), cfg.Billing.NewSubscriberFee)
	assert.Equal(t, "krw", cfg.Billing.Currency)
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Confirmation.StatusCacheTTL)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "gateway:\n  secret_key: sk_file\n")
	t.Setenv("BIZCARD_GATEWAY_SECRET_KEY", "sk_env")

	cfg, err := Load("", path)
	require.NoError(t, err)

	assert.Equal(t, "sk_env", cfg.Gateway.SecretKey)
	assert.Equal(t, "debug", cfg.Server.Mode)
}
