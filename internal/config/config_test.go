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

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: scamshield-lab\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "scamshield:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "scamshield", cfg.NATS.SubjectPrefix)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, 30, cfg.History.RetentionDays)
	assert.Equal(t, 30, cfg.Stats.DefaultDays)
	assert.Equal(t, time.Minute, cfg.Stats.CacheTTL)
	assert.Empty(t, cfg.Model.CallModelPath)
	assert.Empty(t, cfg.Auth.APIKeys)
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_port: 9000
database:
  enabled: true
  host: db
  user: app
  password: secret
  dbname: scams
detection:
  trusted_domains: [example.com, example.org]
model:
  sms_model_path: /models/sms.json
history:
  cleanup_interval: 6h
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres://app:secret@db:5432/scams?sslmode=disable&search_path=public", cfg.Database.DSN())
	assert.Equal(t, []string{"example.com", "example.org"}, cfg.Detection.TrustedDomains)
	assert.Equal(t, "/models/sms.json", cfg.Model.SMSModelPath)
	assert.Equal(t, 6*time.Hour, cfg.History.CleanupInterval)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SCAMSHIELD_REDIS_HOST", "cache.internal")
	t.Setenv("SCAMSHIELD_REDIS_PORT", "6380")
	t.Setenv("SCAMSHIELD_MODEL_CALL_MODEL_PATH", "/models/call.json")

	cfg, err := Load(writeConfig(t, "redis:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", cfg.Redis.Addr())
	assert.Equal(t, "/models/call.json", cfg.Model.CallModelPath)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
