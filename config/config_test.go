package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openweb3-io/nsigner/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nsigner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: local
secret_key: env:TEST_NSIGNER_KEY
request_timeout: 30s
log:
  level: debug
`), 0o600))
	t.Setenv("NSIGNER_LOG_FORMAT", "json")
	t.Setenv("TEST_NSIGNER_KEY", "deadbeef")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.ProviderLocal, cfg.Provider)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())

	key, err := cfg.GetSecretKey()
	require.NoError(t, err)
	require.Equal(t, "deadbeef", key)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider = "hsm"
	require.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Endpoint = ""
	require.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Provider = config.ProviderLocal
	require.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.RequestTimeout = -time.Second
	require.Error(t, cfg.Validate())
}

func TestGetSecretKeyUnsetEnv(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SecretKey = "env:TEST_NSIGNER_UNSET_KEY"
	_, err := cfg.GetSecretKey()
	require.Error(t, err)

	cfg.SecretKey = "abcd"
	key, err := cfg.GetSecretKey()
	require.NoError(t, err)
	require.Equal(t, "abcd", key)
}
