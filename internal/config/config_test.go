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
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[mainConfig]
port = 9001

[storeConfig]
driver = "sqlite"
sqlitePath = "/tmp/um.db"

[cacheConfig]
maxQueueLength = 50
`)
	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, conf.MainConfig.Port)
	assert.Equal(t, "0.0.0.0", conf.MainConfig.Host)
	assert.Equal(t, "sqlite", conf.StoreConfig.Driver)
	assert.Equal(t, 50, conf.CacheConfig.MaxQueueLength)
	assert.Equal(t, 300*time.Second, conf.CacheConfig.OfflineThreshold())
	assert.Equal(t, 600*time.Second, conf.CacheConfig.SweepInterval())
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[storeConfig]\ndriver = \"memory\"\n")
	t.Setenv("UM_PORT", "7777")
	t.Setenv("UM_QUEUE_BACKEND", "redis")

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7777, conf.MainConfig.Port)
	assert.Equal(t, "redis", conf.CacheConfig.QueueBackend)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "[storeConfig]\ndriver = \"postgres\"\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestShippedConfigIsValid(t *testing.T) {
	conf, err := Load("../../configs/config.toml")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", conf.StoreConfig.Driver)
	assert.False(t, conf.KafkaConfig.Enabled)
	assert.False(t, conf.MainConfig.TlsRedirect)
}
