package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "listen: \":9000\"\n"))
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Listen)
	require.Equal(t, LogLevelInfo, cfg.LogLevel)
	require.Equal(t, StoreDriverFile, cfg.Store.Driver)
	require.Equal(t, defaultSaveDir, cfg.Download.SaveDir)
	require.Equal(t, defaultTimeout, cfg.Download.Timeout)
	require.Equal(t, []string{defaultDomain}, cfg.Defaults.Domains)
	require.Equal(t, "on", cfg.Defaults.Logging)
	require.Equal(t, defaultQueueSize, cfg.Pipeline.QueueSize)
	require.False(t, cfg.Mirror.Enabled())
}

func TestLoadMirror(t *testing.T) {
	t.Setenv(EnvMirrorSecretKey, "secret")

	cfg, err := Load(writeConfig(t, `
mirror:
  bucket: irc-files
  prefix: w1r3/
  endpoint: http://minio:9000
  access_key_id: key
`))
	require.NoError(t, err)

	require.True(t, cfg.Mirror.Enabled())
	require.Equal(t, "irc-files", cfg.Mirror.Bucket)
	require.Equal(t, "w1r3/", cfg.Mirror.Prefix)
	require.Equal(t, "http://minio:9000", cfg.Mirror.Endpoint)
	require.Equal(t, "secret", cfg.Mirror.SecretAccessKey)
	require.Equal(t, defaultTimeout, cfg.Mirror.Timeout)
	require.Equal(t, defaultMirrorTries, cfg.Mirror.MaxRetries)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
log_level: debug
tag: catcher
store:
  driver: redis
  redis_url: redis://cache:6379/1
download:
  save_dir: /var/lib/catcher
  timeout: 5s
  max_size: 1048576
  rate: 2.5
defaults:
  domains:
    - w1r3.net
    - 0x0.st
  logging: "off"
`))
	require.NoError(t, err)

	require.Equal(t, LogLevelDebug, cfg.LogLevel)
	require.Equal(t, "catcher", cfg.Tag)
	require.Equal(t, StoreDriverRedis, cfg.Store.Driver)
	require.Equal(t, "redis://cache:6379/1", cfg.Store.RedisURL)
	require.Equal(t, "/var/lib/catcher", cfg.Download.SaveDir)
	require.Equal(t, 5*time.Second, cfg.Download.Timeout)
	require.Equal(t, int64(1048576), cfg.Download.MaxSize)
	require.Equal(t, 2.5, cfg.Download.Rate)
	require.Equal(t, []string{"w1r3.net", "0x0.st"}, cfg.Defaults.Domains)
	require.Equal(t, "off", cfg.Defaults.Logging)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvSaveDir, "/tmp/override")
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvRedisURL, "redis://other:6379/0")

	cfg, err := Load(writeConfig(t, "download:\n  save_dir: /from/file\n"))
	require.NoError(t, err)

	require.Equal(t, "/tmp/override", cfg.Download.SaveDir)
	require.Equal(t, LogLevelWarn, cfg.LogLevel)
	require.Equal(t, "redis://other:6379/0", cfg.Store.RedisURL)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "unknown log level", content: "log_level: loud\n"},
		{name: "unknown driver", content: "store:\n  driver: etcd\n"},
		{name: "negative rate", content: "download:\n  rate: -1\n"},
		{name: "broken yaml", content: "listen: [\n"},
		{name: "mirror key without secret", content: "mirror:\n  bucket: b\n  access_key_id: k\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
