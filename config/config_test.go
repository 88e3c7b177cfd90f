package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, time.Hour, cfg.Cache.CacheTTL())
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.False(t, cfg.Queue.Enable)
	assert.Equal(t, "auto", cfg.Evaluation.RougeMode)
	assert.Equal(t, 5, cfg.Evaluation.SummarySentences)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, ConfigFileUsed(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  mode: debug
  write_timeout: 5m
data:
  dir: /srv/cases
storage:
  type: minio
  endpoint: ${TEST_MINIO_ENDPOINT}
  bucket: judgments
  access_key: ${TEST_MINIO_KEY}
evaluation:
  rouge_mode: approx
  summary_sentences: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("TEST_MINIO_ENDPOINT", "minio.local:9000")
	t.Setenv("TEST_MINIO_KEY", "admin")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, ConfigFileUsed(path))
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "/srv/cases", cfg.Data.Dir)
	assert.Equal(t, "minio.local:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "admin", cfg.Storage.AccessKey)
	assert.Equal(t, "judgments", cfg.Storage.Bucket)
	assert.Equal(t, "approx", cfg.Evaluation.RougeMode)
	assert.Equal(t, 3, cfg.Evaluation.SummarySentences)
	// 未在文件中出现的键保持默认值
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("EVALUATION_ROUGE_MODE", "full")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "full", cfg.Evaluation.RougeMode)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("evaluation:\n  rouge_mode: exact\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RougeMode")

	require.NoError(t, os.WriteFile(path, []byte("server: [not, a, map"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Queue.Enable = true
	cfg.Queue.RedisAddr = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RedisAddr")

	cfg.Queue.RedisAddr = "localhost:6379"
	cfg.Storage.Type = "minio"
	cfg.Storage.Endpoint = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Endpoint")

	cfg.Storage.Type = "s3"
	assert.Error(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEGAL_SUMMARY_TEST_VAR=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LEGAL_SUMMARY_TEST_VAR") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv("LEGAL_SUMMARY_TEST_VAR"))

	// 文件不存在时忽略
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
