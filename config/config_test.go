package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ASSESSOR_CONFIG", "PORT", "ASSESSOR_HTTP_ADDRESS", "ASSESSOR_CATALOG_PATH",
	"ASSESSOR_BATCH_SIZE", "ASSESSOR_EMBEDDING_HOST", "ASSESSOR_EMBEDDING_MODEL",
	"ASSESSOR_EMBEDDING_TOKEN", "ASSESSOR_CANDIDATE_POOL", "ASSESSOR_FETCH_TIMEOUT",
	"ASSESSOR_CACHE_PATH", "ASSESSOR_VALKEY_ADDR", "ASSESSOR_MEMORY_RESULTS", "ASSESSOR_LOG_LEVEL",
	"ASSESSOR_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8000", cfg.HTTP.Address)
	assert.Equal(t, 10, cfg.Recommend.CandidatePool)
	assert.Equal(t, 10*time.Second, cfg.Recommend.FetchTimeout)
	assert.True(t, cfg.Cache.MemoryResults)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
http:
  address: ":9090"
catalog:
  path: /srv/catalog.csv
  batchSize: 64
embedding:
  model: nomic-embed-text
recommend:
  fetchTimeout: 3s
cache:
  valkeyAddr: localhost:6379
  memoryResults: false
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "/srv/catalog.csv", cfg.Catalog.Path)
	assert.Equal(t, 64, cfg.Catalog.BatchSize)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, Default().Embedding.Host, cfg.Embedding.Host)
	assert.Equal(t, 3*time.Second, cfg.Recommend.FetchTimeout)
	assert.Equal(t, "localhost:6379", cfg.Cache.ValkeyAddr)
	assert.False(t, cfg.Cache.MemoryResults)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FileFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASSESSOR_CONFIG", writeFile(t, "catalog:\n  path: from-env.csv\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.csv", cfg.Catalog.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "http:\n  address: \":9090\"\n")
	t.Setenv("PORT", "7000")
	t.Setenv("ASSESSOR_CATALOG_PATH", "env.csv")
	t.Setenv("ASSESSOR_BATCH_SIZE", "8")
	t.Setenv("ASSESSOR_EMBEDDING_HOST", "http://embed:8080")
	t.Setenv("ASSESSOR_EMBEDDING_TOKEN", "secret")
	t.Setenv("ASSESSOR_CANDIDATE_POOL", "not-a-number")
	t.Setenv("ASSESSOR_FETCH_TIMEOUT", "2s")
	t.Setenv("ASSESSOR_CACHE_PATH", "/var/cache/assessor")
	t.Setenv("ASSESSOR_MEMORY_RESULTS", "false")
	t.Setenv("ASSESSOR_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Address)
	assert.Equal(t, "env.csv", cfg.Catalog.Path)
	assert.Equal(t, 8, cfg.Catalog.BatchSize)
	assert.Equal(t, "http://embed:8080", cfg.Embedding.Host)
	assert.Equal(t, "secret", cfg.Embedding.Token)
	assert.Equal(t, 10, cfg.Recommend.CandidatePool, "unparsable values are ignored")
	assert.Equal(t, 2*time.Second, cfg.Recommend.FetchTimeout)
	assert.Equal(t, "/var/cache/assessor", cfg.Cache.VectorPath)
	assert.False(t, cfg.Cache.MemoryResults)
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv("ASSESSOR_HTTP_ADDRESS", "127.0.0.1:7001")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.HTTP.Address)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	_, err = Load(writeFile(t, "http: [not, a, map]\n"))
	assert.ErrorContains(t, err, "parse config file")

	_, err = Load(writeFile(t, "recommend:\n  candidatePool: 0\n"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty address", func(c *Config) { c.HTTP.Address = " " }, "http.address"},
		{"empty catalog", func(c *Config) { c.Catalog.Path = "" }, "catalog.path"},
		{"zero batch", func(c *Config) { c.Catalog.BatchSize = 0 }, "catalog.batchSize"},
		{"empty model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"negative words", func(c *Config) { c.Embedding.MaxInputWords = -1 }, "embedding.maxInputWords"},
		{"zero fetch timeout", func(c *Config) { c.Recommend.FetchTimeout = 0 }, "recommend.fetchTimeout"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"upper-case level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://embed:8080"
	cfg.Embedding.MaxInputWords = 64

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://embed:8080/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "all-minilm", aiCfg.EmbeddingModel)
	assert.Equal(t, 64, aiCfg.MaxInputWords)
}
