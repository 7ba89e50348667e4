// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads runtime configuration from defaults, an optional
// YAML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/assessor/ai"
)

// DefaultPath is read when no path is given and ASSESSOR_CONFIG is unset.
const DefaultPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recommend RecommendConfig `yaml:"recommend"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// CatalogConfig locates the catalog artifact.
type CatalogConfig struct {
	Path      string `yaml:"path"`
	BatchSize int    `yaml:"batchSize"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	Host          string `yaml:"host"`
	Model         string `yaml:"model"`
	Token         string `yaml:"token"`
	MaxInputWords int    `yaml:"maxInputWords"`
}

// RecommendConfig tunes the pipeline.
type RecommendConfig struct {
	CandidatePool int           `yaml:"candidatePool"`
	FetchTimeout  time.Duration `yaml:"fetchTimeout"`
	ResultTTL     time.Duration `yaml:"resultTtl"`
}

// CacheConfig enables the optional caches. Empty values disable them.
// Recommendations are cached in process memory when no Valkey address is
// set, unless MemoryResults is false.
type CacheConfig struct {
	VectorPath    string `yaml:"vectorPath"`
	ValkeyAddr    string `yaml:"valkeyAddr"`
	ValkeyPrefix  string `yaml:"valkeyPrefix"`
	MemoryResults bool   `yaml:"memoryResults"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration. The file is path if given, else
// $ASSESSOR_CONFIG, else DefaultPath when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("ASSESSOR_CONFIG")
	}
	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(DefaultPath); err == nil {
		if err := hydrateFromFile(cfg, DefaultPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("ASSESSOR_HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ASSESSOR_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("ASSESSOR_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.BatchSize = parsed
		}
	}
	if v := os.Getenv("ASSESSOR_EMBEDDING_HOST"); v != "" {
		cfg.Embedding.Host = v
	}
	if v := os.Getenv("ASSESSOR_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("ASSESSOR_EMBEDDING_TOKEN"); v != "" {
		cfg.Embedding.Token = v
	}
	if v := os.Getenv("ASSESSOR_CANDIDATE_POOL"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Recommend.CandidatePool = parsed
		}
	}
	if v := os.Getenv("ASSESSOR_FETCH_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Recommend.FetchTimeout = parsed
		}
	}
	if v := os.Getenv("ASSESSOR_CACHE_PATH"); v != "" {
		cfg.Cache.VectorPath = v
	}
	if v := os.Getenv("ASSESSOR_VALKEY_ADDR"); v != "" {
		cfg.Cache.ValkeyAddr = v
	}
	if v := os.Getenv("ASSESSOR_MEMORY_RESULTS"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.MemoryResults = parsed
		}
	}
	if v := os.Getenv("ASSESSOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ASSESSOR_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:      "data/catalog.csv",
			BatchSize: 32,
		},
		Embedding: EmbeddingConfig{
			Host:          aiDefaults.EmbeddingHost,
			Model:         aiDefaults.EmbeddingModel,
			Token:         aiDefaults.Token,
			MaxInputWords: aiDefaults.MaxInputWords,
		},
		Recommend: RecommendConfig{
			CandidatePool: 10,
			FetchTimeout:  10 * time.Second,
			ResultTTL:     15 * time.Minute,
		},
		Cache: CacheConfig{
			ValkeyPrefix:  "assessor",
			MemoryResults: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// AIConfig converts the embedding section for the ai packages.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithToken(c.Embedding.Token),
		ai.WithMaxInputWords(c.Embedding.MaxInputWords),
	)
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Address) == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		return errors.New("http timeouts cannot be negative")
	}
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("catalog.path cannot be empty")
	}
	if c.Catalog.BatchSize <= 0 {
		return errors.New("catalog.batchSize must be positive")
	}
	if strings.TrimSpace(c.Embedding.Host) == "" {
		return errors.New("embedding.host cannot be empty")
	}
	if strings.TrimSpace(c.Embedding.Model) == "" {
		return errors.New("embedding.model cannot be empty")
	}
	if c.Embedding.MaxInputWords < 0 {
		return errors.New("embedding.maxInputWords cannot be negative")
	}
	if c.Recommend.CandidatePool <= 0 {
		return errors.New("recommend.candidatePool must be positive")
	}
	if c.Recommend.FetchTimeout <= 0 {
		return errors.New("recommend.fetchTimeout must be positive")
	}
	if c.Recommend.ResultTTL < 0 {
		return errors.New("recommend.resultTtl cannot be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}
