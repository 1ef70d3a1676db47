// Copyright 2026 Lectern AI
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


// Package config loads the application configuration from a YAML file,
// with API keys resolved from the environment. A .env file next to the
// working directory is honored when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lectern-ai/lectern/ai"
)

// AIConfig configures the OpenAI-compatible backends.
type AIConfig struct {
	EmbeddingHost      string `yaml:"embedding_host"`
	CompletionHost     string `yaml:"completion_host"`
	EmbeddingModel     string `yaml:"embedding_model"`
	CompletionModel    string `yaml:"completion_model"`
	APIKeyEnv          string `yaml:"api_key_env"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`
	TimeoutSecs        int    `yaml:"timeout_secs"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	TargetWords      int `yaml:"target_words"`
	OverlapSentences int `yaml:"overlap_sentences"`
}

// NotesConfig configures note generation.
type NotesConfig struct {
	HeuristicFallback bool `yaml:"heuristic_fallback"`
	CharBudget        int  `yaml:"char_budget"`
	SnippetCount      int  `yaml:"snippet_count"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	DataDir string        `yaml:"data_dir"`
	AI      AIConfig      `yaml:"ai"`
	Chunker ChunkerConfig `yaml:"chunker"`
	Notes   NotesConfig   `yaml:"notes"`
}

// Load reads a config from path. A missing file yields the defaults.
// Environment variables are loaded from .env first, so api_key_env can
// point at a key defined there.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// AIOptions converts the AI section into ai.Config options. The API key
// is read from the environment variable named by api_key_env.
func (c *AppConfig) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithCompletionHost(c.AI.CompletionHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithCompletionModel(c.AI.CompletionModel),
		ai.WithEmbeddingDimension(c.AI.EmbeddingDimension),
		ai.WithRequestTimeout(time.Duration(c.AI.TimeoutSecs) * time.Second),
	}
	if key := os.Getenv(c.AI.APIKeyEnv); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	return opts
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	base := ai.DefaultConfig()
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = base.EmbeddingHost
	}
	if cfg.AI.CompletionHost == "" {
		cfg.AI.CompletionHost = base.CompletionHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = base.EmbeddingModel
	}
	if cfg.AI.CompletionModel == "" {
		cfg.AI.CompletionModel = base.CompletionModel
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = "LECTERN_API_KEY"
	}
	if cfg.AI.EmbeddingDimension == 0 {
		cfg.AI.EmbeddingDimension = base.EmbeddingDimension
	}
	if cfg.AI.TimeoutSecs == 0 {
		cfg.AI.TimeoutSecs = int(base.RequestTimeout / time.Second)
	}
	if cfg.Chunker.TargetWords == 0 {
		cfg.Chunker.TargetWords = 1000
	}
	if cfg.Chunker.OverlapSentences == 0 {
		cfg.Chunker.OverlapSentences = 3
	}
	if cfg.Notes.CharBudget == 0 {
		cfg.Notes.CharBudget = 4000
	}
	if cfg.Notes.SnippetCount == 0 {
		cfg.Notes.SnippetCount = 3
	}
}
