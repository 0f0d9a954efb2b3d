// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/payee-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Dedup     DedupConfig     `yaml:"dedup" mapstructure:"dedup"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the job-tracking database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	Path        string            `yaml:"path" mapstructure:"path"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ClassifyConfig configures the tiered classifier.
type ClassifyConfig struct {
	AIThreshold       int     `yaml:"ai_threshold" mapstructure:"ai_threshold"`
	SkipRules         bool    `yaml:"skip_rules" mapstructure:"skip_rules"`
	Offline           bool    `yaml:"offline" mapstructure:"offline"`
	ConsensusRuns     int     `yaml:"consensus_runs" mapstructure:"consensus_runs"`
	MaxConcurrency    int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	CacheTTLMinutes   int     `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// CacheTTL returns the configured cache TTL as a duration.
func (c ClassifyConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// DedupConfig configures fuzzy name deduplication.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// BatchConfig configures batch job polling.
type BatchConfig struct {
	PollIntervalSecs    int `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	MaxPollIntervalSecs int `yaml:"max_poll_interval_secs" mapstructure:"max_poll_interval_secs"`
}

// PollInterval returns the initial poll interval.
func (c BatchConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

// MaxPollInterval returns the poll interval ceiling.
func (c BatchConfig) MaxPollInterval() time.Duration {
	return time.Duration(c.MaxPollIntervalSecs) * time.Second
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the built-in configuration, the same values Load applies
// when no file or environment override is present.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: "sqlite", Path: "payee-jobs.db"},
		Anthropic: AnthropicConfig{
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 256,
		},
		Classify: ClassifyConfig{
			AIThreshold:       80,
			ConsensusRuns:     2,
			MaxConcurrency:    12,
			RequestsPerSecond: 8,
			CacheTTLMinutes:   15,
		},
		Dedup:  DedupConfig{SimilarityThreshold: 0.85},
		Batch:  BatchConfig{PollIntervalSecs: 10, MaxPollIntervalSecs: 120},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PAYEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "payee-jobs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 256)
	v.SetDefault("classify.ai_threshold", 80)
	v.SetDefault("classify.consensus_runs", 2)
	v.SetDefault("classify.max_concurrency", 12)
	v.SetDefault("classify.requests_per_second", 8)
	v.SetDefault("classify.cache_ttl_minutes", 15)
	v.SetDefault("dedup.similarity_threshold", 0.85)
	v.SetDefault("batch.poll_interval_secs", 10)
	v.SetDefault("batch.max_poll_interval_secs", 120)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
