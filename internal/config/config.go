package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Benchmark BenchmarkConfig `yaml:"benchmark" mapstructure:"benchmark"`
	Calendar  CalendarConfig  `yaml:"calendar" mapstructure:"calendar"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Suggest   SuggestConfig   `yaml:"suggest" mapstructure:"suggest"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	CatalogFile          string  `yaml:"catalog_file" mapstructure:"catalog_file"`
	MinAnsweredFraction  float64 `yaml:"min_answered_fraction" mapstructure:"min_answered_fraction"`
	ImprovementThreshold float64 `yaml:"improvement_threshold" mapstructure:"improvement_threshold"`
	StrengthThreshold    float64 `yaml:"strength_threshold" mapstructure:"strength_threshold"`
}

// BenchmarkConfig configures the benchmark feed.
type BenchmarkConfig struct {
	FeedURL string `yaml:"feed_url" mapstructure:"feed_url"`
}

// CalendarConfig configures the regulatory calendar feed.
type CalendarConfig struct {
	File string `yaml:"file" mapstructure:"file"`
	URL  string `yaml:"url" mapstructure:"url"`
}

// BatchConfig configures batch alert generation.
type BatchConfig struct {
	MaxConcurrentUsers int `yaml:"max_concurrent_users" mapstructure:"max_concurrent_users"`
}

// SuggestConfig configures the LLM answer-suggestion chain.
type SuggestConfig struct {
	Providers  []string `yaml:"providers" mapstructure:"providers"`
	Key        string   `yaml:"key" mapstructure:"key"`
	Model      string   `yaml:"model" mapstructure:"model"`
	RatePerSec float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// NotionConfig holds Notion API credentials for alert export.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	AlertDB string `yaml:"alert_db" mapstructure:"alert_db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ESG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "esg.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("scoring.min_answered_fraction", 0.5)
	v.SetDefault("scoring.improvement_threshold", 60.0)
	v.SetDefault("scoring.strength_threshold", 80.0)
	v.SetDefault("batch.max_concurrent_users", 5)
	v.SetDefault("suggest.providers", []string{"anthropic"})
	v.SetDefault("suggest.model", "claude-haiku-4-5-20251001")
	v.SetDefault("suggest.rate_per_sec", 1.0)

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
