// Package config loads application configuration from file and
// environment and initializes the global logger.
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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Queue  QueueConfig  `yaml:"queue" mapstructure:"queue"`
	Worker WorkerConfig `yaml:"worker" mapstructure:"worker"`
	Master MasterConfig `yaml:"master" mapstructure:"master"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	// Driver selects the backend: "postgres", "sqlite", or "memory".
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// QueueConfig configures the stage transport.
type QueueConfig struct {
	// Driver selects the backend: "postgres" or "memory". The postgres
	// queue shares the store's pool.
	Driver string `yaml:"driver" mapstructure:"driver"`
}

// WorkerConfig configures the stage consumers.
type WorkerConfig struct {
	Workers          int     `yaml:"workers" mapstructure:"workers"`
	PollIntervalSecs int     `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	RatePerSecond    float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// MasterConfig configures the mastering stage.
type MasterConfig struct {
	// Priorities overrides the built-in source merge priorities.
	Priorities map[string]int `yaml:"priorities" mapstructure:"priorities"`
}

// ServerConfig configures the admin HTTP server.
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
	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "pipeline.db")
	v.SetDefault("store.max_conns", 8)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("queue.driver", "postgres")
	v.SetDefault("worker.workers", 2)
	v.SetDefault("worker.poll_interval_secs", 1)
	v.SetDefault("worker.max_attempts", 5)
	v.SetDefault("worker.rate_per_second", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
