package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the root configuration of the settlement service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Memcache  MemcacheConfig  `mapstructure:"memcache"`
	Log       LogConfig       `mapstructure:"log"`
	Jaeger    JaegerConfig    `mapstructure:"jaeger"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Backfill  BackfillConfig  `mapstructure:"backfill"`
	Cleanup   CleanupConfig   `mapstructure:"cleanup"`
}

// ServerConfig for the webhook HTTP server
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port uint16 `mapstructure:"port"`
}

// ListenString ...
func (c ServerConfig) ListenString() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig ...
type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"`
}

// JaegerConfig ...
type JaegerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// ProvidersConfig holds the global (non per-organizer) provider settings
type ProvidersConfig struct {
	OrgConfigTTLSeconds uint32 `mapstructure:"org_config_ttl_seconds"`
}

// BackfillConfig ...
type BackfillConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

// CleanupConfig ...
type CleanupConfig struct {
	IntervalMinutes  int `mapstructure:"interval_minutes"`
	LogRetentionDays int `mapstructure:"log_retention_days"`
}

// Load reads config.yml from the working directory, with env overrides
func Load() Config {
	vip := viper.New()
	vip.SetConfigName("config")
	vip.SetConfigType("yml")
	vip.AddConfigPath(".")

	vip.SetEnvPrefix("settlement")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	err := vip.ReadInConfig()
	if err != nil {
		panic(err)
	}

	var conf Config
	err = vip.Unmarshal(&conf)
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadTestConfig reads config_test.yml from the repository root
func LoadTestConfig(rootDir string) Config {
	vip := viper.New()
	vip.SetConfigFile(filepath.Join(rootDir, "config_test.yml"))

	err := vip.ReadInConfig()
	if err != nil {
		panic(err)
	}

	var conf Config
	err = vip.Unmarshal(&conf)
	if err != nil {
		panic(err)
	}
	return conf
}

// NewLogger builds the process logger from config
func NewLogger(conf LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if conf.Level != "" {
		err := level.Set(conf.Level)
		if err != nil {
			panic(err)
		}
	}

	var zapConf zap.Config
	if conf.Mode == "development" {
		zapConf = zap.NewDevelopmentConfig()
	} else {
		zapConf = zap.NewProductionConfig()
	}
	zapConf.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConf.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
