package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Retention RetentionConfig `mapstructure:"retention"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type DeliveryConfig struct {
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type ProvidersConfig struct {
	TabularBaseURL string `mapstructure:"tabular_base_url"`
}

type RetentionConfig struct {
	MaxLogAge     time.Duration `mapstructure:"max_log_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RateLimitConfig struct {
	IngressPerMinute  int `mapstructure:"ingress_per_minute"`
	APIReadPerMinute  int `mapstructure:"api_read_per_minute"`
	APIWritePerMinute int `mapstructure:"api_write_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// The reference retry delay; callers rely on a non-zero value.
	if config.Delivery.RetryDelay == 0 {
		config.Delivery.RetryDelay = 5 * time.Second
	}
	if config.Delivery.HTTPTimeout == 0 {
		config.Delivery.HTTPTimeout = 10 * time.Second
	}

	return &config, nil
}
