package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all pipeline configuration. One instance is loaded at
// process start and passed into each component; there is no runtime
// reconfiguration.
type Config struct {
	API struct {
		URL              string        `mapstructure:"url"`
		UserAgent        string        `mapstructure:"user_agent"`
		Timeout          time.Duration `mapstructure:"timeout"`
		RetryMaxAttempts int           `mapstructure:"retry_max_attempts"`
		RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
		RetryMaxDelay    time.Duration `mapstructure:"retry_max_delay"`
	} `mapstructure:"api"`
	Output struct {
		Path       string `mapstructure:"path"`
		SamplePath string `mapstructure:"sample_path"`
	} `mapstructure:"output"`
	Log struct {
		File string `mapstructure:"file"`
	} `mapstructure:"log"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Kafka struct {
		Enabled bool     `mapstructure:"enabled"`
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`
}

// Load reads configuration from config.yml if present, with environment
// variables (API_URL, OUTPUT_PATH, ...) overriding file values and
// defaults filling the rest.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("api.url", "https://fakestoreapi.com/products")
	v.SetDefault("api.user_agent", "BusinessPipeline/1.0 (recruiter@example.com)")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.retry_max_attempts", 3)
	v.SetDefault("api.retry_base_delay", "4s")
	v.SetDefault("api.retry_max_delay", "10s")
	v.SetDefault("output.path", "business_data_for_powerbi.csv")
	v.SetDefault("output.sample_path", "sample_orders.csv")
	v.SetDefault("log.file", "pipeline.log")
	v.SetDefault("server.addr", ":8084")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "report-topic")
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.cache_ttl", "1h")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults and environment variables apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.API.RetryMaxAttempts < 1 {
		return nil, fmt.Errorf("api.retry_max_attempts must be >= 1, got %d", cfg.API.RetryMaxAttempts)
	}

	return &cfg, nil
}
