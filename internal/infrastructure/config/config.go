package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Matching MatchingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// DSN builds the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// MatchingConfig holds matching engine settings.
// Threshold and the weight ensemble use the 0-100 composite score scale.
type MatchingConfig struct {
	Threshold          float64       // minimum composite score, 0-100
	TopK               int           // default result count for top-K mode
	CacheTTL           time.Duration // catalog snapshot TTL; 0 = explicit invalidation only
	WeightRatio        float64
	WeightPartialRatio float64
	WeightTokenSort    float64
	WeightTokenSet     float64
	WeightKeyword      float64
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MATCHER_ prefix (e.g., MATCHER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MATCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Matching: MatchingConfig{
			Threshold:          v.GetFloat64("matching.threshold"),
			TopK:               v.GetInt("matching.top_k"),
			CacheTTL:           v.GetDuration("matching.cache_ttl"),
			WeightRatio:        v.GetFloat64("matching.weight_ratio"),
			WeightPartialRatio: v.GetFloat64("matching.weight_partial_ratio"),
			WeightTokenSort:    v.GetFloat64("matching.weight_token_sort"),
			WeightTokenSet:     v.GetFloat64("matching.weight_token_set"),
			WeightKeyword:      v.GetFloat64("matching.weight_keyword"),
		},
	}

	if err := cfg.Matching.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks matching settings for scale mistakes. A threshold in
// (0,1] almost certainly means the caller is thinking in similarity
// ratios; reject it instead of silently rescaling.
func (c MatchingConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("matching.threshold must be in [0,100], got %v", c.Threshold)
	}
	if c.Threshold > 0 && c.Threshold <= 1 {
		return fmt.Errorf("matching.threshold %v looks like a 0-1 ratio; this configuration uses the 0-100 score scale", c.Threshold)
	}
	sum := c.WeightRatio + c.WeightPartialRatio + c.WeightTokenSort + c.WeightTokenSet + c.WeightKeyword
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("matching weights must sum to 1, got %v", sum)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "product-matcher")
	v.SetDefault("app.env", "development")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "higiplas")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("matching.threshold", 60.0)
	v.SetDefault("matching.top_k", 5)
	v.SetDefault("matching.cache_ttl", time.Duration(0))
	v.SetDefault("matching.weight_ratio", 0.2)
	v.SetDefault("matching.weight_partial_ratio", 0.2)
	v.SetDefault("matching.weight_token_sort", 0.3)
	v.SetDefault("matching.weight_token_set", 0.2)
	v.SetDefault("matching.weight_keyword", 0.1)
}
