package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ErgastBaseURL      string        `mapstructure:"ergast_base_url"`
	ErgastSeries       string        `mapstructure:"ergast_series"`
	UserAgent          string        `mapstructure:"user_agent"`
	RequestsPerSecond  float64       `mapstructure:"ergast_requests_per_second"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	QueriesFile         string        `mapstructure:"queries_file"`
	PublishersFile      string        `mapstructure:"publishers_file"`
	SyncIntervalSeconds int64         `mapstructure:"sync_interval"`
	SyncInterval        time.Duration `mapstructure:"-"`
	RunOnce             bool          `mapstructure:"run_once"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from configs/.env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "formula-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("ergast_base_url", "http://ergast.com/api")
	v.SetDefault("ergast_series", "f1")
	v.SetDefault("user_agent", "Mozilla/5.0")
	v.SetDefault("ergast_requests_per_second", 4) // 0 disables throttling
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("queries_file", "./configs/queries.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("sync_interval", 3600) // seconds
	v.SetDefault("run_once", false)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/records.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("invalid ergast_requests_per_second (must not be negative)")
	}

	if cfg.SyncIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid sync_interval (must be positive seconds)")
	}
	cfg.SyncInterval = time.Duration(cfg.SyncIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
