package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	PublishersFile string `mapstructure:"publishers_file"`

	XplanaHost             string        `mapstructure:"xplana_host"`
	XplanaAPIVersion       string        `mapstructure:"xplana_api_version"`
	XplanaTrustedPartnerID string        `mapstructure:"xplana_trusted_partner_id"`
	XplanaTimeoutSeconds   int64         `mapstructure:"xplana_timeout_seconds"`
	XplanaTimeout          time.Duration `mapstructure:"-"`

	SyncIntervalSeconds int64         `mapstructure:"sync_interval"`
	SyncInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "xplana-catalog-sync")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("xplana_host", "")
	v.SetDefault("xplana_api_version", "0.8")
	v.SetDefault("xplana_trusted_partner_id", "")
	v.SetDefault("xplana_timeout_seconds", 30)
	v.SetDefault("sync_interval", 3600) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/catalog.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.XplanaHost = strings.TrimSpace(cfg.XplanaHost)
	if cfg.XplanaHost == "" {
		return nil, fmt.Errorf("xplana_host is required")
	}
	if strings.TrimSpace(cfg.XplanaTrustedPartnerID) == "" {
		return nil, fmt.Errorf("xplana_trusted_partner_id is required")
	}
	if cfg.XplanaTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid xplana_timeout_seconds (must be positive seconds)")
	}
	cfg.XplanaTimeout = time.Duration(cfg.XplanaTimeoutSeconds) * time.Second

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
