package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string         `yaml:"http_addr"`
	Commerce CommerceConfig `yaml:"commerce"`
	Redis    RedisConfig    `yaml:"redis"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	LogLevel string         `yaml:"log_level"`
}

type CommerceConfig struct {
	BaseURL     string        `yaml:"base_url"`
	SiteID      string        `yaml:"site_id"`
	AccessToken string        `yaml:"access_token"`
	Timeout     time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	PoolSize int    `yaml:"pool_size"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

// Load reads the YAML config file when a path is given, then applies
// environment overrides on top. Env vars win so deployments can keep one
// file and vary per environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPAddr: ":8080",
		Commerce: CommerceConfig{
			SiteID:  "storefront",
			Timeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 100,
		},
		MySQL: MySQLConfig{
			DSN: "root:root@tcp(localhost:3306)/multiship?parseTime=true",
		},
		LogLevel: "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Commerce.BaseURL == "" {
		return nil, fmt.Errorf("commerce base URL is required (set commerce.base_url or COMMERCE_BASE_URL)")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setFromEnv(&cfg.Commerce.BaseURL, "COMMERCE_BASE_URL")
	setFromEnv(&cfg.Commerce.SiteID, "COMMERCE_SITE_ID")
	setFromEnv(&cfg.Commerce.AccessToken, "COMMERCE_ACCESS_TOKEN")
	setFromEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	setFromEnv(&cfg.MySQL.DSN, "MYSQL_DSN")
	setFromEnv(&cfg.LogLevel, "LOG_LEVEL")
}

func setFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
