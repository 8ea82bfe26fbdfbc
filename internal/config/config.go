// Package config loads the server configuration from a YAML file and applies
// environment overrides on top.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`
	Weather WeatherConfig `yaml:"weather" json:"weather"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type StorageConfig struct {
	// DataDir holds the JSON stores: the device-scoped snapshot file and
	// the account file.
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// SQLitePath is the synced per-user task database.
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

type AuthConfig struct {
	SessionTTL   time.Duration `yaml:"session_ttl" json:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie" json:"secure_cookie"`
}

type WeatherConfig struct {
	APIKey          string        `yaml:"api_key" json:"-"`
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/mytasks.db"
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = "https://api.weatherapi.com/v1"
	}
	if c.Weather.RefreshInterval == 0 {
		c.Weather.RefreshInterval = 15 * time.Minute
	}
}

// Load reads the YAML file at path. A missing file is not an error: the
// defaults plus environment overrides are a complete configuration.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	c.ApplyDefaults()
	c.applyEnv()
	return &c, nil
}
