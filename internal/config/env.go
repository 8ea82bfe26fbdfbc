package config

import (
	"os"
	"time"
)

// applyEnv layers MYTASKS_* environment variables over the file values.
// Unset variables leave the file value in place.
func (c *Config) applyEnv() {
	if v := os.Getenv("MYTASKS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MYTASKS_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("MYTASKS_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("MYTASKS_WEATHER_API_KEY"); v != "" {
		c.Weather.APIKey = v
	}
	if v := os.Getenv("MYTASKS_WEATHER_BASE_URL"); v != "" {
		c.Weather.BaseURL = v
	}
	if d := getEnvDuration("MYTASKS_WEATHER_REFRESH"); d > 0 {
		c.Weather.RefreshInterval = d
	}
	if d := getEnvDuration("MYTASKS_SESSION_TTL"); d > 0 {
		c.Auth.SessionTTL = d
	}
	if v := os.Getenv("MYTASKS_COOKIE_SECURE"); v == "1" || v == "true" {
		c.Auth.SecureCookie = true
	}
}

func getEnvDuration(key string) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}
