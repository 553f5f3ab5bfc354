package config

import (
	"os"
	"strings"
)

// parseEnv overlays values from the environment.
//
//	PORT                   HTTP port; the HTTP address becomes ":"+PORT
//	CYCLE_LOGIN_DEV_PIN    override PIN
//	CYCLE_LOGIN_SECRET     dev token signing key
//	CYCLE_LOGIN_STORAGE    storage backend name
//	CYCLE_LOGIN_DATA_DIR   directory of the file backend
//	DATABASE_URL           PostgreSQL DSN
//	REDIS_URL              redis:// URL
//
// Unset or blank variables leave the current value alone.
func parseEnv(c *Config) {
	if port := getEnv("PORT", ""); port != "" {
		c.EndpointAddrHTTP = ":" + port
	}
	c.DevPIN = getEnv("CYCLE_LOGIN_DEV_PIN", c.DevPIN)
	c.SecretKey = getEnv("CYCLE_LOGIN_SECRET", c.SecretKey)
	c.StorageBackend = getEnv("CYCLE_LOGIN_STORAGE", c.StorageBackend)
	c.DataDir = getEnv("CYCLE_LOGIN_DATA_DIR", c.DataDir)
	c.DatabaseDSN = getEnv("DATABASE_URL", c.DatabaseDSN)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}
