package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cyclelogin/internal/flagx"
	"github.com/dmitrijs2005/cyclelogin/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "24h" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP         string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC         string         `json:"endpoint_addr_grpc"`
	LogLevel                 string         `json:"log_level"`
	SecretKey                string         `json:"secret_key"`
	DevPIN                   string         `json:"dev_pin"`
	DevTokenValidityDuration timex.Duration `json:"dev_token_validity_duration"`
	StorageBackend           string         `json:"storage_backend"`
	DataDir                  string         `json:"data_dir"`
	BoltPath                 string         `json:"bolt_path"`
	SQLitePath               string         `json:"sqlite_path"`
	DatabaseDSN              string         `json:"database_dsn"`
	RedisURL                 string         `json:"redis_url"`
	RedisPrefix              string         `json:"redis_prefix"`
	S3RootUser               string         `json:"s3_root_user"`
	S3RootPassword           string         `json:"s3_root_password"`
	S3Bucket                 string         `json:"s3_bucket"`
	S3Region                 string         `json:"s3_region"`
	S3BaseEndpoint           string         `json:"s3_base_endpoint"`
	S3Prefix                 string         `json:"s3_prefix"`
}

// parseJson overlays the file named by -c/-config. Fields missing from the
// file keep their current value. An unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.DevPIN, c.DevPIN)
	if c.DevTokenValidityDuration.Duration > 0 {
		config.DevTokenValidityDuration = c.DevTokenValidityDuration.Duration
	}
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DataDir, c.DataDir)
	setString(&config.BoltPath, c.BoltPath)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3Prefix, c.S3Prefix)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
