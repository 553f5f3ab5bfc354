package config

import "time"

// Config holds runtime settings for the client.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration

	// Referrer is sent with every recorded visit.
	Referrer string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
	c.Referrer = "cli"
}

// LoadConfig applies defaults, then JSON (if present), then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
