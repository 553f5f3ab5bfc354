package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cyclelogin/internal/flagx"
	"github.com/dmitrijs2005/cyclelogin/internal/timex"
)

// JsonConfig is the on-disk form; durations accept "5s" or nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	Referrer           string         `json:"referrer"`
}

// parseJson overlays cfg with the file named by -c/-config. Empty values
// leave the current setting alone. Read and parse errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Referrer != "" {
		cfg.Referrer = jc.Referrer
	}
}
