package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"cmd"}, args...)
}

func TestParseJson_OverlaysPresentFields(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http":          ":8081",
		"storage_backend":             "bolt",
		"bolt_path":                   "/tmp/c.db",
		"dev_token_validity_duration": "2h",
	})
	withArgs(t, "-c", path)

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8081", c.EndpointAddrHTTP)
	assert.Equal(t, "bolt", c.StorageBackend)
	assert.Equal(t, "/tmp/c.db", c.BoltPath)
	assert.Equal(t, 2*time.Hour, c.DevTokenValidityDuration)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC, "absent keys keep defaults")
	assert.Equal(t, "9659829", c.DevPIN)
}

func TestParseJson_NoFlagNoop(t *testing.T) {
	withArgs(t)

	var c Config
	c.LoadDefaults()
	want := c
	parseJson(&c)
	assert.Equal(t, want, c)
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	withArgs(t, "-config", filepath.Join(t.TempDir(), "nope.json"))

	var c Config
	assert.Panics(t, func() { parseJson(&c) })
}

func TestParseJson_InvalidJSONPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	withArgs(t, "-c", path)

	var c Config
	assert.Panics(t, func() { parseJson(&c) })
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http": ":1111",
		"dev_pin":            "2222222",
		"storage_backend":    "sqlite",
	})
	t.Setenv("CYCLE_LOGIN_DEV_PIN", "3333333")
	withArgs(t, "-c", path, "-m", "memory")

	c := LoadConfig()

	assert.Equal(t, ":1111", c.EndpointAddrHTTP, "json over defaults")
	assert.Equal(t, "3333333", c.DevPIN, "env over json")
	assert.Equal(t, "memory", c.StorageBackend, "flags over everything")
}
