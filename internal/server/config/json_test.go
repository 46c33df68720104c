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

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_LoadsFromFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":            "www.example:9000",
		"database_dsn":                  "proof.db",
		"secret_key":                    "my_secret_key",
		"owner_token_validity_duration": "30m",
		"access_mode":                   "none",
		"public_base_url":               "https://review.example.com",
		"s3_root_user":                  "user",
		"s3_root_password":              "password",
		"s3_bucket":                     "bucket",
		"s3_region":                     "region",
		"s3_base_endpoint":              "base_endpoint",
	})

	os.Args = []string{"testbin", "-config", pathFlag}

	cfg := &Config{}
	parseJson(cfg)

	assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "proof.db", cfg.DatabaseDSN)
	assert.Equal(t, "my_secret_key", cfg.SecretKey)
	assert.Equal(t, 30*time.Minute, cfg.OwnerTokenValidityDuration)
	assert.Equal(t, "none", cfg.AccessMode)
	assert.Equal(t, "https://review.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "user", cfg.S3RootUser)
	assert.Equal(t, "password", cfg.S3RootPassword)
	assert.Equal(t, "bucket", cfg.S3Bucket)
	assert.Equal(t, "region", cfg.S3Region)
	assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
}

func Test_parseJson_NoFlagLeavesConfigUntouched(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	before := *cfg

	parseJson(cfg)

	assert.Equal(t, before, *cfg)
}

func Test_parseJson_PanicsOnMissingFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-config", filepath.Join(t.TempDir(), "nope.json")}

	assert.Panics(t, func() {
		cfg := &Config{}
		parseJson(cfg)
	})
}
