// Package config handles configuration for the terminal client: defaults,
// JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the proofdeck terminal client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP endpoint.
//   - OwnerSecret: server secret exchanged for an owner-session token; only
//     needed for the creator surface (project list, creation).
//   - RequestTimeout: per-request timeout for API calls. The watch stream is
//     exempt; it lives until its context is cancelled.
type Config struct {
	ServerEndpointAddr string
	OwnerSecret        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:8080"
	c.OwnerSecret = ""
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
