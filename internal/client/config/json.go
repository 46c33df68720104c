package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/askelund/proofdeck/internal/flagx"
	"github.com/askelund/proofdeck/internal/timex"
)

// JsonConfig is the DTO for JSON configuration files. Interval fields use
// timex.Duration so both "10s" and integer nanoseconds parse.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	OwnerSecret        string         `json:"owner_secret"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; if
// neither is set, nothing is loaded. Unreadable or invalid files panic.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.OwnerSecret = c.OwnerSecret
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
}
