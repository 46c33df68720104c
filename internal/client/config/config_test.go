package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.ServerEndpointAddr, "http://localhost:8080")
	assert.Equal(t, c.OwnerSecret, "")
	assert.Equal(t, c.RequestTimeout, 10*time.Second)
}
