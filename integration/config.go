package integration

import (
	"strings"
)

// Config controls initialization and wiring behavior.
type Config struct {
	// Viper key overrides applied last (highest precedence).
	Overrides map[string]any
}

func DefaultConfig() Config {
	return Config{
		Overrides: map[string]any{},
	}
}

func (c *Config) Set(key string, value any) {
	if c == nil {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if c.Overrides == nil {
		c.Overrides = map[string]any{}
	}
	c.Overrides[key] = value
}
