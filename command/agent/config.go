package agent

import (
	"fmt"
	"net"
)

// Config is the configuration for the catalogd agent.
type Config struct {
	// LogLevel is the level of the logs to put out
	LogLevel string `hcl:"log_level"`

	// LogJson enables log output in JSON format
	LogJson bool `hcl:"log_json"`

	// BindAddr is the address the HTTP server binds to
	BindAddr string `hcl:"bind_addr"`

	// HTTPPort is the port the HTTP server listens on
	HTTPPort int `hcl:"http_port"`

	// EnableDebug is used to enable debugging HTTP endpoints
	EnableDebug bool `hcl:"enable_debug"`
}

// DefaultConfig returns the baseline configuration. Values from a parsed
// configuration file are merged on top.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "INFO",
		BindAddr: "0.0.0.0",
		HTTPPort: 4646,
	}
}

// DevConfig returns a configuration suited for local development.
func DevConfig() *Config {
	conf := DefaultConfig()
	conf.BindAddr = "127.0.0.1"
	conf.LogLevel = "DEBUG"
	conf.EnableDebug = true
	return conf
}

// Merge returns a new config where non-zero fields of b override a's.
func (c *Config) Merge(b *Config) *Config {
	result := *c

	if b.LogLevel != "" {
		result.LogLevel = b.LogLevel
	}
	if b.LogJson {
		result.LogJson = true
	}
	if b.BindAddr != "" {
		result.BindAddr = b.BindAddr
	}
	if b.HTTPPort != 0 {
		result.HTTPPort = b.HTTPPort
	}
	if b.EnableDebug {
		result.EnableDebug = true
	}

	return &result
}

// HTTPAddr returns the host:port the HTTP server binds to.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.BindAddr, fmt.Sprintf("%d", c.HTTPPort))
}
