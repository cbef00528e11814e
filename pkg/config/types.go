package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent hospitalchat configuration stored as
// config.toml in the .hospitalchat/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int         `toml:"version"`
	Agent   AgentConfig `toml:"agent"`
	Web     WebConfig   `toml:"web"`
	Log     LogConfig   `toml:"log"`
}

// AgentConfig holds settings for reaching the remote RAG agent endpoint.
type AgentConfig struct {
	// URL is the full endpoint URL the prompt is POSTed to.
	URL string `toml:"url,omitempty"`

	// Timeout is a Go duration string. Empty or "0s" means no timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// WebConfig holds settings for the browser front end.
type WebConfig struct {
	Listen string `toml:"listen,omitempty"`

	// MCP mounts the ask_hospital_agent MCP tool at /mcp.
	MCP bool `toml:"mcp,omitempty"`
}

// LogConfig holds settings for the rotating log file used by the TUI and
// web front ends.
type LogConfig struct {
	// File overrides the default <dotdir>/logs/<command>.log path.
	File string `toml:"file,omitempty"`

	// JSON switches file output to JSON lines.
	JSON bool `toml:"json,omitempty"`
}

// AgentTimeout parses Agent.Timeout. An empty value yields zero.
func (c *Config) AgentTimeout() (time.Duration, error) {
	return parseTimeout(c.Agent.Timeout)
}

func parseTimeout(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for agent.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid value for agent.timeout: %s is negative", v)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"agent.url": {
		get: func(c *Config) string { return c.Agent.URL },
		set: func(c *Config, v string) error {
			if err := ValidateAgentURL(v); err != nil {
				return err
			}
			c.Agent.URL = v
			return nil
		},
	},
	"agent.timeout": {
		get: func(c *Config) string { return c.Agent.Timeout },
		set: func(c *Config, v string) error {
			if _, err := parseTimeout(v); err != nil {
				return err
			}
			c.Agent.Timeout = v
			return nil
		},
	},
	"web.listen": {
		get: func(c *Config) string { return c.Web.Listen },
		set: func(c *Config, v string) error { c.Web.Listen = v; return nil },
	},
	"web.mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.Web.MCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for web.mcp: %w", err)
			}
			c.Web.MCP = b
			return nil
		},
	},
	"log.file": {
		get: func(c *Config) string { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
}
