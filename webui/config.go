// Package webui serves the browser front end for the hospital RAG agent.
package webui

import "time"

// Config is the web server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:8501")
	ListenAddr string

	// EnableMCP mounts the ask_hospital_agent MCP tool at /mcp
	EnableMCP bool

	// SessionTTL is how long an idle browser session keeps its transcript.
	// Defaults to DefaultSessionTTL.
	SessionTTL time.Duration
}

// DefaultSessionTTL matches the fiber session middleware default.
const DefaultSessionTTL = 24 * time.Hour
