package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g. --agent-url
// on chat, tui, web and ask).
type Flag struct {
	// Name is the long flag name (e.g. "agent-url").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "agent.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagAgentURL     = "agent-url"
	FlagAgentTimeout = "agent-timeout"
	FlagWebListen    = "listen"
	FlagWebMCP       = "mcp"
	FlagLogFile      = "log-file"
	FlagLogJSON      = "log-json"
)

// Flags is the registry shared by every front end command.
var Flags = FlagSet{
	FlagAgentURL: {
		Name:        "agent-url",
		Shorthand:   "u",
		ViperKey:    "agent.url",
		Description: "RAG agent endpoint URL (env: CHATBOT_URL, HOSPITALCHAT_AGENT_URL)",
	},
	FlagAgentTimeout: {
		Name:        "timeout",
		ViperKey:    "agent.timeout",
		Description: "Per request timeout for the agent call, e.g. 2m (empty: none)",
	},
	FlagWebListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "web.listen",
		Description: "Address for the web front end to listen on",
	},
	FlagWebMCP: {
		Name:        "mcp",
		ViperKey:    "web.mcp",
		Description: "Expose the ask_hospital_agent MCP tool at /mcp",
	},
	FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "log.file",
		Description: "Rotating log file path (default: <config-dir>/logs/<command>.log)",
	},
	FlagLogJSON: {
		Name:        "log-json",
		ViperKey:    "log.json",
		Description: "Write JSON lines to the log file",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
