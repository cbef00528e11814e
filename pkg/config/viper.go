package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/papercomputeco/hospitalchat/pkg/dotdir"
)

const envPrefix = "HOSPITALCHAT"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the HOSPITALCHAT_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (HOSPITALCHAT_AGENT_URL, then CHATBOT_URL, ...)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
		if err := v.ReadInConfig(); err != nil {
			// Config file not found errors are fine, defaults will apply.
			if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The prefixed name wins over the legacy one when both are set.
	if err := v.BindEnv("agent.url", envPrefix+"_AGENT_URL", LegacyURLEnv); err != nil {
		return nil, fmt.Errorf("binding agent url env: %w", err)
	}

	return v, nil
}

// FromViper materializes a Config from the resolved viper values and
// validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Version: v.GetInt("version"),
		Agent: AgentConfig{
			URL:     strings.TrimSpace(v.GetString("agent.url")),
			Timeout: strings.TrimSpace(v.GetString("agent.timeout")),
		},
		Web: WebConfig{
			Listen: v.GetString("web.listen"),
			MCP:    v.GetBool("web.mcp"),
		},
		Log: LogConfig{
			File: v.GetString("log.file"),
			JSON: v.GetBool("log.json"),
		},
	}

	applyDefaults(cfg)

	if err := ValidateAgentURL(cfg.Agent.URL); err != nil {
		return nil, err
	}
	if _, err := cfg.AgentTimeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Watch re-reads the config file whenever it changes and hands the new
// Config to onChange. Invalid edits are reported through onError and the
// previous Config stays in effect. It is a no-op when no config file was
// read.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := FromViper(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reloading %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("agent.url", d.Agent.URL)
	v.SetDefault("agent.timeout", d.Agent.Timeout)

	v.SetDefault("web.listen", d.Web.Listen)
	v.SetDefault("web.mcp", d.Web.MCP)

	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.json", d.Log.JSON)
}
