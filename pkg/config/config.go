package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/hospitalchat/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewConfiger resolves config.toml through the dotdir precedence rules.
// When no directory resolves, the Configer only serves defaults.
func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{ddm: dotdir.NewManager()}

	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	return cfger.withTarget(target)
}

// NewWritableConfiger is like NewConfiger but creates ~/.hospitalchat/ when
// nothing else resolves, so SaveConfig always has somewhere to write.
func NewWritableConfiger(override string) (*Configer, error) {
	cfger := &Configer{ddm: dotdir.NewManager()}

	target, err := cfger.ddm.Ensure(override)
	if err != nil {
		return nil, err
	}

	return cfger.withTarget(target)
}

func (c *Configer) withTarget(target string) (*Configer, error) {
	// If no .hospitalchat/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return c, nil
	}

	path := filepath.Join(target, configFile)
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	c.targetPath = path
	return c, nil
}

// ValidConfigKeys returns the list of all supported configuration key names
// in TOML section order.
func ValidConfigKeys() []string {
	ordered := []string{
		"agent.url",
		"agent.timeout",
		"web.listen",
		"web.mcp",
		"log.file",
		"log.json",
	}

	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target
// .hospitalchat/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config.
// Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if cfg.Agent.URL == "" {
		cfg.Agent.URL = defaults.Agent.URL
	}
	if cfg.Web.Listen == "" {
		cfg.Web.Listen = defaults.Web.Listen
	}
}

// SaveConfig persists the configuration to config.toml in the target directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config for the named deployment preset.
// Supported presets: "local" (agent on localhost) and "compose" (agent
// reachable by its docker compose service name).
func PresetConfig(name string) (*Config, error) {
	switch strings.ToLower(name) {
	case "local":
		return NewDefaultConfig(), nil

	case "compose":
		cfg := NewDefaultConfig()
		cfg.Agent.URL = "http://chatbot_api:8000/hospital-rag-agent"
		cfg.Web.Listen = ":8501"
		cfg.Log.JSON = true
		return cfg, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"local", "compose"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	if _, err := cfg.AgentTimeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateAgentURL checks that u is an absolute http(s) URL.
func ValidateAgentURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid agent url %q: %w", u, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid agent url %q: scheme must be http or https", u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid agent url %q: missing host", u)
	}
	return nil
}
