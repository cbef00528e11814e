// Package initcmder provides the init command for initializing a local
// .hospitalchat directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/hospitalchat/pkg/cliui"
	"github.com/papercomputeco/hospitalchat/pkg/config"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

const (
	dirName    = ".hospitalchat"
	configFile = "config.toml"

	fetchTimeout = 15 * time.Second
)

const initLongDesc string = `Initialize a new .hospitalchat/ directory in the current working directory.

Creates a local .hospitalchat/ directory that takes precedence over the
default ~/.hospitalchat/ directory, and writes a config.toml into it.

Without --preset an existing config.toml is left untouched. With --preset the
config is (re)written from the named preset or fetched from a URL.

Presets:
  local      Agent at http://localhost:8000/hospital-rag-agent (default)
  compose    Agent at http://chatbot_api:8000/hospital-rag-agent, web on :8501

Examples:
  hospitalchat init
  hospitalchat init --preset compose
  hospitalchat init --preset https://example.com/hospitalchat.toml`

const initShortDesc string = "Initialize a local .hospitalchat/ directory"

type initCommander struct {
	preset string
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Preset name ("+strings.Join(config.ValidPresetNames(), ", ")+") or URL of a config.toml")

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .hospitalchat directory: %w", err)
	}

	path := filepath.Join(dir, configFile)
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", statErr)
	}

	if exists && c.preset == "" {
		fmt.Fprintf(c.out, "Already initialized: %s\n", dir)
		return nil
	}

	cfg, err := c.resolvePreset(ctx)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s Initialized .hospitalchat directory: %s\n", cliui.SuccessMark, dir)
	fmt.Fprintf(c.out, "  %s\n", cliui.KeyValue("agent.url", cfg.Agent.URL))
	return nil
}

func (c *initCommander) resolvePreset(ctx context.Context) (*config.Config, error) {
	switch {
	case c.preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		return fetchRemoteConfig(ctx, c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

// fetchRemoteConfig downloads and validates a config.toml from url.
func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	req.Header.Set("User-Agent", utils.UserAgent())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	cfg, err := config.ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	if cfg.Agent.URL != "" {
		if err := config.ValidateAgentURL(cfg.Agent.URL); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
