// Package bootstrap resolves configuration, logging and the agent client for
// the hospitalchat front end commands.
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/hospitalchat/pkg/agent"
	"github.com/papercomputeco/hospitalchat/pkg/config"
	"github.com/papercomputeco/hospitalchat/pkg/dotdir"
	"github.com/papercomputeco/hospitalchat/pkg/logger"
)

// AgentFlags are the registry keys every front end command binds.
var AgentFlags = []string{config.FlagAgentURL, config.FlagAgentTimeout}

// Resolve loads config.toml, the environment and the bound flags of cmd into
// a validated Config. The returned viper instance can be watched for changes.
func Resolve(cmd *cobra.Command, flagKeys []string) (*viper.Viper, *config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, nil, err
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, err
	}

	return v, cfg, nil
}

// NewClient builds an agent client from cfg.
func NewClient(cfg *config.Config, log *slog.Logger) (*agent.Client, error) {
	timeout, err := cfg.AgentTimeout()
	if err != nil {
		return nil, err
	}

	client, err := agent.NewClient(agent.Config{
		URL:     cfg.Agent.URL,
		Timeout: timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating agent client: %w", err)
	}

	return client, nil
}

// LogFile returns the log file path for a command: cfg.Log.File when set,
// otherwise <config-dir>/logs/<fileName>.
func LogFile(cfg *config.Config, configDir, fileName string) (string, error) {
	if cfg.Log.File != "" {
		return cfg.Log.File, nil
	}
	return dotdir.NewManager().LogPath(configDir, fileName)
}

// FileLogger builds a logger that writes only to the command's rotating log
// file, for front ends that own the terminal.
func FileLogger(cmd *cobra.Command, cfg *config.Config, fileName string) (*slog.Logger, string, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	path, err := LogFile(cfg, configDir, fileName)
	if err != nil {
		return nil, "", err
	}

	return logger.New(
		logger.WithDebug(debug),
		logger.WithSource(debug),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithFile(path),
	), path, nil
}

// ConsoleLogger builds a pretty logger on w for line-oriented commands.
func ConsoleLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(w),
	)
}
