// Package configcmder provides the config command for managing persistent
// hospitalchat configuration stored in the .hospitalchat/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent hospitalchat configuration.

Configuration is stored as config.toml in the .hospitalchat/ directory and
provides default values for command flags. CLI flags and environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  agent.url, agent.timeout,
  web.listen, web.mcp,
  log.file, log.json

Use subcommands to get, set, or list configuration values:
  hospitalchat config set <key> <value>    Set a configuration value
  hospitalchat config get <key>            Get a configuration value
  hospitalchat config list                 List all configuration values

Examples:
  hospitalchat config set agent.url http://localhost:8000/hospital-rag-agent
  hospitalchat config set agent.timeout 2m
  hospitalchat config get agent.url
  hospitalchat config list`

const configShortDesc string = "Manage persistent hospitalchat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
