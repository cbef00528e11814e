// Package tuicmder provides the tui command, a full screen terminal front end
// for the hospital RAG agent.
package tuicmder

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/hospitalchat/pkg/bootstrap"
	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/config"
)

const (
	logFileName = "tui.log"

	glamourStyle = "dark"
)

const tuiLongDesc string = `Open the full screen Hospital System Chatbot.

The left sidebar explains the chatbot and lists example questions. Type a
question and press enter; while the agent works a spinner is shown and
input is paused. Press tab to expand or collapse how each answer was
generated.

Logs are written to <config-dir>/logs/tui.log (or log.file) because the
terminal belongs to the UI.

Keys:
  enter        ask
  tab          toggle explanations
  ctrl+s       toggle sidebar
  pgup/pgdown  scroll the transcript
  esc, ctrl+c  quit

Examples:
  hospitalchat tui
  CHATBOT_URL=http://chatbot_api:8000/hospital-rag-agent hospitalchat tui`

const tuiShortDesc string = "Full screen terminal chat with the hospital RAG agent"

type tuiCommander struct {
	agentURL string
	timeout  string
	logFile  string
	logJSON  bool
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAgentURL, &cmder.agentURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagAgentTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFile, &cmder.logFile)
	config.AddBoolFlag(cmd, config.Flags, config.FlagLogJSON, &cmder.logJSON)

	return cmd
}

func (c *tuiCommander) run(cmd *cobra.Command) error {
	keys := append([]string{config.FlagLogFile, config.FlagLogJSON}, bootstrap.AgentFlags...)
	_, cfg, err := bootstrap.Resolve(cmd, keys)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, logPath, err := bootstrap.FileLogger(cmd, cfg, logFileName)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	client, err := bootstrap.NewClient(cfg, log)
	if err != nil {
		return err
	}

	log.Info("starting tui", "agent_url", client.URL(), "log_file", logPath)

	ctx := cmd.Context()
	session := chat.NewSession(client, nil, log)
	program := tea.NewProgram(newModel(ctx, session, glamourStyle), tea.WithContext(ctx))

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running tui: %w", err)
	}

	log.Info("tui closed", "messages", session.Transcript().Len())
	return nil
}
