// Package webcmder provides the web command, which serves the browser front
// end for the hospital RAG agent.
package webcmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/hospitalchat/pkg/agent"
	"github.com/papercomputeco/hospitalchat/pkg/bootstrap"
	"github.com/papercomputeco/hospitalchat/pkg/config"
	"github.com/papercomputeco/hospitalchat/pkg/logger"
	"github.com/papercomputeco/hospitalchat/webui"
)

const logFileName = "web.log"

const webLongDesc string = `Serve the Hospital System Chatbot in the browser.

Every browser session gets its own transcript, tracked with a session
cookie. Besides the page, the server exposes:

  POST /api/chat      {"text": "..."} -> {"output", "intermediate_steps"}
  GET  /api/history   this session's transcript
  GET  /ping          liveness check
  /mcp                MCP ask_hospital_agent tool (with --mcp)

Edits to the config file are picked up while running: a new agent.url
applies to the next question.

Examples:
  hospitalchat web
  hospitalchat web --listen 0.0.0.0:8501 --mcp
  CHATBOT_URL=http://chatbot_api:8000/hospital-rag-agent hospitalchat web`

const webShortDesc string = "Serve the browser chat front end"

type webCommander struct {
	agentURL string
	timeout  string
	listen   string
	mcp      bool
	logFile  string
	logJSON  bool

	logger *slog.Logger
}

func NewWebCmd() *cobra.Command {
	cmder := &webCommander{}

	cmd := &cobra.Command{
		Use:   "web",
		Short: webShortDesc,
		Long:  webLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAgentURL, &cmder.agentURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagAgentTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagWebListen, &cmder.listen)
	config.AddBoolFlag(cmd, config.Flags, config.FlagWebMCP, &cmder.mcp)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFile, &cmder.logFile)
	config.AddBoolFlag(cmd, config.Flags, config.FlagLogJSON, &cmder.logJSON)

	return cmd
}

func (c *webCommander) run(ctx context.Context, cmd *cobra.Command) error {
	keys := append([]string{
		config.FlagWebListen,
		config.FlagWebMCP,
		config.FlagLogFile,
		config.FlagLogJSON,
	}, bootstrap.AgentFlags...)

	v, cfg, err := bootstrap.Resolve(cmd, keys)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fileLog, logPath, err := bootstrap.FileLogger(cmd, cfg, logFileName)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	c.logger = logger.Multi(bootstrap.ConsoleLogger(cmd, cmd.ErrOrStderr()), fileLog)

	client, err := bootstrap.NewClient(cfg, c.logger)
	if err != nil {
		return err
	}

	server, err := webui.NewServer(webui.Config{
		ListenAddr: cfg.Web.Listen,
		EnableMCP:  cfg.Web.MCP,
	}, client, c.logger)
	if err != nil {
		return fmt.Errorf("creating web server: %w", err)
	}

	config.Watch(v, c.onConfigChange(server, client), func(err error) {
		c.logger.Warn("ignoring config change", "error", err)
	})

	c.logger.Info("hospital chatbot ready",
		"url", "http://"+cfg.Web.Listen,
		"agent_url", client.URL(),
		"log_file", logPath,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case <-ctx.Done():
		c.logger.Info("shutting down web server")
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return errors.New("web server stopped unexpectedly")
	}
}

// onConfigChange applies a reloaded config. Only the agent endpoint is
// swapped; listen address and MCP changes need a restart.
func (c *webCommander) onConfigChange(server *webui.Server, client *agent.Client) func(*config.Config) {
	return func(cfg *config.Config) {
		if err := server.SetAgentURL(cfg.Agent.URL); err != nil {
			c.logger.Warn("ignoring new agent url", "agent_url", cfg.Agent.URL, "error", err)
			return
		}
		c.logger.Debug("config reloaded", "agent_url", client.URL())
	}
}
