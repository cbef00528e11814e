// Package askcmder provides the ask command, a single question against the
// hospital RAG agent.
package askcmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/hospitalchat/pkg/bootstrap"
	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/config"
	"github.com/papercomputeco/hospitalchat/pkg/page"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

// ErrFallback is returned when the agent call failed and the fallback
// message was printed, so the process exits non-zero.
var ErrFallback = errors.New("agent call failed")

const askLongDesc string = `Ask the hospital RAG agent a single question and print the answer.

The question is every argument joined with spaces. Nothing is retained
between invocations. The exit status is non-zero when the agent could not
answer and the fallback message was printed.

Examples:
  hospitalchat ask "Which hospitals are in the hospital system?"
  hospitalchat ask --explain What is the average billing amount for Medicaid visits?
  hospitalchat ask --json "What is the ID for physician James Cooper?"`

const askShortDesc string = "Ask the hospital RAG agent one question"

type askCommander struct {
	agentURL string
	timeout  string
	explain  bool
	json     bool

	out io.Writer
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:          "ask <question>",
		Short:        askShortDesc,
		Long:         askLongDesc,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if utils.IsBlank(prompt) {
				return errors.New("question must not be blank")
			}

			_, cfg, err := bootstrap.Resolve(cmd, bootstrap.AgentFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			log := bootstrap.ConsoleLogger(cmd, cmd.ErrOrStderr())
			client, err := bootstrap.NewClient(cfg, log)
			if err != nil {
				return err
			}

			cmder.out = cmd.OutOrStdout()
			reply := chat.NewSession(client, nil, log).Submit(cmd.Context(), prompt)
			return cmder.print(reply)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAgentURL, &cmder.agentURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagAgentTimeout, &cmder.timeout)
	cmd.Flags().BoolVarP(&cmder.explain, "explain", "e", false, "Also print how the answer was generated")
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the reply as a JSON object")

	return cmd
}

func (c *askCommander) print(reply chat.Reply) error {
	if c.json {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reply); err != nil {
			return fmt.Errorf("encoding reply: %w", err)
		}
	} else {
		fmt.Fprintln(c.out, reply.Output)
		if c.explain && reply.Explanation != "" {
			fmt.Fprintf(c.out, "\n%s:\n%s\n", page.ExplanationLabel, reply.Explanation)
		}
	}

	if reply.Failed {
		return ErrFallback
	}
	return nil
}
