// Package chatcmder provides the chat command, a line oriented REPL against
// the hospital RAG agent.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/hospitalchat/pkg/bootstrap"
	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/cliui"
	"github.com/papercomputeco/hospitalchat/pkg/config"
	"github.com/papercomputeco/hospitalchat/pkg/page"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
	titleStyle      = lipgloss.NewStyle().Bold(true)
	bannerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

const chatLongDesc string = `Start an interactive chat session with the hospital RAG agent.

Each line you type is sent to the agent as one question. The answer is
rendered as markdown, followed by how it was generated (the agent's
intermediate steps).

Commands:
  /examples    List the example questions
  /ask N       Ask example question N
  /history     Reprint this session's transcript
  /exit        Quit (Ctrl+D works too)

When stdin is not a terminal, each input line is answered in plain text,
which makes the command scriptable.

Examples:
  hospitalchat chat
  hospitalchat chat --agent-url http://chatbot_api:8000/hospital-rag-agent
  echo "Which hospitals are in the hospital system?" | hospitalchat chat`

const chatShortDesc string = "Interactive chat with the hospital RAG agent"

type chatCommander struct {
	agentURL string
	timeout  string

	in          io.Reader
	out         io.Writer
	interactive bool
	width       int

	session *chat.Session
	logger  *slog.Logger
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := bootstrap.Resolve(cmd, bootstrap.AgentFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.logger = bootstrap.ConsoleLogger(cmd, cmd.ErrOrStderr())
			cmder.interactive, cmder.width = detectTerminal(cmder.in)

			client, err := bootstrap.NewClient(cfg, cmder.logger)
			if err != nil {
				return err
			}
			cmder.session = chat.NewSession(client, nil, cmder.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return cmder.run(ctx)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAgentURL, &cmder.agentURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagAgentTimeout, &cmder.timeout)

	return cmd
}

// detectTerminal reports whether in is an interactive terminal and its width.
func detectTerminal(in io.Reader) (bool, int) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return true, cliui.DefaultWrap
	}
	return true, width
}

func (c *chatCommander) run(ctx context.Context) error {
	if c.interactive {
		c.printHeader()
	}

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, readErr := readLines(readCtx, c.in)

	for {
		if c.interactive {
			fmt.Fprint(c.out, userPrompt)
		}

		var line string
		select {
		case <-ctx.Done():
			if c.interactive {
				fmt.Fprintln(c.out)
			}
			return nil
		case l, ok := <-lines:
			if !ok {
				return c.finish(<-readErr)
			}
			line = l
		}

		input := strings.TrimSpace(line)
		if utils.IsBlank(input) {
			continue
		}

		switch input {
		case "/exit":
			return nil
		case "/examples":
			c.printExamples()
			continue
		case "/history":
			c.printHistory()
			continue
		}

		if arg, ok := strings.CutPrefix(input, "/ask "); ok {
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			q, found := page.Example(n)
			if err != nil || !found {
				msg := fmt.Sprintf("no example question %q, try /examples", strings.TrimSpace(arg))
				if c.interactive {
					msg = cliui.ErrorStyle.Render(msg)
				}
				fmt.Fprintf(c.out, "  %s\n\n", msg)
				continue
			}
			if !c.interactive {
				fmt.Fprintf(c.out, "you> %s\n", q)
			} else {
				fmt.Fprintf(c.out, "%s%s\n", userPrompt, q)
			}
			input = q
		}

		c.turn(ctx, input)
	}
}

func (c *chatCommander) finish(err error) error {
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if c.interactive {
		fmt.Fprintln(c.out)
	}
	return nil
}

// readLines scans in on its own goroutine so the REPL can stop on
// cancellation while a read is blocked. lines is closed at EOF, after which
// errc yields the scanner error (nil at a clean EOF). A read already blocked
// in in is abandoned when ctx ends.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(lines)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// turn submits one prompt and prints the reply.
func (c *chatCommander) turn(ctx context.Context, prompt string) {
	var reply chat.Reply

	if c.interactive {
		_ = cliui.Step(c.out, page.SpinnerText, func() error {
			reply = c.session.Submit(ctx, prompt)
			if reply.Failed {
				return fmt.Errorf("agent call failed")
			}
			return nil
		})
		fmt.Fprintln(c.out)
	} else {
		reply = c.session.Submit(ctx, prompt)
	}

	c.printReply(reply.Output, reply.Explanation, reply.Failed)
}

func (c *chatCommander) printHeader() {
	fmt.Fprintf(c.out, "\n  %s\n\n", titleStyle.Render(page.Title))
	fmt.Fprintf(c.out, "  %s\n\n", bannerStyle.Render(page.InfoBanner))
	fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(page.Placeholder))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type /examples for ideas, /ask N to ask one, /exit or Ctrl+D to quit."))
}

func (c *chatCommander) printExamples() {
	fmt.Fprintf(c.out, "\n  %s\n\n", titleStyle.Render(page.ExamplesHeader))
	for i, q := range page.Examples() {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.DimStyle.Render(fmt.Sprintf("%2d.", i+1)), q)
	}
	fmt.Fprintln(c.out)
}

func (c *chatCommander) printHistory() {
	msgs := c.session.Transcript().Messages()
	if len(msgs) == 0 {
		fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("No messages yet."))
		return
	}

	for _, m := range msgs {
		switch m.Role {
		case chat.RoleUser:
			if c.interactive {
				fmt.Fprintf(c.out, "%s%s\n", userPrompt, m.Output)
			} else {
				fmt.Fprintf(c.out, "you> %s\n", m.Output)
			}
		case chat.RoleAssistant:
			c.printReply(m.Output, m.Explanation, m.Failed)
		}
	}
}

func (c *chatCommander) printReply(output, explanation string, failed bool) {
	if !c.interactive {
		fmt.Fprintf(c.out, "%s\n", output)
		if explanation != "" {
			fmt.Fprintf(c.out, "\n%s:\n%s\n", page.ExplanationLabel, explanation)
		}
		fmt.Fprintln(c.out)
		return
	}

	fmt.Fprint(c.out, assistantPrompt)
	if failed {
		fmt.Fprintf(c.out, "%s\n\n", cliui.ErrorStyle.Render(output))
	} else {
		rendered, err := cliui.RenderMarkdown(output, c.width)
		if err != nil {
			c.logger.Debug("rendering markdown", "error", err)
		}
		fmt.Fprint(c.out, rendered)
	}

	if explanation != "" {
		fmt.Fprintf(c.out, "  %s\n", cliui.KeyStyle.Render(page.ExplanationLabel))
		for line := range strings.SplitSeq(explanation, "\n") {
			fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(line))
		}
	}
	fmt.Fprintln(c.out)
}
