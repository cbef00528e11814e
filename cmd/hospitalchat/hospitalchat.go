// Package hospitalchatcmder
package hospitalchatcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/ask"
	chatcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/chat"
	configcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/config"
	initcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/init"
	tuicmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/tui"
	webcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat/web"
	versioncmder "github.com/papercomputeco/hospitalchat/cmd/version"
)

const hospitalchatLongDesc string = `hospitalchat is a chat front end for the Hospital System RAG agent.

Ask questions about patients, visits, insurance payers, hospitals,
physicians, reviews, and wait times. Every question is forwarded to the
agent endpoint (CHATBOT_URL, default http://localhost:8000/hospital-rag-agent).

Front ends:
  hospitalchat chat       Line oriented chat in the terminal
  hospitalchat tui        Full screen terminal UI
  hospitalchat web        Browser page (and optional MCP tool)
  hospitalchat ask "..."  One question, one answer`

const hospitalchatShortDesc string = "hospitalchat - Hospital System Chatbot"

func NewHospitalchatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hospitalchat",
		Short: hospitalchatShortDesc,
		Long:  hospitalchatLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .hospitalchat/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())
	cmd.AddCommand(webcmder.NewWebCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
