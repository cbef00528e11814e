package mcp_test

import (
	"context"
	"encoding/json"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/hospitalchat/pkg/agent"
	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/logger"
	"github.com/papercomputeco/hospitalchat/webui/mcp"
)

type stubQuerier struct {
	resp *agent.Response
	err  error
}

func (s stubQuerier) Query(context.Context, string) (*agent.Response, error) {
	return s.resp, s.err
}

// connect wires an MCP client to server over in-memory transports.
func connect(ctx context.Context, server *mcp.Server) *sdkmcp.ClientSession {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	_, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	Expect(err).NotTo(HaveOccurred())

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(session.Close)
	return session
}

var _ = Describe("MCP Server", func() {
	Describe("NewServer", func() {
		It("returns an error when querier is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("querier is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Querier: stubQuerier{}})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("builds an HTTP handler", func() {
			server, err := mcp.NewServer(mcp.Config{Querier: stubQuerier{}, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("ask_hospital_agent", func() {
		var ctx context.Context

		BeforeEach(func() {
			ctx = context.Background()
		})

		It("is listed as a tool", func() {
			server, err := mcp.NewServer(mcp.Config{Querier: stubQuerier{}, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			tools, err := connect(ctx, server).ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(tools.Tools).To(HaveLen(1))
			Expect(tools.Tools[0].Name).To(Equal("ask_hospital_agent"))
		})

		It("returns the agent's answer and explanation", func() {
			server, err := mcp.NewServer(mcp.Config{
				Querier: stubQuerier{resp: &agent.Response{
					Output:            "Dr. James Cooper has ID 270.",
					IntermediateSteps: json.RawMessage(`"searched physicians"`),
				}},
				Logger: logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			res, err := connect(ctx, server).CallTool(ctx, &sdkmcp.CallToolParams{
				Name:      "ask_hospital_agent",
				Arguments: map[string]any{"question": "What is the ID for physician James Cooper?"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(res.Content).To(HaveLen(1))

			text, ok := res.Content[0].(*sdkmcp.TextContent)
			Expect(ok).To(BeTrue())

			var out mcp.AskOutput
			Expect(json.Unmarshal([]byte(text.Text), &out)).To(Succeed())
			Expect(out.Output).To(Equal("Dr. James Cooper has ID 270."))
			Expect(out.Explanation).To(Equal("searched physicians"))
		})

		It("flags failed calls and returns the fallback message", func() {
			server, err := mcp.NewServer(mcp.Config{
				Querier: stubQuerier{err: errors.New("boom")},
				Logger:  logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			res, err := connect(ctx, server).CallTool(ctx, &sdkmcp.CallToolParams{
				Name:      "ask_hospital_agent",
				Arguments: map[string]any{"question": "q"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(res.Content[0].(*sdkmcp.TextContent).Text).To(ContainSubstring(chat.FallbackMessage))
		})

		It("rejects blank questions", func() {
			server, err := mcp.NewServer(mcp.Config{Querier: stubQuerier{}, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			res, err := connect(ctx, server).CallTool(ctx, &sdkmcp.CallToolParams{
				Name:      "ask_hospital_agent",
				Arguments: map[string]any{"question": "   "},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})
	})
})
