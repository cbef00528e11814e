package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

var (
	askToolName    = "ask_hospital_agent"
	askDescription = "Ask the hospital system RAG agent a question about patients, visits, " +
		"insurance payers, hospitals, physicians, reviews, or wait times. Returns the answer " +
		"and a description of how it was generated."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to ask the hospital agent"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Output      string `json:"output"`
	Explanation string `json:"intermediate_steps"`
}

// handleAsk runs a single turn. Nothing is retained between calls.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	if utils.IsBlank(input.Question) {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "question must not be blank"},
			},
		}, AskOutput{}, nil
	}

	logger.Debug("MCP ask request", "question_len", len(input.Question))

	reply := chat.NewSession(s.config.Querier, nil, logger).Submit(ctx, input.Question)
	output := AskOutput{
		Output:      reply.Output,
		Explanation: reply.Explanation,
	}

	// Tools returning structured content also return the serialized JSON in
	// a TextContent block for older clients.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ask output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		IsError: reply.Failed,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
