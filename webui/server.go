package webui

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/papercomputeco/hospitalchat/pkg/agent"
	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/webui/mcp"
)

// SessionCookie is the cookie that identifies a browser session.
const SessionCookie = "hospitalchat_session"

//go:embed templates/*
var templateFS embed.FS

// Server is the browser front end for the hospital RAG agent.
type Server struct {
	config      Config
	client      *agent.Client
	querier     chat.Querier
	logger      *slog.Logger
	app         *fiber.App
	store       *session.Store
	transcripts *transcripts
	markdown    *markdownRenderer
	index       *template.Template
}

// NewServer creates a new web server. The client is shared by every browser
// session and by the MCP tool.
func NewServer(config Config, client *agent.Client, logger *slog.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.New("agent client is required")
	}
	return newServer(config, client, client, logger)
}

func newServer(config Config, client *agent.Client, querier chat.Querier, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = DefaultSessionTTL
	}

	index, err := template.ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	// Prompts and session IDs outlive the request in transcripts, so fiber
	// must hand out copies instead of views into reused fasthttp buffers.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	s := &Server{
		config:  config,
		client:  client,
		querier: querier,
		logger:  logger,
		app:     app,
		store: session.New(session.Config{
			Expiration:     config.SessionTTL,
			KeyLookup:      "cookie:" + SessionCookie,
			CookieHTTPOnly: true,
			CookieSameSite: "Lax",
		}),
		transcripts: newTranscripts(config.SessionTTL),
		markdown:    newMarkdownRenderer(),
		index:       index,
	}

	app.Get("/", s.handleIndex)
	app.Post("/chat", s.handleChatForm)
	app.Post("/api/chat", s.handleChatAPI)
	app.Get("/api/history", s.handleHistory)
	app.Get("/ping", s.handlePing)

	if config.EnableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Querier: querier,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the web server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting web server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.EnableMCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the web server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(10 * time.Second)
}

// SetAgentURL points subsequent turns at a new agent endpoint.
func (s *Server) SetAgentURL(u string) error {
	if s.client == nil {
		return errors.New("no agent client configured")
	}
	if u == s.client.URL() {
		return nil
	}
	if err := s.client.SetURL(u); err != nil {
		return err
	}
	s.logger.Info("agent url changed", "agent_url", u)
	return nil
}

// sessionTranscript resolves the caller's browser session and returns its
// transcript, issuing a session cookie on first contact.
func (s *Server) sessionTranscript(c *fiber.Ctx) (*chat.Transcript, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if sess.Fresh() {
		sess.Set("started", time.Now().Unix())
	}
	id := sess.ID()

	if err := sess.Save(); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	return s.transcripts.get(id), nil
}
