package webui

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/page"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

// ChatRequest is the JSON body accepted by POST /api/chat. It mirrors the
// body sent to the agent.
type ChatRequest struct {
	Text string `json:"text"`
}

// HistoryResponse is returned by GET /api/history.
type HistoryResponse struct {
	Messages []chat.Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type indexData struct {
	Title            string
	AboutHeader      string
	About            template.HTML
	ExamplesHeader   string
	Examples         []string
	InfoBanner       string
	Placeholder      string
	SpinnerText      string
	ExplanationLabel string
	Messages         []messageView
}

type messageView struct {
	User        bool
	Body        template.HTML
	Explanation string
	Failed      bool
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	transcript, err := s.sessionTranscript(c)
	if err != nil {
		s.logger.Error("resolving session", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("session unavailable")
	}

	data := indexData{
		Title:            page.Title,
		AboutHeader:      page.AboutHeader,
		About:            s.markdown.render(page.About),
		ExamplesHeader:   page.ExamplesHeader,
		Examples:         page.Examples(),
		InfoBanner:       page.InfoBanner,
		Placeholder:      page.Placeholder,
		SpinnerText:      page.SpinnerText,
		ExplanationLabel: page.ExplanationLabel,
	}

	for _, msg := range transcript.Messages() {
		data.Messages = append(data.Messages, s.messageView(msg))
	}

	var buf bytes.Buffer
	if err := s.index.Execute(&buf, data); err != nil {
		s.logger.Error("rendering page", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("render failed")
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) messageView(msg chat.Message) messageView {
	if msg.Role == chat.RoleUser {
		return messageView{
			User: true,
			Body: template.HTML(template.HTMLEscapeString(msg.Output)), //nolint:gosec // escaped
		}
	}

	view := messageView{
		Explanation: msg.Explanation,
		Failed:      msg.Failed,
	}
	if msg.Failed {
		view.Body = template.HTML(template.HTMLEscapeString(msg.Output)) //nolint:gosec // escaped
	} else {
		view.Body = s.markdown.render(msg.Output)
	}
	return view
}

// handleChatForm runs one turn from the page form and redirects back to the
// page so a refresh does not resubmit.
func (s *Server) handleChatForm(c *fiber.Ctx) error {
	prompt := c.FormValue("prompt")
	if utils.IsBlank(prompt) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	transcript, err := s.sessionTranscript(c)
	if err != nil {
		s.logger.Error("resolving session", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("session unavailable")
	}

	s.submit(c, transcript, prompt)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// handleChatAPI runs one turn for a JSON client. Agent failures are not HTTP
// errors here: the reply carries the fallback message, as on the page.
func (s *Server) handleChatAPI(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if utils.IsBlank(req.Text) {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "text is required"})
	}

	transcript, err := s.sessionTranscript(c)
	if err != nil {
		s.logger.Error("resolving session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "session unavailable"})
	}

	reply := s.submit(c, transcript, req.Text)
	return c.JSON(reply)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	transcript, err := s.sessionTranscript(c)
	if err != nil {
		s.logger.Error("resolving session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "session unavailable"})
	}

	return c.JSON(HistoryResponse{Messages: transcript.Messages()})
}

func (s *Server) submit(c *fiber.Ctx, transcript *chat.Transcript, prompt string) chat.Reply {
	session := chat.NewSession(s.querier, transcript, s.logger)
	reply := session.Submit(c.UserContext(), prompt)

	s.logger.Debug("turn complete",
		"failed", reply.Failed,
		"elapsed", reply.Elapsed,
		"messages", transcript.Len(),
	)
	return reply
}
