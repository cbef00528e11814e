package tuicmder

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/hospitalchat/pkg/chat"
	"github.com/papercomputeco/hospitalchat/pkg/page"
	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

const (
	minSidebarWidth = 28
	maxSidebarWidth = 44

	// below this width the sidebar is hidden regardless of the toggle
	sidebarBreakpoint = 90
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	userStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	asstStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	explainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dividerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	sidebarStyle  = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(lipgloss.Color("237"))
	mainPaneStyle = lipgloss.NewStyle().Padding(0, 1)
)

type keyMap struct {
	Submit  key.Binding
	Explain key.Binding
	Sidebar key.Binding
	PageUp  key.Binding
	PageDn  key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Explain, k.Sidebar, k.PageUp, k.PageDn, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Explain, k.Sidebar}, {k.PageUp, k.PageDn, k.Quit}}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
		Explain: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "explanations")),
		Sidebar: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "sidebar")),
		PageUp:  key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDn:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// replyMsg carries the result of one agent turn back to the UI.
type replyMsg struct {
	reply chat.Reply
}

type model struct {
	ctx     context.Context
	session *chat.Session

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	width       int
	height      int
	showSidebar bool
	expanded    bool
	pending     bool
	lastFailed  bool

	// glamour style name; "dark" in the terminal, "notty" in tests
	style    string
	rendered map[int]string
	sidebar  string
}

func newModel(ctx context.Context, session *chat.Session, style string) model {
	input := textinput.New()
	input.Placeholder = page.Placeholder
	input.Prompt = "› "
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("82"))),
	)

	return model{
		ctx:         ctx,
		session:     session,
		viewport:    viewport.New(),
		input:       input,
		spinner:     sp,
		help:        help.New(),
		keys:        defaultKeyMap(),
		showSidebar: true,
		style:       style,
		rendered:    map[int]string{},
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rendered = map[int]string{}
		m.sidebar = ""
		m.layout()
		m.refresh()
		return m, nil

	case replyMsg:
		m.pending = false
		m.lastFailed = msg.reply.Failed
		m.refresh()
		return m, m.input.Focus()

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Explain):
		m.expanded = !m.expanded
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		m.showSidebar = !m.showSidebar
		m.layout()
		m.rendered = map[int]string{}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDn):
		m.viewport.PageDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	// one blocking call per turn; typing is ignored while it runs
	if m.pending {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	prompt := strings.TrimSpace(m.input.Value())
	if utils.IsBlank(prompt) {
		return m, nil
	}

	m.pending = true
	m.input.Reset()
	m.input.Blur()
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, submitCmd(m.ctx, m.session, prompt))
}

// submitCmd runs one turn off the UI goroutine.
func submitCmd(ctx context.Context, session *chat.Session, prompt string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{reply: session.Submit(ctx, prompt)}
	}
}

func (m model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m model) render() string {
	if m.width == 0 {
		return "Loading..."
	}

	main := mainPaneStyle.Width(m.mainWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		m.footer(),
	))

	if !m.sidebarVisible() {
		return main
	}

	side := sidebarStyle.
		Width(m.sidebarWidth()).
		Height(m.height).
		Render(m.sidebarContent())

	return lipgloss.JoinHorizontal(lipgloss.Top, side, main)
}

func (m model) header() string {
	inner := m.innerWidth()
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(page.Title),
		bannerStyle.Width(inner).Render(page.InfoBanner),
		dividerStyle.Render(strings.Repeat("─", max(inner, 0))),
	)
}

func (m model) footer() string {
	inner := m.innerWidth()

	status := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.pending {
		status = m.spinner.View() + " " + mutedStyle.Render(page.SpinnerText)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		dividerStyle.Render(strings.Repeat("─", max(inner, 0))),
		m.input.View(),
		ansi.Truncate(status, inner, "…"),
	)
}

func (m model) sidebarContent() string {
	if m.sidebar != "" {
		return m.sidebar
	}
	return m.markdown(page.SidebarMarkdown(), m.sidebarWidth()-2)
}

// layout sizes the viewport and input to the current window.
func (m *model) layout() {
	inner := m.innerWidth()

	headerHeight := lipgloss.Height(m.header())
	footerHeight := 3

	m.viewport.SetWidth(inner)
	m.viewport.SetHeight(max(m.height-headerHeight-footerHeight, 1))
	m.input.SetWidth(max(inner-4, 10))

	if m.sidebarVisible() {
		m.sidebar = m.markdown(page.SidebarMarkdown(), m.sidebarWidth()-2)
	}
}

// refresh re-renders the transcript into the viewport, keeping the bottom
// pinned when the user has not scrolled up.
func (m *model) refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.transcriptView())
	if atBottom || m.pending {
		m.viewport.GotoBottom()
	}
}

func (m *model) transcriptView() string {
	msgs := m.session.Transcript().Messages()
	inner := m.innerWidth()

	if len(msgs) == 0 && !m.pending {
		return mutedStyle.Render("Ask a question below, or pick one from the examples.")
	}

	var b strings.Builder
	for i, msg := range msgs {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Width(inner).Render(msg.Output))
			b.WriteString("\n\n")

		case chat.RoleAssistant:
			b.WriteString(asstStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderAnswer(i, msg, inner))
			b.WriteString(m.renderExplanation(msg, inner))
			b.WriteString("\n")
		}
	}

	if m.pending {
		b.WriteString(m.spinner.View() + " " + mutedStyle.Render(page.SpinnerText))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *model) renderAnswer(idx int, msg chat.Message, width int) string {
	if msg.Failed {
		return failStyle.Width(width).Render(msg.Output) + "\n"
	}

	if cached, ok := m.rendered[idx]; ok {
		return cached
	}

	out := strings.Trim(m.markdown(msg.Output, width), "\n") + "\n"
	m.rendered[idx] = out
	return out
}

func (m model) renderExplanation(msg chat.Message, width int) string {
	if !msg.HasExplanation || msg.Explanation == "" {
		return ""
	}

	if !m.expanded {
		return labelStyle.Render("▸ "+page.ExplanationLabel) + mutedStyle.Render(" (tab)") + "\n"
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("▾ " + page.ExplanationLabel))
	b.WriteString("\n")
	b.WriteString(explainStyle.Width(width).Render(msg.Explanation))
	b.WriteString("\n")
	return b.String()
}

func (m model) markdown(md string, width int) string {
	if width <= 0 {
		return md
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m model) sidebarVisible() bool {
	return m.showSidebar && m.width >= sidebarBreakpoint
}

func (m model) sidebarWidth() int {
	return min(max(m.width/3, minSidebarWidth), maxSidebarWidth)
}

func (m model) mainWidth() int {
	if m.sidebarVisible() {
		// sidebar border takes one column
		return m.width - m.sidebarWidth() - 1
	}
	return m.width
}

func (m model) innerWidth() int {
	return max(m.mainWidth()-2, 10)
}
