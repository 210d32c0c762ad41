package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wikiqa/internal/domain"
)

// SessionPort is the TUI-facing subset of the session service.
type SessionPort interface {
	Process(ctx context.Context, url string) (string, error)
	Ask(ctx context.Context, question string) string
	History() []domain.ChatTurn
	Title() string
	Reset()
}

type state int

const (
	stateInput state = iota
	stateProcessing
	stateChat
)

type processedMsg struct {
	summary string
	err     error
}

type answeredMsg struct{}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	session  SessionPort
	state    state
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	summary  string
	status   string
	asking   bool
	ready    bool
	startURL string

	width        int
	height       int
	summaryLines int
}

// minLogHeight keeps a few history lines visible however long the summary is.
const minLogHeight = 3

// New creates a new TUI model. A non-empty url is processed on start.
func New(ctx context.Context, session SessionPort, url string) Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		ctx:      ctx,
		session:  session,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		startURL: strings.TrimSpace(url),
	}
	m.toInput("Paste a Fandom article URL and press Enter.")
	if m.startURL != "" {
		m.state = stateProcessing
		m.status = "Scraping, summarizing and indexing " + m.startURL
	}
	return m
}

// Init starts processing the initial URL, or blinks the cursor.
func (m Model) Init() tea.Cmd {
	if m.startURL != "" {
		return tea.Batch(m.spinner.Tick, m.process(m.startURL))
	}
	return textinput.Blink
}

// Update handles key, window and work completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case processedMsg:
		if msg.err != nil {
			m.toInput("Error: " + msg.err.Error())
			return m, nil
		}
		m.state = stateChat
		m.summary = msg.summary
		m.input.Reset()
		m.input.Placeholder = "Ask a question and press Enter"
		m.status = "Ready. ctrl+r to load another page."
		m.resize()
		return m, nil

	case answeredMsg:
		if m.state != stateChat {
			// reset while the question was in flight
			return m, nil
		}
		m.asking = false
		m.status = "Ready. ctrl+r to load another page."
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateProcessing && !m.asking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if m.state == stateProcessing {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+r":
			m.session.Reset()
			m.toInput("Session cleared. Paste a Fandom article URL and press Enter.")
			return m, nil
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			if value == "" || m.asking {
				return m, nil
			}
			if m.state == stateInput {
				m.state = stateProcessing
				m.status = "Scraping, summarizing and indexing " + value
				return m, tea.Batch(m.spinner.Tick, m.process(value))
			}
			m.asking = true
			m.input.Reset()
			m.status = "Thinking about " + fmt.Sprintf("%q", value)
			return m, tea.Batch(m.spinner.Tick, m.ask(value))
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout of the current state.
func (m Model) View() string {
	header := headerStyle.Render("Wiki QA")
	switch m.state {
	case stateProcessing:
		return header + "\n\n" + m.spinner.View() + " " + m.status + "\n"
	case stateChat:
		if !m.ready {
			return "Loading..."
		}
		title := titleStyle.Render(m.session.Title())
		status := statusStyle.Render(m.status)
		if m.asking {
			status = m.spinner.View() + " " + status
		}
		parts := []string{header + "  " + title}
		if summary := m.summaryView(); summary != "" {
			parts = append(parts, summary)
		}
		parts = append(parts,
			logBoxStyle.Render(m.viewport.View()),
			queryBoxStyle.Render(m.input.View()),
			status,
		)
		return strings.Join(parts, "\n")
	default:
		return header + "\n\n" + queryBoxStyle.Render(m.input.View()) + "\n" + statusStyle.Render(m.status)
	}
}

func (m *Model) toInput(status string) {
	m.state = stateInput
	m.summary = ""
	m.asking = false
	m.status = status
	m.input.Reset()
	m.input.Placeholder = "https://naruto.fandom.com/wiki/..."
	m.viewport.SetContent("")
}

func (m Model) process(url string) tea.Cmd {
	return func() tea.Msg {
		summary, err := m.session.Process(m.ctx, url)
		return processedMsg{summary: summary, err: err}
	}
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		m.session.Ask(m.ctx, question)
		return answeredMsg{}
	}
}

// resize fits the chat layout to the last window size. The summary is wrapped
// to the width and cut so the history box, input and status stay on screen.
func (m *Model) resize() {
	lw, lh := logBoxStyle.GetFrameSize()
	qw, qh := queryBoxStyle.GetFrameSize()
	chrome := 1 + lh + 1 + qh + 1 // title, log frame, input line and frame, status

	m.summaryLines = 0
	if m.summary != "" {
		wrapped := m.wrappedSummaryStyle().Render(m.summary)
		m.summaryLines = min(lipgloss.Height(wrapped), max(1, m.height-chrome-minLogHeight))
	}
	m.viewport.Width = max(20, m.width-lw)
	m.viewport.Height = max(minLogHeight, m.height-chrome-m.summaryLines)
	m.input.Width = max(10, m.width-qw-lipgloss.Width(m.input.Prompt)-1) // one cell for the cursor
	m.viewport.SetContent(m.renderHistory())
}

func (m Model) wrappedSummaryStyle() lipgloss.Style {
	return summaryStyle.Width(max(20, m.width-2))
}

func (m Model) summaryView() string {
	if m.summary == "" {
		return ""
	}
	st := m.wrappedSummaryStyle()
	if m.summaryLines > 0 {
		st = st.MaxHeight(m.summaryLines)
	}
	return st.Render(m.summary)
}

func (m Model) renderHistory() string {
	turns := m.session.History()
	if len(turns) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("Q: " + turn.Question))
		b.WriteString("\n")
		b.WriteString("A: " + turn.Answer)
	}
	return b.String()
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	summaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	logBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
