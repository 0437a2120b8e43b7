package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docinsight/internal/domain"
	"docinsight/internal/tokenize"
)

// SessionPort is the TUI-facing subset of the session service.
type SessionPort interface {
	Ask(ctx context.Context, id, question string) (domain.ConversationTurn, error)
	GenerateQuestions(ctx context.Context, id string) ([]string, error)
	EvaluateAnswer(ctx context.Context, id string, index int, answer string) (domain.Evaluation, error)
}

type mode int

const (
	modeAsk mode = iota
	modeChallenge
)

// Model is the Bubble Tea model for the interactive document session.
type Model struct {
	ctx       context.Context
	service   SessionPort
	sessionID string
	title     string
	summary   string

	mode     mode
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool

	turns       []domain.ConversationTurn
	questions   []string
	answers     []string
	evaluations []*domain.Evaluation
	cursor      int
}

// New creates a TUI bound to one session.
func New(ctx context.Context, service SessionPort, sessionID, title, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0
	m := Model{
		ctx:       ctx,
		service:   service,
		sessionID: sessionID,
		title:     title,
		summary:   summary,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    "Ask anything about the document. Tab switches to Challenge mode.",
	}
	m.input.Placeholder = m.placeholder()
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, input box, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.toggleMode()
			return m, nil
		case "ctrl+r":
			if m.mode == modeChallenge {
				m.generate()
				return m, nil
			}
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if m.mode == modeAsk {
				m.ask(text)
			} else {
				m.evaluate(text)
			}
			m.input.SetValue("")
			m.refresh()
			return m, nil
		case "up":
			if m.mode == modeChallenge && len(m.questions) > 0 {
				m.cursor = (m.cursor - 1 + len(m.questions)) % len(m.questions)
				m.refresh()
				return m, nil
			}
		case "down":
			if m.mode == modeChallenge && len(m.questions) > 0 {
				m.cursor = (m.cursor + 1) % len(m.questions)
				m.refresh()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleMode() {
	if m.mode == modeAsk {
		m.mode = modeChallenge
		if len(m.questions) == 0 {
			m.generate()
		} else {
			m.status = "Challenge mode. Answer the highlighted question."
		}
	} else {
		m.mode = modeAsk
		m.status = "Ask mode."
	}
	m.input.Placeholder = m.placeholder()
	m.refresh()
}

func (m *Model) ask(question string) {
	turn, err := m.service.Ask(m.ctx, m.sessionID, question)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.turns = append(m.turns, turn)
	m.status = fmt.Sprintf("Answered %q", question)
}

func (m *Model) generate() {
	qs, err := m.service.GenerateQuestions(m.ctx, m.sessionID)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.questions = qs
	m.answers = make([]string, len(qs))
	m.evaluations = make([]*domain.Evaluation, len(qs))
	m.cursor = 0
	m.status = "Challenge mode. Answer the highlighted question. Ctrl+R for new questions."
	m.refresh()
}

func (m *Model) evaluate(userAnswer string) {
	if len(m.questions) == 0 {
		m.status = "No questions yet. Press Ctrl+R to generate them."
		return
	}
	ev, err := m.service.EvaluateAnswer(m.ctx, m.sessionID, m.cursor, userAnswer)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.answers[m.cursor] = userAnswer
	m.evaluations[m.cursor] = &ev
	m.status = fmt.Sprintf("Question %d scored %d/10", m.cursor+1, ev.Score)
	if m.cursor < len(m.questions)-1 {
		m.cursor++
	}
}

func (m Model) placeholder() string {
	if m.mode == modeChallenge {
		return "Type your answer and press Enter"
	}
	return "Type a question and press Enter"
}

func (m *Model) refresh() {
	if m.mode == modeAsk {
		m.viewport.SetContent(m.renderConversation())
	} else {
		m.viewport.SetContent(m.renderChallenge())
	}
	m.viewport.GotoBottom()
}

// View renders the TUI layout and current mode.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	modeName := "Ask"
	if m.mode == modeChallenge {
		modeName = "Challenge"
	}
	header := lipgloss.NewStyle().Bold(true).Render(m.title + "  [" + modeName + "]")
	summary := dimStyle.Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	if len(m.turns) == 0 {
		return "No questions asked yet."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("Q: " + t.Question))
		b.WriteString("\n")
		b.WriteString(highlightBestSentence(t.Answer, t.Question))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(t.Justification))
	}
	return b.String()
}

func (m Model) renderChallenge() string {
	if len(m.questions) == 0 {
		return "No challenge questions yet."
	}
	var b strings.Builder
	for i, q := range m.questions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		line := fmt.Sprintf("%d. %s", i+1, q)
		if i == m.cursor {
			line = highlightStyle.Render("▸ " + line)
		}
		b.WriteString(line)
		if m.answers[i] != "" {
			b.WriteString("\n   Your answer: " + m.answers[i])
		}
		if ev := m.evaluations[i]; ev != nil {
			b.WriteString(fmt.Sprintf("\n   Score %d/10. %s", ev.Score, ev.Feedback))
			b.WriteString("\n   " + dimStyle.Render(ev.Justification))
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// highlightBestSentence emphasizes the sentence of text sharing the most
// content words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := splitSentences(text)
	q := tokenize.Set(query)
	if len(q) == 0 || len(sentences) < 2 {
		return strings.Join(sentences, " ")
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := tokenize.Overlap(q, tokenize.Set(s)); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

// splitSentences is a display-only split at ". ", "! " and "? ".
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if (text[i] == '.' || text[i] == '!' || text[i] == '?') && text[i+1] == ' ' {
			out = append(out, strings.TrimSpace(text[start:i+1]))
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
