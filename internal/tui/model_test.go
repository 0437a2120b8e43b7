package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docinsight/internal/domain"
)

type fakePort struct {
	asked     []string
	generated int
	evaluated []int
	failAsk   bool
}

func (f *fakePort) Ask(_ context.Context, _ string, q string) (domain.ConversationTurn, error) {
	if f.failAsk {
		return domain.ConversationTurn{}, errors.New("boom")
	}
	f.asked = append(f.asked, q)
	return domain.ConversationTurn{Question: q, Answer: "According to the document, Paris.", Justification: "one section"}, nil
}

func (f *fakePort) GenerateQuestions(context.Context, string) ([]string, error) {
	f.generated++
	return []string{"q1", "q2", "q3"}, nil
}

func (f *fakePort) EvaluateAnswer(_ context.Context, _ string, index int, _ string) (domain.Evaluation, error) {
	f.evaluated = append(f.evaluated, index)
	return domain.Evaluation{Score: 7, Feedback: "Good answer!", Justification: "j"}, nil
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeAndEnter(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func newTestModel(port *fakePort) Model {
	return New(context.Background(), port, "sid", "Paris Notes", "A short summary.")
}

func TestModel_AskMode(t *testing.T) {
	port := &fakePort{}
	m := newTestModel(port)
	assert.Equal(t, "Loading...", m.View())

	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeAndEnter(t, m, "What is the capital?")
	assert.Equal(t, []string{"What is the capital?"}, port.asked)
	require.Len(t, m.turns, 1)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Paris Notes  [Ask]")

	m = typeAndEnter(t, m, "   ")
	assert.Len(t, port.asked, 1, "blank input is ignored")
}

func TestModel_AskError(t *testing.T) {
	m := send(t, newTestModel(&fakePort{failAsk: true}), tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeAndEnter(t, m, "Anything?")
	assert.Equal(t, "Error: boom", m.status)
	assert.Empty(t, m.turns)
}

func TestModel_ChallengeMode(t *testing.T) {
	port := &fakePort{}
	m := send(t, newTestModel(port), tea.WindowSizeMsg{Width: 80, Height: 30})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeChallenge, m.mode)
	assert.Equal(t, 1, port.generated)
	assert.Equal(t, []string{"q1", "q2", "q3"}, m.questions)

	m = typeAndEnter(t, m, "my answer")
	assert.Equal(t, []int{0}, port.evaluated)
	require.NotNil(t, m.evaluations[0])
	assert.Equal(t, 7, m.evaluations[0].Score)
	assert.Equal(t, 1, m.cursor, "cursor advances after an answer")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.cursor)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 2, port.generated)
	assert.Nil(t, m.evaluations[0], "regeneration clears evaluations")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeAsk, m.mode)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 2, port.generated, "existing questions are kept when switching back")
}

func TestHighlightBestSentence(t *testing.T) {
	assert.Equal(t, "", highlightBestSentence("", "q"))
	assert.Equal(t, "One sentence.", highlightBestSentence("One sentence.", "sentence"))
	got := highlightBestSentence("Cats sleep. Paris is the capital.", "capital Paris")
	assert.Contains(t, got, "Cats sleep.")
	assert.Contains(t, got, "Paris is the capital.")
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"A b.", "C d?", "E"}, splitSentences("A b. C d? E"))
	assert.Equal(t, []string{"3.14 is pi."}, splitSentences("3.14 is pi."))
}
