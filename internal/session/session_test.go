package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docinsight/internal/domain"
)

func newTestSession() *Session {
	return New("s1", domain.Document{ID: "s1", Name: "paris.txt", Text: "Paris is the capital of France."}, "Paris is the capital of France.")
}

func TestSession_History(t *testing.T) {
	s := newTestSession()
	s.AppendTurn(domain.ConversationTurn{Question: "q1", Answer: "a1"})
	s.AppendTurn(domain.ConversationTurn{Question: "q2", Answer: "a2"})

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, "q1", h[0].Question)

	h[0].Question = "mutated"
	assert.Equal(t, "q1", s.History()[0].Question, "History returns a copy")
}

func TestSession_ConcurrentAppend(t *testing.T) {
	s := newTestSession()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AppendTurn(domain.ConversationTurn{Question: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.History(), 50)
}

func TestSession_Challenge(t *testing.T) {
	s := newTestSession()
	err := s.Record(0, 0, "answer", domain.Evaluation{Score: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no questions yet")

	s.SetQuestions([]string{"q1", "q2", "q3"})
	_, gen, err := s.Question(1)
	require.NoError(t, err)
	require.NoError(t, s.Record(1, gen, "first try", domain.Evaluation{Score: 3}))
	require.NoError(t, s.Record(1, gen, "second try", domain.Evaluation{Score: 7}))

	assert.ErrorIs(t, s.Record(3, gen, "x", domain.Evaluation{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.Record(-1, gen, "x", domain.Evaluation{}), domain.ErrInvalidInput)

	q, _, err := s.Question(2)
	require.NoError(t, err)
	assert.Equal(t, "q3", q)

	snap := s.Snapshot()
	require.Len(t, snap.Challenge, 3)
	assert.Equal(t, "second try", snap.Challenge[1].Answer)
	assert.Equal(t, 7, snap.Challenge[1].Evaluation.Score)
	assert.Nil(t, snap.Challenge[0].Evaluation)

	s.SetQuestions([]string{"n1", "n2", "n3"})
	snap = s.Snapshot()
	assert.Equal(t, "n2", snap.Challenge[1].Question)
	assert.Nil(t, snap.Challenge[1].Evaluation, "regeneration discards evaluations")

	s.ResetChallenge()
	assert.Empty(t, s.Questions())
}

func TestSession_RecordRejectsReplacedSet(t *testing.T) {
	tests := []struct {
		name    string
		replace func(s *Session)
	}{
		{"regenerated", func(s *Session) { s.SetQuestions([]string{"new1", "new2", "new3"}) }},
		{"regenerated with same questions", func(s *Session) { s.SetQuestions([]string{"old1", "old2", "old3"}) }},
		{"reset then regenerated", func(s *Session) {
			s.ResetChallenge()
			s.SetQuestions([]string{"new1", "new2", "new3"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			s.SetQuestions([]string{"old1", "old2", "old3"})
			_, gen, err := s.Question(0)
			require.NoError(t, err)

			tt.replace(s)

			err = s.Record(0, gen, "answer to old1", domain.Evaluation{Score: 5})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			slot := s.Snapshot().Challenge[0]
			assert.Empty(t, slot.Answer)
			assert.Nil(t, slot.Evaluation)
		})
	}
}

func TestRestore(t *testing.T) {
	s := newTestSession()
	s.AppendTurn(domain.ConversationTurn{Question: "q", Answer: "a"})
	s.SetQuestions([]string{"q1", "q2", "q3"})
	_, gen, err := s.Question(0)
	require.NoError(t, err)
	require.NoError(t, s.Record(0, gen, "ans", domain.Evaluation{Score: 4}))

	snap := s.Snapshot()
	r := Restore(snap)
	assert.Equal(t, snap, r.Snapshot())
	assert.Equal(t, "paris.txt", r.Document().Name)
	assert.Equal(t, s.Summary(), r.Summary())

	// the restored session does not share evaluation pointers with the snapshot
	snap.Challenge[0].Evaluation.Score = 9
	assert.Equal(t, 4, r.Snapshot().Challenge[0].Evaluation.Score)
}
