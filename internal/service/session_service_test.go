package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docinsight/internal/domain"
	"docinsight/internal/logger"
	"docinsight/internal/session"
	"docinsight/internal/session/memory"
	"docinsight/internal/session/sqlite"
)

func newTestSessionService(t *testing.T) *SessionService {
	t.Helper()
	svc := NewSessionService(newTestEngine(t, nil), memory.NewStore(), logger.Nop(), nil)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	return svc
}

func TestSessionService_Workflow(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)

	sess, summary, err := svc.Upload(ctx, "paris.txt", parisDoc)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sess.ID())
	assert.Equal(t, parisDoc, summary)

	turn, err := svc.Ask(ctx, sess.ID(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Contains(t, turn.Answer, "Paris")

	qs, err := svc.GenerateQuestions(ctx, sess.ID())
	require.NoError(t, err)
	require.Len(t, qs, 3)

	ev, err := svc.EvaluateAnswer(ctx, sess.ID(), 0, "Paris is the capital of France and it is known for the Eiffel Tower.")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ev.Score, 4)

	snap, err := svc.History(ctx, sess.ID())
	require.NoError(t, err)
	require.Len(t, snap.History, 1)
	assert.Equal(t, turn, snap.History[0])
	require.Len(t, snap.Challenge, 3)
	assert.Equal(t, ev, *snap.Challenge[0].Evaluation)
	assert.Nil(t, snap.Challenge[1].Evaluation)

	require.NoError(t, svc.ResetChallenge(ctx, sess.ID()))
	snap, err = svc.History(ctx, sess.ID())
	require.NoError(t, err)
	assert.Empty(t, snap.Challenge)
	assert.Len(t, snap.History, 1, "reset keeps the conversation")
}

func TestSessionService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)

	_, _, err := svc.Upload(ctx, "empty.txt", "  \n ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Ask(ctx, "nope", "What?")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GenerateQuestions(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.History(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.ResetChallenge(ctx, "nope"), domain.ErrNotFound)

	sess, _, err := svc.Upload(ctx, "paris.txt", parisDoc)
	require.NoError(t, err)

	_, err = svc.Ask(ctx, sess.ID(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.EvaluateAnswer(ctx, sess.ID(), 0, "answer")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no questions generated yet")

	_, err = svc.GenerateQuestions(ctx, sess.ID())
	require.NoError(t, err)
	_, err = svc.EvaluateAnswer(ctx, sess.ID(), 3, "answer")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionService_ConcurrentAsk(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)
	sess, _, err := svc.Upload(ctx, "paris.txt", parisDoc)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Ask(ctx, sess.ID(), "What is the capital of France?")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := svc.History(ctx, sess.ID())
	require.NoError(t, err)
	assert.Len(t, snap.History, 20)
}

func TestSessionService_SQLitePersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := sqlite.NewStore(dir)
	require.NoError(t, err)
	svc := NewSessionService(newTestEngine(t, nil), store, nil, nil)
	sess, _, err := svc.Upload(ctx, "paris.txt", parisDoc)
	require.NoError(t, err)
	_, err = svc.Ask(ctx, sess.ID(), "What is the capital of France?")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := sqlite.NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	svc = NewSessionService(newTestEngine(t, nil), reopened, nil, nil)
	snap, err := svc.History(ctx, sess.ID())
	require.NoError(t, err)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, parisDoc, snap.Document.Text)
}

func TestSessionService_Sessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)

	ids, err := svc.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for i := 0; i < 2; i++ {
		_, _, err := svc.Upload(ctx, "paris.txt", parisDoc)
		require.NoError(t, err)
	}
	ids, err = svc.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-1", "session-2"}, ids)
}

// regeneratingEngine replaces the session's questions while an answer is scored.
type regeneratingEngine struct {
	domain.Engine
	sess *session.Session
}

func (e regeneratingEngine) Evaluate(ctx context.Context, question, userAnswer, text string) domain.Evaluation {
	e.sess.SetQuestions([]string{"new1", "new2", "new3"})
	return domain.Evaluation{Score: 5, Feedback: "ok"}
}

func TestSessionService_EvaluateAnswerRejectsRegeneratedSet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sess := session.New("s1", domain.Document{ID: "s1", Name: "paris.txt", Text: parisDoc}, parisDoc)
	sess.SetQuestions([]string{"old1", "old2", "old3"})
	require.NoError(t, store.Save(ctx, sess))

	svc := NewSessionService(regeneratingEngine{sess: sess}, store, nil, nil)
	_, err := svc.EvaluateAnswer(ctx, "s1", 0, "answer to old1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	snap, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "new1", snap.Challenge[0].Question)
	assert.Empty(t, snap.Challenge[0].Answer)
	assert.Nil(t, snap.Challenge[0].Evaluation)
}
