package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docinsight/internal/domain"
	"docinsight/internal/logger"
	"docinsight/internal/metrics"
	"docinsight/internal/session"
)

// SessionService runs the upload, ask and challenge workflow over stored sessions.
type SessionService struct {
	engine  domain.Engine
	store   session.Store
	log     *logger.Logger
	metrics *metrics.Metrics
	newID   func() string
}

func NewSessionService(engine domain.Engine, store session.Store, log *logger.Logger, m *metrics.Metrics) *SessionService {
	return &SessionService{
		engine:  engine,
		store:   store,
		log:     logger.OrNop(log),
		metrics: m,
		newID:   func() string { return uuid.NewString() },
	}
}

// Upload creates a session for a document and summarizes it.
func (s *SessionService) Upload(ctx context.Context, name, text string) (*session.Session, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("upload %q: empty document: %w", name, domain.ErrInvalidInput)
	}
	id := s.newID()
	summary := s.engine.Summarize(text)
	sess := session.New(id, domain.Document{ID: id, Name: name, Text: text}, summary)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("upload %q: %w", name, err)
	}
	s.metrics.RecordSession()
	s.log.Info("session created", "session", id, "document", name, "chars", len(text))
	return sess, summary, nil
}

// Ask answers a free-form question and appends the exchange to the history.
func (s *SessionService) Ask(ctx context.Context, id, question string) (domain.ConversationTurn, error) {
	if strings.TrimSpace(question) == "" {
		return domain.ConversationTurn{}, fmt.Errorf("ask: empty question: %w", domain.ErrInvalidInput)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.ConversationTurn{}, err
	}
	ans, just := s.engine.Answer(ctx, question, sess.Document().Text, sess.History())
	turn := domain.ConversationTurn{Question: question, Answer: ans, Justification: just}
	sess.AppendTurn(turn)
	if err := s.store.Save(ctx, sess); err != nil {
		return domain.ConversationTurn{}, fmt.Errorf("ask: %w", err)
	}
	return turn, nil
}

// GenerateQuestions replaces the session's challenge set.
func (s *SessionService) GenerateQuestions(ctx context.Context, id string) ([]string, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	questions := s.engine.GenerateChallengeQuestions(sess.Document().Text)
	sess.SetQuestions(questions)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	s.log.Debug("challenge generated", "session", id, "questions", len(questions))
	return questions, nil
}

// EvaluateAnswer grades an answer to challenge question index and stores both.
func (s *SessionService) EvaluateAnswer(ctx context.Context, id string, index int, userAnswer string) (domain.Evaluation, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Evaluation{}, err
	}
	question, generation, err := sess.Question(index)
	if err != nil {
		return domain.Evaluation{}, err
	}
	ev := s.engine.Evaluate(ctx, question, userAnswer, sess.Document().Text)
	if err := sess.Record(index, generation, userAnswer, ev); err != nil {
		return domain.Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return domain.Evaluation{}, fmt.Errorf("evaluate answer: %w", err)
	}
	return ev, nil
}

func (s *SessionService) History(ctx context.Context, id string) (session.Snapshot, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *SessionService) ResetChallenge(ctx context.Context, id string) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.ResetChallenge()
	return s.store.Save(ctx, sess)
}

// Sessions lists stored session IDs.
func (s *SessionService) Sessions(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}
