// Package session holds the per-document conversation and challenge state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docinsight/internal/domain"
)

// Slot is one challenge question with the user's latest answer and its evaluation.
type Slot struct {
	Question   string             `json:"question"`
	Answer     string             `json:"answer,omitempty"`
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
}

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	ID        string                    `json:"id"`
	Document  domain.Document           `json:"-"`
	Summary   string                    `json:"summary"`
	CreatedAt time.Time                 `json:"created_at"`
	History   []domain.ConversationTurn `json:"history"`
	Challenge []Slot                    `json:"challenge"`
}

// Session is a single uploaded document with its Ask history and challenge
// set. All methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	doc       domain.Document
	summary   string
	createdAt time.Time
	history   []domain.ConversationTurn
	slots     []Slot

	// generation changes whenever the challenge set is replaced or reset
	generation uint64
}

func New(id string, doc domain.Document, summary string) *Session {
	return &Session{id: id, doc: doc, summary: summary, createdAt: time.Now().UTC()}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot) *Session {
	s := &Session{
		id:        snap.ID,
		doc:       snap.Document,
		summary:   snap.Summary,
		createdAt: snap.CreatedAt,
		history:   append([]domain.ConversationTurn(nil), snap.History...),
	}
	s.slots = copySlots(snap.Challenge)
	return s
}

func (s *Session) ID() string { return s.id }

// Document never changes after creation, so it is read without locking.
func (s *Session) Document() domain.Document { return s.doc }

func (s *Session) Summary() string { return s.summary }

// AppendTurn adds one Ask exchange to the history.
func (s *Session) AppendTurn(turn domain.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
}

// History returns a copy of the conversation so far, oldest first.
func (s *Session) History() []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ConversationTurn(nil), s.history...)
}

// SetQuestions replaces the challenge set, discarding previous answers and evaluations.
func (s *Session) SetQuestions(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.slots = make([]Slot, len(questions))
	for i, q := range questions {
		s.slots[i] = Slot{Question: q}
	}
}

func (s *Session) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.Question
	}
	return out
}

// Question returns the challenge question at index and the generation of
// the set it belongs to. Pass the generation to Record.
func (s *Session) Question(index int) (string, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndex(index); err != nil {
		return "", 0, err
	}
	return s.slots[index].Question, s.generation, nil
}

// Record stores answer and its evaluation in slot index, replacing earlier
// ones. It fails with domain.ErrInvalidInput when the set has been replaced
// or reset since generation was read.
func (s *Session) Record(index int, generation uint64, answer string, ev domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return fmt.Errorf("challenge set changed while answer %d was evaluated: %w", index, domain.ErrInvalidInput)
	}
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.slots[index].Answer = answer
	s.slots[index].Evaluation = &ev
	return nil
}

// ResetChallenge drops the question set with its answers and evaluations.
func (s *Session) ResetChallenge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.slots = nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.id,
		Document:  s.doc,
		Summary:   s.summary,
		CreatedAt: s.createdAt,
		History:   append([]domain.ConversationTurn(nil), s.history...),
		Challenge: copySlots(s.slots),
	}
}

func (s *Session) checkIndex(index int) error {
	if len(s.slots) == 0 {
		return fmt.Errorf("no challenge questions generated: %w", domain.ErrInvalidInput)
	}
	if index < 0 || index >= len(s.slots) {
		return fmt.Errorf("question index %d out of range [0,%d): %w", index, len(s.slots), domain.ErrInvalidInput)
	}
	return nil
}

func copySlots(in []Slot) []Slot {
	if in == nil {
		return nil
	}
	out := make([]Slot, len(in))
	for i, sl := range in {
		out[i] = sl
		if sl.Evaluation != nil {
			ev := *sl.Evaluation
			out[i].Evaluation = &ev
		}
	}
	return out
}

// Store keeps sessions by ID. Get returns domain.ErrNotFound for unknown IDs.
// Callers mutate the returned *Session and Save it to persist the change.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}
