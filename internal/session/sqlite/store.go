// Package sqlite persists sessions in a SQLite database using modernc.org/sqlite,
// a pure Go driver. The schema is managed by the embedded migrations.
//
// Loaded sessions are cached so concurrent callers share one *session.Session
// and its lock; Save writes the session's current snapshot through to disk.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"docinsight/internal/domain"
	"docinsight/internal/session"
	"docinsight/internal/session/sqlite/migrations"
)

// DBFile is the database file name inside the data directory.
const DBFile = "sessions.db"

type Store struct {
	db   *sql.DB
	path string

	// mu orders writes so the last write always carries the newest snapshot
	mu   sync.Mutex
	live map[string]*session.Session
}

var _ session.Store = (*Store)(nil)

// NewStore opens or creates the session database in dataDir.
// An empty dataDir defaults to ~/.docinsight/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docinsight", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, DBFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: dbPath, live: make(map[string]*session.Session)}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.ID() == "" {
		return fmt.Errorf("save session: missing id: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := sess.Snapshot()
	history, err := json.Marshal(snap.History)
	if err != nil {
		return fmt.Errorf("marshalling history: %w", err)
	}
	challenge, err := json.Marshal(snap.Challenge)
	if err != nil {
		return fmt.Errorf("marshalling challenge: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, text, summary, history, challenge, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			history = excluded.history,
			challenge = excluded.challenge,
			updated_at = excluded.updated_at
	`, snap.ID, snap.Document.Name, snap.Document.Text, snap.Summary,
		string(history), string(challenge), snap.CreatedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving session %s: %w", snap.ID, err)
	}
	s.live[snap.ID] = sess
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.live[id]; ok {
		return sess, nil
	}

	var (
		snap               session.Snapshot
		history, challenge string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, text, summary, history, challenge, created_at
		FROM sessions WHERE id = ?
	`, id).Scan(&snap.ID, &snap.Document.Name, &snap.Document.Text, &snap.Summary, &history, &challenge, &snap.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	snap.Document.ID = snap.ID
	if err := json.Unmarshal([]byte(history), &snap.History); err != nil {
		return nil, fmt.Errorf("unmarshalling history: %w", err)
	}
	if err := json.Unmarshal([]byte(challenge), &snap.Challenge); err != nil {
		return nil, fmt.Errorf("unmarshalling challenge: %w", err)
	}
	sess := session.Restore(snap)
	s.live[id] = sess
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	delete(s.live, id)
	if n == 0 {
		return fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns session IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM sessions ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
