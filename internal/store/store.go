package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/codedrill/ent"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the ent client and provides access to repositories.
//
// Every codedrill process on the machine opens the same database file, so
// the store doubles as the storage shared between sessions.
type Store struct {
	db        *sql.DB
	client    *ent.Client
	seq       *sequenceCounter
	sessionID string
}

// Open connects to the SQLite database file at path, creating the ent
// schema and the raw tables used for cross-process coordination.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", pragmaDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		db:        db,
		client:    ent.NewClient(ent.Driver(entsql.OpenDB(dialect.SQLite, db))),
		sessionID: uuid.NewString(),
	}
	if err := s.migrate(context.Background()); err != nil {
		s.client.Close()
		return nil, err
	}
	return s, nil
}

// migrate brings every table this package touches up to date. All steps
// are idempotent so concurrent sessions may race through them.
func (s *Store) migrate(ctx context.Context) error {
	if err := s.client.Schema.Create(ctx); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	seq, err := newSequenceCounter(s.db)
	if err != nil {
		return err
	}
	s.seq = seq
	return migrateHandoffSlots(s.db)
}

// Client returns the underlying ent client.
func (s *Store) Client() *ent.Client {
	return s.client
}

// SessionID identifies this Store instance in the events it records.
func (s *Store) SessionID() string {
	return s.sessionID
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{client: s.client, db: s.db, seq: s.seq, sessionID: s.sessionID}
}

// HandoffRepo returns a HandoffRepo backed by this store.
func (s *Store) HandoffRepo() HandoffRepo {
	return &handoffRepo{db: s.db}
}

// pragmas let several sessions share one database file. They travel in the
// DSN so the driver applies them to every pooled connection.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

func pragmaDSN(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// DefaultDBPath is $CODEDRILL_DB when set, otherwise codedrill.db under the
// XDG data directory. Its parent directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("CODEDRILL_DB")
	if p == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(dataHome, "codedrill", "codedrill.db")
	}
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
