package sqlite

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zia/pkg/domain/interfaces"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = goerr.New("not found")

// SQLite is a repository backed by a single SQLite database file
type SQLite struct {
	db        *sql.DB
	knowledge *knowledgeRepository
}

var _ interfaces.Repository = &SQLite{}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS knowledge (
		id         TEXT PRIMARY KEY,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		topic      TEXT,
		confidence REAL NOT NULL DEFAULT 0,
		source     TEXT NOT NULL DEFAULT 'local',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_knowledge_topic ON knowledge(topic)`,
}

// New opens (creating if needed) the database at path and ensures the schema exists.
// It is safe to call on every start.
func New(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	dsn := "file:" + path + "?" + params.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate sqlite database", goerr.V("path", path))
	}

	return &SQLite{
		db:        db,
		knowledge: newKnowledgeRepository(db),
	}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema statement")
		}
	}
	return nil
}

func (s *SQLite) Knowledge() interfaces.KnowledgeRepository {
	return s.knowledge
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
