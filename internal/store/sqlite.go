// internal/store/sqlite.go
//
// SQLite implementation of Store, so games survive a server restart.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Persisting each session as its target plus the ordered guessed words;
//     feedback, keyboard and outcome are recomputed on load by game.Restore.
//
// Writes are serialized by a store-wide mutex; SQLite allows one writer at a
// time anyway, and it keeps read-modify-write of a session atomic.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordly/internal/game"
)

//go:embed migrations/*.sql
var migrations embed.FS

// tsLayout is fixed width so timestamps compare correctly as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

type sqliteStore struct {
	db   *sql.DB
	dict game.Dictionary
	mu   sync.Mutex
}

// OpenSQLite opens (and creates if missing) the database at path, applies
// migrations and returns a Store. dict is attached to restored sessions.
func OpenSQLite(path string, dict game.Dictionary) (Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db, dict: dict}, nil
}

// openDB ensures the parent directory exists and configures pragmas.
func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies migrations/*.sql in lexical order, each inside its own
// transaction, skipping files already recorded in _migrations.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		name := filepath.Base(f)

		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlText, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlText)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

func (s *sqliteStore) Create(ctx context.Context, sess *game.Session) (string, error) {
	id := NewID()
	now := time.Now().UTC().Format(tsLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, target, guesses, outcome, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		id, sess.Target(), joinWords(sess.Words()), string(sess.Outcome()), now, now)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (s *sqliteStore) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	sess, err := s.load(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := fn(sess); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET target=?, guesses=?, outcome=?, updated_at=? WHERE id=?`,
		sess.Target(), joinWords(sess.Words()), string(sess.Outcome()),
		time.Now().UTC().Format(tsLayout), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return tx.Commit()
}

func (s *sqliteStore) View(ctx context.Context, id string, fn func(*game.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(ctx, s.db, id)
	if err != nil {
		return err
	}
	return fn(sess)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqliteStore) load(ctx context.Context, q queryer, id string) (*game.Session, error) {
	var target, guesses string
	err := q.QueryRowContext(ctx, `SELECT target, guesses FROM sessions WHERE id=?`, id).Scan(&target, &guesses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess, err := game.Restore(target, splitWords(guesses), s.dict)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	return sess, nil
}

func (s *sqliteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`,
		before.UTC().Format(tsLayout))
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// Words are a–z only, so a comma is a safe separator.
func joinWords(ws []string) string { return strings.Join(ws, ",") }

func splitWords(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
