// Package local is a sqlite-backed implementation of the calendar, notes,
// and reminders contracts. It keeps the server fully functional on hosts
// without an automation bridge and gives tests a real collaborator.
package local

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/search"
	_ "modernc.org/sqlite"
)

type Store struct {
	db      *sql.DB
	entropy *rand.Rand
	clock   func() time.Time
}

// NewStore opens or creates the provider database at the given path.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:   time.Now,
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		start_at      TEXT NOT NULL,
		end_at        TEXT NOT NULL,
		location      TEXT,
		notes         TEXT,
		calendar_name TEXT,
		is_all_day    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at);
	CREATE INDEX IF NOT EXISTS idx_events_end ON events(end_at);

	CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		content    TEXT NOT NULL,
		folder     TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder);

	CREATE TABLE IF NOT EXISTS reminder_lists (
		id   TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminders (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		body       TEXT NOT NULL DEFAULT '',
		completed  INTEGER NOT NULL DEFAULT 0,
		due_at     TEXT,
		list_id    TEXT NOT NULL REFERENCES reminder_lists(id),
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_list ON reminders(list_id);
	`

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.clock()), s.entropy).String()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// containsFold reports whether s contains pat under Unicode case folding.
func containsFold(s, pat string) bool {
	if pat == "" {
		return true
	}
	m := search.New(language.Und, search.IgnoreCase)
	start, _ := m.IndexString(s, pat)
	return start >= 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
