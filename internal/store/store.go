package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB

	mu     sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, subs: make(map[int]chan struct{})}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	s.mu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Subscribe returns a channel that receives a signal after every committed
// change to the work entries. Signals coalesce: a slow reader sees at least
// one pending signal, never a backlog. Call cancel to stop receiving.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS work_entries (
		id                     TEXT PRIMARY KEY,
		start_time             TEXT NOT NULL,
		finish_time            TEXT NOT NULL,
		work_seconds           INTEGER NOT NULL DEFAULT 0,
		overtime_seconds       INTEGER NOT NULL DEFAULT 0,
		standard_work_seconds  INTEGER NOT NULL,
		max_overtime_seconds   INTEGER NOT NULL DEFAULT 0,
		gross_pay_per_month    REAL NOT NULL DEFAULT 0,
		net_pay                REAL,
		created_at             TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at             TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		CHECK (finish_time >= start_time),
		CHECK (work_seconds >= 0 AND overtime_seconds >= 0)
	);

	CREATE INDEX IF NOT EXISTS idx_work_entries_start  ON work_entries(start_time);
	CREATE INDEX IF NOT EXISTS idx_work_entries_finish ON work_entries(finish_time);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS state (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('work_seconds',          '28800'),
		('max_overtime_seconds',  '7200'),
		('logging_overtime',      'true'),
		('gross_pay_per_month',   '0'),
		('sending_notification',  'true'),
		('calculating_net_pay',   'false'),
		('net_pay_deduction',     '0.3'),
		('week_start',            'monday');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/worktime/worktime.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "worktime", "worktime.db"), nil
}
