package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PutState writes value to the slot named key, replacing whatever was there.
func (s *Store) PutState(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put state %q: %w", key, err)
	}
	return nil
}

// GetState returns the slot's content, or nil if the slot is empty.
func (s *Store) GetState(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) DeleteState(key string) error {
	if _, err := s.db.Exec(`DELETE FROM state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	return nil
}
