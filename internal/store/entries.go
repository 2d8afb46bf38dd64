package store

import (
	"database/sql"
	"fmt"
	"time"
)

const entryColumns = `id, start_time, finish_time, work_seconds, overtime_seconds,
	standard_work_seconds, max_overtime_seconds, gross_pay_per_month, net_pay,
	created_at, updated_at`

// Upsert inserts e, or replaces the stored entry with the same ID.
// CreatedAt is kept from the first insert.
func (s *Store) Upsert(e WorkEntry) (*WorkEntry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	now := formatTime(time.Now())

	_, err := s.db.Exec(`
		INSERT INTO work_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_time            = excluded.start_time,
			finish_time           = excluded.finish_time,
			work_seconds          = excluded.work_seconds,
			overtime_seconds      = excluded.overtime_seconds,
			standard_work_seconds = excluded.standard_work_seconds,
			max_overtime_seconds  = excluded.max_overtime_seconds,
			gross_pay_per_month   = excluded.gross_pay_per_month,
			net_pay               = excluded.net_pay,
			updated_at            = excluded.updated_at`,
		e.ID, formatTime(e.Start), formatTime(e.Finish), e.WorkSeconds, e.OvertimeSeconds,
		e.StandardWorkSeconds, e.MaxOvertimeSeconds, e.GrossPayPerMonth, e.NetPay,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}
	s.notify()
	return s.GetEntry(e.ID)
}

// Delete removes the entry with the given ID. Deleting a missing entry is not an error.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM work_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.notify()
	}
	return nil
}

// DeleteAll removes every entry.
func (s *Store) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM work_entries`); err != nil {
		return fmt.Errorf("delete all entries: %w", err)
	}
	s.notify()
	return nil
}

// GetEntry returns the entry with the given ID, or nil if there is none.
func (s *Store) GetEntry(id string) (*WorkEntry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM work_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

// FetchOnDate returns the latest entry started on the calendar day of date,
// in date's location, or nil if there is none.
func (s *Store) FetchOnDate(date time.Time) (*WorkEntry, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	row := s.db.QueryRow(
		`SELECT `+entryColumns+` FROM work_entries
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time DESC LIMIT 1`,
		formatTime(from), formatTime(to),
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch entry on %s: %w", from.Format("2006-01-02"), err)
	}
	return e, nil
}

// FetchPeriod returns the entries overlapping [from, to), oldest first.
func (s *Store) FetchPeriod(from, to time.Time) ([]WorkEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+entryColumns+` FROM work_entries
		 WHERE start_time < ? AND finish_time >= ?
		 ORDER BY start_time ASC`,
		formatTime(to), formatTime(from),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch period: %w", err)
	}
	return collectEntries(rows)
}

// FetchRange returns entries whose start falls within the filter's bounds.
func (s *Store) FetchRange(f EntryFilter) ([]WorkEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM work_entries WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, formatTime(*f.To))
	}
	if f.Ascending {
		query += ` ORDER BY start_time ASC`
	} else {
		query += ` ORDER BY start_time DESC`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch range: %w", err)
	}
	return collectEntries(rows)
}

// FetchOldest returns the entry with the earliest start, or nil if the store is empty.
func (s *Store) FetchOldest() (*WorkEntry, error) {
	return s.fetchEdge("oldest", "ASC")
}

// FetchNewest returns the entry with the latest start, or nil if the store is empty.
func (s *Store) FetchNewest() (*WorkEntry, error) {
	return s.fetchEdge("newest", "DESC")
}

func (s *Store) fetchEdge(label, order string) (*WorkEntry, error) {
	row := s.db.QueryRow(`SELECT ` + entryColumns + ` FROM work_entries ORDER BY start_time ` + order + ` LIMIT 1`)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s entry: %w", label, err)
	}
	return e, nil
}

// CountEntries returns the number of stored entries.
func (s *Store) CountEntries() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM work_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*WorkEntry, error) {
	e := &WorkEntry{}
	var start, finish, createdAt, updatedAt string
	var netPay sql.NullFloat64

	err := row.Scan(&e.ID, &start, &finish, &e.WorkSeconds, &e.OvertimeSeconds,
		&e.StandardWorkSeconds, &e.MaxOvertimeSeconds, &e.GrossPayPerMonth, &netPay,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if netPay.Valid {
		e.NetPay = &netPay.Float64
	}
	e.Start, _ = time.Parse(time.RFC3339, start)
	e.Finish, _ = time.Parse(time.RFC3339, finish)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]WorkEntry, error) {
	defer rows.Close()

	var entries []WorkEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// formatTime stores instants as second-precision RFC 3339 UTC text, which
// sorts lexicographically in time order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
