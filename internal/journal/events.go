package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/inputkit/internal/events"
)

// Entry is one stored event
type Entry struct {
	ID       int64
	Session  string
	Recorded time.Time
	Device   string
	Tag      string
	Payload  string
}

// Channel returns the generic channel tag of the entry
func (e Entry) Channel() string {
	return events.GenericTag(e.Device, e.Tag)
}

// Session summarizes one recording session
type Session struct {
	ID    string
	First time.Time
	Last  time.Time
	Count int
}

// Filter narrows Entries
type Filter struct {
	Session string
	Device  string
	Limit   int
}

// Save stores ev under session
func (db *DB) Save(session string, at time.Time, ev events.Event) error {
	payload, err := json.Marshal(ev.Payload())
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", ev.Channel(), err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO events (session, recorded_ms, device, tag, payload) VALUES (?, ?, ?, ?, ?)`,
		session, at.UnixMilli(), ev.Device, ev.Tag, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// Entries returns the newest entries matching f, newest first
func (db *DB) Entries(f Filter) ([]Entry, error) {
	query := `
		SELECT id, session, recorded_ms, device, tag, payload
		FROM events
		WHERE (? = '' OR session = ?) AND (? = '' OR device = ?)
		ORDER BY recorded_ms DESC, id DESC
		LIMIT ?
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := db.conn.Query(query, f.Session, f.Session, f.Device, f.Device, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.ID, &e.Session, &ms, &e.Device, &e.Tag, &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Recorded = time.UnixMilli(ms)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Sessions lists recording sessions, most recent first
func (db *DB) Sessions() ([]Session, error) {
	rows, err := db.conn.Query(`
		SELECT session, MIN(recorded_ms), MAX(recorded_ms), COUNT(*)
		FROM events
		GROUP BY session
		ORDER BY MAX(recorded_ms) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var first, last int64
		if err := rows.Scan(&s.ID, &first, &last, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.First, s.Last = time.UnixMilli(first), time.UnixMilli(last)
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// Count returns the total number of stored events
func (db *DB) Count() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count)
	return count, err
}

// Prune deletes events recorded before cutoff and returns how many were removed
func (db *DB) Prune(cutoff time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM events WHERE recorded_ms < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return result.RowsAffected()
}
