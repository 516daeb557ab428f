// Package storage keeps serialized saves in named SQLite slots.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no slot matches.
var ErrNotFound = errors.New("save slot not found")

const schema = `
CREATE TABLE IF NOT EXISTS save_slots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL,
	round      INTEGER NOT NULL,
	turn       INTEGER NOT NULL,
	phase      TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS save_slots_created ON save_slots (created_at);
`

// Slot is one stored save.
type Slot struct {
	ID        string
	Name      string
	SessionID string
	Round     int
	Turn      int
	Phase     string
	Payload   []byte
	CreatedAt time.Time
}

// Store provides SQLite-backed save slots.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens (creating if needed) the database at path. ":memory:" gives a private
// in-memory store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// each connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put writes slot under its name, replacing any previous save with that name.
// A fresh ID and timestamp are assigned.
func (s *Store) Put(ctx context.Context, slot Slot) (Slot, error) {
	if err := ctx.Err(); err != nil {
		return Slot{}, err
	}
	slot.Name = strings.TrimSpace(slot.Name)
	if slot.Name == "" {
		return Slot{}, fmt.Errorf("slot name is required")
	}
	if len(slot.Payload) == 0 {
		return Slot{}, fmt.Errorf("slot payload is required")
	}
	slot.ID = uuid.NewString()
	slot.CreatedAt = s.now().UTC()

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO save_slots (id, name, session_id, round, turn, phase, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	id = excluded.id,
	session_id = excluded.session_id,
	round = excluded.round,
	turn = excluded.turn,
	phase = excluded.phase,
	payload = excluded.payload,
	created_at = excluded.created_at
`,
		slot.ID,
		slot.Name,
		slot.SessionID,
		slot.Round,
		slot.Turn,
		slot.Phase,
		slot.Payload,
		slot.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Slot{}, fmt.Errorf("put slot %q: %w", slot.Name, err)
	}
	return slot, nil
}

// Get returns the slot with the given name.
func (s *Store) Get(ctx context.Context, name string) (Slot, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, session_id, round, turn, phase, payload, created_at
FROM save_slots WHERE name = ?
`, name)
	slot, err := scanSlot(row)
	if err != nil {
		return Slot{}, fmt.Errorf("get slot %q: %w", name, err)
	}
	return slot, nil
}

// Latest returns the most recently written slot.
func (s *Store) Latest(ctx context.Context) (Slot, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, session_id, round, turn, phase, payload, created_at
FROM save_slots ORDER BY created_at DESC, rowid DESC LIMIT 1
`)
	slot, err := scanSlot(row)
	if err != nil {
		return Slot{}, fmt.Errorf("latest slot: %w", err)
	}
	return slot, nil
}

// List returns slot metadata newest-first. Payloads are left empty.
func (s *Store) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, session_id, round, turn, phase, created_at
FROM save_slots ORDER BY created_at DESC, rowid DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		var createdAt int64
		if err := rows.Scan(&slot.ID, &slot.Name, &slot.SessionID, &slot.Round, &slot.Turn, &slot.Phase, &createdAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.CreatedAt = time.Unix(0, createdAt).UTC()
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

// Delete removes the named slot.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete slot %q: %w", name, ErrNotFound)
	}
	return nil
}

func scanSlot(row *sql.Row) (Slot, error) {
	var slot Slot
	var createdAt int64
	err := row.Scan(&slot.ID, &slot.Name, &slot.SessionID, &slot.Round, &slot.Turn, &slot.Phase, &slot.Payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, ErrNotFound
	}
	if err != nil {
		return Slot{}, err
	}
	slot.CreatedAt = time.Unix(0, createdAt).UTC()
	return slot, nil
}
