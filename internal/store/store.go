// Package store archives finished fights in SQLite so they can be listed,
// replayed and re-verified later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"newomega/server/internal/combat"
)

// ErrNotFound is returned when no fight matches the requested id.
var ErrNotFound = errors.New("store: fight not found")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS fights (
	id         TEXT PRIMARY KEY,
	seed       TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	rounds     INTEGER NOT NULL,
	checksum   TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS fights_created_at ON fights (created_at DESC);
`

// Record is one archived fight.
type Record struct {
	ID        uuid.UUID     `json:"id"`
	Checksum  string        `json:"checksum"`
	CreatedAt time.Time     `json:"created_at"`
	Result    combat.Result `json:"result"`
}

// Header is the listing view of a Record.
type Header struct {
	ID        uuid.UUID      `json:"id"`
	Seed      uint64         `json:"seed"`
	Outcome   combat.Outcome `json:"outcome"`
	Rounds    int            `json:"rounds"`
	Checksum  string         `json:"checksum"`
	CreatedAt time.Time      `json:"created_at"`
}

// SQLite persists fights through database/sql.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the database at path, creating the file and schema when
// missing.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps in-memory databases coherent across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Close releases the connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save archives result under a fresh id.
func (s *SQLite) Save(ctx context.Context, result combat.Result, checksum string) (Record, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return Record{}, fmt.Errorf("encode result: %w", err)
	}
	record := Record{
		ID:        uuid.New(),
		Checksum:  checksum,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Result:    result,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fights (id, seed, outcome, rounds, checksum, result, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID.String(),
		fmt.Sprintf("%d", result.Seed),
		string(result.Outcome),
		result.Rounds,
		checksum,
		string(payload),
		record.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert fight: %w", err)
	}
	return record, nil
}

// Get loads the fight stored under id.
func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT checksum, result, created_at FROM fights WHERE id = ?`, id.String())

	var (
		checksum  string
		payload   string
		createdAt int64
	)
	if err := row.Scan(&checksum, &payload, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Record{}, fmt.Errorf("load fight %s: %w", id, err)
	}

	record := Record{ID: id, Checksum: checksum, CreatedAt: time.UnixMilli(createdAt).UTC()}
	if err := json.Unmarshal([]byte(payload), &record.Result); err != nil {
		return Record{}, fmt.Errorf("decode fight %s: %w", id, err)
	}
	return record, nil
}

// List returns up to limit headers, newest first.
func (s *SQLite) List(ctx context.Context, limit int) ([]Header, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seed, outcome, rounds, checksum, created_at FROM fights ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list fights: %w", err)
	}
	defer rows.Close()

	headers := make([]Header, 0)
	for rows.Next() {
		var (
			rawID     string
			rawSeed   string
			outcome   string
			header    Header
			createdAt int64
		)
		if err := rows.Scan(&rawID, &rawSeed, &outcome, &header.Rounds, &header.Checksum, &createdAt); err != nil {
			return nil, fmt.Errorf("scan fight: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse fight id %q: %w", rawID, err)
		}
		if _, err := fmt.Sscan(rawSeed, &header.Seed); err != nil {
			return nil, fmt.Errorf("parse seed %q: %w", rawSeed, err)
		}
		header.ID = id
		header.Outcome = combat.Outcome(outcome)
		header.CreatedAt = time.UnixMilli(createdAt).UTC()
		headers = append(headers, header)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fights: %w", err)
	}
	return headers, nil
}
