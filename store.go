package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the local durable side of the persistence boundary: one JSON
// document per profile, the direct analog of the game client's device
// storage. The remote Postgres mirror (mirror.go) hangs off every save as a
// best-effort follower.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// The store is written from the saver goroutine and read on session
	// open; a single connection keeps sqlite happy.
	db.SetMaxOpenConns(1)

	if err := ensureLocalSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureLocalSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			profile_id TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS telemetry (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_id TEXT,
			event_type TEXT NOT NULL,
			payload TEXT,
			created_at INTEGER NOT NULL
		);
	`)
	return err
}

// LoadProfile reads and decodes the raw document. Derived fields and
// offline progress are the registry's job; this layer only moves bytes.
func (s *Store) LoadProfile(profileID string) (PlayerProfile, bool, error) {
	var doc string
	err := s.db.QueryRow(`
		SELECT doc
		FROM profiles
		WHERE profile_id = ?
	`, profileID).Scan(&doc)
	if err == sql.ErrNoRows {
		return PlayerProfile{}, false, nil
	}
	if err != nil {
		return PlayerProfile{}, false, err
	}

	var profile PlayerProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return PlayerProfile{}, false, fmt.Errorf("corrupt profile document %s: %w", profileID, err)
	}
	return profile, true, nil
}

// SaveProfile serializes and upserts the document. Presentation-only
// decoration (quest icons) carries a `json:"-"` tag and is stripped by
// serialization itself, so saved documents stay id-only.
func (s *Store) SaveProfile(p PlayerProfile, now time.Time) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO profiles (profile_id, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (profile_id)
		DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, p.ID, string(doc), now.UnixMilli())
	return err
}

// RecordTelemetry appends a gameplay event to the local sink.
func (s *Store) RecordTelemetry(profileID, eventType string, payload json.RawMessage, now time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO telemetry (profile_id, event_type, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, profileID, eventType, string(payload), now.UnixMilli())
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
