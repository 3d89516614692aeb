package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Mirror is the remote side of the persistence boundary: a best-effort
// create-or-merge copy of each profile document keyed by profile id.
// Writes are fire-and-forget and last-write-wins; the game advances before
// a previous save lands, saves may race, and the newest write simply
// overwrites. No locks, no transactions across saves; a mirror failure is
// surfaced as a log line and never interrupts play.
type Mirror struct {
	db *sql.DB
}

func OpenMirror(databaseURL string) (*Mirror, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureMirrorSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Mirror{db: db}, nil
}

func ensureMirrorSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS player_profiles (
			profile_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT NOT NULL,
			league TEXT NOT NULL,
			points BIGINT NOT NULL,
			level INT NOT NULL,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_player_profiles_points
		ON player_profiles (points DESC);
	`)
	return err
}

// SyncProfile upserts the full document plus the columns the leaderboard
// sorts and displays on.
func (m *Mirror) SyncProfile(p PlayerProfile, now time.Time) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = m.db.Exec(`
		INSERT INTO player_profiles (
			profile_id,
			name,
			country,
			league,
			points,
			level,
			doc,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (profile_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			league = EXCLUDED.league,
			points = EXCLUDED.points,
			level = EXCLUDED.level,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Country, p.League, p.Points, p.Level, doc, now.UTC())
	return err
}

type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Country    string `json:"country"`
	League     string `json:"league"`
	Score      int64  `json:"score"`
}

// Leaderboard returns the top players by points from the mirror.
func (m *Mirror) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	rows, err := m.db.Query(`
		SELECT profile_id, name, country, league, points
		FROM player_profiles
		ORDER BY points DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Country, &e.League, &e.Score); err != nil {
			continue
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (m *Mirror) Close() error {
	return m.db.Close()
}

// syncMirror is the fire-and-forget entry point used after mutations.
func syncMirror(m *Mirror, p PlayerProfile) {
	if m == nil {
		return
	}
	go func() {
		if err := m.SyncProfile(p, time.Now().UTC()); err != nil {
			log.Println("mirror sync failed:", err)
		}
	}()
}
