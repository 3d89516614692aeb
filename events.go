package main

import (
	"encoding/json"
	"net/http"
	"time"
)

type liveSeasonSnapshot struct {
	SeasonID string `json:"seasonId"`
	Chapter  int    `json:"chapter"`
	Title    string `json:"title"`
	Progress int64  `json:"progress"`
}

type liveSnapshot struct {
	ServerTime      string             `json:"serverTime"`
	Authenticated   bool               `json:"authenticated"`
	Season          liveSeasonSnapshot `json:"season"`
	Points          int64              `json:"points,omitempty"`
	Auron           int64              `json:"auron,omitempty"`
	Level           int                `json:"level,omitempty"`
	CurrentTaps     int                `json:"currentTaps,omitempty"`
	TapsAvailableAt int64              `json:"tapsAvailableAt,omitempty"`
	BattlePassLevel int                `json:"battlePassLevel,omitempty"`
}

func buildLiveSnapshot(app *App, r *http.Request) liveSnapshot {
	now := time.Now().UTC()
	snapshot := liveSnapshot{
		ServerTime: now.Format(time.RFC3339),
		Season: liveSeasonSnapshot{
			SeasonID: seasonsData[0].ID,
			Chapter:  seasonsData[0].Chapter,
			Title:    seasonsData[0].Title,
		},
	}

	profileID, err := profileIDFromRequest(app.tokens, r)
	if err != nil || !isValidProfileID(profileID) {
		return snapshot
	}
	session, found, err := app.registry.Open(profileID, now)
	if err != nil || !found {
		return snapshot
	}

	p := app.registry.View(session)
	season := seasonByID(p.CurrentSeasonID)
	snapshot.Authenticated = true
	snapshot.Season = liveSeasonSnapshot{
		SeasonID: season.ID,
		Chapter:  season.Chapter,
		Title:    season.Title,
		Progress: p.SeasonProgress[season.ID],
	}
	snapshot.Points = p.Points
	snapshot.Auron = p.Auron
	snapshot.Level = p.Level
	snapshot.CurrentTaps = p.CurrentTaps
	snapshot.TapsAvailableAt = p.TapsAvailableAt
	snapshot.BattlePassLevel = p.BattlePassLevel
	return snapshot
}

func eventsHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		sendSnapshot := func() bool {
			payload, err := json.Marshal(buildLiveSnapshot(app, r))
			if err != nil {
				return false
			}
			if _, err := w.Write([]byte("event: snapshot\n")); err != nil {
				return false
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return false
			}
			if _, err := w.Write(payload); err != nil {
				return false
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return false
			}
			flusher.Flush()
			return true
		}

		if !sendSnapshot() {
			return
		}

		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !sendSnapshot() {
					return
				}
			}
		}
	}
}
