package main

import (
	"time"
)

// startSaver flushes dirty sessions to the local store on an interval.
// Persistence is best-effort and asynchronous relative to engine calls: a
// profile can advance again before a previous flush lands, and the newest
// state simply wins. In-memory state is never rolled back on a failed
// write; the game continues optimistically with unsaved state at risk.
func startSaver(registry *Registry, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for t := range ticker.C {
			registry.flushDirty(t.UTC())
		}
	}()
}
