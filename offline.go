package main

import (
	"time"
)

// ApplyOfflineProgress grants drone earnings for time spent away. Runs
// exactly once per load: LastLoginTimestamp is advanced to now whether or
// not anything was earned, so a repeat call in the same load sees zero
// elapsed minutes. The grant bypasses the tap bonus/crit pipeline but still
// flows through the generic gain path so season progress, levels and league
// stay consistent.
func (e *Engine) ApplyOfflineProgress(p *PlayerProfile, now time.Time) (int64, []Notification) {
	nowMs := now.UnixMilli()
	lastLogin := p.LastLoginTimestamp
	p.LastLoginTimestamp = nowMs
	if lastLogin <= 0 || nowMs <= lastLogin {
		return 0, nil
	}

	minutesAway := (nowMs - lastLogin) / 60000
	if minutesAway <= 1 || p.MuleDrones <= 0 {
		return 0, nil
	}

	earnings := int64(p.MuleDrones) * muleDroneBaseRate * minutesAway
	if earnings <= 0 {
		return 0, nil
	}

	_, notes := e.ApplyPointsGain(p, float64(earnings), SourceOffline)
	notes = append(notes, alert("Welcome back, Commander. Your M.U.L.E. Drones generated %d points while you were away.", earnings))
	return earnings, notes
}
