package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOfflineProgressGrantsDroneEarnings(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.MuleDrones = 5
	p.LastLoginTimestamp = testNow.Add(-42 * time.Minute).UnixMilli()

	earned, notes := e.ApplyOfflineProgress(&p, testNow)

	// 5 drones * 1 point/minute * 42 minutes.
	assert.Equal(t, int64(210), earned)
	assert.Equal(t, int64(210), p.Points)
	assert.Equal(t, int64(210), p.SeasonProgress[p.CurrentSeasonID])
	assert.Equal(t, testNow.UnixMilli(), p.LastLoginTimestamp)
	assert.NotEmpty(t, notes)
}

func TestOfflineProgressRunsOncePerLoad(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.MuleDrones = 5
	p.LastLoginTimestamp = testNow.Add(-42 * time.Minute).UnixMilli()

	e.ApplyOfflineProgress(&p, testNow)
	earned, _ := e.ApplyOfflineProgress(&p, testNow)

	assert.Zero(t, earned)
	assert.Equal(t, int64(210), p.Points)
}

func TestOfflineProgressRequiresDrones(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.LastLoginTimestamp = testNow.Add(-42 * time.Minute).UnixMilli()

	earned, notes := e.ApplyOfflineProgress(&p, testNow)

	assert.Zero(t, earned)
	assert.Empty(t, notes)
	// The timestamp still advances so a later drone purchase cannot
	// retroactively monetize the same absence.
	assert.Equal(t, testNow.UnixMilli(), p.LastLoginTimestamp)
}

func TestOfflineProgressIgnoresShortAbsence(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.MuleDrones = 5
	p.LastLoginTimestamp = testNow.Add(-59 * time.Second).UnixMilli()

	earned, _ := e.ApplyOfflineProgress(&p, testNow)
	assert.Zero(t, earned)
}

func TestOfflineProgressIgnoresClockSkew(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.MuleDrones = 5
	p.LastLoginTimestamp = testNow.Add(10 * time.Minute).UnixMilli()

	earned, _ := e.ApplyOfflineProgress(&p, testNow)
	assert.Zero(t, earned)
	assert.Equal(t, testNow.UnixMilli(), p.LastLoginTimestamp)
}
