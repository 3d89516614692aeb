package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshDailyQuestsDrawsWithoutReplacement(t *testing.T) {
	e := newTestEngine() // pick always returns 0: draws dq001, dq002, dq003
	p := newTestProfile()
	p.LastDailyQuestRefresh = 0

	notes, refreshed := e.RefreshDailyQuestsIfNeeded(&p, testNow)
	require.True(t, refreshed)
	assert.NotEmpty(t, notes)
	require.Len(t, p.ActiveDailyQuests, numberOfDailyQuests)

	seen := map[string]bool{}
	for _, q := range p.ActiveDailyQuests {
		assert.False(t, seen[q.TemplateID], "template %s drawn twice", q.TemplateID)
		seen[q.TemplateID] = true
	}
	assert.Equal(t, testNow.UnixMilli(), p.LastDailyQuestRefresh)
}

func TestRefreshDailyQuestsLoginPreCompleted(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.LastDailyQuestRefresh = 0

	_, refreshed := e.RefreshDailyQuestsIfNeeded(&p, testNow)
	require.True(t, refreshed)

	var login *DailyQuest
	for i := range p.ActiveDailyQuests {
		if p.ActiveDailyQuests[i].Type == QuestLogin {
			login = &p.ActiveDailyQuests[i]
		}
	}
	require.NotNil(t, login, "expected a login quest in the slate")
	assert.True(t, login.IsCompleted)
	assert.Equal(t, login.Target, login.Progress)
	assert.False(t, login.IsClaimed)
}

func TestRefreshDailyQuestsSameDayNoOp(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.LastDailyQuestRefresh = 0

	_, refreshed := e.RefreshDailyQuestsIfNeeded(&p, testNow)
	require.True(t, refreshed)
	original := append([]DailyQuest(nil), p.ActiveDailyQuests...)

	// Same calendar day, hours later: nothing regenerates, progress stands.
	p.ActiveDailyQuests[0].Progress = 42
	notes, refreshed := e.RefreshDailyQuestsIfNeeded(&p, testNow.Add(3*time.Hour))
	assert.False(t, refreshed)
	assert.Empty(t, notes)
	assert.Equal(t, original[0].ID, p.ActiveDailyQuests[0].ID)
	assert.Equal(t, int64(42), p.ActiveDailyQuests[0].Progress)
}

func TestRefreshDailyQuestsRollsAtMidnight(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.LastDailyQuestRefresh = 0

	_, refreshed := e.RefreshDailyQuestsIfNeeded(&p, testNow)
	require.True(t, refreshed)
	oldIDs := map[string]bool{}
	for _, q := range p.ActiveDailyQuests {
		oldIDs[q.ID] = true
	}

	// A calendar-day boundary triggers a refresh even if less than 24h
	// elapsed since the last one.
	nextDay := time.Date(testNow.Year(), testNow.Month(), testNow.Day()+1, 0, 1, 0, 0, time.UTC)
	_, refreshed = e.RefreshDailyQuestsIfNeeded(&p, nextDay)
	require.True(t, refreshed)
	for _, q := range p.ActiveDailyQuests {
		assert.False(t, oldIDs[q.ID], "quest instance %s survived the rollover", q.ID)
		assert.False(t, q.IsClaimed)
	}
}

func TestRefreshDailyQuestsRegeneratesEmptySlate(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.LastDailyQuestRefresh = testNow.UnixMilli()
	p.ActiveDailyQuests = nil

	// Same day but no quests at all: a fresh slate is drawn anyway.
	_, refreshed := e.RefreshDailyQuestsIfNeeded(&p, testNow)
	assert.True(t, refreshed)
	assert.Len(t, p.ActiveDailyQuests, numberOfDailyQuests)
}

func TestQuestProgressClampsAndSticks(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveDailyQuests = []DailyQuest{
		{ID: "q1", TemplateID: "dq001", Title: "Tap Enthusiast", Type: QuestTaps, Target: 100},
	}

	notes := e.updateQuestProgress(&p, QuestTaps, 150)
	quest := p.ActiveDailyQuests[0]
	assert.Equal(t, int64(100), quest.Progress)
	assert.True(t, quest.IsCompleted)
	assert.NotEmpty(t, notes, "completion is announced")

	// Further progress on a completed quest changes nothing and stays quiet.
	notes = e.updateQuestProgress(&p, QuestTaps, 50)
	assert.Empty(t, notes)
	assert.Equal(t, int64(100), p.ActiveDailyQuests[0].Progress)
}

func TestQuestProgressIgnoresOtherTypes(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveDailyQuests = []DailyQuest{
		{ID: "q1", TemplateID: "dq004", Title: "Auron Spender", Type: QuestSpendAuron, Target: 50},
	}

	e.updateQuestProgress(&p, QuestTaps, 10)
	assert.Zero(t, p.ActiveDailyQuests[0].Progress)
}

func TestClaimQuestReward(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveDailyQuests = []DailyQuest{
		{ID: "q1", TemplateID: "dq003", Title: "Daily Check-in", Type: QuestLogin, Target: 1, Progress: 1, IsCompleted: true, Reward: QuestReward{Auron: 20}},
		{ID: "q2", TemplateID: "dq001", Title: "Tap Enthusiast", Type: QuestTaps, Target: 100, Progress: 10, Reward: QuestReward{Points: 1000}},
	}

	_, err := e.ClaimQuestReward(&p, "q1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.Auron)
	assert.True(t, p.ActiveDailyQuests[0].IsClaimed)

	_, err = e.ClaimQuestReward(&p, "q1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, int64(20), p.Auron)

	_, err = e.ClaimQuestReward(&p, "q2")
	assert.ErrorIs(t, err, ErrRequirementNotMet)

	_, err = e.ClaimQuestReward(&p, "nope")
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestClaimQuestPointsRewardFeedsProgression(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveDailyQuests = []DailyQuest{
		{ID: "q1", TemplateID: "dq001", Title: "Tap Enthusiast", Type: QuestTaps, Target: 100, Progress: 100, IsCompleted: true, Reward: QuestReward{Points: 1000}},
	}

	_, err := e.ClaimQuestReward(&p, "q1")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), p.Points)
	assert.Equal(t, int64(1000), p.SeasonProgress[p.CurrentSeasonID])
	assert.Greater(t, p.Level, 1, "reward points grant XP like any other gain")
	assert.Equal(t, int64(1000), p.BattlePassXP)
}

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2026, 8, 29, 0, 5, 0, 0, time.UTC)
	night := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 8, 30, 0, 1, 0, 0, time.UTC)

	assert.True(t, sameCalendarDay(morning, night))
	assert.False(t, sameCalendarDay(night, nextDay))
}
