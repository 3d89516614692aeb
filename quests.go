package main

import (
	"fmt"
	"time"
)

// updateQuestProgress advances every live quest of the given type. Progress
// is clamped to the target; completion is sticky and announced exactly once.
func (e *Engine) updateQuestProgress(p *PlayerProfile, questType QuestType, value int64) []Notification {
	var notes []Notification
	for i := range p.ActiveDailyQuests {
		quest := &p.ActiveDailyQuests[i]
		if quest.Type != questType || quest.IsClaimed || quest.IsCompleted {
			continue
		}
		quest.Progress += value
		if quest.Progress >= quest.Target {
			quest.Progress = quest.Target
			quest.IsCompleted = true
			notes = append(notes, alert("Quest Objective Met: %s", quest.Title))
		}
	}
	return notes
}

// ClaimQuestReward grants a completed quest's reward once. A second claim
// reports ALREADY_CLAIMED and changes nothing.
func (e *Engine) ClaimQuestReward(p *PlayerProfile, questID string) ([]Notification, error) {
	for i := range p.ActiveDailyQuests {
		quest := &p.ActiveDailyQuests[i]
		if quest.ID != questID {
			continue
		}
		if quest.IsClaimed {
			return nil, ErrAlreadyClaimed
		}
		if !quest.IsCompleted {
			return nil, ErrRequirementNotMet
		}

		var notes []Notification
		if quest.Reward.Points > 0 {
			_, gainNotes := e.ApplyPointsGain(p, float64(quest.Reward.Points), SourceReward)
			notes = append(notes, gainNotes...)
		}
		if quest.Reward.Auron > 0 {
			p.Auron += quest.Reward.Auron
		}
		quest.IsClaimed = true
		notes = append(notes, alert("Reward claimed for quest: %s.", quest.Title))
		return notes, nil
	}
	return nil, ErrUnknownID
}

// sameCalendarDay compares calendar dates, not 24h windows. Quests roll at
// midnight regardless of when they were last generated.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RefreshDailyQuestsIfNeeded regenerates the daily quest slate once per
// calendar-day boundary. Within the same day (with quests present) it is a
// no-op. Templates are drawn without replacement; login quests start
// pre-completed.
func (e *Engine) RefreshDailyQuestsIfNeeded(p *PlayerProfile, now time.Time) ([]Notification, bool) {
	lastRefresh := time.UnixMilli(p.LastDailyQuestRefresh).UTC()
	if sameCalendarDay(now.UTC(), lastRefresh) && len(p.ActiveDailyQuests) > 0 {
		return nil, false
	}

	available := append([]DailyQuestTemplate(nil), dailyQuestsPool...)
	quests := make([]DailyQuest, 0, numberOfDailyQuests)
	for len(quests) < numberOfDailyQuests && len(available) > 0 {
		idx := e.pick(len(available))
		tpl := available[idx]
		available = append(available[:idx], available[idx+1:]...)

		quest := DailyQuest{
			ID:          fmt.Sprintf("%s-%d", tpl.TemplateID, now.UnixMilli()),
			TemplateID:  tpl.TemplateID,
			Title:       tpl.Title,
			Description: tpl.Description,
			Type:        tpl.Type,
			Target:      tpl.Target,
			Reward:      tpl.Reward,
			Icon:        tpl.Icon,
		}
		if tpl.Type == QuestLogin {
			quest.Progress = tpl.Target
			quest.IsCompleted = true
		}
		quests = append(quests, quest)
	}

	p.ActiveDailyQuests = quests
	p.LastDailyQuestRefresh = now.UnixMilli()
	return []Notification{alert("Daily Quest objectives refreshed.")}, true
}
