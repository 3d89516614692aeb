package main

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActiveTapBonus is a marketplace boost currently applied to taps. Each tap
// consumes one charge; the bonus is removed when RemainingTaps hits zero.
type ActiveTapBonus struct {
	ID               string  `json:"id"`
	SourceItemID     string  `json:"sourceItemId"`
	Name             string  `json:"name"`
	RemainingTaps    int     `json:"remainingTaps"`
	Multiplier       float64 `json:"multiplier"`
	OriginalDuration int     `json:"originalDuration"`
}

// DailyQuest is an instantiated quest record. Icon is presentation-only
// decoration joined from the template pool at the boundary; it is never
// persisted.
type DailyQuest struct {
	ID          string      `json:"id"`
	TemplateID  string      `json:"templateId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        QuestType   `json:"type"`
	Target      int64       `json:"target"`
	Progress    int64       `json:"progress"`
	Reward      QuestReward `json:"reward"`
	IsCompleted bool        `json:"isCompleted"`
	IsClaimed   bool        `json:"isClaimed"`
	Icon        string      `json:"-"`
}

// PlayerProfile is the sole aggregate root: one player's entire game state.
// RankTitle, CurrentTierColor, League and MuleDrones are derived fields;
// they are recomputed by the engine after every relevant mutation and again
// on load, never set independently.
type PlayerProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CommanderSex string `json:"commanderSex"`
	Country      string `json:"country"`
	AvatarURL    string `json:"avatarUrl"`
	PortraitURL  string `json:"portraitUrl"`

	Points int64 `json:"points"`
	Auron  int64 `json:"auron"`

	Level         int    `json:"level"`
	XP            int64  `json:"xp"`
	XPToNextLevel int64  `json:"xpToNextLevel"`
	RankTitle     string `json:"rankTitle"`

	CurrentTierColor string `json:"currentTierColor"`
	League           string `json:"league"`

	CurrentSeasonID string           `json:"currentSeasonId"`
	SeasonProgress  map[string]int64 `json:"seasonProgress"`

	Upgrades   map[string]int `json:"upgrades"`
	MuleDrones int            `json:"muleDrones"`

	ArkHangarFullyUpgraded bool `json:"arkHangarFullyUpgraded"`

	CurrentTaps     int   `json:"currentTaps"`
	MaxTaps         int   `json:"maxTaps"`
	TapsAvailableAt int64 `json:"tapsAvailableAt"` // unix milliseconds

	ActiveTapBonuses []ActiveTapBonus `json:"activeTapBonuses"`

	ActiveDailyQuests     []DailyQuest `json:"activeDailyQuests"`
	LastDailyQuestRefresh int64        `json:"lastDailyQuestRefresh"` // unix milliseconds

	BattlePassLevel         int              `json:"battlePassLevel"`
	BattlePassXP            int64            `json:"battlePassXp"`
	XPToNextBattlePassLevel int64            `json:"xpToNextBattlePassLevel"`
	HasPremiumPass          bool             `json:"hasPremiumPass"`
	ClaimedBattlePassRewards map[int][]string `json:"claimedBattlePassRewards"`

	UnlockedTitles        []string `json:"unlockedTitles,omitempty"`
	UnlockedUniformPieces []string `json:"unlockedUniformPieces,omitempty"`

	IsWalletConnected bool   `json:"isWalletConnected"`
	WalletAddress     string `json:"walletAddress,omitempty"`

	LastRewardedAdTimestamp int64 `json:"lastRewardedAdTimestamp"` // unix milliseconds
	LastLoginTimestamp      int64 `json:"lastLoginTimestamp"`      // unix milliseconds

	ReferralCode   string `json:"referralCode"`
	ReferredByCode string `json:"referredByCode,omitempty"`
}

// NewPlayerProfile builds the profile created once at setup completion.
func NewPlayerProfile(name, commanderSex, country, referredByCode string, now time.Time) PlayerProfile {
	avatar := avatarForSex(commanderSex)
	nowMs := now.UnixMilli()

	return PlayerProfile{
		ID:           uuid.NewString(),
		Name:         name,
		CommanderSex: commanderSex,
		Country:      country,
		AvatarURL:    avatar.FullBodyURL,
		PortraitURL:  avatar.PortraitURL,

		Level:         1,
		XPToNextLevel: initialXPToNextLevel,
		RankTitle:     rankTitleForLevel(1),

		CurrentTierColor: tierColorForLevel(1),
		League:           defaultLeague,

		CurrentSeasonID: seasonsData[0].ID,
		SeasonProgress:  map[string]int64{},
		Upgrades:        map[string]int{},

		CurrentTaps:     initialMaxTaps,
		MaxTaps:         initialMaxTaps,
		TapsAvailableAt: nowMs,

		ActiveTapBonuses:  []ActiveTapBonus{},
		ActiveDailyQuests: []DailyQuest{},

		BattlePassLevel:          1,
		XPToNextBattlePassLevel:  battlePassXPPerLevel,
		ClaimedBattlePassRewards: map[int][]string{},

		LastLoginTimestamp: nowMs,
		ReferralCode:       generateReferralCode(name),
		ReferredByCode:     strings.TrimSpace(referredByCode),
	}
}

// generateReferralCode builds a code from the commander name plus a random
// suffix. Generated once at profile creation and never changed.
func generateReferralCode(name string) string {
	var namePart strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			namePart.WriteRune(r)
			if namePart.Len() >= 4 {
				break
			}
		}
	}
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			suffix[i] = alphabet[0]
			continue
		}
		suffix[i] = alphabet[n.Int64()]
	}
	if namePart.Len() == 0 {
		namePart.WriteString("CMDR")
	}
	return namePart.String() + string(suffix)
}

// HydrateDerived recomputes every derived field from its source of truth.
// Called once after load and after any mutation that can move the inputs.
func (p *PlayerProfile) HydrateDerived() {
	p.RankTitle = rankTitleForLevel(p.Level)
	p.CurrentTierColor = tierColorForLevel(p.Level)
	p.League = leagueForPoints(p.Points)
	p.MuleDrones = p.Upgrades["muleDrone"]
	avatar := avatarForSex(p.CommanderSex)
	p.AvatarURL = avatar.FullBodyURL
	p.PortraitURL = avatar.PortraitURL
	if p.SeasonProgress == nil {
		p.SeasonProgress = map[string]int64{}
	}
	if p.Upgrades == nil {
		p.Upgrades = map[string]int{}
	}
	if p.ClaimedBattlePassRewards == nil {
		p.ClaimedBattlePassRewards = map[int][]string{}
	}
	if p.ActiveTapBonuses == nil {
		p.ActiveTapBonuses = []ActiveTapBonus{}
	}
	if p.ActiveDailyQuests == nil {
		p.ActiveDailyQuests = []DailyQuest{}
	}
	if p.XPToNextLevel <= 0 {
		p.XPToNextLevel = initialXPToNextLevel
	}
	if p.XPToNextBattlePassLevel <= 0 {
		p.XPToNextBattlePassLevel = battlePassXPPerLevel
	}
	if p.MaxTaps <= 0 {
		p.MaxTaps = initialMaxTaps
	}
	attachQuestIcons(p.ActiveDailyQuests)
}

// attachQuestIcons joins persisted quest records against the static template
// pool by id, re-attaching presentation-only decoration dropped on save.
func attachQuestIcons(quests []DailyQuest) {
	for i := range quests {
		if tpl, ok := questTemplateByID(quests[i].TemplateID); ok {
			quests[i].Icon = tpl.Icon
		}
	}
}

// Clone returns a deep copy so engine transitions can be expressed as
// value-in/value-out without sharing map or slice backing storage.
func (p PlayerProfile) Clone() PlayerProfile {
	out := p

	out.SeasonProgress = make(map[string]int64, len(p.SeasonProgress))
	for k, v := range p.SeasonProgress {
		out.SeasonProgress[k] = v
	}
	out.Upgrades = make(map[string]int, len(p.Upgrades))
	for k, v := range p.Upgrades {
		out.Upgrades[k] = v
	}
	out.ClaimedBattlePassRewards = make(map[int][]string, len(p.ClaimedBattlePassRewards))
	for k, v := range p.ClaimedBattlePassRewards {
		out.ClaimedBattlePassRewards[k] = append([]string(nil), v...)
	}
	out.ActiveTapBonuses = append([]ActiveTapBonus(nil), p.ActiveTapBonuses...)
	out.ActiveDailyQuests = append([]DailyQuest(nil), p.ActiveDailyQuests...)
	out.UnlockedTitles = append([]string(nil), p.UnlockedTitles...)
	out.UnlockedUniformPieces = append([]string(nil), p.UnlockedUniformPieces...)
	return out
}
