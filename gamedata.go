package main

import (
	"math"
	"sort"
)

/* ======================
   Progression Constants
   ====================== */

const (
	initialXPToNextLevel = 100
	xpLevelMultiplier    = 1.5

	pointsPerTap           = 1
	specialTapMultiplier   = 2.5
	initialMaxTaps         = 100
	tapRegenCooldown       = 4 * 60 * 1000 // milliseconds
	auronCostForTapRefill  = 50
	auronPerWalletConnect  = 100
	muleDroneBaseRate      = 1 // points per drone per minute
	rewardedAdAuronReward  = 10
	rewardedAdCooldownMs   = 30 * 60 * 1000
	battlePassXPPerLevel   = 10000
	premiumPassCostInAuron = 500

	numberOfDailyQuests = 3
)

/* ======================
   Seasons
   ====================== */

type Season struct {
	ID                string `json:"id"`
	Chapter           int    `json:"chapter"`
	Title             string `json:"title"`
	ObjectiveResource string `json:"objectiveResource"`
	BriefingObjective string `json:"briefingObjective"`
	UnlocksCompanion  bool   `json:"unlocksCompanion"`
}

var seasonsData = []Season{
	{ID: "chapter1", Chapter: 1, Title: "The Concord's Shadow", ObjectiveResource: "Ark Construction Materials", BriefingObjective: "construct StarForge Arks to escape Earth before the Cyber Concord attacks", UnlocksCompanion: true},
	{ID: "chapter2", Chapter: 2, Title: "The Quantum Beacon", ObjectiveResource: "Scanner Triangulation Data", BriefingObjective: "triangulate the Sanctaris system coordinates using Quantum Scanners"},
	{ID: "chapter3", Chapter: 3, Title: "First Wave", ObjectiveResource: "Planetary Shield Energy", BriefingObjective: "defend Earth by generating planetary shield energy against the Concord's first wave"},
	{ID: "chapter4", Chapter: 4, Title: "Sanctaris Foundation", ObjectiveResource: "Forgeite", BriefingObjective: "gather Forgeite to begin building a new home on Sanctaris"},
}

func seasonByID(id string) Season {
	for _, s := range seasonsData {
		if s.ID == id {
			return s
		}
	}
	return seasonsData[0]
}

/* ======================
   Upgrades
   ====================== */

type Upgrade struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	BaseCost       int64   `json:"baseCost"`
	CostMultiplier float64 `json:"costMultiplier"`
	MaxLevel       int     `json:"maxLevel,omitempty"` // 0 means unlimited
}

var upgradesData = []Upgrade{
	{ID: "tapPower", Name: "Enhanced Tapping Servos", Description: "Increases points generated per tap.", BaseCost: 10, CostMultiplier: 1.5},
	{ID: "critChance", Name: "Precision Targeting Matrix", Description: "Increases the chance of a Critical Tap.", BaseCost: 50, CostMultiplier: 2},
	{ID: "critMultiplier", Name: "Overcharge Capacitors", Description: "Increases the point multiplier for Critical Taps.", BaseCost: 100, CostMultiplier: 2.5},
	{ID: "comboBonus", Name: "Synergy Uplink", Description: "Increases the combo meter bonus.", BaseCost: 75, CostMultiplier: 1.8},
	{ID: "muleDrone", Name: "Construct M.U.L.E. Drone", Description: "Passively generates points while you are offline.", BaseCost: 5000, CostMultiplier: 1.8},
}

func upgradeByID(id string) (Upgrade, bool) {
	for _, u := range upgradesData {
		if u.ID == id {
			return u, true
		}
	}
	return Upgrade{}, false
}

// upgradeCost is the price of the next level: baseCost * multiplier^level,
// floored to an integer.
func upgradeCost(u Upgrade, currentLevel int) int64 {
	return int64(math.Floor(float64(u.BaseCost) * math.Pow(u.CostMultiplier, float64(currentLevel))))
}

/* ======================
   Ark Upgrades (one-shot unlocks)
   ====================== */

type ArkUpgrade struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	VisualStage int    `json:"visualStage"`
}

var arkUpgradesData = []ArkUpgrade{
	{ID: "hullPlating1", Name: "Basic Hull Plating", Description: "Reinforce the Ark structure.", Cost: 1000, VisualStage: 1},
	{ID: "engineModules1", Name: "Auxiliary Engines", Description: "Install initial engine modules.", Cost: 2500, VisualStage: 2},
	{ID: "cargoBays1", Name: "Expandable Cargo Bays", Description: "Increase resource storage capacity.", Cost: 5000, VisualStage: 3},
}

func arkUpgradeByID(id string) (ArkUpgrade, bool) {
	for _, u := range arkUpgradesData {
		if u.ID == id {
			return u, true
		}
	}
	return ArkUpgrade{}, false
}

/* ======================
   Marketplace (tap boost items)
   ====================== */

type MarketplaceItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	CostInAuron  int64   `json:"costInAuron"`
	DurationTaps int     `json:"durationTaps"`
	Multiplier   float64 `json:"multiplier"`
}

var marketplaceItemsData = []MarketplaceItem{
	{ID: "tap_boost_quick", Name: "Quick Boost", Description: "Slightly increases tap power for a short time.", CostInAuron: 25, DurationTaps: 20, Multiplier: 1.10},
	{ID: "tap_boost_mini_pack", Name: "Mini Energy Pack", Description: "A small pack to empower your taps.", CostInAuron: 50, DurationTaps: 30, Multiplier: 1.15},
	{ID: "tap_boost_minor", Name: "Minor Power Surge", Description: "Boosts tap power by 25% for the next 50 taps.", CostInAuron: 100, DurationTaps: 50, Multiplier: 1.25},
	{ID: "tap_boost_standard", Name: "Standard Power Surge", Description: "Boosts tap power by 50% for the next 100 taps.", CostInAuron: 300, DurationTaps: 100, Multiplier: 1.5},
	{ID: "tap_boost_major", Name: "Major Power Surge", Description: "Doubles tap power for the next 150 taps.", CostInAuron: 750, DurationTaps: 150, Multiplier: 2.0},
}

func marketplaceItemByID(id string) (MarketplaceItem, bool) {
	for _, item := range marketplaceItemsData {
		if item.ID == id {
			return item, true
		}
	}
	return MarketplaceItem{}, false
}

/* ======================
   Daily Quests
   ====================== */

type QuestType string

const (
	QuestTaps            QuestType = "taps"
	QuestPointsEarned    QuestType = "points_earned"
	QuestLogin           QuestType = "login"
	QuestSpendAuron      QuestType = "spend_auron"
	QuestPurchaseUpgrade QuestType = "purchase_upgrade"
)

type QuestReward struct {
	Points int64 `json:"points,omitempty"`
	Auron  int64 `json:"auron,omitempty"`
}

type DailyQuestTemplate struct {
	TemplateID  string      `json:"templateId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        QuestType   `json:"type"`
	Target      int64       `json:"target"`
	Reward      QuestReward `json:"reward"`
	Icon        string      `json:"icon"`
}

var dailyQuestsPool = []DailyQuestTemplate{
	{TemplateID: "dq001", Title: "Tap Enthusiast", Description: "Tap the commander 100 times.", Type: QuestTaps, Target: 100, Reward: QuestReward{Points: 1000}, Icon: "target"},
	{TemplateID: "dq002", Title: "Point Collector", Description: "Earn 2,500 points.", Type: QuestPointsEarned, Target: 2500, Reward: QuestReward{Points: 1500, Auron: 10}, Icon: "trending-up"},
	{TemplateID: "dq003", Title: "Daily Check-in", Description: "Log in to the game today.", Type: QuestLogin, Target: 1, Reward: QuestReward{Auron: 20}, Icon: "log-in"},
	{TemplateID: "dq004", Title: "Auron Spender", Description: "Spend 50 Auron in the marketplace or for refills.", Type: QuestSpendAuron, Target: 50, Reward: QuestReward{Points: 5000}, Icon: "shopping-bag"},
	{TemplateID: "dq005", Title: "Upgrade Initiative", Description: "Purchase any upgrade.", Type: QuestPurchaseUpgrade, Target: 1, Reward: QuestReward{Points: 2000, Auron: 5}, Icon: "arrow-up-circle"},
	{TemplateID: "dq006", Title: "Power Tapper", Description: "Tap the commander 250 times.", Type: QuestTaps, Target: 250, Reward: QuestReward{Points: 2500, Auron: 5}, Icon: "target"},
	{TemplateID: "dq007", Title: "Resource Hoarder", Description: "Earn 5,000 points.", Type: QuestPointsEarned, Target: 5000, Reward: QuestReward{Points: 3000, Auron: 15}, Icon: "trending-up"},
}

func questTemplateByID(templateID string) (DailyQuestTemplate, bool) {
	for _, tpl := range dailyQuestsPool {
		if tpl.TemplateID == templateID {
			return tpl, true
		}
	}
	return DailyQuestTemplate{}, false
}

/* ======================
   Rank Titles
   ====================== */

var rankTitles = map[int]string{
	1:     "Recruit",
	5:     "Cadet",
	10:    "Officer",
	25:    "Veteran Officer",
	50:    "Commander",
	75:    "Section Commander",
	100:   "Battalion Commander",
	150:   "Fleet Commander",
	200:   "High Commander",
	250:   "Vanguard Commander",
	300:   "Forge Master",
	400:   "Galactic Marshall",
	500:   "Celestial Admiral",
	750:   "Ark Architect",
	1000:  "Starforger",
	1500:  "Void Walker",
	2000:  "Nebula Captain",
	3000:  "Cosmic Sentinel",
	4000:  "Galactic Protector",
	5000:  "Alliance High Guard",
	7500:  "Supreme Commander",
	10000: "Living Legend",
}

var rankLevels = func() []int {
	levels := make([]int, 0, len(rankTitles))
	for level := range rankTitles {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}()

func rankTitleForLevel(level int) string {
	title := "Recruit"
	for _, threshold := range rankLevels {
		if level < threshold {
			break
		}
		title = rankTitles[threshold]
	}
	return title
}

/* ======================
   Tier Colors (HSL strings, presentation hint)
   ====================== */

func tierColorForLevel(level int) string {
	switch {
	case level < 50:
		return "210 15% 75%" // silver
	case level < 100:
		return "180 100% 50%" // cyan
	case level < 200:
		return "120 100% 70%" // light green
	case level < 300:
		return "270 70% 60%" // purple
	case level < 500:
		return "16 80% 65%" // coral
	case level < 750:
		return "0 100% 50%" // fiery red
	default:
		return "45 100% 50%" // gold
	}
}

/* ======================
   Leagues
   ====================== */

type LeagueTier struct {
	Name      string `json:"name"`
	MinPoints int64  `json:"minPoints"`
}

var leagueTiers = []LeagueTier{
	{Name: "Bronze", MinPoints: 0},
	{Name: "Silver", MinPoints: 50000},
	{Name: "Gold", MinPoints: 250000},
	{Name: "Platinum", MinPoints: 1000000},
	{Name: "Diamond", MinPoints: 5000000},
	{Name: "Master", MinPoints: 10000000},
	{Name: "Grandmaster", MinPoints: 25000000},
}

const defaultLeague = "Bronze"

func leagueForPoints(points int64) string {
	for i := len(leagueTiers) - 1; i >= 0; i-- {
		if points >= leagueTiers[i].MinPoints {
			return leagueTiers[i].Name
		}
	}
	return defaultLeague
}

/* ======================
   Battle Pass
   ====================== */

type RewardKind string

const (
	RewardPoints       RewardKind = "points"
	RewardAuron        RewardKind = "auron"
	RewardTitle        RewardKind = "title"
	RewardUniformPiece RewardKind = "uniform_piece"
)

// BattlePassReward is a tagged union over reward kind. Amount is set for
// points/auron rewards, Name for title/uniform_piece rewards.
type BattlePassReward struct {
	Kind   RewardKind `json:"kind"`
	Amount int64      `json:"amount,omitempty"`
	Name   string     `json:"name,omitempty"`
}

type BattlePassLevel struct {
	Level         int               `json:"level"`
	FreeReward    *BattlePassReward `json:"freeReward"`
	PremiumReward *BattlePassReward `json:"premiumReward"`
}

var battlePassLevels = []BattlePassLevel{
	{Level: 1, FreeReward: &BattlePassReward{Kind: RewardPoints, Amount: 500}, PremiumReward: &BattlePassReward{Kind: RewardAuron, Amount: 50}},
	{Level: 2, PremiumReward: &BattlePassReward{Kind: RewardPoints, Amount: 2500}},
	{Level: 3, FreeReward: &BattlePassReward{Kind: RewardPoints, Amount: 1000}, PremiumReward: &BattlePassReward{Kind: RewardPoints, Amount: 5000}},
	{Level: 4, PremiumReward: &BattlePassReward{Kind: RewardAuron, Amount: 100}},
	{Level: 5, FreeReward: &BattlePassReward{Kind: RewardAuron, Amount: 25}, PremiumReward: &BattlePassReward{Kind: RewardTitle, Name: "Seasoned"}},
	{Level: 6, FreeReward: &BattlePassReward{Kind: RewardPoints, Amount: 2500}, PremiumReward: &BattlePassReward{Kind: RewardPoints, Amount: 10000}},
	{Level: 7, PremiumReward: &BattlePassReward{Kind: RewardPoints, Amount: 15000}},
	{Level: 8, FreeReward: &BattlePassReward{Kind: RewardPoints, Amount: 5000}, PremiumReward: &BattlePassReward{Kind: RewardAuron, Amount: 150}},
	{Level: 9, PremiumReward: &BattlePassReward{Kind: RewardPoints, Amount: 20000}},
	{Level: 10, FreeReward: &BattlePassReward{Kind: RewardAuron, Amount: 50}, PremiumReward: &BattlePassReward{Kind: RewardTitle, Name: "Vanguard"}},
}

func battlePassLevelData(level int) (BattlePassLevel, bool) {
	for _, l := range battlePassLevels {
		if l.Level == level {
			return l, true
		}
	}
	return BattlePassLevel{}, false
}

/* ======================
   Avatars
   ====================== */

type SelectableAvatar struct {
	Sex         string `json:"sex"`
	PortraitURL string `json:"portraitUrl"`
	FullBodyURL string `json:"fullBodyUrl"`
}

var selectableAvatars = []SelectableAvatar{
	{Sex: "male", PortraitURL: "/avatars/commander-male-portrait.png", FullBodyURL: "/avatars/commander-male-full.png"},
	{Sex: "female", PortraitURL: "/avatars/commander-female-portrait.png", FullBodyURL: "/avatars/commander-female-full.png"},
}

func avatarForSex(sex string) SelectableAvatar {
	for _, a := range selectableAvatars {
		if a.Sex == sex {
			return a
		}
	}
	return selectableAvatars[0]
}
