package main

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

/* ======================
   Notifications
   ====================== */

const (
	NoteSystemAlert = "system_alert"
	NoteBriefing    = "briefing"
	NoteProgress    = "progress_update"
)

// Notification is a side-effect message produced by an engine transition.
// The engine never talks to the player directly; callers route these to the
// companion message log and any transport they like.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func alert(format string, args ...interface{}) Notification {
	return Notification{Type: NoteSystemAlert, Message: fmt.Sprintf(format, args...)}
}

/* ======================
   Engine
   ====================== */

// PointSource distinguishes tap gains (marketplace bonuses apply) from
// everything else (drones, quest rewards, pass rewards: no bonus stacking).
type PointSource string

const (
	SourceTap     PointSource = "tap"
	SourceOffline PointSource = "offline"
	SourceReward  PointSource = "reward"
)

// Engine owns every rule for how a game event transforms a PlayerProfile.
// All methods mutate the profile they are handed and return the resulting
// notifications; persistence happens strictly outside. Randomness is
// injected so tests can pin crit rolls and quest draws.
type Engine struct {
	roll func() float64  // crit roll, [0,1)
	pick func(n int) int // quest template draw, [0,n)
}

func NewEngine() *Engine {
	return &Engine{
		roll: rand.Float64,
		pick: rand.Intn,
	}
}

/* ======================
   Point Gains
   ====================== */

// ApplyPointsGain credits a raw point amount and runs every downstream
// accounting rule: season progress, XP level cascade, battle-pass cascade,
// league recompute and quest counters.
//
// Bonus stacking is deliberately split in two different rules. Marketplace
// tap bonuses combine ADDITIVELY here (sum of multiplier-1 across active
// bonuses), while the instantaneous special/crit/combo multipliers combine
// MULTIPLICATIVELY inside ResolveTap before the amount reaches this
// function. Both behaviors are observed in the live game; do not unify
// them.
func (e *Engine) ApplyPointsGain(p *PlayerProfile, raw float64, source PointSource) (int64, []Notification) {
	var notes []Notification

	final := raw
	if source == SourceTap && len(p.ActiveTapBonuses) > 0 {
		factor := 0.0
		active := p.ActiveTapBonuses[:0]
		var expired []ActiveTapBonus
		for _, bonus := range p.ActiveTapBonuses {
			factor += bonus.Multiplier - 1
			bonus.RemainingTaps--
			if bonus.RemainingTaps > 0 {
				active = append(active, bonus)
			} else {
				expired = append(expired, bonus)
			}
		}
		p.ActiveTapBonuses = active
		final = raw * (1 + factor)

		for _, bonus := range expired {
			notes = append(notes, alert("Power boost from %s has expired.", bonus.Name))
		}
	}

	amount := int64(math.Round(final))
	if amount < 0 {
		amount = 0
	}

	p.Points += amount
	p.SeasonProgress[p.CurrentSeasonID] += amount

	notes = append(notes, e.applyXP(p, amount)...)

	newLeague := leagueForPoints(p.Points)
	if newLeague != p.League {
		p.League = newLeague
		notes = append(notes, alert("Promotion! You've reached the %s league.", newLeague))
	}

	notes = append(notes, e.updateQuestProgress(p, QuestPointsEarned, amount)...)
	notes = append(notes, e.applyBattlePassXP(p, amount)...)

	return amount, notes
}

// applyXP feeds gained points into player XP, cascading through as many
// level-ups as the gain covers. The XP requirement grows by the level
// multiplier once per level gained, in order.
func (e *Engine) applyXP(p *PlayerProfile, amount int64) []Notification {
	var notes []Notification
	p.XP += amount
	for p.XP >= p.XPToNextLevel {
		p.XP -= p.XPToNextLevel
		p.Level++
		p.XPToNextLevel = int64(math.Floor(float64(p.XPToNextLevel) * xpLevelMultiplier))
		p.RankTitle = rankTitleForLevel(p.Level)
		p.CurrentTierColor = tierColorForLevel(p.Level)
		notes = append(notes, alert("Level Up! You reached level %d.", p.Level))
	}
	return notes
}

// applyBattlePassXP mirrors the player XP cascade for the battle pass. The
// per-level requirement stays constant.
func (e *Engine) applyBattlePassXP(p *PlayerProfile, amount int64) []Notification {
	var notes []Notification
	p.BattlePassXP += amount
	for p.BattlePassXP >= p.XPToNextBattlePassLevel {
		p.BattlePassXP -= p.XPToNextBattlePassLevel
		p.BattlePassLevel++
		notes = append(notes, alert("Battle Pass Level Up! Reached Level %d.", p.BattlePassLevel))
	}
	return notes
}

/* ======================
   Tap Resolution
   ====================== */

// TapInput carries the presentation-layer inputs to a tap: whether the
// special logo target was hit, and the caller's rolling combo count (a UI
// timer concern; it resets after 3 idle seconds and does not survive a
// reload).
type TapInput struct {
	Special    bool
	ComboCount int
}

type TapResult struct {
	Gained          int64 `json:"gained"`
	Critical        bool  `json:"critical"`
	CurrentTaps     int   `json:"currentTaps"`
	TapsAvailableAt int64 `json:"tapsAvailableAt"`
}

// ResolveTap runs the full tap pipeline: lazy energy regeneration, energy
// spend, base value + upgrade bonuses, special/crit/combo multipliers
// (multiplicative), then the generic gain path. There is no background
// refill timer; energy is re-derived from TapsAvailableAt on every attempt.
func (e *Engine) ResolveTap(p *PlayerProfile, in TapInput, now time.Time) (TapResult, []Notification, error) {
	nowMs := now.UnixMilli()

	if p.CurrentTaps <= 0 {
		if nowMs < p.TapsAvailableAt {
			remaining := time.Duration(p.TapsAvailableAt-nowMs) * time.Millisecond
			note := alert("Out of tap energy. Reserves restore in %s.", remaining.Round(time.Second))
			return TapResult{CurrentTaps: 0, TapsAvailableAt: p.TapsAvailableAt}, []Notification{note}, ErrOutOfEnergy
		}
		p.CurrentTaps = p.MaxTaps
	}

	p.CurrentTaps--
	if p.CurrentTaps == 0 {
		p.TapsAvailableAt = nowMs + tapRegenCooldown
	}

	value := float64(pointsPerTap + p.Upgrades["tapPower"])

	var notes []Notification
	if in.Special {
		value *= specialTapMultiplier
		notes = append(notes, alert("Precision Strike! Bonus points awarded."))
	}

	critChance := float64(p.Upgrades["critChance"]) * 0.005
	critMultiplier := 1 + float64(p.Upgrades["critMultiplier"])*0.1
	critical := e.roll() < critChance
	if critical {
		value *= critMultiplier
		notes = append(notes, alert("Critical Tap! Power amplified."))
	}

	comboMultiplier := 1 + float64(p.Upgrades["comboBonus"])*0.02 + float64(in.ComboCount)*0.01
	value *= comboMultiplier

	notes = append(notes, e.updateQuestProgress(p, QuestTaps, 1)...)

	gained, gainNotes := e.ApplyPointsGain(p, value, SourceTap)
	notes = append(notes, gainNotes...)

	return TapResult{
		Gained:          gained,
		Critical:        critical,
		CurrentTaps:     p.CurrentTaps,
		TapsAvailableAt: p.TapsAvailableAt,
	}, notes, nil
}

/* ======================
   Purchases
   ====================== */

// PurchaseUpgrade buys the next level of a repeatable upgrade for points.
func (e *Engine) PurchaseUpgrade(p *PlayerProfile, upgradeID string) ([]Notification, error) {
	upgrade, ok := upgradeByID(upgradeID)
	if !ok {
		return nil, ErrUnknownID
	}

	currentLevel := p.Upgrades[upgradeID]
	if upgrade.MaxLevel > 0 && currentLevel >= upgrade.MaxLevel {
		return nil, ErrMaxLevelReached
	}
	cost := upgradeCost(upgrade, currentLevel)
	if p.Points < cost {
		return nil, ErrInsufficientFunds
	}

	p.Points -= cost
	p.Upgrades[upgradeID] = currentLevel + 1
	if upgradeID == "muleDrone" {
		p.MuleDrones = p.Upgrades[upgradeID]
	}
	// Spending can demote league inputs; keep the derivation fresh.
	p.League = leagueForPoints(p.Points)

	notes := []Notification{alert("Upgrade complete: %s.", upgrade.Name)}
	notes = append(notes, e.updateQuestProgress(p, QuestPurchaseUpgrade, 1)...)
	return notes, nil
}

// PurchaseArkUpgrade buys a one-time Ark unlock. The Ark Hangar is gated on
// a connected wallet.
func (e *Engine) PurchaseArkUpgrade(p *PlayerProfile, upgradeID string) ([]Notification, error) {
	upgrade, ok := arkUpgradeByID(upgradeID)
	if !ok {
		return nil, ErrUnknownID
	}
	if !p.IsWalletConnected {
		return nil, ErrRequirementNotMet
	}
	if p.Upgrades[upgradeID] > 0 {
		return nil, ErrAlreadyClaimed
	}
	if p.Points < upgrade.Cost {
		return nil, ErrInsufficientFunds
	}

	p.Points -= upgrade.Cost
	p.Upgrades[upgradeID] = 1
	p.League = leagueForPoints(p.Points)

	fullyUpgraded := true
	for _, u := range arkUpgradesData {
		if p.Upgrades[u.ID] == 0 {
			fullyUpgraded = false
			break
		}
	}
	p.ArkHangarFullyUpgraded = fullyUpgraded

	notes := []Notification{alert("Ark upgrade installed: %s.", upgrade.Name)}
	if fullyUpgraded {
		notes = append(notes, alert("Ark Hangar fully upgraded. The fleet is ready."))
	}
	notes = append(notes, e.updateQuestProgress(p, QuestPurchaseUpgrade, 1)...)
	return notes, nil
}

// PurchaseMarketplaceItem spends auron on a temporary tap bonus. The bonus
// joins ActiveTapBonuses rather than granting a permanent upgrade.
func (e *Engine) PurchaseMarketplaceItem(p *PlayerProfile, itemID string) ([]Notification, error) {
	item, ok := marketplaceItemByID(itemID)
	if !ok {
		return nil, ErrUnknownID
	}
	if p.Auron < item.CostInAuron {
		return nil, ErrInsufficientFunds
	}

	p.Auron -= item.CostInAuron
	p.ActiveTapBonuses = append(p.ActiveTapBonuses, ActiveTapBonus{
		ID:               uuid.NewString(),
		SourceItemID:     item.ID,
		Name:             item.Name,
		RemainingTaps:    item.DurationTaps,
		Multiplier:       item.Multiplier,
		OriginalDuration: item.DurationTaps,
	})

	notes := []Notification{alert("%s activated.", item.Name)}
	notes = append(notes, e.updateQuestProgress(p, QuestSpendAuron, item.CostInAuron)...)
	return notes, nil
}

// RefillTaps restores tap energy immediately for auron.
func (e *Engine) RefillTaps(p *PlayerProfile, now time.Time) ([]Notification, error) {
	if p.Auron < auronCostForTapRefill {
		return nil, ErrInsufficientFunds
	}
	p.Auron -= auronCostForTapRefill
	p.CurrentTaps = p.MaxTaps
	p.TapsAvailableAt = now.UnixMilli()

	notes := []Notification{alert("Tap energy restored for %d Auron.", auronCostForTapRefill)}
	notes = append(notes, e.updateQuestProgress(p, QuestSpendAuron, auronCostForTapRefill)...)
	return notes, nil
}

/* ======================
   Identity
   ====================== */

// UpdateProfile renames the commander and/or switches the commander body,
// re-deriving avatar and portrait art. Empty fields keep their current
// value; the referral code is fixed at creation and never changes here.
func (e *Engine) UpdateProfile(p *PlayerProfile, name, commanderSex string) ([]Notification, error) {
	name = strings.TrimSpace(name)
	if name == "" && commanderSex == "" {
		return nil, ErrRequirementNotMet
	}
	if name != "" && !isValidCommanderName(name) {
		return nil, ErrRequirementNotMet
	}
	if commanderSex != "" && !isValidCommanderSex(commanderSex) {
		return nil, ErrRequirementNotMet
	}

	if name != "" {
		p.Name = name
	}
	if commanderSex != "" {
		p.CommanderSex = commanderSex
	}
	avatar := avatarForSex(p.CommanderSex)
	p.AvatarURL = avatar.FullBodyURL
	p.PortraitURL = avatar.PortraitURL

	return []Notification{alert("Commander profile updated.")}, nil
}

// ToggleCommander flips between the two commander bodies.
func (e *Engine) ToggleCommander(p *PlayerProfile) ([]Notification, error) {
	next := "male"
	if p.CommanderSex == "male" {
		next = "female"
	}
	return e.UpdateProfile(p, "", next)
}

/* ======================
   Wallet / Monetization
   ====================== */

// ConnectWallet marks the wallet as connected and grants the one-time
// auron bonus. Connecting twice is a reported no-op.
func (e *Engine) ConnectWallet(p *PlayerProfile, address string) ([]Notification, error) {
	if p.IsWalletConnected {
		return nil, ErrAlreadyClaimed
	}
	p.IsWalletConnected = true
	p.WalletAddress = address
	p.Auron += auronPerWalletConnect
	return []Notification{alert("Wallet connected! %d Auron bonus and Ark Hangar unlocked.", auronPerWalletConnect)}, nil
}

// WatchRewardedAd grants the ad reward if the cooldown, re-derived from the
// stored timestamp, has elapsed.
func (e *Engine) WatchRewardedAd(p *PlayerProfile, now time.Time) ([]Notification, error) {
	nowMs := now.UnixMilli()
	if p.LastRewardedAdTimestamp > 0 && nowMs-p.LastRewardedAdTimestamp < rewardedAdCooldownMs {
		return nil, ErrRequirementNotMet
	}
	p.Auron += rewardedAdAuronReward
	p.LastRewardedAdTimestamp = nowMs
	return []Notification{alert("Broadcast complete. Received %d Auron.", rewardedAdAuronReward)}, nil
}

/* ======================
   Battle Pass
   ====================== */

// PurchasePremiumPass unlocks the premium reward track for auron.
func (e *Engine) PurchasePremiumPass(p *PlayerProfile) ([]Notification, error) {
	if p.HasPremiumPass {
		return nil, ErrAlreadyClaimed
	}
	if p.Auron < premiumPassCostInAuron {
		return nil, ErrInsufficientFunds
	}
	p.Auron -= premiumPassCostInAuron
	p.HasPremiumPass = true
	return []Notification{alert("Premium Battle Pass unlocked!")}, nil
}

// ClaimBattlePassReward grants the reward for a level/track pair once.
// Claiming again reports ALREADY_CLAIMED without a double grant.
func (e *Engine) ClaimBattlePassReward(p *PlayerProfile, level int, track string) ([]Notification, error) {
	if track != "free" && track != "premium" {
		return nil, ErrUnknownID
	}
	levelData, ok := battlePassLevelData(level)
	if !ok {
		return nil, ErrUnknownID
	}
	reward := levelData.FreeReward
	if track == "premium" {
		reward = levelData.PremiumReward
	}
	if reward == nil {
		return nil, ErrUnknownID
	}
	if p.BattlePassLevel < level {
		return nil, ErrRequirementNotMet
	}
	if track == "premium" && !p.HasPremiumPass {
		return nil, ErrRequirementNotMet
	}
	for _, claimed := range p.ClaimedBattlePassRewards[level] {
		if claimed == track {
			return nil, ErrAlreadyClaimed
		}
	}

	var notes []Notification
	switch reward.Kind {
	case RewardPoints:
		_, gainNotes := e.ApplyPointsGain(p, float64(reward.Amount), SourceReward)
		notes = append(notes, gainNotes...)
	case RewardAuron:
		p.Auron += reward.Amount
	case RewardTitle:
		p.UnlockedTitles = append(p.UnlockedTitles, reward.Name)
	case RewardUniformPiece:
		p.UnlockedUniformPieces = append(p.UnlockedUniformPieces, reward.Name)
	}

	p.ClaimedBattlePassRewards[level] = append(p.ClaimedBattlePassRewards[level], track)

	label := reward.Name
	if label == "" {
		label = fmt.Sprintf("%d %s", reward.Amount, reward.Kind)
	}
	notes = append(notes, alert("Battle Pass reward claimed: %s.", label))
	return notes, nil
}
