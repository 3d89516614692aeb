package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.UnixMilli(1756400000000).UTC()

// newTestEngine pins the crit roll high (never crits) and the quest draw to
// index zero. Individual tests override where they need different luck.
func newTestEngine() *Engine {
	return &Engine{
		roll: func() float64 { return 1 },
		pick: func(n int) int { return 0 },
	}
}

func newTestProfile() PlayerProfile {
	return NewPlayerProfile("Nova", "female", "PT", "", testNow)
}

func TestApplyPointsGainLevelCascade(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	gained, _ := e.ApplyPointsGain(&p, 90, SourceReward)
	assert.Equal(t, int64(90), gained)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, int64(90), p.XP)

	gained, notes := e.ApplyPointsGain(&p, 250, SourceReward)
	assert.Equal(t, int64(250), gained)

	// 340 XP total: 100 to reach level 2, 150 to reach level 3, 90 left.
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, int64(90), p.XP)
	assert.Equal(t, int64(225), p.XPToNextLevel)
	assert.Equal(t, int64(340), p.Points)
	assert.Equal(t, int64(340), p.SeasonProgress[p.CurrentSeasonID])

	levelUps := 0
	for _, n := range notes {
		if n.Type == NoteSystemAlert && assert.NotEmpty(t, n.Message) {
			levelUps++
		}
	}
	assert.GreaterOrEqual(t, levelUps, 2)
}

func TestApplyPointsGainRewardIgnoresTapBonuses(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveTapBonuses = []ActiveTapBonus{
		{ID: "b1", Name: "Minor Power Surge", RemainingTaps: 50, Multiplier: 1.25},
	}

	gained, _ := e.ApplyPointsGain(&p, 100, SourceReward)

	assert.Equal(t, int64(100), gained)
	require.Len(t, p.ActiveTapBonuses, 1)
	assert.Equal(t, 50, p.ActiveTapBonuses[0].RemainingTaps)
}

func TestApplyPointsGainTapBonusesStackAdditively(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveTapBonuses = []ActiveTapBonus{
		{ID: "b1", Name: "Standard Power Surge", RemainingTaps: 10, Multiplier: 1.5},
		{ID: "b2", Name: "Minor Power Surge", RemainingTaps: 10, Multiplier: 1.25},
	}

	// Additive stacking: 100 * (1 + 0.5 + 0.25) = 175, not 100 * 1.5 * 1.25.
	gained, _ := e.ApplyPointsGain(&p, 100, SourceTap)
	assert.Equal(t, int64(175), gained)

	assert.Equal(t, 9, p.ActiveTapBonuses[0].RemainingTaps)
	assert.Equal(t, 9, p.ActiveTapBonuses[1].RemainingTaps)
}

func TestApplyPointsGainExpiresDepletedBonuses(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.ActiveTapBonuses = []ActiveTapBonus{
		{ID: "b1", Name: "Quick Boost", RemainingTaps: 1, Multiplier: 1.1},
		{ID: "b2", Name: "Standard Power Surge", RemainingTaps: 5, Multiplier: 1.5},
	}

	_, notes := e.ApplyPointsGain(&p, 10, SourceTap)

	require.Len(t, p.ActiveTapBonuses, 1)
	assert.Equal(t, "b2", p.ActiveTapBonuses[0].ID)

	expired := false
	for _, n := range notes {
		if n.Message == "Power boost from Quick Boost has expired." {
			expired = true
		}
	}
	assert.True(t, expired, "expected an expiry notification for Quick Boost")
}

func TestResolveTapBaseline(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	for i := 0; i < 10; i++ {
		result, _, err := e.ResolveTap(&p, TapInput{}, testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Gained)
		assert.False(t, result.Critical)
	}

	assert.Equal(t, int64(10), p.Points)
	assert.Equal(t, initialMaxTaps-10, p.CurrentTaps)
}

func TestResolveTapMultipliersCombineMultiplicatively(t *testing.T) {
	e := newTestEngine()
	e.roll = func() float64 { return 0 } // guaranteed crit
	p := newTestProfile()
	p.Upgrades["tapPower"] = 1       // base value 2
	p.Upgrades["critChance"] = 1     // any crit chance at all
	p.Upgrades["critMultiplier"] = 5 // 1.5x on crit
	p.Upgrades["comboBonus"] = 5     // +0.10 combo bonus

	// 2 * 2.5 (special) * 1.5 (crit) * 1.2 (combo: 1 + 0.10 + 10*0.01) = 9.
	result, _, err := e.ResolveTap(&p, TapInput{Special: true, ComboCount: 10}, testNow)
	require.NoError(t, err)

	assert.True(t, result.Critical)
	assert.Equal(t, int64(9), result.Gained)
}

func TestResolveTapDrainsEnergyAndArmsCooldown(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.CurrentTaps = 1

	result, _, err := e.ResolveTap(&p, TapInput{}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CurrentTaps)
	assert.Equal(t, testNow.UnixMilli()+tapRegenCooldown, p.TapsAvailableAt)
}

func TestResolveTapRejectsWhileCooldownPending(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.CurrentTaps = 0
	p.TapsAvailableAt = testNow.UnixMilli() + 60000

	before := p.Points
	_, notes, err := e.ResolveTap(&p, TapInput{}, testNow)

	assert.ErrorIs(t, err, ErrOutOfEnergy)
	assert.Equal(t, before, p.Points)
	assert.Equal(t, 0, p.CurrentTaps)
	assert.NotEmpty(t, notes)
}

func TestResolveTapLazyRefillAfterCooldown(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.CurrentTaps = 0
	p.TapsAvailableAt = testNow.UnixMilli() - 1

	result, _, err := e.ResolveTap(&p, TapInput{}, testNow)
	require.NoError(t, err)

	// Refilled to max, then one tap spent.
	assert.Equal(t, p.MaxTaps-1, result.CurrentTaps)
	assert.Equal(t, int64(1), result.Gained)
}

func TestPurchaseUpgrade(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.Points = 10

	_, err := e.PurchaseUpgrade(&p, "tapPower")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Points)
	assert.Equal(t, 1, p.Upgrades["tapPower"])

	// Next level costs floor(10 * 1.5) = 15.
	_, err = e.PurchaseUpgrade(&p, "tapPower")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 1, p.Upgrades["tapPower"])

	_, err = e.PurchaseUpgrade(&p, "warpDrive")
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestPurchaseUpgradeSyncsMuleDrones(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.Points = 5000

	_, err := e.PurchaseUpgrade(&p, "muleDrone")
	require.NoError(t, err)
	assert.Equal(t, 1, p.MuleDrones)
}

func TestPurchaseArkUpgradeRequiresWallet(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.Points = 10000

	_, err := e.PurchaseArkUpgrade(&p, "hullPlating1")
	assert.ErrorIs(t, err, ErrRequirementNotMet)

	p.IsWalletConnected = true
	_, err = e.PurchaseArkUpgrade(&p, "hullPlating1")
	require.NoError(t, err)
	assert.Equal(t, int64(9000), p.Points)

	_, err = e.PurchaseArkUpgrade(&p, "hullPlating1")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestPurchaseArkUpgradeFullSet(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.IsWalletConnected = true
	p.Points = 10000

	for _, u := range arkUpgradesData {
		_, err := e.PurchaseArkUpgrade(&p, u.ID)
		require.NoError(t, err)
	}

	assert.True(t, p.ArkHangarFullyUpgraded)
	assert.Equal(t, int64(1500), p.Points)
}

func TestPurchaseMarketplaceItem(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.Auron = 100

	_, err := e.PurchaseMarketplaceItem(&p, "tap_boost_minor")
	require.NoError(t, err)

	assert.Equal(t, int64(0), p.Auron)
	require.Len(t, p.ActiveTapBonuses, 1)
	bonus := p.ActiveTapBonuses[0]
	assert.Equal(t, "tap_boost_minor", bonus.SourceItemID)
	assert.Equal(t, 50, bonus.RemainingTaps)
	assert.Equal(t, 1.25, bonus.Multiplier)
	assert.NotEmpty(t, bonus.ID)

	_, err = e.PurchaseMarketplaceItem(&p, "tap_boost_minor")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestRefillTaps(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.CurrentTaps = 0
	p.Auron = auronCostForTapRefill - 1

	_, err := e.RefillTaps(&p, testNow)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	p.Auron = auronCostForTapRefill
	_, err = e.RefillTaps(&p, testNow)
	require.NoError(t, err)
	assert.Equal(t, p.MaxTaps, p.CurrentTaps)
	assert.Equal(t, int64(0), p.Auron)
}

func TestConnectWallet(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	_, err := e.ConnectWallet(&p, "0xabc")
	require.NoError(t, err)
	assert.True(t, p.IsWalletConnected)
	assert.Equal(t, "0xabc", p.WalletAddress)
	assert.Equal(t, int64(auronPerWalletConnect), p.Auron)

	_, err = e.ConnectWallet(&p, "0xdef")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, "0xabc", p.WalletAddress)
	assert.Equal(t, int64(auronPerWalletConnect), p.Auron)
}

func TestWatchRewardedAdCooldown(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	_, err := e.WatchRewardedAd(&p, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(rewardedAdAuronReward), p.Auron)

	_, err = e.WatchRewardedAd(&p, testNow.Add(time.Minute))
	assert.ErrorIs(t, err, ErrRequirementNotMet)

	_, err = e.WatchRewardedAd(&p, testNow.Add(31*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2*rewardedAdAuronReward), p.Auron)
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	originalCode := p.ReferralCode

	_, err := e.UpdateProfile(&p, "Vega", "male")
	require.NoError(t, err)
	assert.Equal(t, "Vega", p.Name)
	assert.Equal(t, "male", p.CommanderSex)
	assert.Equal(t, avatarForSex("male").FullBodyURL, p.AvatarURL)
	assert.Equal(t, avatarForSex("male").PortraitURL, p.PortraitURL)
	assert.Equal(t, originalCode, p.ReferralCode, "the referral code never changes after creation")
}

func TestUpdateProfilePartialAndInvalid(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	// Empty fields keep their current value.
	_, err := e.UpdateProfile(&p, "Vega", "")
	require.NoError(t, err)
	assert.Equal(t, "Vega", p.Name)
	assert.Equal(t, "female", p.CommanderSex)

	_, err = e.UpdateProfile(&p, "", "")
	assert.ErrorIs(t, err, ErrRequirementNotMet)

	_, err = e.UpdateProfile(&p, "bad<name>", "")
	assert.ErrorIs(t, err, ErrRequirementNotMet)
	assert.Equal(t, "Vega", p.Name)

	_, err = e.UpdateProfile(&p, "", "robot")
	assert.ErrorIs(t, err, ErrRequirementNotMet)
	assert.Equal(t, "female", p.CommanderSex)
}

func TestToggleCommander(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	require.Equal(t, "female", p.CommanderSex)

	_, err := e.ToggleCommander(&p)
	require.NoError(t, err)
	assert.Equal(t, "male", p.CommanderSex)
	assert.Equal(t, avatarForSex("male").PortraitURL, p.PortraitURL)

	_, err = e.ToggleCommander(&p)
	require.NoError(t, err)
	assert.Equal(t, "female", p.CommanderSex)
	assert.Equal(t, avatarForSex("female").PortraitURL, p.PortraitURL)
}

func TestPurchasePremiumPass(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.Auron = premiumPassCostInAuron

	_, err := e.PurchasePremiumPass(&p)
	require.NoError(t, err)
	assert.True(t, p.HasPremiumPass)
	assert.Equal(t, int64(0), p.Auron)

	_, err = e.PurchasePremiumPass(&p)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaimBattlePassReward(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	// Level 1 free reward is 500 points, flowing through the normal gain
	// path so XP and season progress move too.
	_, err := e.ClaimBattlePassReward(&p, 1, "free")
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.Points)
	assert.Equal(t, int64(500), p.SeasonProgress[p.CurrentSeasonID])
	assert.Greater(t, p.Level, 1)

	_, err = e.ClaimBattlePassReward(&p, 1, "free")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, int64(500), p.Points)
}

func TestClaimBattlePassRewardGates(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	_, err := e.ClaimBattlePassReward(&p, 3, "free")
	assert.ErrorIs(t, err, ErrRequirementNotMet, "pass level too low")

	_, err = e.ClaimBattlePassReward(&p, 1, "premium")
	assert.ErrorIs(t, err, ErrRequirementNotMet, "no premium pass")

	_, err = e.ClaimBattlePassReward(&p, 99, "free")
	assert.ErrorIs(t, err, ErrUnknownID)

	_, err = e.ClaimBattlePassReward(&p, 1, "gold")
	assert.ErrorIs(t, err, ErrUnknownID)

	// Level 2 has no free reward at all.
	p.BattlePassLevel = 2
	_, err = e.ClaimBattlePassReward(&p, 2, "free")
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestClaimBattlePassTitleReward(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()
	p.HasPremiumPass = true
	p.BattlePassLevel = 5

	_, err := e.ClaimBattlePassReward(&p, 5, "premium")
	require.NoError(t, err)
	assert.Contains(t, p.UnlockedTitles, "Seasoned")

	// The free track at the same level is still claimable.
	_, err = e.ClaimBattlePassReward(&p, 5, "free")
	require.NoError(t, err)
	assert.Equal(t, int64(25), p.Auron)
}

func TestBattlePassXPCascade(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	e.ApplyPointsGain(&p, float64(battlePassXPPerLevel*2+500), SourceReward)

	assert.Equal(t, 3, p.BattlePassLevel)
	assert.Equal(t, int64(500), p.BattlePassXP)
	assert.Equal(t, int64(battlePassXPPerLevel), p.XPToNextBattlePassLevel)
}

func TestLeaguePromotionAndDemotion(t *testing.T) {
	e := newTestEngine()
	p := newTestProfile()

	assert.Equal(t, defaultLeague, p.League)

	e.ApplyPointsGain(&p, 60000, SourceReward)
	assert.Equal(t, "Silver", p.League)

	// Spending points re-derives the league from the new balance.
	p.IsWalletConnected = true
	_, err := e.PurchaseArkUpgrade(&p, "cargoBays1")
	require.NoError(t, err)
	assert.Equal(t, leagueForPoints(p.Points), p.League)
}
