package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

// App bundles the wired components the handlers need.
type App struct {
	cfg      Config
	engine   *Engine
	registry *Registry
	store    *Store
	mirror   *Mirror
	narrator *Narrator
	tokens   *TokenIssuer
}

/* ======================
   Request / Response Types
   ====================== */

type SetupRequest struct {
	Name           string `json:"name"`
	CommanderSex   string `json:"commanderSex"`
	Country        string `json:"country"`
	ReferredByCode string `json:"referredByCode,omitempty"`
}

type SetupResponse struct {
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
	Token   string         `json:"token,omitempty"`
	Profile *PlayerProfile `json:"profile,omitempty"`
}

type ProfileResponse struct {
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
	Profile *PlayerProfile `json:"profile,omitempty"`
}

type TapRequest struct {
	Special    bool `json:"special,omitempty"`
	ComboCount int  `json:"comboCount,omitempty"`
}

type TapResponse struct {
	OK            bool           `json:"ok"`
	Error         string         `json:"error,omitempty"`
	Result        *TapResult     `json:"result,omitempty"`
	Points        int64          `json:"points"`
	Level         int            `json:"level"`
	Notifications []Notification `json:"notifications,omitempty"`
}

type UpdateProfileRequest struct {
	Name         string `json:"name,omitempty"`
	CommanderSex string `json:"commanderSex,omitempty"`
}

type EarnPointsRequest struct {
	Amount float64 `json:"amount"`
	Source string  `json:"source,omitempty"`
}

type EarnPointsResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Granted int64  `json:"granted"`
	Points  int64  `json:"points"`
}

type PurchaseUpgradeRequest struct {
	UpgradeID string `json:"upgradeId"`
}

type PurchaseItemRequest struct {
	ItemID string `json:"itemId"`
}

type ConnectWalletRequest struct {
	Address string `json:"address"`
}

type ClaimQuestRequest struct {
	QuestID string `json:"questId"`
}

type ClaimBattlePassRequest struct {
	Level int    `json:"level"`
	Track string `json:"track"`
}

type MutationResponse struct {
	OK            bool           `json:"ok"`
	Error         string         `json:"error,omitempty"`
	Profile       *PlayerProfile `json:"profile,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
}

type MessagesResponse struct {
	OK       bool               `json:"ok"`
	Error    string             `json:"error,omitempty"`
	Messages []CompanionMessage `json:"messages,omitempty"`
}

type NarrateRequest struct {
	Kind    string           `json:"kind"`
	Context NarrationContext `json:"context,omitempty"`
}

type NarrateResponse struct {
	OK   bool   `json:"ok"`
	Text string `json:"text,omitempty"`
}

type LeaderboardResponse struct {
	OK      bool               `json:"ok"`
	Error   string             `json:"error,omitempty"`
	Results []LeaderboardEntry `json:"results,omitempty"`
}

type TelemetryEventRequest struct {
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, app *App) {
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/setup", setupHandler(app))
	mux.HandleFunc("/profile", profileHandler(app))
	mux.HandleFunc("/profile/update", updateProfileHandler(app))
	mux.HandleFunc("/profile/toggle-commander", toggleCommanderHandler(app))
	mux.HandleFunc("/tap", tapHandler(app))
	mux.HandleFunc("/points/earn", earnPointsHandler(app))
	mux.HandleFunc("/upgrades/purchase", purchaseUpgradeHandler(app))
	mux.HandleFunc("/ark-upgrades/purchase", purchaseArkUpgradeHandler(app))
	mux.HandleFunc("/marketplace/purchase", purchaseMarketplaceHandler(app))
	mux.HandleFunc("/taps/refill", refillTapsHandler(app))
	mux.HandleFunc("/wallet/connect", connectWalletHandler(app))
	mux.HandleFunc("/ads/watch", watchAdHandler(app))
	mux.HandleFunc("/battle-pass/purchase-premium", purchasePremiumPassHandler(app))
	mux.HandleFunc("/battle-pass/claim", claimBattlePassHandler(app))
	mux.HandleFunc("/quests/claim", claimQuestHandler(app))
	mux.HandleFunc("/quests/refresh", refreshQuestsHandler(app))
	mux.HandleFunc("/messages", messagesHandler(app))
	mux.HandleFunc("/narrate", narrateHandler(app))
	mux.HandleFunc("/leaderboard", leaderboardHandler(app))
	mux.HandleFunc("/telemetry", telemetryHandler(app))
	mux.HandleFunc("/events", eventsHandler(app))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("response encode failed:", err)
	}
}

// requireSession resolves the bearer token to a live session, loading the
// profile from the local store on first access.
func requireSession(app *App, w http.ResponseWriter, r *http.Request) (*Session, bool) {
	profileID, err := profileIDFromRequest(app.tokens, r)
	if err != nil || !isValidProfileID(profileID) {
		w.WriteHeader(http.StatusUnauthorized)
		return nil, false
	}
	session, found, err := app.registry.Open(profileID, time.Now().UTC())
	if err != nil {
		log.Println("failed to open session:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return session, true
}

/* ======================
   Setup & Profile
   ====================== */

func setupHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req SetupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if !isValidCommanderName(req.Name) || !isValidCommanderSex(req.CommanderSex) {
			writeJSON(w, SetupResponse{Error: "invalid name or commander selection"})
			return
		}

		now := time.Now().UTC()
		profile := NewPlayerProfile(req.Name, req.CommanderSex, req.Country, req.ReferredByCode, now)
		session := app.registry.Create(profile, now)

		// The first quest slate is generated right away so a new commander
		// has objectives on day one.
		if _, _, err := app.registry.Mutate(session, now, func(p *PlayerProfile) ([]Notification, error) {
			notes, _ := app.engine.RefreshDailyQuestsIfNeeded(p, now)
			return notes, nil
		}); err != nil {
			log.Println("initial quest refresh failed:", err)
		}

		session.messages.Add(NarrationBriefing, "Welcome aboard, Commander "+profile.Name+". The forges are lit. Your referral code is "+profile.ReferralCode+".", now)

		token, err := app.tokens.Issue(profile.ID, now)
		if err != nil {
			log.Println("token issue failed:", err)
			writeJSON(w, SetupResponse{Error: "could not issue session token"})
			return
		}

		view := app.registry.View(session)
		writeJSON(w, SetupResponse{OK: true, Token: token, Profile: &view})
	}
}

func profileHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}
		view := app.registry.View(session)
		writeJSON(w, ProfileResponse{OK: true, Profile: &view})
	}
}

func updateProfileHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrRequirementNotMet
		}
		return app.engine.UpdateProfile(p, req.Name, req.CommanderSex)
	})
}

func toggleCommanderHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		return app.engine.ToggleCommander(p)
	})
}

/* ======================
   Tap & Points
   ====================== */

func tapHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}

		var req TapRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}
		if req.ComboCount < 0 {
			req.ComboCount = 0
		}

		now := time.Now().UTC()
		var result TapResult
		profile, notes, err := app.registry.Mutate(session, now, func(p *PlayerProfile) ([]Notification, error) {
			res, notes, err := app.engine.ResolveTap(p, TapInput{Special: req.Special, ComboCount: req.ComboCount}, now)
			result = res
			return notes, err
		})
		if err != nil {
			// A rejected tap still carries the out-of-energy line with the
			// remaining cooldown; the player sees it, not just the code.
			writeJSON(w, TapResponse{Error: rejectReason(err), Points: profile.Points, Level: profile.Level, Notifications: notes})
			return
		}
		writeJSON(w, TapResponse{OK: true, Result: &result, Points: profile.Points, Level: profile.Level, Notifications: notes})
	}
}

// earnPointsHandler is the score callback for the arcade minigames and any
// other non-tap grant. No tap bonuses, no crit, no combo.
func earnPointsHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}

		var req EarnPointsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount < 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		now := time.Now().UTC()
		var granted int64
		profile, _, err := app.registry.Mutate(session, now, func(p *PlayerProfile) ([]Notification, error) {
			amount, notes := app.engine.ApplyPointsGain(p, req.Amount, SourceReward)
			granted = amount
			return notes, nil
		})
		if err != nil {
			writeJSON(w, EarnPointsResponse{Error: rejectReason(err)})
			return
		}
		writeJSON(w, EarnPointsResponse{OK: true, Granted: granted, Points: profile.Points})
	}
}

/* ======================
   Purchases
   ====================== */

// mutateHandler wraps the shared decode, mutate and respond flow used by the
// simple engine operations.
func mutateHandler(app *App, fn func(*App, *PlayerProfile, *http.Request) ([]Notification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}

		now := time.Now().UTC()
		profile, notes, err := app.registry.Mutate(session, now, func(p *PlayerProfile) ([]Notification, error) {
			return fn(app, p, r)
		})
		if err != nil {
			writeJSON(w, MutationResponse{Error: rejectReason(err)})
			return
		}
		writeJSON(w, MutationResponse{OK: true, Profile: &profile, Notifications: notes})
	}
}

func purchaseUpgradeHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req PurchaseUpgradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrUnknownID
		}
		return app.engine.PurchaseUpgrade(p, req.UpgradeID)
	})
}

func purchaseArkUpgradeHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req PurchaseUpgradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrUnknownID
		}
		return app.engine.PurchaseArkUpgrade(p, req.UpgradeID)
	})
}

func purchaseMarketplaceHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req PurchaseItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrUnknownID
		}
		return app.engine.PurchaseMarketplaceItem(p, req.ItemID)
	})
}

func refillTapsHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		return app.engine.RefillTaps(p, time.Now().UTC())
	})
}

func connectWalletHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req ConnectWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrUnknownID
		}
		return app.engine.ConnectWallet(p, strings.TrimSpace(req.Address))
	})
}

func watchAdHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		return app.engine.WatchRewardedAd(p, time.Now().UTC())
	})
}

/* ======================
   Battle Pass & Quests
   ====================== */

func purchasePremiumPassHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		return app.engine.PurchasePremiumPass(p)
	})
}

func claimBattlePassHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req ClaimBattlePassRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrUnknownID
		}
		return app.engine.ClaimBattlePassReward(p, req.Level, req.Track)
	})
}

func claimQuestHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		var req ClaimQuestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, ErrUnknownID
		}
		return app.engine.ClaimQuestReward(p, req.QuestID)
	})
}

func refreshQuestsHandler(app *App) http.HandlerFunc {
	return mutateHandler(app, func(app *App, p *PlayerProfile, r *http.Request) ([]Notification, error) {
		notes, _ := app.engine.RefreshDailyQuestsIfNeeded(p, time.Now().UTC())
		return notes, nil
	})
}

/* ======================
   Companion
   ====================== */

func messagesHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}
		writeJSON(w, MessagesResponse{OK: true, Messages: session.messages.List()})
	}
}

// narrateHandler asks C.O.R.E. for a flavor line and appends it to the
// companion feed. Generation failure degrades to the canned fallback and
// never touches the profile.
func narrateHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}

		var req NarrateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		text, err := app.narrator.Generate(ctx, req.Kind, req.Context)
		if err != nil {
			log.Println("narration degraded:", err)
		}
		if text != "" {
			session.messages.Add(req.Kind, text, time.Now().UTC())
		}
		writeJSON(w, NarrateResponse{OK: true, Text: text})
	}
}

/* ======================
   Leaderboard & Telemetry
   ====================== */

func leaderboardHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.mirror == nil {
			writeJSON(w, LeaderboardResponse{Error: "leaderboard unavailable"})
			return
		}
		entries, err := app.mirror.Leaderboard(50)
		if err != nil {
			log.Println("leaderboard query failed:", err)
			writeJSON(w, LeaderboardResponse{Error: "leaderboard unavailable"})
			return
		}
		writeJSON(w, LeaderboardResponse{OK: true, Results: entries})
	}
}

func telemetryHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		session, ok := requireSession(app, w, r)
		if !ok {
			return
		}

		var req TelemetryEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventType == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		profile := app.registry.View(session)
		if err := app.store.RecordTelemetry(profile.ID, req.EventType, req.Payload, time.Now().UTC()); err != nil {
			log.Println("telemetry record failed:", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
