package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Narrator is the C.O.R.E. companion collaborator: a templated-prompt text
// generator treated as at-least-sometimes-unavailable. A failed or slow
// generation never touches game state; callers fall back to a canned line
// or skip the message entirely.
type Narrator struct {
	client   *http.Client
	endpoint string
}

func NewNarrator(endpoint string) *Narrator {
	return &Narrator{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoint: endpoint,
	}
}

// NarrationContext is a flat bag of key/value pairs; values are numbers and
// strings only.
type NarrationContext map[string]interface{}

const (
	NarrationBriefing    = "briefing"
	NarrationProgress    = "progress_update"
	NarrationLoreSnippet = "lore_snippet"
	NarrationWelcomeBack = "welcome_back"
)

var narrationTemplates = map[string]string{
	NarrationBriefing:    "You are C.O.R.E., the AI companion aboard the Alliance Forge. Brief Commander {{name}} on the current season objective: {{objective}}. Season progress so far: {{progress}}.",
	NarrationProgress:    "You are C.O.R.E. Give Commander {{name}} a short progress update. Points: {{points}}. Level: {{level}}. League: {{league}}.",
	NarrationLoreSnippet: "You are C.O.R.E. Share a short lore snippet about {{topic}} from the Alliance Forge archives.",
	NarrationWelcomeBack: "You are C.O.R.E. Welcome Commander {{name}} back after {{minutesAway}} minutes away. The M.U.L.E. drones generated {{earnings}} points.",
}

var narrationFallbacks = map[string]string{
	NarrationBriefing:    "C.O.R.E. online. Objectives uploaded to your HUD, Commander.",
	NarrationProgress:    "Telemetry nominal, Commander. Keep forging.",
	NarrationLoreSnippet: "Archive access degraded. Lore retrieval will resume shortly.",
	NarrationWelcomeBack: "Welcome back, Commander. Drone operations proceeded in your absence.",
}

type narrationRequest struct {
	Prompt  string           `json:"prompt"`
	Context NarrationContext `json:"context,omitempty"`
}

type narrationResponse struct {
	Text string `json:"text"`
}

// Generate renders the prompt template for kind and requests a line from
// the external text service. On any failure it returns the canned fallback
// for the kind and a non-nil error the caller may log and otherwise ignore.
func (n *Narrator) Generate(ctx context.Context, kind string, nctx NarrationContext) (string, error) {
	tpl, ok := narrationTemplates[kind]
	if !ok {
		return "", fmt.Errorf("unknown narration kind: %s", kind)
	}
	prompt := renderTemplate(tpl, nctx)

	fallback := narrationFallbacks[kind]
	if n.endpoint == "" {
		return fallback, fmt.Errorf("narrator endpoint not configured")
	}

	body, err := json.Marshal(narrationRequest{Prompt: prompt, Context: nctx})
	if err != nil {
		return fallback, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fallback, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fallback, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback, fmt.Errorf("narrator returned status %d", resp.StatusCode)
	}

	var decoded narrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fallback, err
	}
	text := strings.TrimSpace(decoded.Text)
	if text == "" {
		return fallback, fmt.Errorf("narrator returned empty text")
	}
	return text, nil
}

// renderTemplate substitutes {{key}} placeholders with context values.
func renderTemplate(tpl string, nctx NarrationContext) string {
	if len(nctx) == 0 {
		return tpl
	}
	keys := make([]string, 0, len(nctx))
	for k := range nctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprintf("%v", nctx[k]))
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
