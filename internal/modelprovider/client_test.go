package modelprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// #region fixture-server

// fixtureServer returns a chat-completions endpoint that always replies with
// the given JSON content, for injecting into Client without a live provider.
func fixtureServer(t *testing.T, content string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: content}},
			},
			Usage: openai.Usage{PromptTokens: 42, CompletionTokens: 7},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClientWithOpenAI(openai.NewClientWithConfig(cfg), "test-model")
}

// #endregion fixture-server

// #region test-classify

func TestClassifyScreen_ParsesStructuredReply(t *testing.T) {
	client := fixtureServer(t, `{"screenType":"overworld","briefDescription":"standing in tall grass"}`)

	result, call, err := client.ClassifyScreen(context.Background(), "base64-frame-data")
	if err != nil {
		t.Fatalf("classify screen: %v", err)
	}
	if result.ScreenType != gamestate.ScreenOverworld {
		t.Errorf("expected overworld, got %s", result.ScreenType)
	}
	if call.PromptTokens != 42 || call.CompletionTokens != 7 {
		t.Errorf("unexpected token accounting: %+v", call)
	}
}

func TestClassifyScreen_MalformedReplyErrors(t *testing.T) {
	client := fixtureServer(t, `not json`)

	_, _, err := client.ClassifyScreen(context.Background(), "base64-frame-data")
	if err == nil {
		t.Fatal("expected an error decoding a malformed reply")
	}
}

// #endregion test-classify

// #region test-decide

func TestDecide_ParsesStructuredReply(t *testing.T) {
	reply := `{
		"gameState": {"area": "route-1", "badges": 1},
		"decision": {
			"screenAnalysis": "overworld, clear path north",
			"reasoning": "heading to the next town",
			"buttonSequence": [{"confidences": {"UP": 0.9, "A": 0.1}}],
			"progressConfidence": 0.8,
			"notes": {}
		}
	}`
	client := fixtureServer(t, reply)

	raw, call, err := client.Decide(context.Background(), DecideInput{CurrentFrame: FrameRef{ImageBase64: "frame"}})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if raw.GameState.Area != "route-1" {
		t.Errorf("expected area route-1, got %s", raw.GameState.Area)
	}
	if len(raw.Decision.ButtonSequence) != 1 {
		t.Fatalf("expected 1 sequence step, got %d", len(raw.Decision.ButtonSequence))
	}
	if call.PromptTokens != 42 {
		t.Errorf("unexpected prompt tokens: %d", call.PromptTokens)
	}
}

// #endregion test-decide

// #region test-merge

func TestMergeDecision_DerivesPrimaryButton(t *testing.T) {
	raw := RawDecision{}
	raw.Decision.ButtonSequence = []gamestate.SequenceStep{
		{Confidences: gamestate.ConfidenceTable{gamestate.ButtonUp: 0.9, gamestate.ButtonA: 0.1}},
	}
	raw.Decision.Reasoning = "heading north"

	decision := MergeDecision(raw)

	if decision.Button != gamestate.ButtonUp {
		t.Errorf("expected UP as primary button, got %s", decision.Button)
	}
	if decision.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %.2f", decision.Confidence)
	}
	if decision.Reasoning != "heading north" {
		t.Errorf("expected reasoning carried through, got %q", decision.Reasoning)
	}
}

func TestMergeDecision_EmptySequenceFallsBackToWait(t *testing.T) {
	decision := MergeDecision(RawDecision{})

	if decision.Button != gamestate.ButtonWait {
		t.Errorf("expected WAIT for an empty sequence, got %s", decision.Button)
	}
	if decision.Confidence != 0 {
		t.Errorf("expected 0 confidence, got %.2f", decision.Confidence)
	}
}

// #endregion test-merge

// #region test-fallback-cost

func TestFallback_IsMarkedAndWaits(t *testing.T) {
	decision := Fallback()

	if !decision.IsFallback {
		t.Fatal("expected fallback decision marked IsFallback")
	}
	if decision.Button != gamestate.ButtonWait {
		t.Fatalf("expected WAIT, got %s", decision.Button)
	}
}

func TestCost_KnownAndUnknownModel(t *testing.T) {
	known := Cost(DefaultCostTable, "openai/gpt-4o-mini", 1000, 1000)
	want := DefaultCostTable["openai/gpt-4o-mini"].InputPer1K + DefaultCostTable["openai/gpt-4o-mini"].OutputPer1K
	if known != want {
		t.Errorf("expected %.6f, got %.6f", want, known)
	}

	unknown := Cost(DefaultCostTable, "vendor/unlisted-model", 1000, 1000)
	if unknown != 0.002+0.008 {
		t.Errorf("expected the conservative default rate, got %.6f", unknown)
	}
}

// #endregion test-fallback-cost
