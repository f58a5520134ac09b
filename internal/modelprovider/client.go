package modelprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/heuristics"
)

// #region timeouts

// ClassifyTimeout and DecideTimeout bound the two call phases.
const (
	ClassifyTimeout = 30 * time.Second
	DecideTimeout   = 60 * time.Second
)

// #endregion timeouts

// #region client-struct

// Client wraps a vision-capable chat-completions connection to a Decision
// Model provider. It plays the role the teacher's gRPC codec client played,
// over HTTP instead: a constructor pair (real / test-injected) and one
// context-bound, error-wrapped method per call the loop makes.
type Client struct {
	oa      *openai.Client
	modelID string
}

// #endregion client-struct

// #region constructor

// NewClient dials a real provider endpoint. baseURL may be empty to use the
// vendor default; apiKey is read from config, never hardcoded.
func NewClient(apiKey, baseURL, modelID string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{oa: openai.NewClientWithConfig(cfg), modelID: modelID}
}

// NewClientWithOpenAI creates a Client around an already-constructed
// go-openai client. Used to inject a client pointed at a local fixture
// server in tests, without a real provider connection.
func NewClientWithOpenAI(oa *openai.Client, modelID string) *Client {
	return &Client{oa: oa, modelID: modelID}
}

// #endregion constructor

// #region classify

const classifySystemPrompt = `You are the screen classifier for an autonomous game-playing agent.
Given a single frame, reply with strict JSON only: {"screenType": one of
"overworld","battle","menu","dialogue","textEntry","transition","unknown",
"briefDescription": a one-sentence description}. No prose outside the JSON.`

// ClassifyScreen runs the screen-type phase: a short, cheap call that labels
// the current frame before the full decision call is made.
func (c *Client) ClassifyScreen(ctx context.Context, frameBase64 string) (ClassifyResult, CallResult, error) {
	ctx, cancel := context.WithTimeout(ctx, ClassifyTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:     c.modelID,
		MaxTokens: 100,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(frameBase64),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.oa.CreateChatCompletion(ctx, req)
	if err != nil {
		return ClassifyResult{}, CallResult{}, fmt.Errorf("classify screen: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ClassifyResult{}, CallResult{}, fmt.Errorf("classify screen: empty response")
	}

	var result ClassifyResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return ClassifyResult{}, CallResult{}, fmt.Errorf("classify screen: decode reply: %w", err)
	}

	call := CallResult{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return result, call, nil
}

// #endregion classify

// #region decide

const decideSystemPrompt = `You are the decision model for an autonomous game-playing agent.
You are given the current frame, up to two recent frames, recent button
history with their visual effect, your own notes from previous turns, and
hints about buttons to avoid. Reply with strict JSON matching the provided
schema only. Rank a confidence 0..1 for every button in the vocabulary
A,B,START,SELECT,UP,DOWN,LEFT,RIGHT,L,R,WAIT for each planned step. Never
assign WAIT a confidence that would make the agent idle for more than one
step in a row unless genuinely waiting for an animation.`

// Decide runs the decision phase: the full vision call whose structured
// reply the loop coordinator turns into an executable Decision.
func (c *Client) Decide(ctx context.Context, in DecideInput) (RawDecision, CallResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DecideTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:     c.modelID,
		MaxTokens: 1000,
		Messages:  buildDecideMessages(in),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.oa.CreateChatCompletion(ctx, req)
	if err != nil {
		return RawDecision{}, CallResult{}, fmt.Errorf("decide: %w", err)
	}
	if len(resp.Choices) == 0 {
		return RawDecision{}, CallResult{}, fmt.Errorf("decide: empty response")
	}

	var raw RawDecision
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return RawDecision{}, CallResult{}, fmt.Errorf("decide: decode reply: %w", err)
	}

	call := CallResult{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return raw, call, nil
}

// buildDecideMessages assembles the system prompt, the text context block,
// and the image parts (recent frames then the current frame, oldest first).
func buildDecideMessages(in DecideInput) []openai.ChatCompletionMessage {
	var sb strings.Builder
	sb.WriteString("Notes from previous turns:\n")
	sb.WriteString(in.NotesProjection)
	sb.WriteString("\n\nRecent button history:\n")
	for _, h := range in.CommandHistory {
		fmt.Fprintf(&sb, "- %s -> %s\n", h.Button, h.VisualChange)
	}
	if len(in.DialogHistory) > 0 {
		sb.WriteString("\nYour recent comments:\n")
		for _, d := range in.DialogHistory {
			fmt.Fprintf(&sb, "- %s\n", d.Text)
		}
	}
	if len(in.ButtonsToAvoid) > 0 {
		sb.WriteString("\nAvoid these buttons this turn: ")
		for b := range in.ButtonsToAvoid {
			fmt.Fprintf(&sb, "%s ", b)
		}
		sb.WriteString("\n")
	}
	if len(in.BannedButtons) > 0 {
		sb.WriteString("Banned buttons (do not select): ")
		for b, remaining := range in.BannedButtons {
			fmt.Fprintf(&sb, "%s(%d) ", b, remaining)
		}
		sb.WriteString("\n")
	}
	if in.PreAnalyzedScreen != nil {
		fmt.Fprintf(&sb, "\nPre-analyzed screen type: %s - %s\n", in.PreAnalyzedScreen.ScreenType, in.PreAnalyzedScreen.BriefDescription)
	}
	if len(in.PreviousConfidence) > 0 {
		sb.WriteString("\nYour previous turn's confidence scores:\n")
		for _, b := range gamestate.AllButtons {
			if v, ok := in.PreviousConfidence[b]; ok {
				fmt.Fprintf(&sb, "- %s: %.2f\n", b, v)
			}
		}
	}
	if in.PreviousGameState.Area != "" {
		fmt.Fprintf(&sb, "\nPrevious game state: area=%s screen=%s lastInput=%s\n",
			in.PreviousGameState.Area, in.PreviousGameState.ScreenKind, in.PreviousGameState.LastExecutedInput)
	}
	if len(in.PreviousDecisions) > 0 {
		sb.WriteString("\nYour last decisions:\n")
		for _, d := range in.PreviousDecisions {
			fmt.Fprintf(&sb, "- step %d: %s - %s\n", d.Step, d.Button, d.Reasoning)
		}
	}
	if in.StuckSignal != "" && in.StuckSignal != heuristics.StuckSignalNone {
		fmt.Fprintf(&sb, "\nStuck signal: %s. Try a different approach than your recent moves.\n", in.StuckSignal)
	}
	if in.Priority != "" {
		fmt.Fprintf(&sb, "\nSuggested priority this turn: %s\n", in.Priority)
	}

	parts := make([]openai.ChatMessagePart, 0, len(in.RecentFrames)+1)
	for _, f := range in.RecentFrames {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(f.ImageBase64),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    dataURL(in.CurrentFrame.ImageBase64),
			Detail: openai.ImageURLDetailHigh,
		},
	})

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: decideSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		{Role: openai.ChatMessageRoleUser, MultiContent: parts},
	}
}

func dataURL(base64Frame string) string {
	return "data:image/png;base64," + base64Frame
}

// #endregion decide

// #region merge

// MergeDecision turns a RawDecision plus the derived fallback/gate handling
// into the executable gamestate.Decision the loop coordinator persists. It
// does not apply the gate itself; callers run gate.DeriveSequence separately
// and set LastExecutedInput from that result.
func MergeDecision(raw RawDecision) gamestate.Decision {
	button, confidence := primaryButton(raw.Decision.ButtonSequence)
	return gamestate.Decision{
		Button:             button,
		Confidence:         confidence,
		ConfidenceScores:   primaryTable(raw.Decision.ButtonSequence),
		ScreenAnalysis:     raw.Decision.ScreenAnalysis,
		Reasoning:          raw.Decision.Reasoning,
		PersonalityComment: raw.Decision.PersonalityComment,
		ButtonSequence:     raw.Decision.ButtonSequence,
		ProgressConfidence: raw.Decision.ProgressConfidence,
		NotesDelta:         raw.Decision.Notes,
		Timestamp:          time.Now().UTC(),
	}
}

func primaryTable(steps []gamestate.SequenceStep) gamestate.ConfidenceTable {
	if len(steps) == 0 {
		return gamestate.ConfidenceTable{}
	}
	return steps[0].Confidences
}

func primaryButton(steps []gamestate.SequenceStep) (gamestate.Button, float32) {
	if len(steps) == 0 {
		return gamestate.ButtonWait, 0
	}
	return steps[0].Confidences.Argmax()
}

// #endregion merge
