package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/kv"
)

// #region test-notes

func TestGetNotes_ZeroValueWhenUnset(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	n, err := s.GetNotes(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get notes: %v", err)
	}
	if n.StuckMode != gamestate.StuckNone {
		t.Errorf("expected default stuck mode none, got %s", n.StuckMode)
	}
}

func TestMergeNotes_OverwritesFieldsFromDelta(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	objective := "find the exit"
	_, err := s.MergeNotes(ctx, "agent-1", gamestate.NotesDelta{CurrentObjective: &objective})
	if err != nil {
		t.Fatalf("merge notes: %v", err)
	}

	location := "cave-entrance"
	n, err := s.MergeNotes(ctx, "agent-1", gamestate.NotesDelta{LastKnownLocation: &location})
	if err != nil {
		t.Fatalf("merge notes: %v", err)
	}

	if n.CurrentObjective != objective {
		t.Errorf("expected earlier objective to survive, got %q", n.CurrentObjective)
	}
	if n.LastKnownLocation != location {
		t.Errorf("expected location set, got %q", n.LastKnownLocation)
	}
}

func TestMergeNotes_FailedAttemptsAppendAndTruncate(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	var n gamestate.Notes
	for i := 0; i < gamestate.MaxFailedAttempts+3; i++ {
		attempt := "attempt"
		var err error
		n, err = s.MergeNotes(ctx, "agent-1", gamestate.NotesDelta{FailedAttempt: &attempt})
		if err != nil {
			t.Fatalf("merge notes: %v", err)
		}
	}

	if len(n.FailedAttempts) != gamestate.MaxFailedAttempts {
		t.Fatalf("expected failed attempts bounded to %d, got %d", gamestate.MaxFailedAttempts, len(n.FailedAttempts))
	}
}

func TestMergeNotes_EmptyFailedAttemptIsNoOp(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	empty := ""
	n, err := s.MergeNotes(ctx, "agent-1", gamestate.NotesDelta{FailedAttempt: &empty})
	if err != nil {
		t.Fatalf("merge notes: %v", err)
	}
	if len(n.FailedAttempts) != 0 {
		t.Fatal("expected an empty failed attempt to be dropped, not appended")
	}
}

func TestClearNotes(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	objective := "find the exit"
	if _, err := s.MergeNotes(ctx, "agent-1", gamestate.NotesDelta{CurrentObjective: &objective}); err != nil {
		t.Fatalf("merge notes: %v", err)
	}
	if err := s.ClearNotes(ctx, "agent-1"); err != nil {
		t.Fatalf("clear notes: %v", err)
	}

	n, err := s.GetNotes(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get notes: %v", err)
	}
	if n.CurrentObjective != "" {
		t.Fatal("expected notes cleared")
	}
}

// #endregion test-notes

// #region test-projection

func TestFormatNotesForPrompt_OmitsEmptyFields(t *testing.T) {
	n := gamestate.Notes{CurrentObjective: "find the exit"}

	out := FormatNotesForPrompt(n, 1024)

	if !strings.Contains(out, "find the exit") {
		t.Errorf("expected objective present, got %q", out)
	}
	if strings.Contains(out, "Discovery:") {
		t.Errorf("expected no discovery line for an empty field, got %q", out)
	}
}

func TestFormatNotesForPrompt_TruncatesOnLineBoundary(t *testing.T) {
	n := gamestate.Notes{
		CurrentObjective:  "objective",
		LastKnownLocation: "location",
		ImportantDiscovery: "a very long discovery that pushes this well past the byte limit for the projection",
	}

	out := FormatNotesForPrompt(n, 20)

	if len(out) > 20 {
		t.Fatalf("expected output within limit 20, got %d bytes", len(out))
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatal("expected truncation to cut cleanly on a line boundary, not leave a trailing partial line")
	}
}

// #endregion test-projection

// #region test-dialog

func TestAppendComment_SkipsEmpty(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	if err := s.AppendComment(ctx, "agent-1", ""); err != nil {
		t.Fatalf("append comment: %v", err)
	}

	history, err := s.DialogHistory(ctx, "agent-1")
	if err != nil {
		t.Fatalf("dialog history: %v", err)
	}
	if len(history) != 0 {
		t.Fatal("expected no entries for an empty comment")
	}
}

func TestAppendComment_BoundsHistory(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	for i := 0; i < gamestate.MaxDialogHistory+5; i++ {
		if err := s.AppendComment(ctx, "agent-1", "hi"); err != nil {
			t.Fatalf("append comment: %v", err)
		}
	}

	history, err := s.DialogHistory(ctx, "agent-1")
	if err != nil {
		t.Fatalf("dialog history: %v", err)
	}
	if len(history) != gamestate.MaxDialogHistory {
		t.Fatalf("expected bounded to %d, got %d", gamestate.MaxDialogHistory, len(history))
	}
}

func TestLatest_ReturnsMostRecent(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	if err := s.AppendComment(ctx, "agent-1", "first"); err != nil {
		t.Fatalf("append comment: %v", err)
	}
	if err := s.AppendComment(ctx, "agent-1", "second"); err != nil {
		t.Fatalf("append comment: %v", err)
	}

	latest, ok, err := s.Latest(ctx, "agent-1")
	if err != nil || !ok || latest.Text != "second" {
		t.Fatalf("expected (second, true), got (%s, %v, %v)", latest.Text, ok, err)
	}
}

func TestLatest_FalseWhenEmpty(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	_, ok, err := s.Latest(ctx, "agent-1")
	if err != nil || ok {
		t.Fatalf("expected (_, false, nil), got ok=%v err=%v", ok, err)
	}
}

// #endregion test-dialog

// #region test-decisionlog

func TestAppendDecisionLog_IncrementsStep(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	first, err := s.AppendDecisionLog(ctx, "agent-1", gamestate.ButtonUp, "moving up")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := s.AppendDecisionLog(ctx, "agent-1", gamestate.ButtonA, "pressed A")
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if first.Step != 1 || second.Step != 2 {
		t.Fatalf("expected steps 1 then 2, got %d then %d", first.Step, second.Step)
	}
}

func TestAppendDecisionLog_BoundsLog(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	for i := 0; i < gamestate.MaxDecisionLog+10; i++ {
		if _, err := s.AppendDecisionLog(ctx, "agent-1", gamestate.ButtonWait, ""); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	log, err := s.DecisionLog(ctx, "agent-1")
	if err != nil {
		t.Fatalf("decision log: %v", err)
	}
	if len(log) != gamestate.MaxDecisionLog {
		t.Fatalf("expected bounded to %d, got %d", gamestate.MaxDecisionLog, len(log))
	}
}

func TestClearDecisionLog(t *testing.T) {
	s := NewStore(kv.NewMemStore())
	ctx := context.Background()

	if _, err := s.AppendDecisionLog(ctx, "agent-1", gamestate.ButtonUp, ""); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.ClearDecisionLog(ctx, "agent-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	log, err := s.DecisionLog(ctx, "agent-1")
	if err != nil {
		t.Fatalf("decision log: %v", err)
	}
	if len(log) != 0 {
		t.Fatal("expected decision log cleared")
	}
}

// #endregion test-decisionlog

// #region test-reset-stamp

func TestLastResetAt_FalseWhenUnset(t *testing.T) {
	store := kv.NewMemStore()
	ctx := context.Background()

	_, ok, err := LastResetAt(ctx, store, "agent-1")
	if err != nil || ok {
		t.Fatalf("expected (_, false, nil), got ok=%v err=%v", ok, err)
	}
}

func TestLastResetAt_ParsesStoredTimestamp(t *testing.T) {
	store := kv.NewMemStore()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := store.Set(ctx, kv.AgentKey("agent-1", "reset_at"), now.Format(time.RFC3339Nano), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := LastResetAt(ctx, store, "agent-1")
	if err != nil || !ok || !got.Equal(now) {
		t.Fatalf("expected (%v, true, nil), got (%v, %v, %v)", now, got, ok, err)
	}
}

// #endregion test-reset-stamp
