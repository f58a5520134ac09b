package heuristics

import (
	"testing"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// #region test-record-press

func TestRecordPress_TracksStreaks(t *testing.T) {
	cfg := DefaultConfig()
	stats := gamestate.NewButtonStats()

	RecordPress(cfg, &stats, gamestate.ButtonWait)
	RecordPress(cfg, &stats, gamestate.ButtonWait)

	if stats.WaitStreak != 2 {
		t.Errorf("expected wait streak 2, got %d", stats.WaitStreak)
	}

	RecordPress(cfg, &stats, gamestate.ButtonUp)

	if stats.WaitStreak != 0 {
		t.Errorf("expected wait streak reset by non-wait press, got %d", stats.WaitStreak)
	}
}

func TestRecordPress_BansAfterThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BanPressThreshold = 3
	cfg.BanPromptDuration = 2
	stats := gamestate.NewButtonStats()

	RecordPress(cfg, &stats, gamestate.ButtonA)
	RecordPress(cfg, &stats, gamestate.ButtonA)
	if _, banned := stats.BannedButtons[gamestate.ButtonA]; banned {
		t.Fatal("should not be banned before threshold")
	}

	RecordPress(cfg, &stats, gamestate.ButtonA)

	if remaining, banned := stats.BannedButtons[gamestate.ButtonA]; !banned || remaining != cfg.BanPromptDuration {
		t.Fatalf("expected A banned for %d prompts, got banned=%v remaining=%d", cfg.BanPromptDuration, banned, remaining)
	}
	if stats.TotalPresses[gamestate.ButtonA] != 0 {
		t.Errorf("expected total presses reset to 0 after ban, got %d", stats.TotalPresses[gamestate.ButtonA])
	}
}

// #endregion test-record-press

// #region test-avoid-hints

func TestAvoidHints_ThresholdsAndCarriedSet(t *testing.T) {
	cfg := DefaultConfig()
	stats := gamestate.NewButtonStats()
	stats.StartSelectStreak = cfg.StartSelectThreshold + 1
	stats.WaitStreak = cfg.WaitThreshold
	stats.ButtonsToAvoid[gamestate.ButtonLeft] = true

	hints := AvoidHints(cfg, stats)

	for _, b := range []gamestate.Button{gamestate.ButtonStart, gamestate.ButtonSelect, gamestate.ButtonWait, gamestate.ButtonLeft} {
		if !hints[b] {
			t.Errorf("expected %s in avoid hints", b)
		}
	}
	if hints[gamestate.ButtonB] {
		t.Error("B should not be hinted below its threshold")
	}
}

// #endregion test-avoid-hints

// #region test-visual-change-penalty

func TestRecordVisualChange_NoChangeAccumulatesAvoid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoChangePenaltyStreak = 2
	stats := gamestate.NewButtonStats()

	RecordVisualChange(cfg, &stats, gamestate.ButtonRight, gamestate.ChangeNone)
	if stats.ButtonsToAvoid[gamestate.ButtonRight] {
		t.Fatal("should not be in avoid set after only one no-change")
	}

	RecordVisualChange(cfg, &stats, gamestate.ButtonRight, gamestate.ChangeNone)
	if !stats.ButtonsToAvoid[gamestate.ButtonRight] {
		t.Fatal("expected avoid set after reaching no-change streak threshold")
	}
}

func TestRecordVisualChange_ChangeDetectedClears(t *testing.T) {
	cfg := DefaultConfig()
	stats := gamestate.NewButtonStats()
	stats.NoChangeStreak[gamestate.ButtonRight] = 4
	stats.ButtonsToAvoid[gamestate.ButtonRight] = true

	RecordVisualChange(cfg, &stats, gamestate.ButtonRight, gamestate.ChangeDetected)

	if stats.NoChangeStreak[gamestate.ButtonRight] != 0 {
		t.Error("expected no-change streak cleared on change detected")
	}
	if stats.ButtonsToAvoid[gamestate.ButtonRight] {
		t.Error("expected avoid flag cleared on change detected")
	}
}

func TestPreviousConfidenceFloor(t *testing.T) {
	cfg := DefaultConfig()
	stats := gamestate.NewButtonStats()
	stats.ButtonsToAvoid[gamestate.ButtonRight] = true

	if got := PreviousConfidenceFloor(cfg, stats, gamestate.ButtonRight, 0.9); got != cfg.NoChangeConfidenceFloor {
		t.Errorf("expected floor %.2f, got %.2f", cfg.NoChangeConfidenceFloor, got)
	}
	if got := PreviousConfidenceFloor(cfg, stats, gamestate.ButtonUp, 0.9); got != 0.9 {
		t.Errorf("expected unaffected score 0.9, got %.2f", got)
	}
}

// #endregion test-visual-change-penalty

// #region test-ban-eviction

func TestAdvanceBans_DecrementsAndEvicts(t *testing.T) {
	stats := gamestate.NewButtonStats()
	stats.BannedButtons[gamestate.ButtonA] = 2

	AdvanceBans(&stats)
	if !IsBanned(stats, gamestate.ButtonA) {
		t.Fatal("expected A still banned after first advance")
	}

	AdvanceBans(&stats)
	if IsBanned(stats, gamestate.ButtonA) {
		t.Fatal("expected A evicted once remaining reaches 0")
	}
}

// #endregion test-ban-eviction
