package loop

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ardenlabs/playrunner/internal/areamap"
	"github.com/ardenlabs/playrunner/internal/blob"
	"github.com/ardenlabs/playrunner/internal/frame"
	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/gate"
	"github.com/ardenlabs/playrunner/internal/heuristics"
	"github.com/ardenlabs/playrunner/internal/kv"
	"github.com/ardenlabs/playrunner/internal/logging"
	"github.com/ardenlabs/playrunner/internal/memory"
	"github.com/ardenlabs/playrunner/internal/metrics"
	"github.com/ardenlabs/playrunner/internal/modelprovider"
	"github.com/ardenlabs/playrunner/internal/obslog"
	"github.com/ardenlabs/playrunner/internal/verify"
)

// #region coordinator

// Coordinator drives one agent's decision loop. Source may be nil when the
// coordinator runs as a pure decision service and the caller executes the
// returned sequence itself; when Source is set, the coordinator executes
// the plan locally (used by the replay/export tools and any colocated
// deployment that owns the emulator directly).
type Coordinator struct {
	agentID string

	cfg  Config
	hcfg heuristics.Config

	kvStore   kv.Store
	memory    *memory.Store
	blobStore blob.Store
	model     *modelprovider.Client
	source    frame.Source
	gate      *gate.Gate
	verify    *verify.Harness
	costTable modelprovider.CostTable
	areas     *areamap.Map
	auditDB   *sql.DB

	mu             sync.Mutex
	inFlight       bool
	status         gamestate.AgentStatus
	stats          gamestate.ButtonStats
	gameState      gamestate.GameState
	agent          gamestate.Agent
	fingerprint    *uint32
	frameHistory   []gamestate.FrameHistoryEntry
	nextAllowedAt  time.Time
	cancelInFlight context.CancelFunc
}

// New creates a Coordinator for one agent. modelID selects both the model
// call target and the cost table lookup key.
func New(
	agentID, modelID string,
	kvStore kv.Store,
	blobStore blob.Store,
	model *modelprovider.Client,
	source frame.Source,
) *Coordinator {
	return &Coordinator{
		agentID:   agentID,
		cfg:       DefaultConfig(),
		hcfg:      heuristics.DefaultConfig(),
		kvStore:   kvStore,
		memory:    memory.NewStore(kvStore),
		blobStore: blobStore,
		model:     model,
		source:    source,
		gate:      gate.NewGate(gate.DefaultConfig()),
		verify:    verify.NewHarness(verify.DefaultConfig()),
		costTable: modelprovider.DefaultCostTable,
		areas:     areamap.New(),
		status:    gamestate.StatusIdle,
		stats:     gamestate.NewButtonStats(),
		gameState: gamestate.NewGameState(),
		agent: gamestate.Agent{
			ID:        agentID,
			ModelID:   modelID,
			Status:    gamestate.StatusIdle,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// SetAuditDB attaches a durable decision-audit sink. Optional: when nil
// (the default), decisions are recorded only in the bounded kv DecisionLog.
func (c *Coordinator) SetAuditDB(db *sql.DB) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auditDB = db
}

// #endregion coordinator

// #region heartbeat

// Heartbeat refreshes the liveness key. Called by POST /heartbeat.
func (c *Coordinator) Heartbeat(ctx context.Context) error {
	key := kv.AgentKey(c.agentID, "heartbeat")
	if err := c.kvStore.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), c.cfg.HeartbeatTTL); err != nil {
		return fmt.Errorf("loop: heartbeat: %w", err)
	}
	return nil
}

// HeartbeatStatus reports liveness for GET /heartbeat.
func (c *Coordinator) HeartbeatStatus(ctx context.Context) (alive bool, lastBeat time.Time, elapsed time.Duration, err error) {
	key := kv.AgentKey(c.agentID, "heartbeat")
	raw, ok, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return false, time.Time{}, 0, fmt.Errorf("loop: heartbeat status: %w", err)
	}
	if !ok {
		return false, time.Time{}, 0, nil
	}
	last, parseErr := time.Parse(time.RFC3339, raw)
	if parseErr != nil {
		return false, time.Time{}, 0, nil
	}
	elapsed = time.Since(last)
	return elapsed <= c.cfg.ClientGoneAfter, last, elapsed, nil
}

func (c *Coordinator) clientGone(ctx context.Context) bool {
	alive, lastBeat, _, err := c.HeartbeatStatus(ctx)
	if err != nil || lastBeat.IsZero() {
		return false // no heartbeat recorded yet; do not pause a fresh agent
	}
	return !alive
}

// #endregion heartbeat

// #region decide

// Decide runs exactly one iteration: it enforces the mutex and cooldown,
// builds the model input, calls the two-phase model, gates the returned
// sequence, executes it if a Source is attached, updates all bookkeeping,
// and publishes the merged state.
func (c *Coordinator) Decide(ctx context.Context, req DecideRequest) (DecideResponse, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return DecideResponse{}, ErrDecisionInFlight{AgentID: c.agentID}
	}
	if c.clientGone(ctx) {
		c.status = gamestate.StatusPaused
		c.agent.Status = gamestate.StatusPaused
		c.mu.Unlock()
		c.publishState(ctx)
		return DecideResponse{}, ErrClientGone{AgentID: c.agentID}
	}
	c.inFlight = true
	c.status = gamestate.StatusThinking
	waitUntil := c.nextAllowedAt
	c.mu.Unlock()

	if remaining := time.Until(waitUntil); remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-ctx.Done():
			c.finishIteration(gamestate.StatusPaused)
			return DecideResponse{}, ctx.Err()
		}
	}

	iterCtx, cancel := context.WithTimeout(ctx, c.cfg.IterationDeadline)
	c.mu.Lock()
	c.cancelInFlight = cancel
	c.mu.Unlock()
	defer cancel()

	start := time.Now()
	resp, screenKind, err := c.runIteration(iterCtx, req)
	if err != nil {
		c.finishIteration(gamestate.StatusError)
		return DecideResponse{}, err
	}

	c.mu.Lock()
	c.nextAllowedAt = latestOf(start.Add(c.cfg.IterationPeriod), time.Now().Add(c.cfg.Cooldown(screenKind)))
	c.mu.Unlock()

	c.finishIteration(gamestate.StatusIdle)
	c.publishState(ctx)
	return resp, nil
}

func latestOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func (c *Coordinator) finishIteration(status gamestate.AgentStatus) {
	c.mu.Lock()
	c.inFlight = false
	c.status = status
	c.agent.Status = status
	c.agent.UpdatedAt = time.Now().UTC()
	c.cancelInFlight = nil
	c.mu.Unlock()
}

// #endregion decide

// #region run-iteration

func (c *Coordinator) runIteration(ctx context.Context, req DecideRequest) (DecideResponse, gamestate.ScreenKind, error) {
	prevGameState := c.snapshotGameState()

	change := c.recordFrame(req.FrameBase64)
	c.updateButtonBookkeeping(req.CommandHistory, change)

	notes, err := c.memory.GetNotes(ctx, c.agentID)
	if err != nil {
		return DecideResponse{}, gamestate.ScreenUnknown, fmt.Errorf("loop: load notes: %w", err)
	}
	dialogHistory, err := c.memory.DialogHistory(ctx, c.agentID)
	if err != nil {
		return DecideResponse{}, gamestate.ScreenUnknown, fmt.Errorf("loop: load dialog history: %w", err)
	}

	classify, classifyCall, classifyErr := c.model.ClassifyScreen(ctx, req.FrameBase64)

	stats := c.snapshotStats()
	previousDecisions, err := c.memory.DecisionLog(ctx, c.agentID)
	if err != nil {
		return DecideResponse{}, gamestate.ScreenUnknown, fmt.Errorf("loop: load decision log: %w", err)
	}

	decideInput := modelprovider.DecideInput{
		CurrentFrame:       modelprovider.FrameRef{ImageBase64: req.FrameBase64, Timestamp: time.Now().UTC()},
		CommandHistory:     toCommandHistory(req.CommandHistory),
		PreviousConfidence: flooredConfidence(c.hcfg, stats, req.PreviousConfidence),
		DialogHistory:      dialogHistory,
		AvoidHints:         heuristics.AvoidHints(c.hcfg, stats),
		ButtonsToAvoid:     stats.ButtonsToAvoid,
		BannedButtons:      stats.BannedButtons,
		NotesProjection:    memory.FormatNotesForPrompt(notes, gamestate.MaxNotesProjectionBytes),
		PreviousGameState:  prevGameState,
		PreviousDecisions:  lastDecisions(previousDecisions, 5),
		StuckSignal:        heuristics.ClassifyStuck(c.hcfg, prevGameState.Progress.ConsecutiveNoChangeCounter, recentButtons(c.FrameHistory())),
		Priority:           heuristics.PriorityAction(prevGameState),
	}
	if classifyErr == nil {
		decideInput.PreAnalyzedScreen = &classify
	}

	raw, call, decideErr := c.model.Decide(ctx, decideInput)

	var decision gamestate.Decision
	promptTokens, completionTokens := call.PromptTokens, call.CompletionTokens
	if classifyErr == nil {
		promptTokens += classifyCall.PromptTokens
		completionTokens += classifyCall.CompletionTokens
	}

	if decideErr != nil || len(raw.Decision.ButtonSequence) == 0 {
		decision = modelprovider.Fallback()
		promptTokens, completionTokens = modelprovider.FallbackPromptTokens, modelprovider.FallbackCompletionTokens
		c.mu.Lock()
		c.agent.FallbackCount++
		c.mu.Unlock()
		fallbackLogger := obslog.Agent(c.agentID)
		fallbackLogger.Warn().Err(decideErr).Msg("decision fell back to WAIT")
	} else {
		decision = modelprovider.MergeDecision(raw)
	}

	// plan is the gate's post-veto execution sequence; it governs what is
	// actually pressed on the Source, not the decision's reported primary
	// button, which stays the model's step-1 argmax.
	plan := c.gate.DeriveSequence(decision.ButtonSequence, stats)

	if c.source != nil {
		c.executePlan(ctx, plan)
	}

	c.recordExecutedButtons(plan, change)

	nextGameState := mergeGameState(prevGameState, raw, plan[0], change, c.hcfg)
	c.verify.Run(prevGameState, nextGameState)
	c.setGameState(nextGameState)

	if _, err := c.memory.MergeNotes(ctx, c.agentID, decision.NotesDelta); err != nil {
		return DecideResponse{}, gamestate.ScreenUnknown, fmt.Errorf("loop: merge notes: %w", err)
	}
	logEntry, err := c.memory.AppendDecisionLog(ctx, c.agentID, decision.Button, decision.Reasoning)
	if err != nil {
		return DecideResponse{}, gamestate.ScreenUnknown, fmt.Errorf("loop: append decision log: %w", err)
	}
	c.writeAudit(logEntry, decision, nextGameState)
	if err := c.memory.AppendComment(ctx, c.agentID, decision.PersonalityComment); err != nil {
		return DecideResponse{}, gamestate.ScreenUnknown, fmt.Errorf("loop: append comment: %w", err)
	}

	cost := modelprovider.Cost(c.costTable, c.agent.ModelID, promptTokens, completionTokens)

	c.mu.Lock()
	c.agent.TotalDecisions++
	c.agent.TotalTokensIn += promptTokens
	c.agent.TotalTokensOut += completionTokens
	c.agent.TotalCost += cost
	decisionCount := c.agent.TotalDecisions
	totalCost := c.agent.TotalCost
	totalTokensIn := c.agent.TotalTokensIn
	totalTokensOut := c.agent.TotalTokensOut
	c.mu.Unlock()

	c.updateLeaderboards(ctx, nextGameState, totalCost)

	if decisionCount%c.cfg.CheckpointEvery == 0 {
		c.checkpoint(ctx, decisionCount)
	}

	return DecideResponse{
		Success:        true,
		Decision:       decision,
		GameState:      nextGameState,
		Cost:           cost,
		TotalCost:      totalCost,
		TotalDecisions: decisionCount,
		TotalTokensIn:  totalTokensIn,
		TotalTokensOut: totalTokensOut,
	}, nextGameState.ScreenKind, nil
}

func toCommandHistory(items []CommandHistoryItem) []modelprovider.CommandHistoryEntry {
	out := make([]modelprovider.CommandHistoryEntry, len(items))
	for i, it := range items {
		out[i] = modelprovider.CommandHistoryEntry{Button: it.Button, VisualChange: it.VisualChange}
	}
	return out
}

// flooredConfidence applies the no-change confidence floor to every entry of
// a client-reported previous-confidence table before it is projected back
// into the next prompt.
func flooredConfidence(hcfg heuristics.Config, stats gamestate.ButtonStats, table gamestate.ConfidenceTable) gamestate.ConfidenceTable {
	if len(table) == 0 {
		return table
	}
	out := make(gamestate.ConfidenceTable, len(table))
	for b, v := range table {
		out[b] = heuristics.PreviousConfidenceFloor(hcfg, stats, b, v)
	}
	return out
}

// recentButtons extracts the executed-button sequence from frame history,
// oldest first, for the stuck classifier.
func recentButtons(history []gamestate.FrameHistoryEntry) []gamestate.Button {
	out := make([]gamestate.Button, len(history))
	for i, h := range history {
		out[i] = h.Button
	}
	return out
}

// lastDecisions returns the most recent n entries of a decision log, oldest
// first, for the "previous decisions" prompt input.
func lastDecisions(entries []gamestate.DecisionLogEntry, n int) []gamestate.DecisionLogEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// #endregion run-iteration

// #region execute-plan

func (c *Coordinator) executePlan(ctx context.Context, plan []gamestate.Button) {
	for i, button := range plan {
		if button == gamestate.ButtonWait {
			continue
		}
		if err := c.source.PressAndRelease(ctx, string(button), 100); err != nil {
			return // adapter error mid-sequence: leave the emulator in its current, defined state
		}
		if i < len(plan)-1 {
			select {
			case <-time.After(frame.BetweenStepDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// #endregion execute-plan

// #region bookkeeping

func (c *Coordinator) recordFrame(frameBase64 string) gamestate.VisualChange {
	fp := heuristics.Fingerprint(frameBase64)
	c.mu.Lock()
	defer c.mu.Unlock()
	change := heuristics.VisualChange(c.fingerprint, fp)
	prev := fp
	c.fingerprint = &prev
	return change
}

func (c *Coordinator) updateButtonBookkeeping(history []CommandHistoryItem, change gamestate.VisualChange) {
	if len(history) == 0 {
		return
	}
	last := history[len(history)-1]
	c.mu.Lock()
	defer c.mu.Unlock()
	heuristics.RecordVisualChange(c.hcfg, &c.stats, last.Button, last.VisualChange)
}

func (c *Coordinator) recordExecutedButtons(plan []gamestate.Button, change gamestate.VisualChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range plan {
		heuristics.RecordPress(c.hcfg, &c.stats, b)
	}
	heuristics.AdvanceBans(&c.stats)

	entry := gamestate.FrameHistoryEntry{
		Button:       plan[0],
		Timestamp:    time.Now().UTC(),
		VisualChange: change,
	}
	if c.fingerprint != nil {
		entry.Fingerprint = *c.fingerprint
	}
	c.frameHistory = append(c.frameHistory, entry)
	if len(c.frameHistory) > gamestate.MaxFrameHistory {
		c.frameHistory = c.frameHistory[len(c.frameHistory)-gamestate.MaxFrameHistory:]
	}
}

func (c *Coordinator) snapshotStats() gamestate.ButtonStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Coordinator) snapshotGameState() gamestate.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameState
}

func (c *Coordinator) setGameState(gs gamestate.GameState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameState = gs
	c.areas.Record(gs.Area)
}

// mergeGameState folds a decision's raw model-reported game state onto the
// previous state, and accumulates the reward-shaping and milestone totals
// that state transition earns. change is the visual-diff classification of
// the frame the decision was made from; executed is the gate's post-veto
// primary button, which becomes LastExecutedInput.
func mergeGameState(prev gamestate.GameState, raw modelprovider.RawDecision, executed gamestate.Button, change gamestate.VisualChange, hcfg heuristics.Config) gamestate.GameState {
	next := prev
	if raw.GameState.Area != "" {
		next.Area = raw.GameState.Area
		if next.Progress.RecordVisit(raw.GameState.Area) {
			next.Progress.NavigationRewardTotal += heuristics.NavigationReward(hcfg, 1)
		}
	}
	next.Flags = gamestate.Flags{
		InBattle:    raw.GameState.InBattle,
		InMenu:      raw.GameState.InMenu,
		InDialogue:  raw.GameState.InDialogue,
		InTextEntry: raw.GameState.InTextEntry,
	}
	if raw.GameState.ScreenType != "" {
		next.ScreenKind = gamestate.ScreenKind(raw.GameState.ScreenType)
	}
	if raw.GameState.Badges > prev.BadgeCount {
		next.BadgeCount = raw.GameState.Badges
		if next.Progress.RecordMilestone(fmt.Sprintf("badge_%d", next.BadgeCount)) {
			next.Progress.EventRewardTotal += heuristics.EventReward(hcfg, "gym_leader")
		}
	}
	if raw.GameState.Milestone != "" && next.Progress.RecordMilestone(raw.GameState.Milestone) {
		next.Progress.EventRewardTotal += heuristics.EventReward(hcfg, raw.GameState.Milestone)
	}
	if raw.GameState.PokemonCount > 0 {
		next.PartyHealthSummary.PartyCount = raw.GameState.PokemonCount
	}
	if raw.GameState.MaxPartyHP > 0 {
		next.PartyHealthSummary.MaxHP = raw.GameState.MaxPartyHP
	}
	if raw.GameState.EstimatedPartyHP > 0 {
		hpBefore := prev.PartyHealthSummary.CurrentHP
		next.PartyHealthSummary.CurrentHP = raw.GameState.EstimatedPartyHP
		next.Progress.HealingRewardTotal += heuristics.HealingReward(hcfg, hpBefore, raw.GameState.EstimatedPartyHP, next.PartyHealthSummary.MaxHP)
	}
	if raw.GameState.Levels > 0 {
		next.Progress.LevelRewardTotal += heuristics.LevelReward(hcfg, prev.PartyLevelTotal, raw.GameState.Levels)
		next.PartyLevelTotal = raw.GameState.Levels
	}
	if change == gamestate.ChangeNone {
		next.Progress.ConsecutiveNoChangeCounter++
	} else {
		next.Progress.ConsecutiveNoChangeCounter = 0
	}
	if change == gamestate.ChangeDetected {
		next.Progress.LastEffectiveAction = executed
	}
	next.LastExecutedInput = executed
	return next
}

// #endregion bookkeeping

// #region audit

// writeAudit records a finalized decision to the durable audit sink, if one
// is attached. Failures are logged, never returned, since the audit trail
// is a side channel and must not fail a decision response.
func (c *Coordinator) writeAudit(logEntry gamestate.DecisionLogEntry, decision gamestate.Decision, state gamestate.GameState) {
	c.mu.Lock()
	db := c.auditDB
	c.mu.Unlock()
	if db == nil {
		return
	}
	entry := logging.AuditEntry{
		AgentID:    c.agentID,
		DecisionID: uuid.NewString(),
		Step:       logEntry.Step,
		Button:     string(decision.Button),
		ScreenKind: string(state.ScreenKind),
		Confidence: decision.Confidence,
		IsFallback: decision.IsFallback,
		Reasoning:  decision.Reasoning,
	}
	if err := logging.LogDecision(db, entry); err != nil {
		auditLogger := obslog.Agent(c.agentID)
		auditLogger.Warn().Err(err).Msg("failed to write decision audit entry")
	}
}

// #endregion audit

// #region leaderboards

// updateLeaderboards projects this agent's latest standing into the shared
// sorted sets read by the leaderboard endpoints. Failures are logged only;
// the leaderboard is informational and must never fail a decision response.
func (c *Coordinator) updateLeaderboards(ctx context.Context, state gamestate.GameState, totalCost float64) {
	logger := obslog.Agent(c.agentID)
	if err := c.kvStore.ZAdd(ctx, kv.LeaderboardKey("badges"), c.agentID, float64(state.BadgeCount)); err != nil {
		logger.Warn().Err(err).Msg("leaderboard badges update failed")
	}
	if err := c.kvStore.ZAdd(ctx, kv.LeaderboardKey("milestones"), c.agentID, float64(len(state.Progress.Milestones))); err != nil {
		logger.Warn().Err(err).Msg("leaderboard milestones update failed")
	}
	if err := c.kvStore.ZAdd(ctx, kv.LeaderboardKey("cost"), c.agentID, totalCost); err != nil {
		logger.Warn().Err(err).Msg("leaderboard cost update failed")
	}
}

// #endregion leaderboards

// #region checkpoint

func (c *Coordinator) checkpoint(ctx context.Context, decisionNumber int) {
	logger := obslog.Agent(c.agentID)
	if c.source == nil || c.blobStore == nil {
		return
	}
	data, err := c.source.SaveState(ctx)
	if err != nil {
		metrics.CheckpointsTotal.WithLabelValues(c.agentID, "failed").Inc()
		logger.Warn().Err(err).Msg("checkpoint save-state failed")
		return // checkpoint failures never stop the loop
	}
	name := checkpointFilename(c.agentID, decisionNumber, c.agent.ModelID)
	if _, err := c.blobStore.Put(ctx, name, data); err != nil {
		metrics.CheckpointsTotal.WithLabelValues(c.agentID, "failed").Inc()
		logger.Warn().Err(err).Str("path", name).Msg("checkpoint upload failed")
		return
	}
	metrics.CheckpointsTotal.WithLabelValues(c.agentID, "ok").Inc()
	logger.Debug().Str("path", name).Int("decision", decisionNumber).Msg("checkpoint uploaded")
}

func checkpointFilename(agentID string, decisionNumber int, modelID string) string {
	now := time.Now().UTC()
	safe := modelSafeName(modelID)
	return fmt.Sprintf("save-states/%s/%s_%s_D%d_%s.state",
		agentID, now.Format("2006-01-02"), now.Format("15-04"), decisionNumber, safe)
}

func modelSafeName(modelID string) string {
	var sb strings.Builder
	for _, r := range modelID {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

// #endregion checkpoint

// #region state-publication

func (c *Coordinator) publishState(ctx context.Context) {
	c.mu.Lock()
	agentCopy := c.agent
	c.mu.Unlock()

	data, err := marshalAgent(agentCopy)
	if err != nil {
		return
	}
	c.kvStore.Set(ctx, kv.AgentKey(c.agentID, "state"), data, kv.TTLAgentState)
}

// #endregion state-publication

// #region reset

// Reset aborts any in-flight request, clears all ephemeral and persisted
// per-agent state, and reinitializes GameState and ProgressMetrics.
func (c *Coordinator) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.cancelInFlight != nil {
		c.cancelInFlight()
	}
	c.stats = gamestate.NewButtonStats()
	c.gameState = gamestate.NewGameState()
	c.fingerprint = nil
	c.frameHistory = nil
	c.agent.TotalDecisions = 0
	c.agent.FallbackCount = 0
	c.agent.TotalTokensIn = 0
	c.agent.TotalTokensOut = 0
	c.agent.TotalCost = 0
	c.agent.Status = gamestate.StatusIdle
	c.status = gamestate.StatusIdle
	c.areas.Reset()
	c.mu.Unlock()

	if err := c.memory.ClearNotes(ctx, c.agentID); err != nil {
		return fmt.Errorf("loop: reset notes: %w", err)
	}
	if err := c.memory.ClearDecisionLog(ctx, c.agentID); err != nil {
		return fmt.Errorf("loop: reset decision log: %w", err)
	}
	if err := c.memory.ClearDialogHistory(ctx, c.agentID); err != nil {
		return fmt.Errorf("loop: reset dialog history: %w", err)
	}
	for _, suffix := range []string{"state", "heartbeat", "frames", "progress", "rewards", "stuck", "locations", "milestones"} {
		c.kvStore.Del(ctx, kv.AgentKey(c.agentID, suffix))
	}
	return nil
}

// NewDecisionID mints an opaque id for correlating a decision with its
// checkpoint, matching the ownership convention the rest of the pack uses
// for request-scoped identifiers.
func NewDecisionID() string {
	return uuid.NewString()
}

// #endregion reset

// #region status

// Status returns the coordinator's current lifecycle state.
func (c *Coordinator) Status() gamestate.AgentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Agent returns a snapshot of the agent record.
func (c *Coordinator) Agent() gamestate.Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agent
}

// FrameHistory returns a copy of the bounded executed-input history.
func (c *Coordinator) FrameHistory() []gamestate.FrameHistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]gamestate.FrameHistoryEntry, len(c.frameHistory))
	copy(out, c.frameHistory)
	return out
}

// #endregion status
