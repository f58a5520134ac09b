package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/loop"
	"github.com/ardenlabs/playrunner/internal/metrics"
)

// #region request-body

type commandHistoryItem struct {
	Button       gamestate.Button        `json:"button"`
	VisualChange gamestate.VisualChange  `json:"visualChange"`
}

type decideBody struct {
	AgentID                  string                    `json:"agentId" binding:"required"`
	ModelID                  string                    `json:"modelId" binding:"required"`
	Frame                    string                    `json:"frame" binding:"required"`
	PreviousFrames           []string                  `json:"previousFrames"`
	CommandHistoryWithChanges []commandHistoryItem     `json:"commandHistoryWithChanges"`
	PreviousConfidenceScores gamestate.ConfidenceTable `json:"previousConfidenceScores"`
	PreviousDialogHistory    []string                  `json:"previousDialogHistory"`
}

// #endregion request-body

// #region decide

func (h *Handler) decide(c *gin.Context) {
	var body decideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request data: "+err.Error())
		return
	}
	if len(body.Frame) < 1024 {
		badRequest(c, "frame payload too small to be a valid capture")
		return
	}

	coordinator := h.coordinator(body.AgentID, body.ModelID)

	history := make([]loop.CommandHistoryItem, len(body.CommandHistoryWithChanges))
	for i, item := range body.CommandHistoryWithChanges {
		history[i] = loop.CommandHistoryItem{Button: item.Button, VisualChange: item.VisualChange}
	}

	resp, err := coordinator.Decide(c.Request.Context(), loop.DecideRequest{
		AgentID:            body.AgentID,
		ModelID:            body.ModelID,
		FrameBase64:        body.Frame,
		PreviousFrames:     body.PreviousFrames,
		CommandHistory:     history,
		PreviousConfidence: body.PreviousConfidenceScores,
	})
	if err != nil {
		switch err.(type) {
		case loop.ErrDecisionInFlight:
			c.AbortWithStatusJSON(http.StatusConflict, errorResponse{Error: err.Error()})
		case loop.ErrClientGone:
			c.JSON(http.StatusOK, gin.H{"success": false, "status": "paused", "reason": err.Error()})
		default:
			metrics.DecisionsTotal.WithLabelValues(body.AgentID, "error").Inc()
			serverError(c, err)
		}
		return
	}

	outcome := "ok"
	if resp.Decision.IsFallback {
		outcome = "fallback"
		metrics.FallbacksTotal.WithLabelValues(body.AgentID).Inc()
	}
	metrics.DecisionsTotal.WithLabelValues(body.AgentID, outcome).Inc()
	metrics.ModelCostTotal.WithLabelValues(body.AgentID).Add(resp.Cost)

	c.JSON(http.StatusOK, resp)
}

// getAgent returns the current agent record for GET /api/agent/decide?agentId=...
func (h *Handler) getAgent(c *gin.Context) {
	agentID := c.Query("agentId")
	if agentID == "" {
		badRequest(c, "agentId is required")
		return
	}
	h.mu.Lock()
	coordinator, ok := h.coordinators[agentID]
	h.mu.Unlock()
	if !ok {
		notFound(c, "agent not found")
		return
	}
	c.JSON(http.StatusOK, coordinator.Agent())
}

// #endregion decide
