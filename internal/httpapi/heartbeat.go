package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ardenlabs/playrunner/internal/metrics"
)

// #region heartbeat

type heartbeatBody struct {
	AgentID string `json:"agentId" binding:"required"`
}

func (h *Handler) postHeartbeat(c *gin.Context) {
	var body heartbeatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request data: "+err.Error())
		return
	}
	h.mu.Lock()
	coordinator, ok := h.coordinators[body.AgentID]
	h.mu.Unlock()
	if !ok {
		notFound(c, "agent not found")
		return
	}
	if err := coordinator.Heartbeat(c.Request.Context()); err != nil {
		serverError(c, err)
		return
	}
	metrics.AgentsPaused.WithLabelValues(body.AgentID).Set(0)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) getHeartbeat(c *gin.Context) {
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

	alive, lastBeat, elapsed, err := coordinator.HeartbeatStatus(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	if !alive {
		metrics.AgentsPaused.WithLabelValues(agentID).Set(1)
	}
	c.JSON(http.StatusOK, gin.H{
		"alive":        alive,
		"lastBeat":     lastBeat,
		"elapsedMs":    elapsed.Milliseconds(),
	})
}

// #endregion heartbeat
