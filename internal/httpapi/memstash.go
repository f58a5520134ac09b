package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// #region memstash

// getMemstash returns an agent's structured notes for GET /memstash?agentId=...
func (h *Handler) getMemstash(c *gin.Context) {
	agentID := c.Query("agentId")
	if agentID == "" {
		badRequest(c, "agentId is required")
		return
	}
	notes, err := h.memory.GetNotes(c.Request.Context(), agentID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

// deleteMemstash clears an agent's notes and decision log, without
// touching ButtonStats or GameState.
func (h *Handler) deleteMemstash(c *gin.Context) {
	agentID := c.Query("agentId")
	if agentID == "" {
		badRequest(c, "agentId is required")
		return
	}
	if err := h.memory.ClearNotes(c.Request.Context(), agentID); err != nil {
		serverError(c, err)
		return
	}
	if err := h.memory.ClearDecisionLog(c.Request.Context(), agentID); err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// #endregion memstash
