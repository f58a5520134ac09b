package httpapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// #region frames

// listFrames returns the coordinator's bounded executed-input history for
// GET /frames?agentId=...
func (h *Handler) listFrames(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"frames": coordinator.FrameHistory()})
}

type storeFrameBody struct {
	AgentID string `json:"agentId" binding:"required"`
	Image   string `json:"image" binding:"required"` // base64-encoded PNG/JPEG
	Label   string `json:"label"`
}

// storeFrame uploads a milestone screenshot for an agent, for callers that
// want a durable capture outside the bounded in-memory history.
func (h *Handler) storeFrame(c *gin.Context) {
	var body storeFrameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request data: "+err.Error())
		return
	}
	data, err := base64.StdEncoding.DecodeString(body.Image)
	if err != nil {
		badRequest(c, "image is not valid base64")
		return
	}
	label := body.Label
	if label == "" {
		label = "frame"
	}
	path := fmt.Sprintf("frames/%s/%s_%s.png", body.AgentID, time.Now().UTC().Format("20060102T150405"), label)
	url, err := h.blobStore.Put(c.Request.Context(), path, data)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// #endregion frames
