package httpapi

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
)

// #region state

// getState returns the agent's current snapshot: the agent record and the
// coordinator status, for GET /state?agentId=...
func (h *Handler) getState(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{
		"agent":  coordinator.Agent(),
		"status": coordinator.Status(),
	})
}

type postStateBody struct {
	AgentID string `json:"agentId" binding:"required"`
	ModelID string `json:"modelId"`
}

// postState lazily creates (or revives) the coordinator for an agent, the
// analog of the pack's session-bootstrap endpoints.
func (h *Handler) postState(c *gin.Context) {
	var body postStateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request data: "+err.Error())
		return
	}
	modelID := body.ModelID
	if modelID == "" {
		modelID = "openai/gpt-4o"
	}
	coordinator := h.coordinator(body.AgentID, modelID)
	c.JSON(http.StatusOK, gin.H{"agent": coordinator.Agent()})
}

// deleteState resets an agent's ephemeral and persisted state in place,
// matching the Loop Coordinator's Reset semantics.
func (h *Handler) deleteState(c *gin.Context) {
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
	if err := coordinator.Reset(c.Request.Context()); err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// #endregion state

// #region save-state

type saveStateBody struct {
	AgentID string `json:"agentId" binding:"required"`
	Data    string `json:"data" binding:"required"` // base64-encoded emulator save blob
}

// saveState accepts a caller-captured emulator save blob and uploads it
// through the blob store as save-states/{agentId}/manual.state, for callers
// that own their own emulator. Coordinator checkpoints use timestamped names
// in the same folder.
func (h *Handler) saveState(c *gin.Context) {
	var body saveStateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request data: "+err.Error())
		return
	}
	data, err := base64.StdEncoding.DecodeString(body.Data)
	if err != nil {
		badRequest(c, "data is not valid base64")
		return
	}
	path := "save-states/" + body.AgentID + "/manual.state"
	url, err := h.blobStore.Put(c.Request.Context(), path, data)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// parseState lists the checkpoint blobs stored for an agent so a caller can
// pick one to restore.
func (h *Handler) parseState(c *gin.Context) {
	agentID := c.Query("agentId")
	if agentID == "" {
		badRequest(c, "agentId is required")
		return
	}
	objects, err := h.blobStore.List(c.Request.Context(), "save-states/"+agentID+"/")
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saves": objects})
}

// #endregion save-state
