// Package httpapi implements the external HTTP surface over the Loop
// Coordinator: one route group per agent concern (decide, heartbeat, state,
// save-state, frames, memstash, parse-state). RegisterRoutes mirrors the
// pack's own handler.RegisterRoutes(router *gin.Engine) convention.
package httpapi

import (
	"database/sql"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ardenlabs/playrunner/internal/blob"
	"github.com/ardenlabs/playrunner/internal/kv"
	"github.com/ardenlabs/playrunner/internal/loop"
	"github.com/ardenlabs/playrunner/internal/memory"
	"github.com/ardenlabs/playrunner/internal/modelprovider"
)

// #region handler

// Handler owns the per-agent coordinator registry and the shared backends
// new coordinators are constructed from.
type Handler struct {
	mu           sync.Mutex
	coordinators map[string]*loop.Coordinator

	kvStore   kv.Store
	blobStore blob.Store
	model     *modelprovider.Client
	memory    *memory.Store
	auditDB   *sql.DB
}

// New creates a Handler backed by the given persistence and model clients.
func New(kvStore kv.Store, blobStore blob.Store, model *modelprovider.Client) *Handler {
	return &Handler{
		coordinators: map[string]*loop.Coordinator{},
		kvStore:      kvStore,
		blobStore:    blobStore,
		model:        model,
		memory:       memory.NewStore(kvStore),
	}
}

// SetAuditDB attaches a durable decision-audit sink. Every coordinator
// constructed after this call (and any already constructed) is wired to it.
func (h *Handler) SetAuditDB(db *sql.DB) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.auditDB = db
	for _, c := range h.coordinators {
		c.SetAuditDB(db)
	}
}

func (h *Handler) coordinator(agentID, modelID string) *loop.Coordinator {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.coordinators[agentID]
	if !ok {
		c = loop.New(agentID, modelID, h.kvStore, h.blobStore, h.model, nil)
		c.SetAuditDB(h.auditDB)
		h.coordinators[agentID] = c
	}
	return c
}

// RegisterRoutes wires the full external surface onto router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/agent")
	{
		api.POST("/decide", h.decide)
		api.GET("/decide", h.getAgent)
	}

	router.POST("/heartbeat", h.postHeartbeat)
	router.GET("/heartbeat", h.getHeartbeat)

	router.GET("/state", h.getState)
	router.POST("/state", h.postState)
	router.DELETE("/state", h.deleteState)

	router.POST("/save-state", h.saveState)
	router.GET("/parse-state", h.parseState)

	router.GET("/frames", h.listFrames)
	router.POST("/frames", h.storeFrame)

	router.GET("/memstash", h.getMemstash)
	router.DELETE("/memstash", h.deleteMemstash)
}

// #endregion handler

// #region errors

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func serverError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func notFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: msg})
}

// #endregion errors
