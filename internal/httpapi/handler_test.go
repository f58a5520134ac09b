package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ardenlabs/playrunner/internal/blob"
	"github.com/ardenlabs/playrunner/internal/kv"
	"github.com/ardenlabs/playrunner/internal/modelprovider"
)

// #region fixture

const decideReply = `{
	"gameState": {"area": "route-1"},
	"decision": {
		"screenAnalysis": "clear",
		"reasoning": "go north",
		"buttonSequence": [{"confidences": {"UP": 0.9}}],
		"progressConfidence": 0.6,
		"notes": {}
	}
}`

// fixtureModel wires a Client to an httptest server that answers both the
// classify and decide phases, for exercising the full /decide route without
// a live provider.
func fixtureModel(t *testing.T) *modelprovider.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		content := decideReply
		if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "screen classifier") {
			content = `{"screenType":"overworld","briefDescription":"grass"}`
		}
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
			Usage:   openai.Usage{PromptTokens: 10, CompletionTokens: 5},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return modelprovider.NewClientWithOpenAI(openai.NewClientWithConfig(cfg), "test-model")
}

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := New(kv.NewMemStore(), blob.NewLocalStore(t.TempDir(), "http://localhost/blobs"), fixtureModel(t))
	router := gin.New()
	h.RegisterRoutes(router)
	return router, h
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// #endregion fixture

// #region test-decide

func TestDecide_HappyPath(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/agent/decide", map[string]interface{}{
		"agentId": "agent-1",
		"modelId": "openai/gpt-4o-mini",
		"frame":   strings.Repeat("a", 1200),
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}
}

func TestDecide_RejectsUndersizedFrame(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/agent/decide", map[string]interface{}{
		"agentId": "agent-1",
		"modelId": "openai/gpt-4o-mini",
		"frame":   "too-small",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDecide_RejectsMissingRequiredFields(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/agent/decide", map[string]interface{}{
		"agentId": "agent-1",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetAgent_NotFoundBeforeFirstDecide(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/agent/decide?agentId=nobody", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetAgent_ReturnsRecordAfterDecide(t *testing.T) {
	router, _ := newTestRouter(t)
	doRequest(router, http.MethodPost, "/api/agent/decide", map[string]interface{}{
		"agentId": "agent-1",
		"modelId": "openai/gpt-4o-mini",
		"frame":   strings.Repeat("a", 1200),
	})

	w := doRequest(router, http.MethodGet, "/api/agent/decide?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

// #endregion test-decide

// #region test-heartbeat

func TestHeartbeat_NotFoundWithoutExistingAgent(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/heartbeat", map[string]interface{}{"agentId": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHeartbeat_RoundTrip(t *testing.T) {
	router, h := newTestRouter(t)
	h.coordinator("agent-1", "openai/gpt-4o-mini")

	w := doRequest(router, http.MethodPost, "/heartbeat", map[string]interface{}{"agentId": "agent-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/heartbeat?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["alive"] != true {
		t.Errorf("expected alive true, got %v", body["alive"])
	}
}

// #endregion test-heartbeat

// #region test-state

func TestPostState_CreatesCoordinator(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/state", map[string]interface{}{"agentId": "agent-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/state?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetState_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/state?agentId=ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteState_ResetsExistingAgent(t *testing.T) {
	router, h := newTestRouter(t)
	h.coordinator("agent-1", "openai/gpt-4o-mini")

	w := doRequest(router, http.MethodDelete, "/state?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSaveState_RejectsInvalidBase64(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/save-state", map[string]interface{}{
		"agentId": "agent-1",
		"data":    "not-valid-base64!!",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSaveStateAndParseState_RoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	encoded := base64.StdEncoding.EncodeToString([]byte("save-bytes"))
	w := doRequest(router, http.MethodPost, "/save-state", map[string]interface{}{
		"agentId": "agent-1",
		"data":    encoded,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/parse-state?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	saves, ok := body["saves"].([]interface{})
	if !ok || len(saves) != 1 {
		t.Fatalf("expected exactly one saved checkpoint, got %v", body["saves"])
	}
}

// #endregion test-state

// #region test-frames

func TestListFrames_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/frames?agentId=ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListFrames_EmptyBeforeAnyDecision(t *testing.T) {
	router, h := newTestRouter(t)
	h.coordinator("agent-1", "openai/gpt-4o-mini")

	w := doRequest(router, http.MethodGet, "/frames?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestStoreFrame_RejectsInvalidBase64(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/frames", map[string]interface{}{
		"agentId": "agent-1",
		"image":   "not-valid-base64!!",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStoreFrame_Succeeds(t *testing.T) {
	router, _ := newTestRouter(t)

	encoded := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	w := doRequest(router, http.MethodPost, "/frames", map[string]interface{}{
		"agentId": "agent-1",
		"image":   encoded,
		"label":   "milestone",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

// #endregion test-frames

// #region test-memstash

func TestGetMemstash_DefaultsToZeroValue(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/memstash?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestDeleteMemstash_Succeeds(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodDelete, "/memstash?agentId=agent-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

// #endregion test-memstash
