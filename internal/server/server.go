// Package server provides the REST and WebSocket API
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Nimavk1313/Personal-Assistant/internal/assistant"
	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
	"github.com/Nimavk1313/Personal-Assistant/internal/trace"
)

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles REST and WebSocket connections.
type Server struct {
	manager *assistant.Manager

	mu         sync.RWMutex
	conns      map[wsConn]struct{}
	rateLimits map[wsConn]*rateLimiter
}

// New creates a server and starts the transcript broadcaster.
func New(manager *assistant.Manager) *Server {
	s := &Server{
		manager:    manager,
		conns:      make(map[wsConn]struct{}),
		rateLimits: make(map[wsConn]*rateLimiter),
	}
	go s.broadcastTranscripts()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/live/toggle", s.handleLiveToggle)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/transcript", s.handleTranscript)
	mux.HandleFunc("POST /api/capture/single", s.handleCaptureSingle)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/window/active", s.handleActiveWindow)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleUpdateConfig)
	mux.HandleFunc("GET /api/config/prompt", s.handleGetPrompt)
	mux.HandleFunc("POST /api/config/prompt", s.handleUpdatePrompt)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistant.ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.manager.Chat(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLiveToggle(w http.ResponseWriter, r *http.Request) {
	status := s.manager.Controller().Toggle()

	state := "live_off"
	if status.Running {
		state = "live_on"
	}
	trace.Logger(r.Context()).Info("live capture toggled", "state", state)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  state,
		"running": status.Running,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Controller().Status())
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	ctrl := s.manager.Controller()

	text := ""
	if ctrl.Running() {
		cutoff := time.Now().Add(-TranscriptWindow)
		text = ctrl.Store().RecentText(cutoff, TranscriptMaxChars)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transcript": text,
		"entries":    ctrl.Store().Len(),
	})
}

func (s *Server) handleCaptureSingle(w http.ResponseWriter, r *http.Request) {
	once, err := s.manager.Controller().CaptureOnce(r.Context(), nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	text := once.Text
	if len(text) > TextPreviewLimit {
		text = text[:TextPreviewLimit] + "..."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"ocr_text":  text,
		"timestamp": once.Timestamp,
	})
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := s.manager.Search().Search(r.Context(), req.Query, req.MaxResults)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveWindow(w http.ResponseWriter, r *http.Request) {
	info, err := s.manager.Windows().Active(r.Context())
	if err != nil {
		writeError(w, r, apperrors.Wrap(err, apperrors.CodeUnknown, "active window lookup"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":        info.Title,
		"process_name": info.ProcessName,
		"pid":          info.PID,
		"formatted":    info.Format(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Health())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"llm":     s.manager.LLM().Params(),
		"capture": s.manager.Controller().Status(),
		"available_features": map[string]bool{
			"ai":         s.manager.LLM().Available(),
			"web_search": s.manager.Search() != nil,
		},
	})
}

// configUpdate carries partial LLM settings; absent fields keep their
// current value.
type configUpdate struct {
	Model        *string  `json:"model"`
	Temperature  *float64 `json:"temperature"`
	TopP         *float64 `json:"top_p"`
	MaxTokens    *int     `json:"max_tokens"`
	SystemPrompt *string  `json:"system_prompt"`
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req configUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	params := s.manager.LLM().Params()
	if req.Model != nil {
		params.Model = *req.Model
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		params.TopP = *req.TopP
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	if req.SystemPrompt != nil {
		params.SystemPrompt = *req.SystemPrompt
	}
	s.manager.LLM().SetParams(params)

	trace.Logger(r.Context()).Info("llm config updated", "model", params.Model)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "llm": params})
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	params := s.manager.LLM().Params()
	writeJSON(w, http.StatusOK, map[string]any{
		"system_prompt": params.SystemPrompt,
		"model":         params.Model,
		"temperature":   params.Temperature,
		"top_p":         params.TopP,
	})
}

type promptUpdate struct {
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SystemPrompt) == "" {
		writeError(w, r, apperrors.New(apperrors.CodeInvalidArgument, "system prompt cannot be empty"))
		return
	}

	s.manager.LLM().SetSystemPrompt(req.SystemPrompt)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"system_prompt": req.SystemPrompt,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, apperrors.Wrap(err, apperrors.CodeInvalidArgument, "invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		trace.Logger(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		trace.Logger(r.Context()).Debug("request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"code":  string(apperrors.CodeOf(err)),
	})
}
