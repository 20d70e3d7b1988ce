package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Nimavk1313/Personal-Assistant/internal/assistant"
	"github.com/Nimavk1313/Personal-Assistant/internal/trace"
)

type wsConn = *websocket.Conn

// WebSocket message types.
type Message struct {
	Type string `json:"type"`
}

type ChatMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

type ChatResponseMessage struct {
	Type      string `json:"type"`
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type TranscriptMessage struct {
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, ErrorMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "chat":
			var chat ChatMessage
			if err := json.Unmarshal(msg, &chat); err != nil {
				continue
			}
			ctx := baseCtx
			if chat.TraceID != "" {
				tc := trace.NewChild(trace.Context{TraceID: chat.TraceID})
				ctx = trace.WithContext(ctx, tc)
			} else {
				ctx, _ = trace.EnsureContext(ctx)
			}
			s.handleWSChat(ctx, conn, chat)
		case "toggle":
			status := s.manager.Controller().Toggle()
			state := "live_off"
			if status.Running {
				state = "live_on"
			}
			_ = wsjson.Write(baseCtx, conn, map[string]string{"type": "toggle", "status": state})
		}
	}
}

func (s *Server) handleWSChat(ctx context.Context, conn wsConn, msg ChatMessage) {
	ctx, span := trace.StartSpan(ctx, "ws_chat")
	defer span.End()

	log := trace.Logger(ctx)
	log.Info("chat message", "remote", "ws")

	resp, err := s.manager.Chat(ctx, assistant.ChatRequest{
		Message:   msg.Message,
		SessionID: msg.SessionID,
	})
	if err != nil {
		span.SetAttr("error", err.Error())
		log.Error("chat error", "error", err)
		_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
		return
	}

	_ = wsjson.Write(ctx, conn, ChatResponseMessage{
		Type:      "chat_response",
		Response:  resp.Response,
		SessionID: resp.SessionID,
	})
}

// broadcastTranscripts fans transcript appends out to every connection.
func (s *Server) broadcastTranscripts() {
	for evt := range s.manager.Controller().Store().Events() {
		msg := TranscriptMessage{
			Type:   "transcript",
			Seq:    evt.Seq,
			Text:   evt.Text,
			Source: evt.Source,
		}

		s.mu.RLock()
		for conn := range s.conns {
			go func(c wsConn) {
				_ = wsjson.Write(context.Background(), c, msg)
			}(conn)
		}
		s.mu.RUnlock()
	}
}
