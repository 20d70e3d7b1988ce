// Package assistant orchestrates chat requests: it gathers screen,
// window, and web context, routes it through the LLM, and tracks
// conversation sessions.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/Nimavk1313/Personal-Assistant/internal/capture"
	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
	"github.com/Nimavk1313/Personal-Assistant/internal/llm"
	"github.com/Nimavk1313/Personal-Assistant/internal/trace"
	"github.com/Nimavk1313/Personal-Assistant/internal/websearch"
	"github.com/Nimavk1313/Personal-Assistant/internal/window"
)

const (
	// DefaultTranscriptWindow bounds how far back screen context
	// reaches when answering a chat request.
	DefaultTranscriptWindow = 25 * time.Second

	// DefaultMaxContextChars caps the screen context handed to the LLM.
	DefaultMaxContextChars = 3000
)

// ChatRequest is an incoming chat message. UseOCR and UseWeb force a
// context source on or off; nil means the query analyzer decides.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UseOCR    *bool  `json:"use_ocr,omitempty"`
	UseWeb    *bool  `json:"use_web,omitempty"`
}

// ChatResponse carries the reply plus the context that informed it.
type ChatResponse struct {
	Response   string `json:"response"`
	SessionID  string `json:"session_id"`
	ScreenText string `json:"screen_text,omitempty"`
	WindowInfo string `json:"window_info,omitempty"`
	WebResults string `json:"web_results,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// Options wire the manager's collaborators.
type Options struct {
	Controller *capture.Controller
	LLM        *llm.Client
	Memory     *llm.Memory
	Search     *websearch.Searcher
	Windows    *window.Manager

	TranscriptWindow time.Duration
	MaxContextChars  int
}

// Manager glues the capture pipeline and the external collaborators
// behind the chat and status operations.
type Manager struct {
	controller *capture.Controller
	llm        *llm.Client
	memory     *llm.Memory
	search     *websearch.Searcher
	windows    *window.Manager

	transcriptWindow time.Duration
	maxContextChars  int
}

// NewManager creates a manager. Controller and LLM are required, the
// remaining collaborators degrade to empty context when absent.
func NewManager(opts Options) *Manager {
	if opts.TranscriptWindow <= 0 {
		opts.TranscriptWindow = DefaultTranscriptWindow
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultMaxContextChars
	}
	return &Manager{
		controller:       opts.Controller,
		llm:              opts.LLM,
		memory:           opts.Memory,
		search:           opts.Search,
		windows:          opts.Windows,
		transcriptWindow: opts.TranscriptWindow,
		maxContextChars:  opts.MaxContextChars,
	}
}

// Controller exposes the capture controller for lifecycle endpoints.
func (m *Manager) Controller() *capture.Controller { return m.controller }

// LLM exposes the chat client for configuration endpoints.
func (m *Manager) LLM() *llm.Client { return m.llm }

// Search exposes the web searcher.
func (m *Manager) Search() *websearch.Searcher { return m.search }

// Windows exposes the window manager.
func (m *Manager) Windows() *window.Manager { return m.windows }

// Memory exposes the conversation memory.
func (m *Manager) Memory() *llm.Memory { return m.memory }

// Chat answers a user message, pulling screen, window, and web context
// as the query demands.
func (m *Manager) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "empty message")
	}

	ctx, span := trace.StartSpan(ctx, "assistant.chat")
	defer span.End()

	sessionID := req.SessionID
	if sessionID == "" && m.memory != nil {
		sessionID = m.memory.NewSession()
	}

	windowInfo := m.windowContext(ctx)
	decision := m.resolveSources(req, message)
	span.SetAttr("use_ocr", decision.UseOCR)
	span.SetAttr("use_web", decision.UseWeb)

	var screenText string
	if decision.UseOCR {
		screenText = m.screenContext(ctx)
	}

	var webResults string
	if decision.UseWeb && m.search != nil {
		webResults = m.search.SearchFormatted(ctx, message, 0)
	}

	messages := m.buildMessages(sessionID, message, screenText, windowInfo, webResults)
	reply, err := m.llm.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	if m.memory != nil {
		m.memory.Add(sessionID, llm.RoleUser, message)
		m.memory.Add(sessionID, llm.RoleAssistant, reply)
	}

	return &ChatResponse{
		Response:   reply,
		SessionID:  sessionID,
		ScreenText: screenText,
		WindowInfo: windowInfo,
		WebResults: webResults,
		Reasoning:  decision.Reasoning,
	}, nil
}

// resolveSources honors explicit request flags and falls back to the
// analyzer for anything left unset.
func (m *Manager) resolveSources(req ChatRequest, message string) Decision {
	d := decide(message, m.controller != nil && m.controller.Running())
	if req.UseOCR != nil {
		d.UseOCR = *req.UseOCR
		d.Reasoning = "caller override"
	}
	if req.UseWeb != nil {
		d.UseWeb = *req.UseWeb
		d.Reasoning = "caller override"
	}
	return d
}

// screenContext returns recent transcript text while live capture
// runs, or falls back to a one-shot capture. Failures yield empty
// context rather than failing the chat.
func (m *Manager) screenContext(ctx context.Context) string {
	if m.controller == nil {
		return ""
	}
	if m.controller.Running() {
		cutoff := time.Now().Add(-m.transcriptWindow)
		return m.controller.Store().RecentText(cutoff, m.maxContextChars)
	}
	once, err := m.controller.CaptureOnce(ctx, nil)
	if err != nil {
		trace.Logger(ctx).Debug("single capture for chat context failed", "error", err)
		return ""
	}
	return once.Text
}

func (m *Manager) windowContext(ctx context.Context) string {
	if m.windows == nil {
		return ""
	}
	return m.windows.FormattedActive(ctx)
}

const contextGuidance = `

When context blocks are provided, ground your answer in them. If the
context is irrelevant to the question, say so briefly and answer the
question directly. When referencing screen content, be specific about
what is visible. When using web results, prefer recent information and
mention sources.`

// buildMessages assembles the chat request: system prompt, session
// history, context blocks, then the user query.
func (m *Manager) buildMessages(sessionID, message, screenText, windowInfo, webResults string) []llm.Message {
	systemPrompt := m.llm.Params().SystemPrompt
	hasContext := screenText != "" || windowInfo != "" || webResults != ""
	if hasContext {
		systemPrompt += contextGuidance
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}

	if m.memory != nil {
		messages = append(messages, m.memory.History(sessionID)...)
	}

	if windowInfo != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "CURRENT WINDOW:\n" + windowInfo})
	}
	if screenText != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "SCREEN CONTENT:\n" + screenText})
	}
	if webResults != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "WEB RESULTS:\n" + webResults})
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "USER QUERY: " + message})
	return messages
}

// Health summarizes collaborator availability.
type Health struct {
	Status          string `json:"status"`
	AIAvailable     bool   `json:"ai_available"`
	SearchAvailable bool   `json:"web_search_available"`
	OCRReady        bool   `json:"ocr_available"`
	LiveEnabled     bool   `json:"live_enabled"`
}

// Health reports the availability of each collaborator.
func (m *Manager) Health() Health {
	status := m.controller.Status()
	return Health{
		Status:          "healthy",
		AIAvailable:     m.llm.Available(),
		SearchAvailable: m.search != nil,
		OCRReady:        status.OCRReady,
		LiveEnabled:     status.Running,
	}
}
