// Package trace provides lightweight request tracing with W3C-style
// identifiers, without external dependencies.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

// Header names for HTTP propagation.
const (
	TraceIDHeader = "x-trace-id"
	SpanIDHeader  = "x-span-id"
)

type ctxKey struct{}

var traceCtxKey = ctxKey{}

// Context holds trace identifiers for a single span.
type Context struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
}

// New creates a fresh trace context.
func New() Context {
	return Context{TraceID: newID(16), SpanID: newID(8)}
}

// NewChild derives a child context, keeping the trace id.
func NewChild(parent Context) Context {
	return Context{TraceID: parent.TraceID, SpanID: newID(8), ParentSpanID: parent.SpanID}
}

// WithContext attaches a trace context.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, traceCtxKey, tc)
}

// FromContext extracts the trace context, ok=false when absent.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(traceCtxKey).(Context)
	return tc, ok
}

// EnsureContext returns ctx with a trace context, creating one if needed.
func EnsureContext(ctx context.Context) (context.Context, Context) {
	if tc, ok := FromContext(ctx); ok {
		return ctx, tc
	}
	tc := New()
	return WithContext(ctx, tc), tc
}

// Logger returns a slog logger annotated with the trace id, the default
// logger when no trace context is present.
func Logger(ctx context.Context) *slog.Logger {
	if tc, ok := FromContext(ctx); ok {
		return slog.Default().With("trace_id", tc.TraceID)
	}
	return slog.Default()
}

// Span measures one named operation.
type Span struct {
	name  string
	start time.Time
	ctx   Context
	attrs []slog.Attr
}

// StartSpan begins a span as a child of the context's trace.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, tc := EnsureContext(ctx)
	child := NewChild(tc)
	return WithContext(ctx, child), &Span{name: name, start: time.Now(), ctx: child}
}

// SetAttr records an attribute on the span.
func (s *Span) SetAttr(key string, value any) {
	s.attrs = append(s.attrs, slog.Any(key, value))
}

// End logs the span's duration at debug level.
func (s *Span) End() {
	attrs := append([]slog.Attr{
		slog.String("span", s.name),
		slog.String("trace_id", s.ctx.TraceID),
		slog.Duration("duration", time.Since(s.start)),
	}, s.attrs...)
	slog.LogAttrs(context.Background(), slog.LevelDebug, "span complete", attrs...)
}

func newID(bytes int) string {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "0000"
	}
	return hex.EncodeToString(buf)
}
