// Package logger provides the slog handler of the server: records are
// written to a local sink and warnings and errors are also forwarded to the
// editor through window/logMessage.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/corymhall/aidllsp/lsp"
)

var ProgramLevel = new(slog.LevelVar)

// ParseLevel converts a level name (debug, info, warn, error) to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// forwarder sends log messages to the client from its own goroutine, so
// that logging never blocks the message loop.
type forwarder struct {
	mu     sync.Mutex
	client lsp.Client
	closed bool
	once   sync.Once
	queue  chan *lsp.LogMessageParams
}

func (f *forwarder) send(ctx context.Context, msg *lsp.LogMessageParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil || f.closed {
		return
	}

	client := f.client
	f.once.Do(func() {
		go func() {
			for msg := range f.queue {
				_ = client.LogMessage(ctx, msg)
			}
		}()
	})

	select {
	case f.queue <- msg:
	default:
		// the client is not keeping up, drop the message
	}
}

// close stops the forwarding goroutine once the queued messages are sent.
func (f *forwarder) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.queue)
}

// Handler is a slog.Handler writing to a local sink and forwarding records
// at or above the forward level to the client.
type Handler struct {
	slog.Handler
	forward slog.Level
	fwd     *forwarder
	attrs   []slog.Attr
}

// NewHandler returns a Handler writing text records to w.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	return &Handler{
		Handler: slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
		forward: slog.LevelWarn,
		fwd:     &forwarder{queue: make(chan *lsp.LogMessageParams, 100)}, // big enough for a large transient burst
	}
}

// SetClient starts forwarding records to client.
func (h *Handler) SetClient(client lsp.Client) {
	h.fwd.mu.Lock()
	defer h.fwd.mu.Unlock()
	h.fwd.client = client
}

// Close stops forwarding records to the client. Records are still written to
// the sink.
func (h *Handler) Close() {
	h.fwd.close()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.forward {
		h.fwd.send(context.WithoutCancel(ctx), &lsp.LogMessageParams{
			Type:    convertLevel(r.Level),
			Message: format(r, h.attrs),
		})
	}
	return h.Handler.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		Handler: h.Handler.WithAttrs(attrs),
		forward: h.forward,
		fwd:     h.fwd,
		attrs:   append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		Handler: h.Handler.WithGroup(name),
		forward: h.forward,
		fwd:     h.fwd,
		attrs:   h.attrs,
	}
}

func format(r slog.Record, attrs []slog.Attr) string {
	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
		return true
	}
	for _, a := range attrs {
		write(a)
	}
	r.Attrs(write)
	return b.String()
}

func convertLevel(level slog.Level) lsp.MessageType {
	switch {
	case level >= slog.LevelError:
		return lsp.MessageError
	case level >= slog.LevelWarn:
		return lsp.MessageWarning
	case level >= slog.LevelInfo:
		return lsp.MessageInfo
	default:
		return lsp.MessageLog
	}
}
