package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/corymhall/aidllsp/lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	lsp.Client
	mu   sync.Mutex
	msgs []*lsp.LogMessageParams
}

func (c *recordingClient) LogMessage(_ context.Context, params *lsp.LogMessageParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, params)
	return nil
}

func (c *recordingClient) messages() []*lsp.LogMessageParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*lsp.LogMessageParams(nil), c.msgs...)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}

	_, err := ParseLevel("loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestHandlerForwardsWarnings(t *testing.T) {
	var sink bytes.Buffer
	h := NewHandler(&sink, slog.LevelDebug)
	client := &recordingClient{}
	h.SetClient(client)
	log := slog.New(h).With("uri", "file:///a.aidl")

	log.Debug("parsing")
	log.Info("indexed", "files", 2)
	log.Warn("duplicate", "key", "p.Foo")
	log.Error("publish failed")

	require.Eventually(t, func() bool { return len(client.messages()) == 2 }, time.Second, 10*time.Millisecond)
	msgs := client.messages()
	assert.Equal(t, &lsp.LogMessageParams{
		Type:    lsp.MessageWarning,
		Message: "duplicate uri=file:///a.aidl key=p.Foo",
	}, msgs[0])
	assert.Equal(t, lsp.MessageError, msgs[1].Type)

	out := sink.String()
	for _, msg := range []string{"parsing", "indexed", "duplicate", "publish failed"} {
		assert.Contains(t, out, "msg="+msgQuote(msg))
	}
}

func TestHandlerWithoutClient(t *testing.T) {
	var sink bytes.Buffer
	log := slog.New(NewHandler(&sink, slog.LevelInfo))
	log.Debug("hidden")
	log.Error("still written")
	assert.NotContains(t, sink.String(), "hidden")
	assert.Contains(t, sink.String(), `msg="still written"`)
}

func TestHandlerClose(t *testing.T) {
	var sink bytes.Buffer
	h := NewHandler(&sink, slog.LevelInfo)
	client := &recordingClient{}
	h.SetClient(client)
	log := slog.New(h)

	log.Warn("before close")
	require.Eventually(t, func() bool { return len(client.messages()) == 1 }, time.Second, 10*time.Millisecond)

	h.Close()
	h.Close()
	log.Warn("after close")
	assert.Contains(t, sink.String(), `msg="after close"`)
	assert.Never(t, func() bool { return len(client.messages()) > 1 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestConvertLevel(t *testing.T) {
	assert.Equal(t, lsp.MessageError, convertLevel(slog.LevelError+4))
	assert.Equal(t, lsp.MessageWarning, convertLevel(slog.LevelWarn))
	assert.Equal(t, lsp.MessageInfo, convertLevel(slog.LevelInfo))
	assert.Equal(t, lsp.MessageLog, convertLevel(slog.LevelDebug))
}

// msgQuote quotes msg the way the text handler does.
func msgQuote(msg string) string {
	if bytes.ContainsRune([]byte(msg), ' ') {
		return `"` + msg + `"`
	}
	return msg
}
