package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMessage(t *testing.T) {
	before := testutil.ToFloat64(messages.WithLabelValues("test/observe", OutcomeOK))
	ObserveMessage("test/observe", OutcomeOK, time.Millisecond)
	ObserveMessage("test/observe", OutcomeOK, time.Millisecond)
	ObserveMessage("test/observe", OutcomeError, time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(messages.WithLabelValues("test/observe", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(messages.WithLabelValues("test/observe", OutcomeError)))
}

func TestIndexGauges(t *testing.T) {
	ObserveIndex(time.Second, 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(indexedFiles))
	SetIndexedFiles(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(indexedFiles))
}

func TestAddDiagnostics(t *testing.T) {
	before := testutil.ToFloat64(diagnostics.WithLabelValues("warning"))
	AddDiagnostics("warning", 0)
	AddDiagnostics("warning", 4)
	assert.Equal(t, before+4, testutil.ToFloat64(diagnostics.WithLabelValues("warning")))
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ObserveMessage("test/serve", OutcomeOK, time.Millisecond)
	addr, err := Serve(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `aidllsp_dispatch_messages_total{method="test/serve",outcome="ok"}`)
}

func TestServeInvalidAddress(t *testing.T) {
	_, err := Serve(context.Background(), "not-an-address")
	assert.ErrorContains(t, err, "listening on not-an-address")
}
