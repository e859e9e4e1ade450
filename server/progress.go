package server

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/lsp"
	"golang.org/x/exp/rand"
)

// A Tracker reports the progress of a long-running operation to an LSP client.
type Tracker struct {
	client                   lsp.Client
	supportsWorkDoneProgress bool
}

// NewTracker returns a new Tracker that reports progress to the
// specified client.
func NewTracker(client lsp.Client) *Tracker {
	return &Tracker{client: client}
}

// SetSupportsWorkDoneProgress sets whether the client supports "work done"
// progress reporting. It must be set before using the tracker.
func (t *Tracker) SetSupportsWorkDoneProgress(b bool) {
	t.supportsWorkDoneProgress = b
}

// WorkDone represents a unit of work that is reported to the client via the
// progress API.
type WorkDone struct {
	client lsp.Client
	// If token is nil, this workDone object uses the ShowMessage API, rather
	// than $/progress.
	token lsp.ProgressToken
	// err is set if progress reporting is broken for some reason (for example,
	// if there was an initial error creating a token).
	err error
}

// Start reports the beginning of some work. token is the workDoneToken the
// client sent along with the request, if any; otherwise a token is created.
// The creation request is not awaited: the message loop cannot read the
// answer before the work is done.
func (t *Tracker) Start(ctx context.Context, title, message string, token lsp.ProgressToken) *WorkDone {
	ctx = context.WithoutCancel(ctx)
	wd := &WorkDone{
		client: t.client,
		token:  token,
	}
	if !t.supportsWorkDoneProgress {
		if err := wd.client.ShowMessage(ctx, &lsp.ShowMessageParams{
			Type:    lsp.MessageLog,
			Message: message,
		}); err != nil {
			debug.LogError(ctx, "error showing message", err)
			wd.err = err
		}
		wd.token = nil
		return wd
	}

	if wd.token == nil {
		token := strconv.FormatInt(rand.Int63(), 10)
		debug.Debug.Log(ctx, "creating progress token", slog.String("token", token))
		if err := wd.client.WorkDoneProgressCreate(ctx, &lsp.WorkDoneProgressCreateParams{
			Token: token,
		}); err != nil {
			debug.LogError(ctx, "error creating progress token", err)
			wd.err = err
			return wd
		}
		wd.token = token
	}
	err := wd.client.ProgressBegin(ctx, &lsp.WorkDoneProgressBeginParams{
		Token: wd.token,
		Value: &lsp.WorkDoneProgressBeginValue{
			Kind:    lsp.Begin,
			Title:   title,
			Message: message,
		},
	})
	if err != nil {
		debug.LogError(ctx, "error starting progress", err)
		wd.err = err
	}
	return wd
}

// End reports a workdone completion back to the client.
func (wd *WorkDone) End(ctx context.Context, message string) {
	ctx = context.WithoutCancel(ctx) // progress messages should not be cancelled
	if wd == nil {
		debug.Warning.Log(ctx, "end called on nil work done")
		return
	}
	var err error
	switch {
	case wd.err != nil:
		// There is a prior error.
	case wd.token == nil:
		// We're falling back to message-based reporting.
		err = wd.client.ShowMessage(ctx, &lsp.ShowMessageParams{
			Type:    lsp.MessageInfo,
			Message: message,
		})
	default:
		err = wd.client.ProgressEnd(ctx, &lsp.WorkDoneProgressEndParams{
			Token: wd.token,
			Value: &lsp.WorkDoneProgressEndValue{
				Kind:    lsp.End,
				Message: message,
			},
		})
	}
	if err != nil {
		debug.LogError(ctx, "error ending progress", err)
	}
}
