package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/metrics"
	"github.com/corymhall/aidllsp/rpc"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

// RequestKind describes a request method whose params decode into P and
// whose successful result is R.
type RequestKind[P, R any] struct {
	Method string
}

// NotificationKind describes a notification method whose params decode
// into P.
type NotificationKind[P any] struct {
	Method string
}

// NotificationError is returned by Dispatcher.Handle when a notification
// could not be handled. Notifications never get a response, so the caller
// decides whether the failure is worth more than a log entry.
type NotificationError struct {
	Method string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("handling %s: %v", e.Method, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the connection must stop: the handler asked for it
// or a message could not be sent.
func (e *NotificationError) Fatal() bool {
	return errors.Is(e.Err, rpc.ErrClosed) || errors.Is(e.Err, rpc.ErrWrite)
}

// route binds a method to a handler. decode failures are reported as
// *rpc.Error values with CodeInvalidParams.
type route[S any] struct {
	method string
	handle func(ctx context.Context, state S, params json.RawMessage) (any, error)
}

// Dispatcher routes incoming messages to the handlers registered with
// HandleRequest and HandleNotification. Routes are matched in registration
// order.
type Dispatcher[S any] struct {
	state         S
	requests      []route[S]
	notifications []route[S]
}

// NewDispatcher returns a Dispatcher passing state to every handler.
func NewDispatcher[S any](state S) *Dispatcher[S] {
	return &Dispatcher[S]{state: state}
}

// HandleRequest registers fn as the handler of kind. fn takes the state
// first so that method expressions such as (*Server).Hover can be passed.
func HandleRequest[S, P, R any](d *Dispatcher[S], kind RequestKind[P, R], fn func(S, context.Context, P) (R, error)) {
	d.requests = append(d.requests, route[S]{
		method: kind.Method,
		handle: func(ctx context.Context, state S, raw json.RawMessage) (any, error) {
			var params P
			if err := UnmarshalJSON(raw, &params); err != nil {
				return nil, rpc.Errorf(rpc.CodeInvalidParams, "invalid params for %s: %v", kind.Method, err)
			}
			return fn(state, ctx, params)
		},
	})
}

// HandleNotification registers fn as the handler of kind.
func HandleNotification[S, P any](d *Dispatcher[S], kind NotificationKind[P], fn func(S, context.Context, P) error) {
	d.notifications = append(d.notifications, route[S]{
		method: kind.Method,
		handle: func(ctx context.Context, state S, raw json.RawMessage) (any, error) {
			var params P
			if err := UnmarshalJSON(raw, &params); err != nil {
				return nil, rpc.Errorf(rpc.CodeInvalidParams, "invalid params for %s: %v", kind.Method, err)
			}
			return nil, fn(state, ctx, params)
		},
	})
}

func find[S any](routes []route[S], method string) (route[S], bool) {
	for _, r := range routes {
		if r.method == method {
			return r, true
		}
	}
	return route[S]{}, false
}

// Handle is an rpc.Handler. Calls are always answered exactly once; the
// returned error is the failure to send that answer. For notifications the
// returned error is a *NotificationError.
func (d *Dispatcher[S]) Handle(ctx context.Context, reply rpc.Replier, req rpc.Request) error {
	start := time.Now()
	switch req := req.(type) {
	case *rpc.Call:
		return d.handleCall(ctx, reply, req, start)
	case *rpc.Notification:
		return d.handleNotification(ctx, req, start)
	default:
		contract.Failf("unknown request type %T", req)
		return nil
	}
}

func (d *Dispatcher[S]) handleCall(ctx context.Context, reply rpc.Replier, req *rpc.Call, start time.Time) error {
	method := req.Method()
	r, ok := find(d.requests, method)
	if !ok {
		debug.Error.Log(ctx, "no handler for request", "method", method, "id", req.ID().String())
		metrics.ObserveMessage(method, metrics.OutcomeMethodNotFound, time.Since(start))
		return rpc.MethodNotFound(ctx, reply, req)
	}

	result, err := r.handle(ctx, d.state, req.Params())
	metrics.ObserveMessage(method, outcome(err), time.Since(start))
	if err != nil {
		debug.Warning.Log(ctx, "request failed", "method", method, "error", err.Error())
		return reply(ctx, nil, err)
	}
	return reply(ctx, result, nil)
}

func (d *Dispatcher[S]) handleNotification(ctx context.Context, req *rpc.Notification, start time.Time) error {
	method := req.Method()
	r, ok := find(d.notifications, method)
	if !ok {
		if !strings.HasPrefix(method, "$/") {
			debug.Error.Log(ctx, "no handler for notification", "method", method)
		}
		metrics.ObserveMessage(method, metrics.OutcomeIgnored, time.Since(start))
		return nil
	}

	_, err := r.handle(ctx, d.state, req.Params())
	metrics.ObserveMessage(method, outcome(err), time.Since(start))
	if err != nil {
		return &NotificationError{Method: method, Err: err}
	}
	return nil
}

func outcome(err error) string {
	var rpcErr *rpc.Error
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &rpcErr) && rpcErr.Code == rpc.CodeInvalidParams:
		return metrics.OutcomeInvalidParams
	default:
		return metrics.OutcomeError
	}
}
