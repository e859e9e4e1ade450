package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/corymhall/aidllsp/debug"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

var (
	// ErrClosed is returned by a Handler to stop Run without an error, e.g.
	// on the "exit" notification.
	ErrClosed = errors.New("connection closed")
	// ErrWrite wraps every failure to send a message.
	ErrWrite = errors.New("writing to stream")
)

// Conn is the common interface to jsonrpc servers.
// Conn is bidirectional; it does not have a designated server or client end.
//
// A Conn is driven by a single goroutine calling Run: every incoming message
// is handled to completion before the next one is read.
type Conn interface {
	// Call sends a request to the other end without waiting for the
	// response, which Run receives later and logs if it carries an error.
	// The id returned will be unique from this connection.
	Call(ctx context.Context, method string, params any) (ID, error)

	// Notify invokes the target method but does not wait for a response.
	// The params will be marshaled to JSON before sending over the wire, and will
	// be handed to the method invoked.
	Notify(ctx context.Context, method string, params any) error

	// Run reads and handles messages until the stream ends, the handler
	// returns an error, or the handler returns ErrClosed.
	Run(ctx context.Context, handler Handler) error

	Done() <-chan struct{}
}

type conn struct {
	seq       int64 // must only be accessed using atomic operations
	stream    Stream
	writeMu   sync.Mutex // serializes writes to the stream
	pendingMu sync.Mutex // protects the pending map
	pending   map[ID]string
	done      chan struct{}
}

// NewConn creates a new connection object around the supplied stream.
func NewConn(s Stream) Conn {
	contract.Requiref(s != nil, "s", "must not be nil")
	return &conn{
		stream:  s,
		pending: make(map[ID]string),
		done:    make(chan struct{}),
	}
}

func (c *conn) Notify(ctx context.Context, method string, params any) error {
	notify, err := NewNotification(method, params)
	if err != nil {
		return fmt.Errorf("marshaling notify parameters: %w", err)
	}
	_, err = c.write(ctx, notify)
	return err
}

func (c *conn) Call(ctx context.Context, method string, params any) (ID, error) {
	// generate a new request identifier
	id := ID{number: atomic.AddInt64(&c.seq, 1)}
	call, err := NewCall(id, method, params)
	if err != nil {
		return id, fmt.Errorf("marshaling call parameters: %w", err)
	}
	c.pendingMu.Lock()
	c.pending[id] = method
	c.pendingMu.Unlock()
	if _, err := c.write(ctx, call); err != nil {
		// sending failed, we will never get a response, so don't leave it pending
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return id, err
	}
	return id, nil
}

func (c *conn) replier(req Request) Replier {
	return func(ctx context.Context, result any, err error) error {
		call, ok := req.(*Call)
		if !ok {
			// request was a notify, no need to respond
			return nil
		}
		response, err := NewResponse(call.id, result, err)
		if err != nil {
			// the result could not be marshaled, report that instead
			response, _ = NewResponse(call.id, nil, Errorf(CodeInternalError, "marshaling result: %v", err))
		}
		_, err = c.write(ctx, response)
		return err
	}
}

func (c *conn) write(ctx context.Context, msg Message) (int64, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	n, err := c.stream.Write(ctx, msg)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return n, nil
}

func (c *conn) Run(ctx context.Context, handler Handler) error {
	defer close(c.done)
	for {
		// get the next message
		msg, _, err := c.stream.Read(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrParse):
			// the frame was read completely, so the stream is still usable
			debug.LogError(ctx, "dropping malformed message", err)
			continue
		case err != nil:
			// The stream failed, we cannot continue.
			return fmt.Errorf("reading from stream: %w", err)
		}
		switch msg := msg.(type) {
		case Request:
			if err := handler(ctx, c.replier(msg), msg); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				return err
			}
		case *Response:
			c.pendingMu.Lock()
			method, ok := c.pending[msg.id]
			delete(c.pending, msg.id)
			c.pendingMu.Unlock()
			if !ok {
				debug.Warning.Log(ctx, "response to unknown request", "id", msg.id.String())
				continue
			}
			if msg.err != nil {
				debug.Warning.Log(ctx, "request rejected by client", "method", method, "error", msg.err.Message)
			}
		}
	}
}

func (c *conn) Done() <-chan struct{} {
	return c.done
}
