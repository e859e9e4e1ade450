package rpc

import (
	"context"
	"fmt"
)

// Error is a JSON RPC error object. Handlers return it (possibly wrapped) to
// pick the exact code of the error response; any other error is reported as
// an internal error.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an error with the given code and message.
func NewError(code int64, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds an error with the given code and a formatted message.
func Errorf(code int64, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

const (
	CodeParseError     int64 = -32700
	CodeInvalidRequest int64 = -32600
	CodeMethodNotFound int64 = -32601
	CodeInvalidParams  int64 = -32602
	CodeInternalError  int64 = -32603
	// CodeServerNotInitialized is returned for requests received before
	// "initialize".
	CodeServerNotInitialized int64 = -32002
)

var (
	// ErrParse is used when invalid JSON was received by the server.
	ErrParse = NewError(CodeParseError, "JSON RPC parse error")
	// ErrInvalidRequest is used when the JSON sent is not a valid Request object.
	ErrInvalidRequest = NewError(CodeInvalidRequest, "JSON RPC invalid request")
	// ErrMethodNotFound should be returned by the handler when the method does
	// not exist / is not available.
	ErrMethodNotFound = NewError(CodeMethodNotFound, "JSON RPC method not found")
	// ErrInternal is used for handler failures without a code of their own.
	ErrInternal = NewError(CodeInternalError, "JSON RPC internal error")
)

// Handler is invoked to handle incoming requests.
// The Replier sends a reply to the request and must be called exactly once
// for calls. A non-nil error stops the connection.
type Handler func(ctx context.Context, reply Replier, req Request) error

// Replier is passed to handlers to allow them to reply to the request.
// If err is set then result will be ignored.
type Replier func(ctx context.Context, result any, err error) error

// MethodNotFound is a Handler that replies to all call requests with the
// standard method not found response.
// This should normally be the final handler in a chain.
func MethodNotFound(ctx context.Context, reply Replier, req Request) error {
	return reply(ctx, nil, fmt.Errorf("%w: %q", ErrMethodNotFound, req.Method()))
}
