package lsp

import (
	"context"

	"github.com/corymhall/aidllsp/rpc"
)

// Client is the set of messages the server sends to the editor.
type Client interface {
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#textDocument_publishDiagnostics
	PublishDiagnostics(context.Context, *PublishDiagnosticsParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#window_workDoneProgress_create
	//
	// The request is sent without waiting for the client's answer.
	WorkDoneProgressCreate(context.Context, *WorkDoneProgressCreateParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#progress
	ProgressBegin(context.Context, *WorkDoneProgressBeginParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#progress
	ProgressEnd(context.Context, *WorkDoneProgressEndParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#window_showMessage
	ShowMessage(context.Context, *ShowMessageParams) error
	// See https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification#window_logMessage
	LogMessage(context.Context, *LogMessageParams) error
}

type connSender interface {
	Notify(ctx context.Context, method string, params any) error
	Call(ctx context.Context, method string, params any) (rpc.ID, error)
}

type clientDispatcher struct {
	sender connSender
}

// ClientDispatcher returns a Client sending its messages over conn.
func ClientDispatcher(conn rpc.Conn) Client {
	return &clientDispatcher{
		sender: conn,
	}
}

func (s *clientDispatcher) PublishDiagnostics(ctx context.Context, params *PublishDiagnosticsParams) error {
	return s.sender.Notify(ctx, MethodPublishDiagnostics, params)
}

func (s *clientDispatcher) WorkDoneProgressCreate(ctx context.Context, params *WorkDoneProgressCreateParams) error {
	_, err := s.sender.Call(ctx, MethodWorkDoneProgressCreate, params)
	return err
}

func (s *clientDispatcher) ProgressBegin(ctx context.Context, params *WorkDoneProgressBeginParams) error {
	return s.sender.Notify(ctx, MethodProgress, params)
}

func (s *clientDispatcher) ProgressEnd(ctx context.Context, params *WorkDoneProgressEndParams) error {
	return s.sender.Notify(ctx, MethodProgress, params)
}

func (s *clientDispatcher) ShowMessage(ctx context.Context, params *ShowMessageParams) error {
	return s.sender.Notify(ctx, MethodShowMessage, params)
}

func (s *clientDispatcher) LogMessage(ctx context.Context, params *LogMessageParams) error {
	return s.sender.Notify(ctx, MethodLogMessage, params)
}
