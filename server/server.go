package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corymhall/aidllsp/config"
	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/rpc"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

type serverState int

const (
	serverCreated      = serverState(iota)
	serverInitializing // set once the server has received "initialize" request
	serverInitialized  // set once the server has received "initialized" request
	serverShutDown
)

func (s serverState) String() string {
	switch s {
	case serverCreated:
		return "created"
	case serverInitializing:
		return "initializing"
	case serverInitialized:
		return "initialized"
	case serverShutDown:
		return "shutDown"
	}
	return fmt.Sprintf("(unknown state: %d)", int(s))
}

// Server answers the requests of one client. All of its methods run on the
// goroutine driving the connection.
type Server struct {
	client lsp.Client
	state  serverState

	// level is adjusted to the configured log level, if set.
	level *slog.LevelVar
	cfg   config.Config
	root  string
	// initToken is the workDoneToken of the initialize request, reused to
	// report the progress of the initial index.
	initToken lsp.ProgressToken

	// progress is the progress tracker used to report progress
	// to the client.
	progress  *Tracker
	workspace *Workspace

	dispatcher *lsp.Dispatcher[*Server]
}

// New creates an LSP server reporting to client. level, if not nil, follows
// the logLevel setting of the workspace.
func New(client lsp.Client, level *slog.LevelVar) *Server {
	contract.Requiref(client != nil, "client", "must not be nil")
	cfg := config.Defaults()
	s := &Server{
		client:    client,
		level:     level,
		cfg:       cfg,
		progress:  NewTracker(client),
		workspace: NewWorkspace(client, file.Disk{}, cfg),
	}
	s.dispatcher = newDispatcher(s)
	return s
}

func newDispatcher(s *Server) *lsp.Dispatcher[*Server] {
	d := lsp.NewDispatcher(s)
	lsp.HandleRequest(d, lsp.InitializeRequest, (*Server).Initialize)
	lsp.HandleRequest(d, lsp.ShutdownRequest, (*Server).Shutdown)
	lsp.HandleRequest(d, lsp.WorkspaceSymbolRequest, (*Server).WorkspaceSymbol)
	lsp.HandleRequest(d, lsp.DocumentSymbolRequest, (*Server).DocumentSymbol)
	lsp.HandleRequest(d, lsp.HoverRequest, (*Server).Hover)
	lsp.HandleRequest(d, lsp.DefinitionRequest, (*Server).Definition)

	lsp.HandleNotification(d, lsp.InitializedNotification, (*Server).Initialized)
	lsp.HandleNotification(d, lsp.ExitNotification, (*Server).Exit)
	lsp.HandleNotification(d, lsp.DidOpenNotification, (*Server).DidOpen)
	lsp.HandleNotification(d, lsp.DidChangeNotification, (*Server).DidChange)
	lsp.HandleNotification(d, lsp.DidSaveNotification, (*Server).DidSave)
	lsp.HandleNotification(d, lsp.DidCloseNotification, (*Server).DidClose)
	return d
}

// Workspace returns the workspace index of the server.
func (s *Server) Workspace() *Workspace {
	return s.workspace
}

// ExitCode is the process exit code after "exit": 0 if the client asked for
// a shutdown first, 1 otherwise.
func (s *Server) ExitCode() int {
	if s.state == serverShutDown {
		return 0
	}
	return 1
}

// Handler returns the rpc.Handler serving the connection. Requests are
// refused until "initialize" and after "shutdown". Failed notifications are
// logged; only a closed or broken connection stops the loop.
func (s *Server) Handler() rpc.Handler {
	return func(ctx context.Context, reply rpc.Replier, req rpc.Request) error {
		if err := s.admit(req.Method()); err != nil {
			if _, ok := req.(*rpc.Call); ok {
				return reply(ctx, nil, err)
			}
			if req.Method() != lsp.MethodExit {
				debug.Warning.Log(ctx, "dropping notification", "method", req.Method(), "error", err.Error())
				return nil
			}
		}

		err := s.dispatcher.Handle(ctx, reply, req)
		var nerr *lsp.NotificationError
		if errors.As(err, &nerr) && !nerr.Fatal() {
			debug.LogError(ctx, "notification failed", err)
			return nil
		}
		return err
	}
}

// admit checks that method may be handled in the current lifecycle state.
func (s *Server) admit(method string) error {
	switch s.state {
	case serverCreated:
		if method != lsp.MethodInitialize {
			return rpc.Errorf(rpc.CodeServerNotInitialized, "%s called before initialize", method)
		}
	case serverShutDown:
		if method != lsp.MethodExit {
			return rpc.Errorf(rpc.CodeInvalidRequest, "%s called after shutdown", method)
		}
	}
	return nil
}

// Shutdown implements the 'shutdown' LSP handler.
func (s *Server) Shutdown(ctx context.Context, _ lsp.NoParams) (any, error) {
	s.state = serverShutDown
	return nil, nil
}

// Exit implements the 'exit' LSP handler. It stops the connection.
func (s *Server) Exit(ctx context.Context, _ lsp.NoParams) error {
	debug.Info.Log(ctx, "exiting", "state", s.state.String())
	return rpc.ErrClosed
}
