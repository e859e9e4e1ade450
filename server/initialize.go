package server

import (
	"context"
	"fmt"

	"github.com/corymhall/aidllsp/config"
	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/logger"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/rpc"
)

// Version is reported to the client in the initialize response.
var Version = "0.1.0"

func (s *Server) Initialize(ctx context.Context, params lsp.InitializeRequestParams) (*lsp.InitializeResult, error) {
	if s.state >= serverInitializing {
		return nil, fmt.Errorf("%w: initialize called while server in %v state", rpc.ErrInvalidRequest, s.state)
	}
	ctx, done := debug.Start(ctx, "Initialize", "rootUri", string(params.RootURI))
	defer done()

	s.progress.SetSupportsWorkDoneProgress(params.Capabilities.Window.WorkDoneProgress)
	s.initToken = params.WorkDoneToken
	s.state = serverInitializing

	s.root = params.RootURI.Path()
	if s.root == "" {
		s.root = params.RootPath
	}
	s.configure(ctx, params)

	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync:        lsp.SyncFull,
			DefinitionProvider:      true,
			HoverProvider:           true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			Workspace: &lsp.WorkspaceServerCapabilities{
				WorkspaceFolders: lsp.WorkspaceFoldersServerCapabilities{
					Supported:           false,
					ChangeNotifications: false,
				},
			},
		},
		ServerInfo: lsp.ServerInfo{
			Name:    "aidllsp",
			Version: Version,
		},
	}, nil
}

// configure loads the settings of the workspace. Broken settings are
// reported and replaced by the defaults.
func (s *Server) configure(ctx context.Context, params lsp.InitializeRequestParams) {
	cfg, err := config.Load(s.root)
	if err == nil {
		cfg, err = cfg.Merge(params.InitializationOptions)
	}
	if err != nil {
		debug.LogError(ctx, "invalid settings, using defaults", err)
		cfg = config.Defaults()
	}
	s.cfg = cfg
	s.workspace.SetConfig(cfg)

	if s.level != nil {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			debug.LogError(ctx, "invalid log level", err)
			return
		}
		s.level.Set(level)
	}
}

// Initialized runs the initial full index of the workspace.
func (s *Server) Initialized(ctx context.Context, _ lsp.InitializedParams) error {
	if s.state >= serverInitialized {
		return fmt.Errorf("%w: initialized called while server in %v state", rpc.ErrInvalidRequest, s.state)
	}
	s.state = serverInitialized

	work := s.progress.Start(ctx, "aidl", "Indexing workspace...", s.initToken)
	if err := s.workspace.Index(ctx, s.root); err != nil {
		work.End(ctx, "Indexing failed.")
		return err
	}
	work.End(ctx, fmt.Sprintf("Indexed %d files.", s.workspace.Len()))
	return nil
}
