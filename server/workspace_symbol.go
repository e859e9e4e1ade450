package server

import (
	"context"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/lsp"
)

func (s *Server) WorkspaceSymbol(ctx context.Context, params lsp.WorkspaceSymbolParams) ([]lsp.SymbolInformation, error) {
	ctx, done := debug.Start(ctx, "WorkspaceSymbol", "query", params.Query)
	defer done()
	symbols, err := s.workspace.Symbols(params.Query)
	if err != nil {
		return nil, err
	}
	debug.Debug.Log(ctx, "found symbols", "count", len(symbols))
	return symbols, nil
}
