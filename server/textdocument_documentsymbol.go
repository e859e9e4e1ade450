package server

import (
	"context"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/lsp"
)

func (s *Server) DocumentSymbol(ctx context.Context, params lsp.DocumentSymbolParams) ([]lsp.DocumentSymbol, error) {
	ctx, done := debug.Start(ctx, "DocumentSymbol", "uri", string(params.TextDocument.URI))
	defer done()
	return s.workspace.Outline(ctx, params.TextDocument.URI)
}
