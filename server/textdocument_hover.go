package server

import (
	"context"

	"github.com/corymhall/aidllsp/lsp"
)

func (s *Server) Hover(ctx context.Context, params lsp.HoverParams) (*lsp.Hover, error) {
	return s.workspace.Hover(params.TextDocument.URI, params.Position)
}
