package server

import (
	"context"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/lsp"
)

func (s *Server) Definition(ctx context.Context, params lsp.DefinitionParams) ([]lsp.LocationLink, error) {
	links, err := s.workspace.Definition(params.TextDocument.URI, params.Position)
	if err != nil {
		return nil, err
	}
	if links == nil {
		debug.Debug.Log(ctx, "no definition", "uri", string(params.TextDocument.URI),
			"line", params.Position.Line, "character", params.Position.Character)
	}
	return links, nil
}
