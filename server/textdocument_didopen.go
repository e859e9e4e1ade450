package server

import (
	"context"

	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
)

func (s *Server) DidOpen(ctx context.Context, params lsp.DidOpenTextDocumentParams) error {
	return s.didModifyFile(ctx, file.Modification{
		URI:        params.TextDocument.URI,
		Action:     file.Open,
		Version:    params.TextDocument.Version,
		Text:       []byte(params.TextDocument.Text),
		LanguageID: params.TextDocument.LanguageID,
	})
}
