package server

import (
	"context"

	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
)

// DidSave reindexes the saved document, from the text sent along if the
// client includes it, from disk otherwise.
func (s *Server) DidSave(ctx context.Context, params lsp.DidSaveTextDocumentParams) error {
	c := file.Modification{
		URI:     params.TextDocument.URI,
		Action:  file.Save,
		Version: -1,
	}
	if params.Text != nil {
		c.Text = []byte(*params.Text)
	}
	return s.didModifyFile(ctx, c)
}
