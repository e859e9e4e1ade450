package server

import (
	"context"

	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
)

// DidClose reloads the document from disk, dropping unsaved edits from the
// index.
func (s *Server) DidClose(ctx context.Context, params lsp.DidCloseTextDocumentParams) error {
	return s.didModifyFile(ctx, file.Modification{
		URI:     params.TextDocument.URI,
		Action:  file.Close,
		Version: -1,
	})
}
