package server

import (
	"context"
	"fmt"

	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
)

// DidChange reindexes the document with its new full text. Only full
// document synchronization is supported: exactly one change without range.
func (s *Server) DidChange(ctx context.Context, params lsp.DidChangeTextDocumentParams) error {
	if n := len(params.ContentChanges); n != 1 {
		return fmt.Errorf("%w: expected 1 full document change, got %d", ErrUnsupportedChange, n)
	}
	change := params.ContentChanges[0]
	if change.Range != nil {
		return fmt.Errorf("%w: only full document changes are accepted", ErrUnsupportedChange)
	}
	return s.didModifyFile(ctx, file.Modification{
		URI:     params.TextDocument.URI,
		Action:  file.Change,
		Version: params.TextDocument.Version,
		Text:    []byte(change.Text),
	})
}
