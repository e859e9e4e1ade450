package server

import (
	"context"
	"log/slog"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/file"
)

// didModifyFile brings the index up to date with one document change.
// A document is taken when its extension is configured, when the client
// opened it as AIDL, or when the index already holds it. Anything else is
// ignored.
func (s *Server) didModifyFile(ctx context.Context, mod file.Modification) error {
	ctx, done := debug.Start(ctx, "didModifyFile",
		slog.String("uri", string(mod.URI)), slog.String("action", mod.Action.String()))
	defer done()

	if !s.accepts(mod) {
		debug.Debug.Log(ctx, "ignoring document", slog.String("languageId", string(mod.LanguageID)))
		return nil
	}
	if mod.FromDisk() {
		return s.workspace.UpdateFile(ctx, mod.URI)
	}
	return s.workspace.UpdateContent(ctx, mod.URI, string(mod.Text))
}

func (s *Server) accepts(mod file.Modification) bool {
	if s.workspace.Accepts(mod.URI) || file.KindForLang(mod.LanguageID) == file.AIDL {
		return true
	}
	_, held := s.workspace.Result(mod.URI)
	return held
}
