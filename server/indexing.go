package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/metrics"
	"github.com/corymhall/aidllsp/parser"
)

// Index parses every source file below root and replaces the whole index
// with the result. On failure the stage becomes StageError and nothing of the
// previous index is kept.
func (w *Workspace) Index(ctx context.Context, root string) error {
	ctx, done := debug.Start(ctx, "Index", slog.String("root", root))
	defer done()

	if w.stage == StageIndexing {
		debug.Warning.Log(ctx, "cannot index: already indexing")
		return nil
	}
	w.stage = StageIndexing

	start := time.Now()
	if err := w.index(ctx, root); err != nil {
		w.stage = StageError
		w.parser, w.results, w.keys = nil, nil, nil
		metrics.SetIndexedFiles(0)
		return err
	}
	w.stage = StageIndexed
	metrics.ObserveIndex(time.Since(start), len(w.results))
	return nil
}

func (w *Workspace) index(ctx context.Context, root string) error {
	if root == "" {
		return errors.New("no root path set")
	}
	root, walkRoot, err := rootPaths(root)
	if err != nil {
		return err
	}

	p := parser.New[lsp.DocumentURI]()
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != walkRoot && w.cfg.IsExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !w.cfg.IsSource(path) {
			return nil
		}
		// files are identified below root as the client spells it
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		uri := lsp.URIFromPath(filepath.Join(root, rel))
		text, err := w.read(ctx, uri)
		if err != nil {
			return err
		}
		debug.Debug.Log(ctx, "parsing", slog.String("path", path))
		p.AddContent(uri, text)
		return nil
	})
	if err != nil {
		return fmt.Errorf("indexing %s: %w", root, err)
	}

	results := p.Validate()
	w.root = root
	w.parser = p
	w.results = results
	w.keys = buildKeys(results)
	debug.Info.Log(ctx, "workspace indexed", slog.Int("files", len(results)), slog.Int("items", len(w.keys)))

	return w.publishDiagnostics(ctx)
}

// UpdateContent replaces the content of one file, rebuilds the item key
// index and publishes diagnostics. The workspace must be indexed.
func (w *Workspace) UpdateContent(ctx context.Context, uri lsp.DocumentURI, text string) error {
	if err := w.checkIndexed(); err != nil {
		return err
	}
	uri = uri.Canonical()
	ctx, done := debug.Start(ctx, "UpdateContent", slog.String("uri", string(uri)))
	defer done()

	w.parser.AddContent(uri, text)
	w.revalidate()
	return w.publishDiagnostics(ctx)
}

// UpdateFile reloads one file from disk. A file that no longer exists is
// removed from the index and its diagnostics are cleared.
func (w *Workspace) UpdateFile(ctx context.Context, uri lsp.DocumentURI) error {
	if err := w.checkIndexed(); err != nil {
		return err
	}
	uri = uri.Canonical()
	if uri.Path() == "" {
		// unsaved buffers such as untitled: documents only live while open
		return w.remove(ctx, uri)
	}
	text, err := w.read(ctx, uri)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return w.remove(ctx, uri)
	case err != nil:
		return err
	}
	return w.UpdateContent(ctx, uri, text)
}

func (w *Workspace) remove(ctx context.Context, uri lsp.DocumentURI) error {
	if _, ok := w.results[uri]; !ok {
		return nil
	}
	ctx, done := debug.Start(ctx, "Remove", slog.String("uri", string(uri)))
	defer done()

	w.parser.Remove(uri)
	w.revalidate()
	if err := w.publishDiagnostics(ctx); err != nil {
		return err
	}
	return w.publish(ctx, uri, nil)
}

// revalidate replaces the results and the key index from the parser.
func (w *Workspace) revalidate() {
	results := w.parser.Validate()
	w.results = results
	w.keys = buildKeys(results)
	metrics.SetIndexedFiles(len(results))
}

func (w *Workspace) read(ctx context.Context, uri lsp.DocumentURI) (string, error) {
	fh, err := w.source.ReadFile(ctx, uri)
	if err != nil {
		return "", err
	}
	content, err := fh.Content()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", uri.Path(), err)
	}
	return string(content), nil
}

// rootPaths returns the absolute path of dir, which stays the prefix of
// every file identifier, and the same directory with symbolic links resolved
// for walking.
func rootPaths(dir string) (root, walkRoot string, err error) {
	root, err = filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("invalid root path %s: %w", dir, err)
	}
	walkRoot, err = filepath.EvalSymlinks(root)
	if err != nil {
		return "", "", fmt.Errorf("invalid root path %s: %w", dir, err)
	}
	return root, walkRoot, nil
}
