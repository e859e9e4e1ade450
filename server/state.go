package server

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/corymhall/aidllsp/config"
	"github.com/corymhall/aidllsp/file"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/parser"
)

var (
	ErrNotIndexed        = errors.New("workspace not indexed")
	ErrDocumentNotFound  = errors.New("document not found in workspace index")
	ErrUnsupportedChange = errors.New("unsupported content change")
)

// Stage is the indexing stage of a Workspace.
type Stage int

const (
	StageIdle = Stage(iota)
	StageIndexing
	StageIndexed
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageIndexing:
		return "indexing"
	case StageIndexed:
		return "indexed"
	case StageError:
		return "error"
	}
	return fmt.Sprintf("(unknown stage: %d)", int(s))
}

// Publisher receives the diagnostics of every indexed file.
type Publisher interface {
	PublishDiagnostics(context.Context, *lsp.PublishDiagnosticsParams) error
}

type fileResult = parser.FileResult[lsp.DocumentURI]

// Workspace holds the parsed files of one workspace and the index of the
// items they define. It is owned by the message loop: every field is
// replaced as a whole, never patched while a query reads it.
type Workspace struct {
	publisher Publisher
	source    file.Source
	cfg       config.Config

	stage Stage
	root  string

	parser  *parser.Parser[lsp.DocumentURI]
	results map[lsp.DocumentURI]*fileResult
	// keys maps an item key (package.Name) to the file defining it.
	keys map[string]lsp.DocumentURI
}

// NewWorkspace returns an empty workspace in the idle stage.
func NewWorkspace(publisher Publisher, source file.Source, cfg config.Config) *Workspace {
	return &Workspace{
		publisher: publisher,
		source:    source,
		cfg:       cfg,
		stage:     StageIdle,
	}
}

func (w *Workspace) Stage() Stage { return w.stage }

// Root returns the directory of the last full index.
func (w *Workspace) Root() string { return w.root }

// Len returns the number of files held by the index.
func (w *Workspace) Len() int { return len(w.results) }

// SetConfig replaces the settings used by the next full index.
func (w *Workspace) SetConfig(cfg config.Config) { w.cfg = cfg }

// Accepts reports whether uri names a source file of the workspace language.
func (w *Workspace) Accepts(uri lsp.DocumentURI) bool {
	path := uri.Path()
	return path != "" && w.cfg.IsSource(path)
}

// Result returns the parse result held for uri.
func (w *Workspace) Result(uri lsp.DocumentURI) (*parser.FileResult[lsp.DocumentURI], bool) {
	res, ok := w.results[uri.Canonical()]
	return res, ok
}

// Keys returns a copy of the item key index.
func (w *Workspace) Keys() map[string]lsp.DocumentURI {
	return maps.Clone(w.keys)
}

// URIs returns the held files in sorted order.
func (w *Workspace) URIs() []lsp.DocumentURI {
	return slices.Sorted(maps.Keys(w.results))
}

func (w *Workspace) checkIndexed() error {
	if w.stage != StageIndexed {
		return fmt.Errorf("%w (stage: %v)", ErrNotIndexed, w.stage)
	}
	return nil
}

// document returns the result queried for uri. A result without a tree is
// not an error; callers answer with an empty result.
func (w *Workspace) document(uri lsp.DocumentURI) (*fileResult, error) {
	if err := w.checkIndexed(); err != nil {
		return nil, err
	}
	res, ok := w.results[uri.Canonical()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	return res, nil
}

// lookup returns the file defining the item with the given key.
func (w *Workspace) lookup(key string) (lsp.DocumentURI, *parser.File, bool) {
	uri, ok := w.keys[key]
	if !ok {
		return "", nil, false
	}
	res, ok := w.results[uri]
	if !ok || res.File == nil || res.File.Item == nil {
		return "", nil, false
	}
	return uri, res.File, true
}

// buildKeys indexes the item of every parsed file. When two files define the
// same key, the first one in URI order wins, like the parser's duplicate
// check.
func buildKeys(results map[lsp.DocumentURI]*fileResult) map[string]lsp.DocumentURI {
	keys := make(map[string]lsp.DocumentURI, len(results))
	for _, uri := range slices.Sorted(maps.Keys(results)) {
		f := results[uri].File
		if f == nil || f.Item == nil {
			continue
		}
		if _, ok := keys[f.Key()]; !ok {
			keys[f.Key()] = uri
		}
	}
	return keys
}
