package server

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/corymhall/aidllsp/debug"
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/parser"
)

// Characters of a workspace symbol query with a special meaning: showAll
// includes members in the results, and filterKind is reserved for kind
// filters. Both are removed before matching names.
const (
	queryShowAll    = "#"
	queryFilterKind = "*"
)

// Symbols returns the items, and with "#" in query also their members, whose
// name contains the rest of query, ignoring case. Results are sorted by name
// ignoring case.
func (w *Workspace) Symbols(query string) ([]lsp.SymbolInformation, error) {
	if err := w.checkIndexed(); err != nil {
		return nil, err
	}
	showAll := strings.Contains(query, queryShowAll)
	filter := strings.NewReplacer(queryShowAll, "", queryFilterKind, "").Replace(query)
	filter = strings.ToLower(filter)
	matches := func(name string) bool {
		return strings.Contains(strings.ToLower(name), filter)
	}

	symbols := []lsp.SymbolInformation{}
	for _, uri := range w.URIs() {
		f := w.results[uri].File
		if f == nil || f.Item == nil {
			continue
		}
		item := f.Item
		if matches(item.Name) {
			symbols = append(symbols, symbolInformation(uri, item, ""))
		}
		if !showAll {
			continue
		}
		for _, m := range item.Members {
			if matches(m.Declaration().Name) {
				symbols = append(symbols, symbolInformation(uri, m, item.Name))
			}
		}
	}
	slices.SortStableFunc(symbols, func(a, b lsp.SymbolInformation) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return symbols, nil
}

// Outline returns the document symbols of uri: the item with its members as
// children.
func (w *Workspace) Outline(ctx context.Context, uri lsp.DocumentURI) ([]lsp.DocumentSymbol, error) {
	res, err := w.document(uri)
	if err != nil {
		return nil, err
	}
	if res.File == nil {
		return []lsp.DocumentSymbol{}, nil
	}
	return outline(ctx, nodes(res.File)), nil
}

// outline builds the symbol tree of a sequence of nodes. Items are roots and
// members are children of the root. Package and imports are not part of the
// outline, neither are arguments and type references. Only the first root
// is kept.
func outline(ctx context.Context, nodes []any) []lsp.DocumentSymbol {
	var root *lsp.DocumentSymbol
	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.Item:
			if root != nil {
				debug.Warning.Log(ctx, "more than one top-level symbol, keeping the first",
					"kept", root.Name, "dropped", n.Name)
				continue
			}
			sym := documentSymbol(n)
			sym.Children = []lsp.DocumentSymbol{}
			root = &sym
		case parser.Member:
			if root == nil {
				debug.Warning.Log(ctx, "symbol found before any top-level symbol", "dropped", n.Declaration().Name)
				continue
			}
			root.Children = append(root.Children, documentSymbol(n))
		}
	}
	if root == nil {
		return []lsp.DocumentSymbol{}
	}
	return []lsp.DocumentSymbol{*root}
}

// Hover describes the symbol at pos. A type reference resolving to an item
// of the workspace shows the signature of that item.
func (w *Workspace) Hover(uri lsp.DocumentURI, pos lsp.Position) (*lsp.Hover, error) {
	res, err := w.document(uri)
	if err != nil {
		return nil, err
	}
	if res.File == nil {
		return nil, nil
	}
	line, column := fromProtocolPosition(pos)
	n := symbolAt(res.File, line, column)
	if n == nil {
		return nil, nil
	}

	sig := signature(n)
	if t, ok := n.(*parser.Type); ok {
		if key, ok := res.File.ResolveType(t); ok {
			if _, target, ok := w.lookup(key); ok {
				sig = target.Item.Signature()
			}
		}
	}
	rng := toProtocolRange(nameRange(n))
	return &lsp.Hover{
		Contents: lsp.MarkupContent{
			Kind:  lsp.Markdown,
			Value: fmt.Sprintf("```aidl\n%s\n```", sig),
		},
		Range: &rng,
	}, nil
}

// Definition returns the item an import or a type reference at pos points
// to. References to anything outside the workspace have no definition.
func (w *Workspace) Definition(uri lsp.DocumentURI, pos lsp.Position) ([]lsp.LocationLink, error) {
	res, err := w.document(uri)
	if err != nil {
		return nil, err
	}
	if res.File == nil {
		return nil, nil
	}
	line, column := fromProtocolPosition(pos)

	var key string
	var origin parser.Range
	switch n := symbolAt(res.File, line, column).(type) {
	case *parser.Import:
		key, origin = n.Path, n.SymbolRange
	case *parser.Type:
		resolved, ok := res.File.ResolveType(n)
		if !ok {
			return nil, nil
		}
		key, origin = resolved, n.Range
	default:
		return nil, nil
	}

	link, ok := w.targetLink(origin, key)
	if !ok {
		return nil, nil
	}
	return []lsp.LocationLink{link}, nil
}

// targetLink links origin to the item defining key.
func (w *Workspace) targetLink(origin parser.Range, key string) (lsp.LocationLink, bool) {
	uri, f, ok := w.lookup(key)
	if !ok {
		return lsp.LocationLink{}, false
	}
	originRange := toProtocolRange(origin)
	return lsp.LocationLink{
		OriginSelectionRange: &originRange,
		TargetURI:            uri,
		TargetRange:          toProtocolRange(f.Item.FullRange),
		TargetSelectionRange: toProtocolRange(f.Item.SymbolRange),
	}, true
}
