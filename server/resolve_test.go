package server

import (
	"context"
	"testing"

	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/parser"
	"github.com/hexops/autogold/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(line, char uint32) lsp.Position {
	return lsp.Position{Line: line, Character: char}
}

func span(startLine, startChar, endLine, endChar uint32) lsp.Range {
	return lsp.Range{Start: pos(startLine, startChar), End: pos(endLine, endChar)}
}

func names(symbols []lsp.SymbolInformation) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, s.Name)
	}
	return out
}

func TestSymbols(t *testing.T) {
	w, _, root := scenario(t)

	symbols, err := w.Symbols("foo")
	require.NoError(t, err)
	assert.Equal(t, []lsp.SymbolInformation{{
		Name: "Foo",
		Kind: lsp.SymbolKindInterface,
		Location: lsp.Location{
			URI:   uriOf(root, "a.aidl"),
			Range: span(2, 10, 2, 13),
		},
	}}, symbols)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"Bar", "Foo"}},
		{query: "BA", want: []string{"Bar"}},
		{query: "*FOO", want: []string{"Foo"}},
		{query: "nothing", want: []string{}},
		{query: "#", want: []string{"Bar", "Foo", "process", "value"}},
		{query: "#p", want: []string{"process"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			symbols, err := w.Symbols(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(symbols))
		})
	}
}

func TestSymbolsIncludeMembers(t *testing.T) {
	w, _, root := scenario(t)

	all, err := w.Symbols("#")
	require.NoError(t, err)
	items, err := w.Symbols("")
	require.NoError(t, err)
	assert.Subset(t, all, items)

	process := all[2]
	assert.Equal(t, lsp.SymbolKindMethod, process.Kind)
	assert.Equal(t, "Foo", process.ContainerName)
	assert.Equal(t, uriOf(root, "a.aidl"), process.Location.URI)
	assert.Equal(t, span(3, 9, 3, 16), process.Location.Range)

	value := all[3]
	assert.Equal(t, lsp.SymbolKindField, value.Kind)
	assert.Equal(t, "Bar", value.ContainerName)
}

func TestSymbolsSortIgnoringCase(t *testing.T) {
	w, _, _ := indexedWorkspace(t, map[string]string{
		"a.aidl": "package p;\ninterface beta {}\n",
		"b.aidl": "package p;\ninterface Alpha {}\n",
		"c.aidl": "package p;\ninterface Gamma {}\n",
	})
	symbols, err := w.Symbols("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "Gamma"}, names(symbols))
}

func TestOutline(t *testing.T) {
	w, _, root := scenario(t)

	symbols, err := w.Outline(context.Background(), uriOf(root, "a.aidl"))
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	foo := symbols[0]
	assert.Equal(t, "Foo", foo.Name)
	assert.Equal(t, "interface Foo", foo.Detail)
	assert.Equal(t, lsp.SymbolKindInterface, foo.Kind)
	assert.Equal(t, span(2, 0, 4, 1), foo.Range)
	assert.Equal(t, span(2, 10, 2, 13), foo.SelectionRange)

	require.Len(t, foo.Children, 1)
	process := foo.Children[0]
	assert.Equal(t, "process", process.Name)
	assert.Equal(t, "void process(in Bar bar)", process.Detail)
	assert.Equal(t, lsp.SymbolKindMethod, process.Kind)
	assert.Equal(t, span(3, 9, 3, 16), process.SelectionRange)
	assert.Empty(t, process.Children)
}

func TestOutlineKinds(t *testing.T) {
	w, _, root := indexedWorkspace(t, map[string]string{
		"Color.aidl": "package p;\nenum Color { RED, GREEN = 3 }\n",
		"Point.aidl": "package p;\nparcelable Point {\n    int x;\n    int y = 1;\n}\n",
	})

	color, err := w.Outline(context.Background(), uriOf(root, "Color.aidl"))
	require.NoError(t, err)
	require.Len(t, color, 1)
	assert.Equal(t, lsp.SymbolKindEnum, color[0].Kind)
	var details []string
	for _, c := range color[0].Children {
		assert.Equal(t, lsp.SymbolKindEnumMember, c.Kind)
		details = append(details, c.Detail)
	}
	assert.Equal(t, []string{"RED", "GREEN = 3"}, details)

	point, err := w.Outline(context.Background(), uriOf(root, "Point.aidl"))
	require.NoError(t, err)
	require.Len(t, point, 1)
	assert.Equal(t, lsp.SymbolKindStruct, point[0].Kind)
	require.Len(t, point[0].Children, 2)
	assert.Equal(t, "int y = 1", point[0].Children[1].Detail)
}

func TestOutlineWithoutItem(t *testing.T) {
	w, _, root := indexedWorkspace(t, map[string]string{
		"empty.aidl": "package p;\n",
	})
	symbols, err := w.Outline(context.Background(), uriOf(root, "empty.aidl"))
	require.NoError(t, err)
	assert.NotNil(t, symbols)
	assert.Empty(t, symbols)
}

func TestOutlineOfNodes(t *testing.T) {
	decl := func(name string) parser.Decl { return parser.Decl{Name: name} }
	intType := &parser.Type{Name: "int"}

	symbols := outline(context.Background(), []any{
		&parser.Package{Name: "p"},
		&parser.Field{Decl: decl("early"), Type: intType},
		&parser.Item{Decl: decl("First"), Kind: parser.ParcelableKind},
		intType,
		&parser.Field{Decl: decl("kept"), Type: intType},
		&parser.Item{Decl: decl("Second"), Kind: parser.InterfaceKind},
		&parser.Method{Decl: decl("late"), ReturnType: &parser.Type{Name: "void"}},
	})

	require.Len(t, symbols, 1)
	assert.Equal(t, "First", symbols[0].Name)
	var children []string
	for _, c := range symbols[0].Children {
		children = append(children, c.Name)
	}
	assert.Equal(t, []string{"kept", "late"}, children)

	assert.Equal(t, []lsp.DocumentSymbol{}, outline(context.Background(), nil))
}

func TestHover(t *testing.T) {
	w, _, root := scenario(t)
	a := uriOf(root, "a.aidl")

	hover, err := w.Hover(a, pos(3, 21))
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Equal(t, lsp.Markdown, hover.Contents.Kind)
	assert.Equal(t, "```aidl\nparcelable Bar\n```", hover.Contents.Value)
	assert.Equal(t, span(3, 20, 3, 23), *hover.Range)

	hover, err = w.Hover(a, pos(1, 0))
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestHoverSignatures(t *testing.T) {
	w, _, root := scenario(t)
	a, b := uriOf(root, "a.aidl"), uriOf(root, "b.aidl")

	var got []string
	for _, q := range []struct {
		uri lsp.DocumentURI
		pos lsp.Position
	}{
		{a, pos(0, 10)}, // package
		{a, pos(2, 11)}, // item
		{a, pos(3, 5)},  // return type
		{a, pos(3, 12)}, // method
		{a, pos(3, 25)}, // argument
		{b, pos(3, 9)},  // field
	} {
		hover, err := w.Hover(q.uri, q.pos)
		require.NoError(t, err)
		require.NotNil(t, hover, "%s %v", q.uri, q.pos)
		got = append(got, hover.Contents.Value)
	}
	autogold.Expect([]string{
		"```aidl\npackage com.example\n```",
		"```aidl\ninterface Foo\n```",
		"```aidl\nvoid\n```",
		"```aidl\nvoid process(in Bar bar)\n```",
		"```aidl\nin Bar bar\n```",
		"```aidl\nint value\n```",
	}).Equal(t, got)
}

func TestDefinition(t *testing.T) {
	w, _, root := scenario(t)

	links, err := w.Definition(uriOf(root, "a.aidl"), pos(3, 21))
	require.NoError(t, err)
	origin := span(3, 20, 3, 23)
	assert.Equal(t, []lsp.LocationLink{{
		OriginSelectionRange: &origin,
		TargetURI:            uriOf(root, "b.aidl"),
		TargetRange:          span(2, 0, 4, 1),
		TargetSelectionRange: span(2, 11, 2, 14),
	}}, links)
}

func TestDefinitionOfImport(t *testing.T) {
	w, _, root := indexedWorkspace(t, map[string]string{
		"p/Foo.aidl": "package p;\nimport q.Bar;\ninterface Foo {\n    void f(in Bar b);\n}\n",
		"q/Bar.aidl": "package q;\nparcelable Bar;\n",
	})
	foo := uriOf(root, "p/Foo.aidl")

	links, err := w.Definition(foo, pos(1, 9))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, uriOf(root, "q/Bar.aidl"), links[0].TargetURI)
	assert.Equal(t, span(1, 7, 1, 12), *links[0].OriginSelectionRange)
	assert.Equal(t, span(1, 11, 1, 14), links[0].TargetSelectionRange)

	// the reference resolves through the import
	links, err = w.Definition(foo, pos(3, 15))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, uriOf(root, "q/Bar.aidl"), links[0].TargetURI)
}

func TestDefinitionWithoutTarget(t *testing.T) {
	w, _, root := indexedWorkspace(t, map[string]string{
		"a.aidl": "package p;\nimport q.Missing;\ninterface Foo {\n    void f(in String s, in Unknown u);\n}\n",
	})
	a := uriOf(root, "a.aidl")

	for name, p := range map[string]lsp.Position{
		"primitive":           pos(3, 5),
		"builtin":             pos(3, 15),
		"unknown type":        pos(3, 28),
		"unresolved import":   pos(1, 10),
		"item name":           pos(2, 11),
		"nothing at position": pos(2, 0),
	} {
		t.Run(name, func(t *testing.T) {
			links, err := w.Definition(a, p)
			require.NoError(t, err)
			assert.Nil(t, links)
		})
	}
}

func TestDuplicateKeyFirstDefinerWins(t *testing.T) {
	w, client, root := indexedWorkspace(t, map[string]string{
		"a.aidl": fooSource,
		"b.aidl": barSource,
		"c.aidl": barSource,
	})
	assert.Equal(t, uriOf(root, "b.aidl"), w.Keys()["com.example.Bar"])
	require.Len(t, client.diagnostics[uriOf(root, "c.aidl")], 1)
	assert.Equal(t, "Duplicate definition of `com.example.Bar`", client.diagnostics[uriOf(root, "c.aidl")][0].Message)

	links, err := w.Definition(uriOf(root, "a.aidl"), pos(3, 21))
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, uriOf(root, "b.aidl"), links[0].TargetURI)
}

// Every node is found at the start of its own name.
func TestSymbolAtFindsEveryNode(t *testing.T) {
	f, diags := parser.Parse(`package com.example;

import com.example.Bar;

interface Foo {
    const int MAX = 3;
    List<Bar> all();
    void process(in Bar bar, out Map<String, Bar> extra);
}
`)
	require.Empty(t, diags)
	require.NotNil(t, f)

	all := nodes(f)
	require.Len(t, all, 16)
	for _, n := range all {
		start := nameRange(n).Start
		got := symbolAt(f, start.Line, start.Column)
		assert.True(t, got == n, "%s: found %s", symbolName(n), symbolName(got))
		assert.True(t, fullRange(n).Contains(start.Line, start.Column), symbolName(n))
	}
}

func TestSymbolsKeepCaseVariantsTogether(t *testing.T) {
	w, _, _ := indexedWorkspace(t, map[string]string{
		"a.aidl": "package p;\ninterface Foo {}\n",
		"b.aidl": "package q;\ninterface zeta {}\n",
		"c.aidl": "package q;\ninterface foo {}\n",
		"d.aidl": "package p;\ninterface Bar {}\n",
	})
	symbols, err := w.Symbols("")
	require.NoError(t, err)
	// stable: Foo comes first since a.aidl is indexed before c.aidl
	assert.Equal(t, []string{"Bar", "Foo", "foo", "zeta"}, names(symbols))
}
