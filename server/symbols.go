package server

import (
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/parser"
)

type declared interface {
	Declaration() *parser.Decl
}

// nameRange returns the range of the name of a node.
func nameRange(n any) parser.Range {
	switch n := n.(type) {
	case *parser.Package:
		return n.SymbolRange
	case *parser.Import:
		return n.SymbolRange
	case *parser.Type:
		return n.Range
	case declared:
		return n.Declaration().SymbolRange
	}
	return parser.Range{}
}

// fullRange returns the range of the whole declaration of a node.
func fullRange(n any) parser.Range {
	switch n := n.(type) {
	case *parser.Package:
		return n.FullRange
	case *parser.Import:
		return n.FullRange
	case *parser.Type:
		return n.Range
	case declared:
		return n.Declaration().FullRange
	}
	return parser.Range{}
}

// symbolName returns the bare name of a node.
func symbolName(n any) string {
	switch n := n.(type) {
	case *parser.Package:
		return n.Name
	case *parser.Import:
		return n.Path
	case *parser.Type:
		return n.String()
	case declared:
		return n.Declaration().Name
	}
	return ""
}

// symbolKind returns the protocol kind of a node. Arguments and type
// references have none.
func symbolKind(n any) (lsp.SymbolKind, bool) {
	switch n := n.(type) {
	case *parser.Package:
		return lsp.SymbolKindPackage, true
	case *parser.Import:
		return lsp.SymbolKindModule, true
	case *parser.Item:
		switch n.Kind {
		case parser.InterfaceKind:
			return lsp.SymbolKindInterface, true
		case parser.EnumKind:
			return lsp.SymbolKindEnum, true
		default:
			return lsp.SymbolKindStruct, true
		}
	case *parser.Method:
		return lsp.SymbolKindMethod, true
	case *parser.Const:
		return lsp.SymbolKindConstant, true
	case *parser.Field:
		return lsp.SymbolKindField, true
	case *parser.EnumElement:
		return lsp.SymbolKindEnumMember, true
	}
	return 0, false
}

// signature renders a node the way it is declared, e.g. "void foo(in Bar b)".
// Type references render as written; resolving them is up to the caller.
func signature(n any) string {
	switch n := n.(type) {
	case *parser.Package:
		return "package " + n.Name
	case *parser.Import:
		return "import " + n.Path
	case *parser.Item:
		return n.Signature()
	case parser.Member:
		return n.Signature()
	case *parser.Arg:
		return n.Signature()
	}
	return symbolName(n)
}

func documentSymbol(n any) lsp.DocumentSymbol {
	kind, _ := symbolKind(n)
	return lsp.DocumentSymbol{
		Name:           symbolName(n),
		Detail:         signature(n),
		Kind:           kind,
		Range:          toProtocolRange(fullRange(n)),
		SelectionRange: toProtocolRange(nameRange(n)),
	}
}

func symbolInformation(uri lsp.DocumentURI, n any, container string) lsp.SymbolInformation {
	kind, _ := symbolKind(n)
	return lsp.SymbolInformation{
		Name: symbolName(n),
		Kind: kind,
		Location: lsp.Location{
			URI:   uri,
			Range: toProtocolRange(nameRange(n)),
		},
		ContainerName: container,
	}
}
