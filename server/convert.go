package server

import (
	"github.com/corymhall/aidllsp/lsp"
	"github.com/corymhall/aidllsp/parser"
)

// Parser positions are 1-based, protocol positions 0-based. Both count
// columns in UTF-16 code units.

func toProtocolPosition(p parser.Position) lsp.Position {
	return lsp.Position{
		Line:      zeroBased(p.Line),
		Character: zeroBased(p.Column),
	}
}

func toProtocolRange(r parser.Range) lsp.Range {
	return lsp.Range{
		Start: toProtocolPosition(r.Start),
		End:   toProtocolPosition(r.End),
	}
}

// fromProtocolPosition returns the 1-based line and column of p.
func fromProtocolPosition(p lsp.Position) (line, column int) {
	return int(p.Line) + 1, int(p.Character) + 1
}

// zeroBased clamps the zero value of parser positions, which nodes
// synthesized during error recovery may carry.
func zeroBased(n int) uint32 {
	if n < 1 {
		return 0
	}
	return uint32(n - 1)
}
