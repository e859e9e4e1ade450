package server

import (
	"github.com/corymhall/aidllsp/parser"
)

// inspect visits the nodes of f in lookup order until visit returns false:
// the package, the imports, the item, then per member every type it refers
// to before the member itself. A method's return type comes first, then for
// each argument its type before the argument. Generic arguments are visited
// before the type enclosing them.
//
// Nodes are *parser.Package, *parser.Import, *parser.Item, *parser.Method,
// *parser.Arg, *parser.Const, *parser.Field, *parser.EnumElement and
// *parser.Type.
func inspect(f *parser.File, visit func(n any) bool) {
	if f.Package != nil && !visit(f.Package) {
		return
	}
	for _, imp := range f.Imports {
		if !visit(imp) {
			return
		}
	}
	item := f.Item
	if item == nil || !visit(item) {
		return
	}
	for _, m := range item.Members {
		if !inspectMember(m, visit) {
			return
		}
	}
}

func inspectMember(m parser.Member, visit func(n any) bool) bool {
	switch m := m.(type) {
	case *parser.Method:
		if !inspectType(m.ReturnType, visit) {
			return false
		}
		for _, arg := range m.Args {
			if !inspectType(arg.Type, visit) || !visit(arg) {
				return false
			}
		}
	case *parser.Const:
		if !inspectType(m.Type, visit) {
			return false
		}
	case *parser.Field:
		if !inspectType(m.Type, visit) {
			return false
		}
	}
	return visit(m)
}

func inspectType(t *parser.Type, visit func(n any) bool) bool {
	if t == nil {
		return true
	}
	for _, g := range t.Generics {
		if !inspectType(g, visit) {
			return false
		}
	}
	return visit(t)
}

// symbolAt returns the first node, in inspect order, whose name contains the
// 1-based line and column, or nil.
func symbolAt(f *parser.File, line, column int) any {
	var found any
	inspect(f, func(n any) bool {
		if nameRange(n).Contains(line, column) {
			found = n
			return false
		}
		return true
	})
	return found
}

// nodes returns every node of f in inspect order.
func nodes(f *parser.File) []any {
	var all []any
	inspect(f, func(n any) bool {
		all = append(all, n)
		return true
	})
	return all
}
