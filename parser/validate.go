package parser

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// FileResult is the outcome of validating one file. File is nil when the
// file could not be parsed at all.
type FileResult[ID cmp.Ordered] struct {
	ID          ID
	File        *File
	Diagnostics []Diagnostic
}

type source struct {
	file  *File
	diags []Diagnostic
}

// Parser accumulates the content of many files and validates them together,
// since type references can only be checked against the whole set.
type Parser[ID cmp.Ordered] struct {
	files map[ID]*source
}

func New[ID cmp.Ordered]() *Parser[ID] {
	return &Parser[ID]{files: make(map[ID]*source)}
}

// AddContent parses content and stores it under id, replacing whatever was
// stored there before. Only this file is parsed again.
func (p *Parser[ID]) AddContent(id ID, content string) {
	file, diags := Parse(content)
	p.files[id] = &source{file: file, diags: diags}
}

// Remove forgets a file.
func (p *Parser[ID]) Remove(id ID) {
	delete(p.files, id)
}

// Len returns the number of files held by the parser.
func (p *Parser[ID]) Len() int {
	return len(p.files)
}

// Validate returns a fresh result for every file held by the parser. Syntax
// trees are shared with previous results and are never modified after
// parsing; the diagnostics slices are new on every call.
func (p *Parser[ID]) Validate() map[ID]*FileResult[ID] {
	ids := slices.Sorted(maps.Keys(p.files))

	// first definition wins, in ID order
	definedBy := make(map[string]ID)
	results := make(map[ID]*FileResult[ID], len(p.files))
	for _, id := range ids {
		src := p.files[id]
		res := &FileResult[ID]{
			ID:          id,
			File:        src.file,
			Diagnostics: slices.Clone(src.diags),
		}
		results[id] = res
		if src.file == nil || src.file.Item == nil {
			continue
		}
		key := src.file.Key()
		if other, ok := definedBy[key]; ok {
			d := errorf(src.file.Item.SymbolRange, "Duplicate definition of `%s`", key)
			d.Hint = fmt.Sprintf("`%s` is already defined in %v", key, other)
			res.Diagnostics = append(res.Diagnostics, d)
			continue
		}
		definedBy[key] = id
	}

	for _, id := range ids {
		res := results[id]
		if res.File == nil {
			continue
		}
		v := &validator{file: res.File, defined: func(key string) bool {
			_, ok := definedBy[key]
			return ok
		}}
		res.Diagnostics = append(res.Diagnostics, v.check()...)
	}
	return results
}

type validator struct {
	file    *File
	defined func(key string) bool
	used    map[string]bool
	diags   []Diagnostic
}

func (v *validator) check() []Diagnostic {
	v.used = make(map[string]bool)
	item := v.file.Item
	if item != nil {
		v.checkMembers(item)
	}
	v.checkImports()
	return v.diags
}

func (v *validator) checkImports() {
	seen := make(map[string]*Import)
	for _, imp := range v.file.Imports {
		if prev, ok := seen[imp.Path]; ok {
			d := errorf(imp.SymbolRange, "Duplicate import `%s`", imp.Path)
			d.RelatedInfos = []RelatedInfo{{Range: prev.FullRange, Message: "previous import"}}
			v.diags = append(v.diags, d)
			continue
		}
		seen[imp.Path] = imp
		if !v.defined(imp.Path) {
			d := warningf(imp.SymbolRange, "Unresolved import `%s`", imp.Path)
			d.Hint = "no item with this name was found in the workspace"
			v.diags = append(v.diags, d)
		}
		if !v.used[imp.Path] {
			v.diags = append(v.diags, warningf(imp.FullRange, "Unused import `%s`", imp.Name()))
		}
	}
}

func (v *validator) checkMembers(item *Item) {
	seen := make(map[string]*Decl)
	for _, m := range item.Members {
		decl := m.Declaration()
		if prev, ok := seen[decl.Name]; ok {
			d := errorf(decl.SymbolRange, "Duplicate %s `%s`", memberKind(m), decl.Name)
			d.RelatedInfos = []RelatedInfo{{Range: prev.SymbolRange, Message: "previous declaration"}}
			v.diags = append(v.diags, d)
		} else {
			seen[decl.Name] = decl
		}

		switch m := m.(type) {
		case *Method:
			v.checkMethod(item, m)
		case *Const:
			v.checkType(m.Type)
		case *Field:
			v.checkType(m.Type)
		}
	}
}

func (v *validator) checkMethod(item *Item, m *Method) {
	v.checkType(m.ReturnType)
	oneway := item.Oneway || m.Oneway
	if oneway && m.ReturnType.String() != "void" {
		d := errorf(m.ReturnType.Range, "Oneway method `%s` must return void, found `%s`", m.Name, m.ReturnType)
		d.Hint = "oneway calls are asynchronous and cannot return a value"
		v.diags = append(v.diags, d)
	}
	for _, arg := range m.Args {
		v.checkType(arg.Type)
		switch {
		case oneway && (arg.Direction == Out || arg.Direction == InOut):
			d := errorf(arg.FullRange, "`%s` argument `%s` in oneway method `%s`", arg.Direction, arg.Name, m.Name)
			d.Hint = "arguments of oneway methods are always `in`"
			v.diags = append(v.diags, d)
		case arg.Type.IsPrimitive() && (arg.Direction == Out || arg.Direction == InOut):
			d := errorf(arg.FullRange, "Primitive argument `%s` cannot be `%s`", arg.Name, arg.Direction)
			d.Hint = "primitive arguments are always `in`"
			v.diags = append(v.diags, d)
		}
	}
}

func (v *validator) checkType(t *Type) {
	for _, g := range t.Generics {
		v.checkType(g)
	}
	key, ok := v.file.ResolveType(t)
	if !ok {
		return
	}
	for _, imp := range v.file.Imports {
		if key == imp.Path || len(key) > len(imp.Path) && key[:len(imp.Path)+1] == imp.Path+"." {
			v.used[imp.Path] = true
			// An unresolved import is already reported on the import itself.
			return
		}
	}
	if !v.defined(key) {
		v.diags = append(v.diags, errorf(t.Range, "Unknown type `%s`", t.Name))
	}
}

func memberKind(m Member) string {
	switch m.(type) {
	case *Method:
		return "method"
	case *Const:
		return "constant"
	case *Field:
		return "field"
	case *EnumElement:
		return "enum element"
	}
	return "member"
}
