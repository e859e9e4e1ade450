package parser

import (
	"fmt"
	"strings"
)

// Position is a location in a source file. Line and Column are 1-based;
// columns are counted in UTF-16 code units.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Range is a half-open [Start, End) span of source text.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether the line/column lies within the range. Both edges
// are inclusive so that a cursor placed right after a name still hits it.
func (r Range) Contains(line, column int) bool {
	if r.Start.Line > line {
		return false
	}
	if r.Start.Line == line && r.Start.Column > column {
		return false
	}
	if r.End.Line < line {
		return false
	}
	if r.End.Line == line && r.End.Column < column {
		return false
	}
	return true
}

// File is the syntax tree of one AIDL source file.
type File struct {
	Package *Package
	Imports []*Import
	Item    *Item
}

// Key returns the fully-qualified name of the item defined in the file.
func (f *File) Key() string {
	if f.Item == nil {
		return ""
	}
	if f.Package == nil || f.Package.Name == "" {
		return f.Item.Name
	}
	return f.Package.Name + "." + f.Item.Name
}

type Package struct {
	Name        string
	SymbolRange Range
	FullRange   Range
}

type Import struct {
	Path        string
	SymbolRange Range
	FullRange   Range
}

// Name returns the last segment of the imported path.
func (i *Import) Name() string {
	return i.Path[strings.LastIndexByte(i.Path, '.')+1:]
}

type Annotation struct {
	Name   string
	Params string
	Range  Range
}

// Decl holds what every named declaration has in common.
type Decl struct {
	Name        string
	SymbolRange Range // the name only
	FullRange   Range // the whole declaration
	Annotations []*Annotation
}

func (d *Decl) Declaration() *Decl { return d }

type ItemKind int

const (
	InterfaceKind ItemKind = iota
	ParcelableKind
	UnionKind
	EnumKind
)

func (k ItemKind) String() string {
	switch k {
	case InterfaceKind:
		return "interface"
	case ParcelableKind:
		return "parcelable"
	case UnionKind:
		return "union"
	case EnumKind:
		return "enum"
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// Item is the single top-level declaration of a file.
type Item struct {
	Decl
	Kind   ItemKind
	Oneway bool
	// Forward is set for `parcelable Foo;` declarations without a body.
	Forward    bool
	TypeParams []string
	Members    []Member
}

// Signature renders the item header, e.g. "oneway interface IFoo".
func (i *Item) Signature() string {
	var b strings.Builder
	if i.Oneway {
		b.WriteString("oneway ")
	}
	b.WriteString(i.Kind.String())
	b.WriteByte(' ')
	b.WriteString(i.Name)
	if len(i.TypeParams) > 0 {
		b.WriteString("<" + strings.Join(i.TypeParams, ", ") + ">")
	}
	return b.String()
}

// Member is a *Method, *Const, *Field or *EnumElement.
type Member interface {
	Declaration() *Decl
	Signature() string
	isMember()
}

type Method struct {
	Decl
	Oneway     bool
	ReturnType *Type
	Args       []*Arg
	// TransactionID is the raw text after `=`, if any.
	TransactionID string
}

func (m *Method) Signature() string {
	args := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		args = append(args, a.Signature())
	}
	sig := fmt.Sprintf("%s %s(%s)", m.ReturnType, m.Name, strings.Join(args, ", "))
	if m.Oneway {
		sig = "oneway " + sig
	}
	if m.TransactionID != "" {
		sig += " = " + m.TransactionID
	}
	return sig
}

type Direction int

const (
	NoDirection Direction = iota
	In
	Out
	InOut
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	}
	return ""
}

type Arg struct {
	Decl
	Direction Direction
	Type      *Type
}

func (a *Arg) Signature() string {
	sig := a.Type.String()
	if a.Direction != NoDirection {
		sig = a.Direction.String() + " " + sig
	}
	if a.Name != "" {
		sig += " " + a.Name
	}
	return sig
}

type Const struct {
	Decl
	Type  *Type
	Value string
}

func (c *Const) Signature() string {
	return fmt.Sprintf("const %s %s = %s", c.Type, c.Name, c.Value)
}

type Field struct {
	Decl
	Type  *Type
	Value string
}

func (f *Field) Signature() string {
	sig := f.Type.String() + " " + f.Name
	if f.Value != "" {
		sig += " = " + f.Value
	}
	return sig
}

type EnumElement struct {
	Decl
	Value string
}

func (e *EnumElement) Signature() string {
	if e.Value == "" {
		return e.Name
	}
	return e.Name + " = " + e.Value
}

func (*Method) isMember()      {}
func (*Const) isMember()       {}
func (*Field) isMember()       {}
func (*EnumElement) isMember() {}

// Type is a type reference as written in the source, e.g. `List<Foo>[]`.
type Type struct {
	Name     string
	Generics []*Type
	ArrayDim int
	// Range covers the whole type expression, generics and brackets included.
	Range Range
}

func (t *Type) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if len(t.Generics) > 0 {
		parts := make([]string, 0, len(t.Generics))
		for _, g := range t.Generics {
			parts = append(parts, g.String())
		}
		b.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	for range t.ArrayDim {
		b.WriteString("[]")
	}
	return b.String()
}

var primitives = map[string]bool{
	"void":    true,
	"boolean": true,
	"byte":    true,
	"char":    true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
}

var builtins = map[string]bool{
	"String":               true,
	"CharSequence":         true,
	"List":                 true,
	"Map":                  true,
	"IBinder":              true,
	"FileDescriptor":       true,
	"ParcelFileDescriptor": true,
	"ParcelableHolder":     true,
}

// IsPrimitive reports whether the type is a non-array primitive.
func (t *Type) IsPrimitive() bool {
	return t.ArrayDim == 0 && primitives[t.Name]
}

// ResolveType returns the qualified item key a type reference points to. It
// returns false for primitives, built-in types and the item's own type
// parameters, which never resolve to a workspace item.
func (f *File) ResolveType(t *Type) (string, bool) {
	if primitives[t.Name] || builtins[t.Name] {
		return "", false
	}
	if f.Item != nil {
		for _, p := range f.Item.TypeParams {
			if p == t.Name {
				return "", false
			}
		}
	}
	head, _, qualified := strings.Cut(t.Name, ".")
	for _, imp := range f.Imports {
		if imp.Name() == t.Name {
			return imp.Path, true
		}
		// Nested reference through an imported outer type.
		if qualified && imp.Name() == head {
			return imp.Path + t.Name[len(head):], true
		}
	}
	if qualified {
		return t.Name, true
	}
	if f.Package != nil && f.Package.Name != "" {
		return f.Package.Name + "." + t.Name, true
	}
	return t.Name, true
}
