package parser

// Parse parses one AIDL file. The returned file is nil when the source is too
// broken to produce an item; member-level errors are recovered from and only
// reported as diagnostics.
func Parse(src string) (*File, []Diagnostic) {
	toks, diags := lex(src)
	p := &parser{src: src, toks: toks, diags: diags, lastErr: -1}
	file := p.parseFile()
	return file, p.diags
}

type parser struct {
	src   string
	toks  []token
	pos   int
	diags []Diagnostic
	// lastErr is the offset of the last reported syntax error, so a single
	// mistake does not produce a cascade of diagnostics at the same place.
	lastErr int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekN(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) prevEnd() Position {
	if p.pos == 0 {
		return p.toks[0].rng.Start
	}
	return p.toks[p.pos-1].rng.End
}

func (p *parser) at(kind tokenKind) bool { return p.peek().kind == kind }

func (p *parser) atKeyword(word string) bool {
	tok := p.peek()
	return tok.kind == tokIdent && tok.text == word
}

func (p *parser) unexpected(expected string) {
	tok := p.peek()
	if tok.rng.Start.Offset <= p.lastErr {
		return
	}
	p.lastErr = tok.rng.Start.Offset
	p.diags = append(p.diags, errorf(tok.rng, "Syntax error: expected %s, found %s", expected, tok.describe()))
}

func (p *parser) expect(kind tokenKind) (token, bool) {
	if !p.at(kind) {
		p.unexpected(kind.String())
		return token{}, false
	}
	return p.next(), true
}

func (p *parser) expectIdent(what string) (token, bool) {
	if !p.at(tokIdent) {
		p.unexpected(what)
		return token{}, false
	}
	return p.next(), true
}

// skipTo advances past the next `stop` token at nesting depth 0. It stops
// without consuming at a closing `}` of the enclosing block or at EOF.
func (p *parser) skipTo(stop tokenKind) {
	depth := 0
	for {
		tok := p.peek()
		switch tok.kind {
		case tokEOF:
			return
		case tokLBrace, tokLParen, tokLBracket:
			depth++
		case tokRBrace:
			if depth == 0 {
				return
			}
			depth--
		case tokRParen, tokRBracket:
			if depth > 0 {
				depth--
			}
		}
		p.next()
		if depth == 0 && tok.kind == stop {
			return
		}
	}
}

func (p *parser) parseFile() *File {
	f := &File{}
	if p.atKeyword("package") {
		f.Package = p.parsePackage()
	}
	for p.atKeyword("import") {
		if imp := p.parseImport(); imp != nil {
			f.Imports = append(f.Imports, imp)
		}
	}
	item, ok := p.parseItem()
	if !ok {
		return nil
	}
	f.Item = item
	if tok := p.peek(); tok.kind != tokEOF {
		d := errorf(tok.rng, "Unexpected %s after the declaration of `%s`", tok.describe(), item.Name)
		d.Hint = "an AIDL file declares exactly one interface, parcelable or enum"
		p.diags = append(p.diags, d)
	}
	return f
}

func (p *parser) parseQualifiedName(what string) (string, Range, bool) {
	first, ok := p.expectIdent(what)
	if !ok {
		return "", Range{}, false
	}
	name, rng := first.text, first.rng
	for p.at(tokDot) && p.peekN(1).kind == tokIdent {
		p.next()
		id := p.next()
		name += "." + id.text
		rng.End = id.rng.End
	}
	return name, rng, true
}

func (p *parser) parsePackage() *Package {
	kw := p.next()
	name, rng, ok := p.parseQualifiedName("a package name")
	if !ok {
		p.skipTo(tokSemi)
		return nil
	}
	semi, ok := p.expect(tokSemi)
	if !ok {
		return &Package{Name: name, SymbolRange: rng, FullRange: Range{Start: kw.rng.Start, End: rng.End}}
	}
	return &Package{Name: name, SymbolRange: rng, FullRange: Range{Start: kw.rng.Start, End: semi.rng.End}}
}

func (p *parser) parseImport() *Import {
	kw := p.next()
	name, rng, ok := p.parseQualifiedName("an import path")
	if !ok {
		p.skipTo(tokSemi)
		return nil
	}
	end := rng.End
	if semi, ok := p.expect(tokSemi); ok {
		end = semi.rng.End
	}
	return &Import{Path: name, SymbolRange: rng, FullRange: Range{Start: kw.rng.Start, End: end}}
}

func (p *parser) parseAnnotations() []*Annotation {
	var annotations []*Annotation
	for p.at(tokAt) {
		at := p.next()
		name, rng, ok := p.parseQualifiedName("an annotation name")
		if !ok {
			return annotations
		}
		a := &Annotation{Name: name, Range: Range{Start: at.rng.Start, End: rng.End}}
		if p.at(tokLParen) {
			open := p.next()
			depth := 1
			for depth > 0 && !p.at(tokEOF) {
				switch p.next().kind {
				case tokLParen:
					depth++
				case tokRParen:
					depth--
				}
			}
			if depth > 0 {
				p.unexpected("`)`")
			}
			end := p.prevEnd()
			a.Params = p.src[open.rng.End.Offset:max(open.rng.End.Offset, end.Offset-1)]
			a.Range.End = end
		}
		annotations = append(annotations, a)
	}
	return annotations
}

func (p *parser) parseItem() (*Item, bool) {
	start := p.peek().rng.Start
	annotations := p.parseAnnotations()
	oneway := false
	if p.atKeyword("oneway") {
		p.next()
		oneway = true
	}

	kw := p.peek()
	var kind ItemKind
	switch {
	case p.atKeyword("interface"):
		kind = InterfaceKind
	case p.atKeyword("parcelable"):
		kind = ParcelableKind
	case p.atKeyword("union"):
		kind = UnionKind
	case p.atKeyword("enum"):
		kind = EnumKind
	default:
		p.unexpected("`interface`, `parcelable`, `union` or `enum`")
		return nil, false
	}
	p.next()
	if oneway && kind != InterfaceKind {
		p.diags = append(p.diags, errorf(kw.rng, "Only interfaces can be oneway, found %s", kind))
	}

	name, ok := p.expectIdent("an item name")
	if !ok {
		return nil, false
	}
	item := &Item{
		Decl:   Decl{Name: name.text, SymbolRange: name.rng, Annotations: annotations},
		Kind:   kind,
		Oneway: oneway,
	}

	if (kind == ParcelableKind || kind == UnionKind) && p.at(tokLAngle) {
		p.next()
		for {
			param, ok := p.expectIdent("a type parameter")
			if !ok {
				return nil, false
			}
			item.TypeParams = append(item.TypeParams, param.text)
			if !p.at(tokComma) {
				break
			}
			p.next()
		}
		if _, ok := p.expect(tokRAngle); !ok {
			return nil, false
		}
	}

	if kind == ParcelableKind && p.at(tokSemi) {
		semi := p.next()
		item.Forward = true
		item.FullRange = Range{Start: start, End: semi.rng.End}
		return item, true
	}

	if _, ok := p.expect(tokLBrace); !ok {
		return nil, false
	}
	switch kind {
	case InterfaceKind:
		p.parseMembers(item, p.parseInterfaceMember)
	case EnumKind:
		p.parseEnumElements(item)
	default:
		p.parseMembers(item, p.parseParcelableMember)
	}

	end := p.prevEnd()
	if rb, ok := p.expect(tokRBrace); ok {
		end = rb.rng.End
	}
	item.FullRange = Range{Start: start, End: end}
	return item, true
}

func (p *parser) parseMembers(item *Item, parse func() (Member, bool)) {
	for !p.at(tokRBrace) && !p.at(tokEOF) {
		before := p.pos
		m, ok := parse()
		if !ok {
			p.skipTo(tokSemi)
			if p.pos == before && !p.at(tokRBrace) {
				p.next()
			}
			continue
		}
		item.Members = append(item.Members, m)
	}
}

func (p *parser) parseInterfaceMember() (Member, bool) {
	start := p.peek().rng.Start
	annotations := p.parseAnnotations()
	if p.atKeyword("const") {
		return p.parseConst(start, annotations)
	}
	oneway := false
	if p.atKeyword("oneway") {
		p.next()
		oneway = true
	}
	ret, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent("a method name")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(tokLParen); !ok {
		return nil, false
	}
	var args []*Arg
	for !p.at(tokRParen) {
		arg, ok := p.parseArg()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.at(tokComma) {
			break
		}
		p.next()
	}
	if _, ok := p.expect(tokRParen); !ok {
		return nil, false
	}
	txID := ""
	if p.at(tokAssign) {
		p.next()
		tok, ok := p.expect(tokNumber)
		if !ok {
			return nil, false
		}
		txID = tok.text
	}
	semi, ok := p.expect(tokSemi)
	if !ok {
		return nil, false
	}
	return &Method{
		Decl: Decl{
			Name:        name.text,
			SymbolRange: name.rng,
			FullRange:   Range{Start: start, End: semi.rng.End},
			Annotations: annotations,
		},
		Oneway:        oneway,
		ReturnType:    ret,
		Args:          args,
		TransactionID: txID,
	}, true
}

func (p *parser) parseArg() (*Arg, bool) {
	start := p.peek().rng.Start
	annotations := p.parseAnnotations()
	dir := NoDirection
	switch {
	case p.atKeyword("in"):
		dir = In
	case p.atKeyword("out"):
		dir = Out
	case p.atKeyword("inout"):
		dir = InOut
	}
	if dir != NoDirection {
		p.next()
	}
	t, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent("an argument name")
	if !ok {
		return nil, false
	}
	return &Arg{
		Decl: Decl{
			Name:        name.text,
			SymbolRange: name.rng,
			FullRange:   Range{Start: start, End: name.rng.End},
			Annotations: annotations,
		},
		Direction: dir,
		Type:      t,
	}, true
}

func (p *parser) parseConst(start Position, annotations []*Annotation) (Member, bool) {
	p.next() // const
	t, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent("a constant name")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(tokAssign); !ok {
		return nil, false
	}
	value, ok := p.parseValue(tokSemi)
	if !ok {
		return nil, false
	}
	semi, ok := p.expect(tokSemi)
	if !ok {
		return nil, false
	}
	return &Const{
		Decl: Decl{
			Name:        name.text,
			SymbolRange: name.rng,
			FullRange:   Range{Start: start, End: semi.rng.End},
			Annotations: annotations,
		},
		Type:  t,
		Value: value,
	}, true
}

func (p *parser) parseParcelableMember() (Member, bool) {
	start := p.peek().rng.Start
	annotations := p.parseAnnotations()
	if p.atKeyword("const") {
		return p.parseConst(start, annotations)
	}
	t, ok := p.parseType()
	if !ok {
		return nil, false
	}
	name, ok := p.expectIdent("a field name")
	if !ok {
		return nil, false
	}
	value := ""
	if p.at(tokAssign) {
		p.next()
		if value, ok = p.parseValue(tokSemi); !ok {
			return nil, false
		}
	}
	semi, ok := p.expect(tokSemi)
	if !ok {
		return nil, false
	}
	return &Field{
		Decl: Decl{
			Name:        name.text,
			SymbolRange: name.rng,
			FullRange:   Range{Start: start, End: semi.rng.End},
			Annotations: annotations,
		},
		Type:  t,
		Value: value,
	}, true
}

func (p *parser) parseEnumElements(item *Item) {
	for !p.at(tokRBrace) && !p.at(tokEOF) {
		start := p.peek().rng.Start
		annotations := p.parseAnnotations()
		name, ok := p.expectIdent("an enum element")
		if !ok {
			p.skipTo(tokComma)
			continue
		}
		el := &EnumElement{Decl: Decl{Name: name.text, SymbolRange: name.rng, Annotations: annotations}}
		if p.at(tokAssign) {
			p.next()
			if el.Value, ok = p.parseValue(tokComma); !ok {
				p.skipTo(tokComma)
				continue
			}
		}
		el.FullRange = Range{Start: start, End: p.prevEnd()}
		item.Members = append(item.Members, el)
		if p.at(tokComma) {
			p.next()
			continue
		}
		if !p.at(tokRBrace) {
			p.unexpected("`,` or `}`")
			p.skipTo(tokComma)
		}
	}
}

// parseValue consumes a constant expression up to (not including) a `stop`
// token or a closing `}` at depth 0 and returns its source text.
func (p *parser) parseValue(stop tokenKind) (string, bool) {
	first := p.peek()
	depth := 0
loop:
	for {
		switch tok := p.peek(); tok.kind {
		case tokEOF:
			break loop
		case tokLParen, tokLBracket, tokLBrace:
			depth++
		case tokRParen, tokRBracket, tokRBrace:
			if depth == 0 {
				break loop
			}
			depth--
		case stop, tokSemi:
			if depth == 0 {
				break loop
			}
		}
		p.next()
	}
	if p.pos == 0 || p.toks[p.pos-1].rng.End.Offset <= first.rng.Start.Offset {
		p.unexpected("a value")
		return "", false
	}
	return p.src[first.rng.Start.Offset:p.prevEnd().Offset], true
}

func (p *parser) parseType() (*Type, bool) {
	p.parseAnnotations()
	name, rng, ok := p.parseQualifiedName("a type")
	if !ok {
		return nil, false
	}
	t := &Type{Name: name}
	end := rng.End
	if p.at(tokLAngle) {
		p.next()
		for {
			g, ok := p.parseType()
			if !ok {
				return nil, false
			}
			t.Generics = append(t.Generics, g)
			if !p.at(tokComma) {
				break
			}
			p.next()
		}
		rb, ok := p.expect(tokRAngle)
		if !ok {
			return nil, false
		}
		end = rb.rng.End
	}
	for p.at(tokLBracket) {
		p.next()
		if !p.at(tokRBracket) {
			// fixed-size array
			if _, ok := p.parseValue(tokRBracket); !ok {
				return nil, false
			}
		}
		rb, ok := p.expect(tokRBracket)
		if !ok {
			return nil, false
		}
		t.ArrayDim++
		end = rb.rng.End
	}
	t.Range = Range{Start: rng.Start, End: end}
	return t, true
}
