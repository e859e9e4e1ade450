package parser

import (
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIllegal
	tokIdent
	tokNumber
	tokString
	tokChar
	tokLBrace   // {
	tokRBrace   // }
	tokLParen   // (
	tokRParen   // )
	tokLAngle   // <
	tokRAngle   // >
	tokLBracket // [
	tokRBracket // ]
	tokSemi     // ;
	tokComma    // ,
	tokDot      // .
	tokAssign   // =
	tokAt       // @
	tokOperator // anything else allowed in constant expressions
)

var tokenNames = map[tokenKind]string{
	tokEOF:      "end of file",
	tokIllegal:  "illegal character",
	tokIdent:    "identifier",
	tokNumber:   "number",
	tokString:   "string",
	tokChar:     "character",
	tokLBrace:   "`{`",
	tokRBrace:   "`}`",
	tokLParen:   "`(`",
	tokRParen:   "`)`",
	tokLAngle:   "`<`",
	tokRAngle:   "`>`",
	tokLBracket: "`[`",
	tokRBracket: "`]`",
	tokSemi:     "`;`",
	tokComma:    "`,`",
	tokDot:      "`.`",
	tokAssign:   "`=`",
	tokAt:       "`@`",
	tokOperator: "operator",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	rng  Range
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokIdent, tokNumber, tokString, tokChar, tokOperator, tokIllegal:
		return "`" + t.text + "`"
	}
	return t.kind.String()
}

var punctuation = map[rune]tokenKind{
	'{': tokLBrace,
	'}': tokRBrace,
	'(': tokLParen,
	')': tokRParen,
	'<': tokLAngle,
	'>': tokRAngle,
	'[': tokLBracket,
	']': tokRBracket,
	';': tokSemi,
	',': tokComma,
	'.': tokDot,
	'=': tokAssign,
	'@': tokAt,
}

// lexer turns AIDL source text into tokens, dropping whitespace and comments.
type lexer struct {
	src   string
	pos   Position
	diags []Diagnostic
}

func lex(src string) ([]token, []Diagnostic) {
	l := &lexer{src: src, pos: Position{Line: 1, Column: 1}}
	var toks []token
	for {
		tok := l.next()
		if tok.kind == tokIllegal {
			// already reported
			continue
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, l.diags
		}
	}
}

func (l *lexer) atEnd() bool { return l.pos.Offset >= len(l.src) }

func (l *lexer) peek() rune {
	if l.atEnd() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos.Offset:])
	return r
}

func (l *lexer) peekAt(n int) byte {
	if l.pos.Offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos.Offset+n]
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos.Offset:])
	l.pos.Offset += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
		return r
	}
	if n := utf16.RuneLen(r); n > 0 {
		l.pos.Column += n
	} else {
		l.pos.Column++
	}
	return r
}

func (l *lexer) skipTrivia() {
	for !l.atEnd() {
		switch r := l.peek(); {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case r == '/' && l.peekAt(1) == '*':
			start := l.pos
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				l.diags = append(l.diags, errorf(Range{Start: start, End: l.pos}, "Unterminated comment"))
			}
		default:
			return
		}
	}
}

func (l *lexer) next() token {
	l.skipTrivia()
	start := l.pos
	if l.atEnd() {
		return token{kind: tokEOF, rng: Range{Start: start, End: start}}
	}
	emit := func(kind tokenKind) token {
		return token{kind: kind, text: l.src[start.Offset:l.pos.Offset], rng: Range{Start: start, End: l.pos}}
	}

	r := l.advance()
	switch {
	case r == '_' || unicode.IsLetter(r):
		for !l.atEnd() && isIdentRune(l.peek()) {
			l.advance()
		}
		return emit(tokIdent)
	case r >= '0' && r <= '9':
		// Covers hex literals, suffixes (1L, 2.5f) and exponents.
		for !l.atEnd() {
			c := l.peek()
			if isIdentRune(c) || c == '.' {
				l.advance()
				continue
			}
			if (c == '+' || c == '-') && (l.src[l.pos.Offset-1] == 'e' || l.src[l.pos.Offset-1] == 'E') && !isHexLiteral(l.src[start.Offset:l.pos.Offset]) {
				l.advance()
				continue
			}
			break
		}
		return emit(tokNumber)
	case r == '"' || r == '\'':
		kind := tokString
		if r == '\'' {
			kind = tokChar
		}
		for !l.atEnd() && l.peek() != r && l.peek() != '\n' {
			if l.advance() == '\\' && !l.atEnd() {
				l.advance()
			}
		}
		if l.atEnd() || l.peek() != r {
			tok := emit(kind)
			l.diags = append(l.diags, errorf(tok.rng, "Unterminated %s literal", kind))
			return tok
		}
		l.advance()
		return emit(kind)
	}
	if kind, ok := punctuation[r]; ok {
		return emit(kind)
	}
	switch r {
	case '+', '-', '*', '/', '%', '|', '&', '^', '~', '!', '?', ':':
		return emit(tokOperator)
	}
	tok := emit(tokIllegal)
	l.diags = append(l.diags, errorf(tok.rng, "Unexpected character %q", r))
	return tok
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isHexLiteral(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
