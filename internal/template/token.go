package template

import (
	"iter"
	"regexp"
	"slices"
)

// TokenKind tags a template token.
type TokenKind int

const (
	ColumnRef TokenKind = iota
	Literal
	Directive
)

func (k TokenKind) String() string {
	switch k {
	case ColumnRef:
		return "column"
	case Literal:
		return "literal"
	case Directive:
		return "directive"
	}
	return "unknown"
}

// Token is one match of the template mini-language.
//
//	A         column reference
//	"Hi\n"    quoted literal, \n and \t escapes
//	[DATE.B]  directive with a mode and a column
type Token struct {
	Kind   TokenKind
	Pos    int    // byte offset in the template
	Text   string // source text of the whole match
	Column string // ColumnRef and Directive
	Mode   string // Directive only, upper-cased
}

// Directives are tried first, then bare letters, then quoted literals.
// Anything else between matches is dropped.
var tokenPattern = regexp.MustCompile(`\[([A-Za-z]+)\.([A-Za-z]+)\]|([A-Za-z]+)|("[^"]*")`)

// Tokens scans src left to right and yields tokens lazily. The sequence can
// be ranged over any number of times.
func Tokens(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		offset := 0
		for offset < len(src) {
			m := tokenPattern.FindStringSubmatchIndex(src[offset:])
			if m == nil {
				return
			}
			tok := Token{Pos: offset + m[0], Text: src[offset+m[0] : offset+m[1]]}
			switch {
			case m[2] >= 0:
				tok.Kind = Directive
				tok.Mode = upper(src[offset+m[2] : offset+m[3]])
				tok.Column = upper(src[offset+m[4] : offset+m[5]])
			case m[6] >= 0:
				tok.Kind = ColumnRef
				tok.Column = upper(src[offset+m[6] : offset+m[7]])
			default:
				tok.Kind = Literal
			}
			if !yield(tok) {
				return
			}
			offset += m[1]
		}
	}
}

// Tokenize collects Tokens(src).
func Tokenize(src string) []Token {
	return slices.Collect(Tokens(src))
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
