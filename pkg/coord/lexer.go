package coord

import (
	"strconv"
)

// tokenType identifies the kind of a coordinate token.
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenUnit    // h, m, s, d, °, ', "
	tokenColon   // :
	tokenIllegal // anything else
)

// token is a lexical unit of a coordinate string.
type token struct {
	typ     tokenType
	literal string
	value   float64 // numeric value for tokenNumber
	signed  bool    // number carried an explicit + or -
	neg     bool    // number carried a leading -
	pos     int
}

// lexer splits a coordinate string into numbers, unit markers and colons.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// next returns the next token.
func (l *lexer) next() token {
	l.skipSeparators()
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == ':':
		l.pos++
		return token{typ: tokenColon, literal: ":", pos: start}
	case ch == 'h' || ch == 'H' || ch == 'm' || ch == 'M' || ch == 's' || ch == 'S' ||
		ch == 'd' || ch == 'D' || ch == '\'' || ch == '"':
		l.pos++
		return token{typ: tokenUnit, literal: string(lower(ch)), pos: start}
	case ch == 0xC2 && l.pos+1 < len(l.input) && l.input[l.pos+1] == 0xB0: // °
		l.pos += 2
		return token{typ: tokenUnit, literal: "d", pos: start}
	case ch == '+' || ch == '-' || ch == '.' || isDigit(ch):
		return l.readNumber()
	}

	l.pos++
	return token{typ: tokenIllegal, literal: string(ch), pos: start}
}

// readNumber reads an optionally signed decimal number.
func (l *lexer) readNumber() token {
	start := l.pos
	tok := token{typ: tokenNumber, pos: start}

	if c := l.input[l.pos]; c == '+' || c == '-' {
		tok.signed = true
		tok.neg = c == '-'
		l.pos++
	}
	digits := l.pos
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	// exponent, e.g. 1.5e-3
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') && l.pos > digits {
		save := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}

	tok.literal = l.input[start:l.pos]
	v, err := strconv.ParseFloat(l.input[digits:l.pos], 64)
	if err != nil {
		tok.typ = tokenIllegal
		return tok
	}
	tok.value = v
	return tok
}

// skipSeparators skips whitespace and commas.
func (l *lexer) skipSeparators() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r', ',':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + 'a' - 'A'
	}
	return ch
}
