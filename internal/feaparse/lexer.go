// seehuhn.de/go/sfnt - a library for reading and writing font files
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package feaparse is a pragmatic stand-in for the feature-file grammar,
// which spec.md §1/§6 name as an external collaborator out of this
// module's scope. It covers the statement surface ast.Statement models —
// enough to drive cmd/compile and cmd/parse_test against the S1-S6 style
// fixtures — not the full AFDKO grammar (no contextual rules, no feature
// parameters, no GSUB 4-8).
package feaparse

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	num  int64
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '.' || b == '_'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// tokenize reads the whole source into a token slice; feature files are
// small enough that a single upfront pass is simpler than interleaving
// lexing with parsing.
func tokenize(src string) ([]token, error) {
	l := newLexer(src)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			break
		}
	}
	return toks, nil
}

// consumeFraction extends a just-read integer with a trailing ".NNN" part,
// for version literals like FontRevision's "1.000" — the only place this
// grammar subset uses fixed-point numbers.
func (l *lexer) consumeFraction() {
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) next() (token, error) {
	for {
		for l.pos < len(l.src) {
			b := l.src[l.pos]
			if b == '\n' {
				l.line++
				l.pos++
			} else if b == ' ' || b == '\t' || b == '\r' {
				l.pos++
			} else {
				break
			}
		}
		if l.pos < len(l.src) && l.src[l.pos] == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	line := l.line
	b := l.src[l.pos]

	if b == '"' {
		start := l.pos + 1
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			l.pos++
		}
		if l.pos >= len(l.src) {
			return token{}, &SyntaxError{Line: line, Reason: "unterminated string"}
		}
		text := l.src[start:l.pos]
		l.pos++ // closing quote
		return token{kind: tokString, text: text, line: line}, nil
	}

	if b == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		start := l.pos
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		l.consumeFraction()
		intText := l.src[start:l.pos]
		n, err := strconv.ParseInt(intText, 10, 64)
		if err != nil {
			// A version literal such as "-1.5" does not fit int64 parsing
			// of its integer prefix alone once a fraction is attached;
			// num is only meaningful for plain integer tokens, so leave
			// it zero and let the parser re-derive a value from text.
			n = 0
		}
		return token{kind: tokNumber, text: intText, num: n, line: line}, nil
	}

	if isDigit(b) {
		start := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		l.consumeFraction()
		text := l.src[start:l.pos]
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			n = 0
		}
		return token{kind: tokNumber, text: text, num: n, line: line}, nil
	}

	if isIdentStart(b) {
		start := l.pos
		for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: line}, nil
	}

	switch b {
	case '{', '}', '[', ']', '(', ')', '<', '>', ';', ',', '=', '@', '-', '\'':
		l.pos++
		return token{kind: tokPunct, text: string(b), line: line}, nil
	}

	return token{}, &SyntaxError{Line: line, Reason: fmt.Sprintf("unexpected byte %q", b)}
}

// SyntaxError reports a lexical or grammatical error in feature source.
type SyntaxError struct {
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("feaparse: line %d: %s", e.Line, e.Reason)
}
