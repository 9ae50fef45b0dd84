// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"fmt"
	"strings"

	"github.com/google/go-script-purity/internal/pkg/ast"
)

type tokKind uint8

const (
	tEOF tokKind = iota
	tIdent
	tKeyword
	tNumber
	tString
	tPunct
	tTemplateString // literal text fragment inside a template
	tTemplateStart  // `
	tTemplateEnd    // closing `
	tSubStart       // ${
	tSubEnd         // } closing a substitution
)

type token struct {
	kind tokKind
	text string
	pos  ast.Position
	// jsdoc is the doc block immediately preceding this token, if any.
	jsdoc *ast.JSDocInfo
}

var keywords = map[string]bool{
	"var": true, "let": true, "const": true, "function": true,
	"return": true, "throw": true, "if": true, "else": true,
	"while": true, "for": true, "in": true, "of": true, "do": true,
	"switch": true, "case": true, "default": true, "try": true,
	"catch": true, "finally": true, "break": true, "continue": true,
	"new": true, "delete": true, "typeof": true, "instanceof": true,
	"void": true, "this": true, "null": true, "true": true, "false": true,
	"class": true, "extends": true, "yield": true, "await": true,
	"async": true,
}

// lexer turns source text into tokens. Template literals are handled with
// an explicit mode stack so that `${`-substitutions nest correctly.
type lexer struct {
	src  string
	off  int
	line int
	col  int

	// template mode stack: each entry is the brace depth of an open
	// substitution, or -1 while lexing raw template text.
	templates []int

	pending *ast.JSDocInfo
	errs    []error
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(pos ast.Position, format string, args ...interface{}) {
	l.errs = append(l.errs, fmt.Errorf("%v: %s", pos, fmt.Sprintf(format, args...)))
}

func (l *lexer) pos() ast.Position { return ast.Position{Line: l.line, Col: l.col} }

func (l *lexer) peek() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) peekAt(i int) byte {
	if l.off+i >= len(l.src) {
		return 0
	}
	return l.src[l.off+i]
}

func (l *lexer) advance() byte {
	c := l.src[l.off]
	l.off++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// next returns the next token. Raw template text is returned as
// tTemplateString when the lexer is in template mode.
func (l *lexer) next() token {
	if n := len(l.templates); n > 0 && l.templates[n-1] == -1 {
		return l.templateText()
	}

	l.skipSpaceAndComments()
	pos := l.pos()
	doc := l.pending
	l.pending = nil

	if l.off >= len(l.src) {
		return token{kind: tEOF, pos: pos, jsdoc: doc}
	}

	c := l.peek()
	switch {
	case isIdentStart(c):
		text := l.scanIdent()
		kind := tIdent
		if keywords[text] {
			kind = tKeyword
		}
		return token{kind: kind, text: text, pos: pos, jsdoc: doc}
	case c >= '0' && c <= '9', c == '.' && isDigit(l.peekAt(1)):
		return token{kind: tNumber, text: l.scanNumber(), pos: pos, jsdoc: doc}
	case c == '"' || c == '\'':
		return token{kind: tString, text: l.scanString(c), pos: pos, jsdoc: doc}
	case c == '`':
		l.advance()
		l.templates = append(l.templates, -1)
		return token{kind: tTemplateStart, pos: pos, jsdoc: doc}
	}
	return l.scanPunct(pos, doc)
}

func (l *lexer) templateText() token {
	pos := l.pos()
	var b strings.Builder
	for l.off < len(l.src) {
		c := l.peek()
		if c == '`' {
			if b.Len() > 0 {
				return token{kind: tTemplateString, text: b.String(), pos: pos}
			}
			l.advance()
			l.templates = l.templates[:len(l.templates)-1]
			return token{kind: tTemplateEnd, pos: pos}
		}
		if c == '$' && l.peekAt(1) == '{' {
			if b.Len() > 0 {
				return token{kind: tTemplateString, text: b.String(), pos: pos}
			}
			l.advance()
			l.advance()
			l.templates[len(l.templates)-1] = 0
			return token{kind: tSubStart, pos: pos}
		}
		if c == '\\' {
			l.advance()
			if l.off < len(l.src) {
				b.WriteByte(unescape(l.advance()))
			}
			continue
		}
		b.WriteByte(l.advance())
	}
	l.errorf(pos, "unterminated template literal")
	return token{kind: tEOF, pos: pos}
}

func (l *lexer) scanPunct(pos ast.Position, doc *ast.JSDocInfo) token {
	tok := func(text string) token {
		for range text {
			l.advance()
		}
		return token{kind: tPunct, text: text, pos: pos, jsdoc: doc}
	}

	// Track substitution brace depth so the closing `}` of a `${...}`
	// is distinguishable from an object literal's.
	if n := len(l.templates); n > 0 && l.templates[n-1] >= 0 {
		switch l.peek() {
		case '{':
			l.templates[n-1]++
		case '}':
			if l.templates[n-1] == 0 {
				l.advance()
				l.templates[n-1] = -1
				return token{kind: tSubEnd, pos: pos, jsdoc: doc}
			}
			l.templates[n-1]--
		}
	}

	three := l.slice(3)
	switch three {
	case "===", "!==", "**=", "<<=", ">>=", "...":
		return tok(three)
	case ">>>":
		if l.slice(4) == ">>>=" {
			return tok(">>>=")
		}
		return tok(three)
	}
	two := l.slice(2)
	switch two {
	case "==", "!=", "<=", ">=", "&&", "||", "++", "--", "**",
		"<<", ">>", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "=>":
		return tok(two)
	}
	one := l.slice(1)
	switch one {
	case "(", ")", "{", "}", "[", "]", ";", ",", ".", "<", ">", "+", "-",
		"*", "/", "%", "&", "|", "^", "!", "~", "?", ":", "=":
		return tok(one)
	}
	l.errorf(pos, "unexpected character %q", l.peek())
	l.advance()
	return l.next()
}

func (l *lexer) slice(n int) string {
	if l.off+n > len(l.src) {
		return ""
	}
	return l.src[l.off : l.off+n]
}

func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for l.off < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			start := l.pos()
			isDoc := l.peekAt(2) == '*'
			var b strings.Builder
			l.advance()
			l.advance()
			closed := false
			for l.off < len(l.src) {
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				b.WriteByte(l.advance())
			}
			if !closed {
				l.errorf(start, "unterminated block comment")
			}
			if isDoc {
				l.pending = parseJSDoc(b.String())
			}
		default:
			return
		}
	}
}

func (l *lexer) scanIdent() string {
	start := l.off
	for l.off < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	return l.src[start:l.off]
}

func (l *lexer) scanNumber() string {
	start := l.off
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		return l.src[start:l.off]
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		l.advance()
		if c := l.peek(); c == '+' || c == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.src[start:l.off]
}

func (l *lexer) scanString(quote byte) string {
	pos := l.pos()
	l.advance()
	var b strings.Builder
	for l.off < len(l.src) {
		c := l.advance()
		switch c {
		case quote:
			return b.String()
		case '\\':
			if l.off < len(l.src) {
				b.WriteByte(unescape(l.advance()))
			}
		case '\n':
			l.errorf(pos, "unterminated string literal")
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	l.errorf(pos, "unterminated string literal")
	return b.String()
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
