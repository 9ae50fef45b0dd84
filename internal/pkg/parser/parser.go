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

// Package parser builds the normalized syntax tree consumed by the purity
// analysis. It is a handwritten recursive-descent parser over an
// on-demand lexer.
//
// The accepted grammar is the normalized subset the compiler feeds this
// pass: function expressions rather than arrows, declarations split from
// assignments. Constructs outside the subset are reported as parse
// errors.
package parser

import (
	"errors"
	"fmt"

	"github.com/google/go-script-purity/internal/pkg/ast"
)

// Parse parses a program.
func Parse(src string) (*ast.Node, error) {
	return parse(src, false)
}

// ParseExterns parses an extern file; every node is marked FromExterns.
func ParseExterns(src string) (*ast.Node, error) {
	return parse(src, true)
}

func parse(src string, externs bool) (*ast.Node, error) {
	p := &parser{lex: newLexer(src)}
	p.advance()
	root := ast.NewNode(ast.Root)
	root.FromExterns = externs
	for p.tok.kind != tEOF && len(p.errs) < maxErrors {
		root.AddChild(p.parseStatement())
	}
	if externs {
		ast.Walk(root, func(n *ast.Node) bool {
			n.FromExterns = true
			return true
		}, nil)
	}
	errs := append(p.lex.errs, p.errs...)
	return root, errors.Join(errs...)
}

const maxErrors = 20

type parser struct {
	lex  *lexer
	tok  token
	errs []error

	// noIn suppresses the `in` operator while parsing a for-loop head.
	noIn bool
}

func (p *parser) advance() { p.tok = p.lex.next() }

func (p *parser) errorf(format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Errorf("%v: %s", p.tok.pos, fmt.Sprintf(format, args...)))
}

// at reports whether the current token is the given punctuation or
// keyword text.
func (p *parser) at(text string) bool {
	return (p.tok.kind == tPunct || p.tok.kind == tKeyword) && p.tok.text == text
}

func (p *parser) eat(text string) bool {
	if p.at(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(text string) {
	if !p.eat(text) {
		p.errorf("expected %q, found %q", text, p.tok.text)
		p.advance()
	}
}

func (p *parser) node(tok ast.Token, children ...*ast.Node) *ast.Node {
	n := ast.NewNode(tok, children...)
	n.Pos = p.tok.pos
	return n
}

// takeDoc claims the doc block attached to the current token.
func (p *parser) takeDoc() *ast.JSDocInfo {
	doc := p.tok.jsdoc
	p.tok.jsdoc = nil
	return doc
}

// ---------------------------------------------------------------------------
// Statements

func (p *parser) parseStatement() *ast.Node {
	doc := p.takeDoc()
	n := p.parseStatementInner()
	if doc != nil && n.JSDoc == nil {
		n.JSDoc = doc
	}
	return n
}

func (p *parser) parseStatementInner() *ast.Node {
	switch {
	case p.at("var"), p.at("let"), p.at("const"):
		n := p.parseVarStatement()
		p.eat(";")
		return n
	case p.at("function"):
		return p.parseFunction(false)
	case p.at("async"):
		pos := p.tok.pos
		p.advance()
		if !p.at("function") {
			p.errs = append(p.errs, fmt.Errorf("%v: expected function after async", pos))
			return p.node(ast.Empty)
		}
		return p.parseFunction(true)
	case p.at("class"):
		return p.parseClass()
	case p.at("return"):
		n := p.node(ast.Return)
		p.advance()
		if !p.at(";") && !p.at("}") && p.tok.kind != tEOF {
			n.AddChild(p.parseExpression())
		}
		p.eat(";")
		return n
	case p.at("throw"):
		n := p.node(ast.Throw)
		p.advance()
		n.AddChild(p.parseExpression())
		p.eat(";")
		return n
	case p.at("if"):
		n := p.node(ast.If)
		p.advance()
		p.expect("(")
		n.AddChild(p.parseExpression())
		p.expect(")")
		n.AddChild(p.blockOf(p.parseStatement()))
		if p.eat("else") {
			n.AddChild(p.blockOf(p.parseStatement()))
		}
		return n
	case p.at("while"):
		n := p.node(ast.While)
		p.advance()
		p.expect("(")
		n.AddChild(p.parseExpression())
		p.expect(")")
		n.AddChild(p.blockOf(p.parseStatement()))
		return n
	case p.at("for"):
		return p.parseFor()
	case p.at("switch"):
		return p.parseSwitch()
	case p.at("try"):
		return p.parseTry()
	case p.at("break"):
		n := p.node(ast.Break)
		p.advance()
		p.eat(";")
		return n
	case p.at("continue"):
		n := p.node(ast.Continue)
		p.advance()
		p.eat(";")
		return n
	case p.at("{"):
		return p.parseBlock()
	case p.at(";"):
		n := p.node(ast.Empty)
		p.advance()
		return n
	default:
		n := p.node(ast.ExprResult)
		n.AddChild(p.parseExpression())
		p.eat(";")
		return n
	}
}

// blockOf wraps a single statement in a BLOCK unless it is one already,
// keeping the tree normalized.
func (p *parser) blockOf(stmt *ast.Node) *ast.Node {
	if stmt.Token == ast.Block {
		return stmt
	}
	return ast.NewNode(ast.Block, stmt)
}

func (p *parser) parseBlock() *ast.Node {
	n := p.node(ast.Block)
	p.expect("{")
	for !p.at("}") && p.tok.kind != tEOF && len(p.errs) < maxErrors {
		n.AddChild(p.parseStatement())
	}
	p.expect("}")
	return n
}

func declToken(text string) ast.Token {
	switch text {
	case "let":
		return ast.Let
	case "const":
		return ast.Const
	default:
		return ast.Var
	}
}

func (p *parser) parseVarStatement() *ast.Node {
	n := p.node(declToken(p.tok.text))
	p.advance()
	for {
		n.AddChild(p.parseDeclarator())
		if !p.eat(",") {
			break
		}
	}
	return n
}

func (p *parser) parseDeclarator() *ast.Node {
	if p.at("{") || p.at("[") {
		pattern := p.parsePattern()
		lhs := ast.NewNode(ast.DestructuringLhs, pattern)
		lhs.Pos = pattern.Pos
		if p.eat("=") {
			lhs.AddChild(p.parseAssign())
		}
		return lhs
	}
	name := p.parseName()
	if p.eat("=") {
		name.AddChild(p.parseAssign())
	}
	return name
}

func (p *parser) parseName() *ast.Node {
	n := p.node(ast.Name)
	n.JSDoc = p.takeDoc()
	if p.tok.kind != tIdent {
		p.errorf("expected identifier, found %q", p.tok.text)
	}
	n.Value = p.tok.text
	p.advance()
	return n
}

func (p *parser) parseFor() *ast.Node {
	pos := p.tok.pos
	p.advance()
	isAwait := p.eat("await")
	p.expect("(")

	var lhs *ast.Node
	if p.at("var") || p.at("let") || p.at("const") {
		decl := p.node(declToken(p.tok.text))
		p.advance()
		if p.at("{") || p.at("[") {
			decl.AddChild(ast.NewNode(ast.DestructuringLhs, p.parsePattern()))
		} else {
			decl.AddChild(p.parseName())
		}
		if p.at("in") || p.at("of") {
			lhs = decl
		} else {
			// A classic for loop; finish the declarator list.
			if p.eat("=") {
				decl.LastChild().AddChild(p.parseAssign())
			}
			for p.eat(",") {
				decl.AddChild(p.parseDeclarator())
			}
			return p.finishClassicFor(pos, decl)
		}
	} else if !p.at(";") {
		p.noIn = true
		expr := p.parseExpression()
		p.noIn = false
		if p.at("in") || p.at("of") {
			lhs = p.toPatternIfLit(expr)
		} else {
			return p.finishClassicFor(pos, expr)
		}
	} else {
		return p.finishClassicFor(pos, p.node(ast.Empty))
	}

	tok := ast.ForIn
	if p.at("of") {
		tok = ast.ForOf
		if isAwait {
			tok = ast.ForAwaitOf
		}
	} else if isAwait {
		p.errorf("for await requires of")
	}
	p.advance()
	n := ast.NewNode(tok, lhs)
	n.Pos = pos
	n.AddChild(p.parseExpression())
	p.expect(")")
	n.AddChild(p.blockOf(p.parseStatement()))
	return n
}

func (p *parser) finishClassicFor(pos ast.Position, init *ast.Node) *ast.Node {
	n := ast.NewNode(ast.For, init)
	n.Pos = pos
	p.expect(";")
	if p.at(";") {
		n.AddChild(p.node(ast.Empty))
	} else {
		n.AddChild(p.parseExpression())
	}
	p.expect(";")
	if p.at(")") {
		n.AddChild(p.node(ast.Empty))
	} else {
		n.AddChild(p.parseExpression())
	}
	p.expect(")")
	n.AddChild(p.blockOf(p.parseStatement()))
	return n
}

func (p *parser) parseSwitch() *ast.Node {
	n := p.node(ast.Switch)
	p.advance()
	p.expect("(")
	n.AddChild(p.parseExpression())
	p.expect(")")
	p.expect("{")
	for !p.at("}") && p.tok.kind != tEOF && len(p.errs) < maxErrors {
		if p.eat("case") {
			c := ast.NewNode(ast.Case, p.parseExpression())
			p.expect(":")
			c.AddChild(p.parseCaseBody())
			n.AddChild(c)
		} else if p.eat("default") {
			p.expect(":")
			n.AddChild(ast.NewNode(ast.DefaultCase, p.parseCaseBody()))
		} else {
			p.errorf("expected case or default, found %q", p.tok.text)
			p.advance()
		}
	}
	p.expect("}")
	return n
}

func (p *parser) parseCaseBody() *ast.Node {
	body := p.node(ast.Block)
	for !p.at("case") && !p.at("default") && !p.at("}") && p.tok.kind != tEOF && len(p.errs) < maxErrors {
		body.AddChild(p.parseStatement())
	}
	return body
}

func (p *parser) parseTry() *ast.Node {
	n := p.node(ast.Try)
	p.advance()
	n.AddChild(p.parseBlock())
	if p.eat("catch") {
		c := p.node(ast.Catch)
		if p.eat("(") {
			c.AddChild(p.parseName())
			p.expect(")")
		} else {
			c.AddChild(p.node(ast.Empty))
		}
		c.AddChild(p.parseBlock())
		n.AddChild(c)
	} else {
		n.AddChild(p.node(ast.Empty))
	}
	if p.eat("finally") {
		n.AddChild(p.parseBlock())
	}
	return n
}

// parseFunction parses `function [name] (params) { body }`. A missing
// name yields an EMPTY placeholder so the child layout stays fixed.
func (p *parser) parseFunction(isAsync bool) *ast.Node {
	n := p.node(ast.Function)
	n.JSDoc = p.takeDoc()
	n.IsAsync = isAsync
	p.expect("function")
	n.IsGenerator = p.eat("*")
	if p.tok.kind == tIdent {
		n.AddChild(p.parseName())
	} else {
		n.AddChild(p.node(ast.Empty))
	}
	n.AddChild(p.parseParamList())
	n.AddChild(p.parseBlock())
	return n
}

func (p *parser) parseParamList() *ast.Node {
	params := p.node(ast.ParamList)
	p.expect("(")
	for !p.at(")") && p.tok.kind != tEOF {
		var param *ast.Node
		switch {
		case p.at("..."):
			rest := p.node(ast.Rest)
			p.advance()
			rest.AddChild(p.parseName())
			param = rest
		case p.at("{") || p.at("["):
			param = p.parsePattern()
		default:
			param = p.parseName()
		}
		if p.eat("=") {
			param = ast.NewNode(ast.DefaultValue, param, p.parseAssign())
		}
		params.AddChild(param)
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
	return params
}

func (p *parser) parseClass() *ast.Node {
	n := p.node(ast.Class)
	p.expect("class")
	if p.tok.kind == tIdent {
		n.AddChild(p.parseName())
	} else {
		n.AddChild(p.node(ast.Empty))
	}
	if p.eat("extends") {
		n.AddChild(p.parseUnary())
	} else {
		n.AddChild(p.node(ast.Empty))
	}
	members := p.node(ast.ClassMembers)
	p.expect("{")
	for !p.at("}") && p.tok.kind != tEOF && len(p.errs) < maxErrors {
		if p.eat(";") {
			continue
		}
		members.AddChild(p.parseClassMember())
	}
	p.expect("}")
	n.AddChild(members)
	return n
}

func (p *parser) parseClassMember() *ast.Node {
	doc := p.takeDoc()
	if p.at("static") {
		p.advance()
	}
	if p.tok.kind != tIdent && p.tok.kind != tKeyword {
		p.errorf("expected method name, found %q", p.tok.text)
		p.advance()
		return p.node(ast.Empty)
	}
	m := p.node(ast.MemberFunctionDef)
	m.Value = p.tok.text
	m.JSDoc = doc
	p.advance()
	fn := p.node(ast.Function)
	fn.AddChild(ast.NewNode(ast.Empty))
	fn.AddChild(p.parseParamList())
	fn.AddChild(p.parseBlock())
	m.AddChild(fn)
	return m
}

// ---------------------------------------------------------------------------
// Patterns

func (p *parser) parsePattern() *ast.Node {
	if p.at("{") {
		n := p.node(ast.ObjectPattern)
		p.advance()
		for !p.at("}") && p.tok.kind != tEOF {
			if p.at("...") {
				rest := p.node(ast.Rest)
				p.advance()
				rest.AddChild(p.parseName())
				n.AddChild(rest)
			} else {
				key := p.node(ast.StringKey)
				key.Value = p.tok.text
				p.advance()
				if p.eat(":") {
					key.AddChild(p.parsePatternTarget())
				} else {
					key.AddChild(ast.NewValueNode(ast.Name, key.Value))
				}
				if p.eat("=") {
					v := key.Children[len(key.Children)-1]
					key.Children = key.Children[:len(key.Children)-1]
					key.AddChild(ast.NewNode(ast.DefaultValue, v, p.parseAssign()))
				}
				n.AddChild(key)
			}
			if !p.eat(",") {
				break
			}
		}
		p.expect("}")
		return n
	}
	n := p.node(ast.ArrayPattern)
	p.expect("[")
	for !p.at("]") && p.tok.kind != tEOF {
		switch {
		case p.at(","):
			n.AddChild(p.node(ast.Empty))
		case p.at("..."):
			rest := p.node(ast.Rest)
			p.advance()
			rest.AddChild(p.parsePatternTarget())
			n.AddChild(rest)
		default:
			t := p.parsePatternTarget()
			if p.eat("=") {
				t = ast.NewNode(ast.DefaultValue, t, p.parseAssign())
			}
			n.AddChild(t)
		}
		if !p.eat(",") {
			break
		}
	}
	p.expect("]")
	return n
}

// parsePatternTarget parses a single destructuring target: a nested
// pattern, or a member expression (`x.p`), or a plain name.
func (p *parser) parsePatternTarget() *ast.Node {
	if p.at("{") || p.at("[") {
		return p.parsePattern()
	}
	return p.parseCallChain(p.parsePrimary(), false)
}

// toPatternIfLit converts an object/array literal parsed in expression
// position into the equivalent pattern, for destructuring assignments.
func (p *parser) toPatternIfLit(n *ast.Node) *ast.Node {
	switch n.Token {
	case ast.ObjectLit:
		pat := ast.NewNode(ast.ObjectPattern)
		pat.Pos = n.Pos
		for _, c := range n.Children {
			switch c.Token {
			case ast.Spread:
				r := ast.NewNode(ast.Rest, c.OnlyChild())
				pat.AddChild(r)
			default:
				pat.AddChild(c)
			}
		}
		return pat
	case ast.ArrayLit:
		pat := ast.NewNode(ast.ArrayPattern)
		pat.Pos = n.Pos
		for _, c := range n.Children {
			if c.Token == ast.Spread {
				pat.AddChild(ast.NewNode(ast.Rest, c.OnlyChild()))
			} else {
				pat.AddChild(c)
			}
		}
		return pat
	default:
		return n
	}
}

// ---------------------------------------------------------------------------
// Expressions

func (p *parser) parseExpression() *ast.Node {
	n := p.parseAssign()
	if !p.at(",") {
		return n
	}
	comma := ast.NewNode(ast.Comma, n)
	comma.Pos = n.Pos
	for p.eat(",") {
		comma.AddChild(p.parseAssign())
	}
	return comma
}

var compoundOps = map[string]ast.Token{
	"+=": ast.AssignAdd, "-=": ast.AssignSub, "*=": ast.AssignMul,
	"/=": ast.AssignDiv, "%=": ast.AssignMod, "**=": ast.AssignExponent,
	"<<=": ast.AssignLsh, ">>=": ast.AssignRsh, ">>>=": ast.AssignURsh,
	"&=": ast.AssignBitAnd, "|=": ast.AssignBitOr, "^=": ast.AssignBitXor,
}

func (p *parser) parseAssign() *ast.Node {
	if p.at("yield") {
		return p.parseYield()
	}
	lhs := p.parseHook()
	if p.at("=") {
		p.advance()
		n := ast.NewNode(ast.Assign, p.toPatternIfLit(lhs), p.parseAssign())
		n.Pos = lhs.Pos
		return n
	}
	if tok, ok := compoundOps[p.tok.text]; ok && p.tok.kind == tPunct {
		p.advance()
		n := ast.NewNode(tok, lhs, p.parseAssign())
		n.Pos = lhs.Pos
		return n
	}
	return lhs
}

func (p *parser) parseYield() *ast.Node {
	n := p.node(ast.Yield)
	p.advance()
	n.YieldAll = p.eat("*")
	if !p.at(";") && !p.at(")") && !p.at("}") && !p.at(",") && !p.at("]") && p.tok.kind != tEOF {
		n.AddChild(p.parseAssign())
	}
	return n
}

func (p *parser) parseHook() *ast.Node {
	cond := p.parseBinary(0)
	if !p.at("?") {
		return cond
	}
	p.advance()
	n := ast.NewNode(ast.Hook, cond, p.parseAssign())
	n.Pos = cond.Pos
	p.expect(":")
	n.AddChild(p.parseAssign())
	return n
}

type binOp struct {
	tok  ast.Token
	prec int
}

var binOps = map[string]binOp{
	"||": {ast.Or, 1}, "&&": {ast.And, 2},
	"|": {ast.BitOr, 3}, "^": {ast.BitXor, 4}, "&": {ast.BitAnd, 5},
	"==": {ast.Eq, 6}, "!=": {ast.Ne, 6}, "===": {ast.SHEq, 6}, "!==": {ast.SHNe, 6},
	"<": {ast.Lt, 7}, ">": {ast.Gt, 7}, "<=": {ast.Le, 7}, ">=": {ast.Ge, 7},
	"instanceof": {ast.Instanceof, 7}, "in": {ast.In, 7},
	"<<": {ast.Lsh, 8}, ">>": {ast.Rsh, 8}, ">>>": {ast.URsh, 8},
	"+": {ast.Add, 9}, "-": {ast.Sub, 9},
	"*": {ast.Mul, 10}, "/": {ast.Div, 10}, "%": {ast.Mod, 10},
	"**": {ast.Exponent, 11},
}

func (p *parser) parseBinary(minPrec int) *ast.Node {
	lhs := p.parseUnary()
	for {
		op, ok := binOps[p.tok.text]
		if !ok || op.prec < minPrec || (p.tok.kind != tPunct && p.tok.kind != tKeyword) {
			return lhs
		}
		if op.tok == ast.In && p.noIn {
			return lhs
		}
		p.advance()
		next := op.prec + 1
		if op.tok == ast.Exponent {
			next = op.prec // right associative
		}
		n := ast.NewNode(op.tok, lhs, p.parseBinary(next))
		n.Pos = lhs.Pos
		lhs = n
	}
}

var unaryOps = map[string]ast.Token{
	"!": ast.Not, "~": ast.BitNot, "+": ast.Pos, "-": ast.Neg,
	"typeof": ast.TypeOf, "void": ast.Void, "delete": ast.DelProp,
	"await": ast.Await,
}

func (p *parser) parseUnary() *ast.Node {
	if tok, ok := unaryOps[p.tok.text]; ok && (p.tok.kind == tPunct || p.tok.kind == tKeyword) {
		n := p.node(tok)
		p.advance()
		n.AddChild(p.parseUnary())
		return n
	}
	if p.at("++") || p.at("--") {
		tok := ast.Inc
		if p.at("--") {
			tok = ast.Dec
		}
		n := p.node(tok)
		p.advance()
		n.AddChild(p.parseUnary())
		return n
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() *ast.Node {
	n := p.parseCallChain(p.parsePrimary(), true)
	for p.at("++") || p.at("--") {
		tok := ast.Inc
		if p.at("--") {
			tok = ast.Dec
		}
		wrapped := ast.NewNode(tok, n)
		wrapped.Pos = n.Pos
		p.advance()
		n = wrapped
	}
	return n
}

// parseCallChain extends a primary with member accesses, calls and tagged
// templates. allowCall distinguishes `new F(a)` argument binding from
// plain chains.
func (p *parser) parseCallChain(n *ast.Node, allowCall bool) *ast.Node {
	for {
		switch {
		case p.at("."):
			p.advance()
			if p.tok.kind != tIdent && p.tok.kind != tKeyword {
				p.errorf("expected property name, found %q", p.tok.text)
				return n
			}
			get := ast.NewValueNode(ast.GetProp, p.tok.text, n)
			get.Pos = n.Pos
			p.advance()
			n = get
		case p.at("["):
			p.advance()
			get := ast.NewNode(ast.GetElem, n, p.parseExpression())
			get.Pos = n.Pos
			p.expect("]")
			n = get
		case p.at("(") && allowCall:
			call := ast.NewNode(ast.Call, n)
			call.Pos = n.Pos
			p.parseArgs(call)
			n = call
		case p.tok.kind == tTemplateStart:
			tagged := ast.NewNode(ast.TaggedTemplateLit, n, p.parseTemplate())
			tagged.Pos = n.Pos
			n = tagged
		default:
			return n
		}
	}
}

func (p *parser) parseArgs(call *ast.Node) {
	p.expect("(")
	for !p.at(")") && p.tok.kind != tEOF {
		if p.at("...") {
			spread := p.node(ast.Spread)
			p.advance()
			spread.AddChild(p.parseAssign())
			call.AddChild(spread)
		} else {
			call.AddChild(p.parseAssign())
		}
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
}

func (p *parser) parseTemplate() *ast.Node {
	n := p.node(ast.TemplateLit)
	p.advance() // tTemplateStart
	for {
		switch p.tok.kind {
		case tTemplateString:
			n.AddChild(ast.NewValueNode(ast.TemplateLitString, p.tok.text))
			p.advance()
		case tSubStart:
			p.advance()
			n.AddChild(ast.NewNode(ast.TemplateLitSub, p.parseExpression()))
			if p.tok.kind != tSubEnd {
				p.errorf("expected } to close template substitution")
				return n
			}
			p.advance()
		case tTemplateEnd:
			p.advance()
			return n
		default:
			p.errorf("unterminated template literal")
			return n
		}
	}
}

func (p *parser) parsePrimary() *ast.Node {
	doc := p.takeDoc()
	n := p.parsePrimaryInner()
	if doc != nil && n.JSDoc == nil {
		n.JSDoc = doc
	}
	return n
}

func (p *parser) parsePrimaryInner() *ast.Node {
	switch {
	case p.at("function"):
		return p.parseFunction(false)
	case p.at("async"):
		p.advance()
		if !p.at("function") {
			p.errorf("expected function after async")
			return p.node(ast.Empty)
		}
		return p.parseFunction(true)
	case p.at("class"):
		return p.parseClass()
	case p.at("new"):
		n := p.node(ast.New)
		p.advance()
		callee := p.parseCallChain(p.parsePrimary(), false)
		n.AddChild(callee)
		if p.at("(") {
			p.parseArgs(n)
		}
		return n
	case p.at("this"):
		n := p.node(ast.This)
		p.advance()
		return n
	case p.at("null"):
		n := p.node(ast.Null)
		p.advance()
		return n
	case p.at("true"):
		n := p.node(ast.True)
		p.advance()
		return n
	case p.at("false"):
		n := p.node(ast.False)
		p.advance()
		return n
	case p.at("("):
		p.advance()
		n := p.parseExpression()
		p.expect(")")
		return n
	case p.at("["):
		n := p.node(ast.ArrayLit)
		p.advance()
		for !p.at("]") && p.tok.kind != tEOF {
			switch {
			case p.at(","):
				n.AddChild(p.node(ast.Empty))
			case p.at("..."):
				spread := p.node(ast.Spread)
				p.advance()
				spread.AddChild(p.parseAssign())
				n.AddChild(spread)
			default:
				n.AddChild(p.parseAssign())
			}
			if !p.eat(",") {
				break
			}
		}
		p.expect("]")
		return n
	case p.at("{"):
		return p.parseObjectLit()
	case p.tok.kind == tTemplateStart:
		return p.parseTemplate()
	case p.tok.kind == tNumber:
		n := p.node(ast.Number)
		n.Value = p.tok.text
		p.advance()
		return n
	case p.tok.kind == tString:
		n := p.node(ast.String)
		n.Value = p.tok.text
		p.advance()
		return n
	case p.tok.kind == tIdent:
		return p.parseName()
	default:
		p.errorf("unexpected token %q", p.tok.text)
		n := p.node(ast.Empty)
		p.advance()
		return n
	}
}

func (p *parser) parseObjectLit() *ast.Node {
	n := p.node(ast.ObjectLit)
	p.expect("{")
	for !p.at("}") && p.tok.kind != tEOF && len(p.errs) < maxErrors {
		doc := p.takeDoc()
		switch {
		case p.at("..."):
			spread := p.node(ast.Spread)
			p.advance()
			spread.AddChild(p.parseAssign())
			n.AddChild(spread)
		case p.at("["):
			p.advance()
			key := p.parseAssign()
			p.expect("]")
			p.expect(":")
			n.AddChild(ast.NewNode(ast.ComputedProp, key, p.parseAssign()))
		default:
			key := p.node(ast.StringKey)
			key.JSDoc = doc
			key.Value = p.tok.text
			p.advance()
			switch {
			case p.at("("):
				// Method shorthand.
				m := ast.NewValueNode(ast.MemberFunctionDef, key.Value)
				m.Pos = key.Pos
				m.JSDoc = doc
				fn := p.node(ast.Function)
				fn.AddChild(ast.NewNode(ast.Empty))
				fn.AddChild(p.parseParamList())
				fn.AddChild(p.parseBlock())
				m.AddChild(fn)
				n.AddChild(m)
			case p.eat(":"):
				key.AddChild(p.parseAssign())
				n.AddChild(key)
			default:
				// Shorthand property.
				key.AddChild(ast.NewValueNode(ast.Name, key.Value))
				n.AddChild(key)
			}
		}
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
	return n
}
