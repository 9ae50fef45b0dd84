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

package scope

import "github.com/google/go-script-purity/internal/pkg/ast"

// Callback receives traversal events. ShouldTraverse runs pre-order and
// may prune a subtree; Visit runs post-order.
type Callback interface {
	ShouldTraverse(n *ast.Node, s *Scope) bool
	Visit(n *ast.Node, s *Scope)
}

// ScopedCallback additionally observes scope entry and exit. ExitScope
// fires while the scope's variables are still resolvable.
type ScopedCallback interface {
	Callback
	EnterScope(s *Scope)
	ExitScope(s *Scope)
}

// Traverse walks the tree rooted at root, maintaining the scope chain.
// Variable declarations are hoisted into their scopes on entry: `var` and
// function declarations to the closest container scope, `let`, `const`,
// class and catch bindings to the block.
func Traverse(root *ast.Node, cb Callback) {
	t := &traversal{cb: cb}
	t.scoped, _ = cb.(ScopedCallback)
	t.walk(root, nil)
}

type traversal struct {
	cb     Callback
	scoped ScopedCallback
}

func (t *traversal) walk(n *ast.Node, s *Scope) {
	if createsScope(n) {
		s = t.enter(n, s)
		defer t.exit(s)
	}
	if !t.cb.ShouldTraverse(n, s) {
		return
	}
	for _, c := range n.Children {
		t.walk(c, s)
	}
	t.cb.Visit(n, s)
}

func (t *traversal) enter(n *ast.Node, parent *Scope) *Scope {
	s := newScope(parent, n)
	declareScope(s, n)
	if t.scoped != nil {
		t.scoped.EnterScope(s)
	}
	return s
}

func (t *traversal) exit(s *Scope) {
	if t.scoped != nil {
		t.scoped.ExitScope(s)
	}
}

func createsScope(n *ast.Node) bool {
	switch n.Token {
	case ast.Root, ast.Function, ast.Block, ast.Catch,
		ast.For, ast.ForIn, ast.ForOf, ast.ForAwaitOf:
		return true
	}
	return false
}

func declareScope(s *Scope, n *ast.Node) {
	switch n.Token {
	case ast.Root:
		hoistContainer(s, n)
	case ast.Function:
		// A function expression binds its own name in its own scope; a
		// declaration's name was hoisted into the enclosing container.
		if name := n.FirstChild(); name != nil && name.Token == ast.Name && ast.IsFunctionExpression(n) {
			s.declare(name.Value, name, KindFunction)
		}
		for _, param := range n.SecondChild().Children {
			s.declarePattern(param, KindParam)
		}
		hoistContainer(s, n.LastChild())
	case ast.Catch:
		if name := n.FirstChild(); name.Token == ast.Name {
			s.declare(name.Value, name, KindCatch)
		}
	case ast.Block:
		declareBlock(s, n)
	case ast.For:
		declareLoopHead(s, n.FirstChild())
	case ast.ForIn, ast.ForOf, ast.ForAwaitOf:
		declareLoopHead(s, n.FirstChild())
	}
}

// hoistContainer declares `var` and statement-level function names found
// anywhere in the container's body, without descending into nested
// functions.
func hoistContainer(s *Scope, body *ast.Node) {
	if body == nil {
		return
	}
	for _, stmt := range body.Children {
		hoistStatement(s, stmt)
	}
}

func hoistStatement(s *Scope, n *ast.Node) {
	switch n.Token {
	case ast.Function:
		if name := n.FirstChild(); name.Token == ast.Name {
			s.declare(name.Value, name, KindFunction)
		}
		return // do not descend
	case ast.Class:
		return
	case ast.Var:
		for _, d := range n.Children {
			s.declarePattern(d, KindVar)
		}
	case ast.Let, ast.Const:
		return
	}
	for _, c := range n.Children {
		hoistStatement(s, c)
	}
}

func declareBlock(s *Scope, block *ast.Node) {
	for _, stmt := range block.Children {
		switch stmt.Token {
		case ast.Let, ast.Const:
			kind := KindLet
			if stmt.Token == ast.Const {
				kind = KindConst
			}
			for _, d := range stmt.Children {
				s.declarePattern(d, kind)
			}
		case ast.Class:
			if name := stmt.FirstChild(); name.Token == ast.Name {
				s.declare(name.Value, name, KindClass)
			}
		}
	}
}

func declareLoopHead(s *Scope, head *ast.Node) {
	if head == nil {
		return
	}
	switch head.Token {
	case ast.Let, ast.Const:
		kind := KindLet
		if head.Token == ast.Const {
			kind = KindConst
		}
		for _, d := range head.Children {
			s.declarePattern(d, kind)
		}
	}
}
