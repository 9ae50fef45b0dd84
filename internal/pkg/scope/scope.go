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

// Package scope resolves variables to their declaration scopes and
// provides a traversal that tracks the current scope.
package scope

import "github.com/google/go-script-purity/internal/pkg/ast"

// Kind describes how a variable was introduced.
type Kind uint8

const (
	KindVar Kind = iota
	KindLet
	KindConst
	KindParam
	KindCatch
	KindFunction
	KindClass
)

// Var is a declared variable.
type Var struct {
	Name string
	// Node is the declaring NAME node.
	Node *ast.Node
	// Scope is the scope the variable is declared in.
	Scope *Scope
	Kind  Kind
}

// IsParam reports a function parameter.
func (v *Var) IsParam() bool { return v.Kind == KindParam }

// IsCatch reports a catch-clause binding.
func (v *Var) IsCatch() bool { return v.Kind == KindCatch }

// Scope is one lexical scope. The root node is the ROOT (global scope),
// a FUNCTION (container scope) or a block-like node.
type Scope struct {
	parent *Scope
	root   *ast.Node
	vars   map[string]*Var
	order  []string
}

func newScope(parent *Scope, root *ast.Node) *Scope {
	return &Scope{parent: parent, root: root, vars: map[string]*Var{}}
}

// RootNode returns the node the scope hangs off.
func (s *Scope) RootNode() *ast.Node { return s.root }

// Parent returns the enclosing scope, or nil at the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// IsFunctionScope reports a function container scope.
func (s *Scope) IsFunctionScope() bool { return s.root.Token == ast.Function }

// IsGlobalScope reports the top-level scope.
func (s *Scope) IsGlobalScope() bool { return s.root.Token == ast.Root }

// ClosestContainerScope returns the nearest enclosing function or global
// scope, skipping block scopes.
func (s *Scope) ClosestContainerScope() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.IsFunctionScope() || cur.IsGlobalScope() {
			return cur
		}
	}
	return nil
}

// HasSameContainerScope reports whether both scopes live in the same
// function (or both at top level).
func (s *Scope) HasSameContainerScope(other *Scope) bool {
	return s.ClosestContainerScope() == other.ClosestContainerScope()
}

// GetVar resolves a name against this scope and its ancestors.
func (s *Scope) GetVar(name string) *Var {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

// OwnVars lists the variables declared directly in this scope, in
// declaration order.
func (s *Scope) OwnVars() []*Var {
	vars := make([]*Var, 0, len(s.order))
	for _, name := range s.order {
		vars = append(vars, s.vars[name])
	}
	return vars
}

func (s *Scope) declare(name string, node *ast.Node, kind Kind) {
	if name == "" {
		return
	}
	if _, ok := s.vars[name]; ok {
		return
	}
	s.vars[name] = &Var{Name: name, Node: node, Scope: s, Kind: kind}
	s.order = append(s.order, name)
}

// declarePattern declares every binding name inside a declaration target:
// a plain NAME, or a destructuring pattern.
func (s *Scope) declarePattern(n *ast.Node, kind Kind) {
	if n == nil {
		return
	}
	switch n.Token {
	case ast.Name:
		s.declare(n.Value, n, kind)
	case ast.DestructuringLhs, ast.Rest, ast.DefaultValue:
		s.declarePattern(n.FirstChild(), kind)
	case ast.ObjectPattern:
		for _, c := range n.Children {
			switch c.Token {
			case ast.StringKey, ast.ComputedProp:
				s.declarePattern(c.LastChild(), kind)
			default:
				s.declarePattern(c, kind)
			}
		}
	case ast.ArrayPattern:
		for _, c := range n.Children {
			if c.Token != ast.Empty {
				s.declarePattern(c, kind)
			}
		}
	}
}
