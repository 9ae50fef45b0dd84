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

// Package refmap enumerates every textual reference to every global
// variable name and every property name across the externs and the
// program. Downstream analyses aggregate functions by these names.
package refmap

import (
	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/scope"
)

// Entry is the reference list for one name, in source order.
type Entry struct {
	Name string
	Refs []*ast.Node
}

// Map holds name and property references separately; property names are
// not prefixed here, consumers disambiguate.
type Map struct {
	names     []Entry
	props     []Entry
	nameIndex map[string]int
	propIndex map[string]int
}

// Build collects references from the given roots, externs first by
// convention. Iteration order is deterministic (first-seen order).
func Build(roots ...*ast.Node) *Map {
	m := &Map{nameIndex: map[string]int{}, propIndex: map[string]int{}}
	for _, root := range roots {
		scope.Traverse(root, &collector{m: m})
	}
	return m
}

// NameReferences lists references to global variable names.
func (m *Map) NameReferences() []Entry { return m.names }

// PropReferences lists references to property names.
func (m *Map) PropReferences() []Entry { return m.props }

func (m *Map) addName(name string, n *ast.Node) {
	i, ok := m.nameIndex[name]
	if !ok {
		i = len(m.names)
		m.nameIndex[name] = i
		m.names = append(m.names, Entry{Name: name})
	}
	m.names[i].Refs = append(m.names[i].Refs, n)
}

func (m *Map) addProp(name string, n *ast.Node) {
	i, ok := m.propIndex[name]
	if !ok {
		i = len(m.props)
		m.propIndex[name] = i
		m.props = append(m.props, Entry{Name: name})
	}
	m.props[i].Refs = append(m.props[i].Refs, n)
}

type collector struct {
	m *Map
}

func (c *collector) ShouldTraverse(n *ast.Node, s *scope.Scope) bool { return true }

func (c *collector) Visit(n *ast.Node, s *scope.Scope) {
	switch n.Token {
	case ast.Name:
		if !isVariableReference(n) {
			return
		}
		v := s.GetVar(n.Value)
		if v == nil || v.Scope.IsGlobalScope() {
			c.m.addName(n.Value, n)
		}
	case ast.GetProp:
		c.m.addProp(n.Value, n)
	case ast.StringKey:
		if p := n.Parent(); p != nil && p.Token == ast.ObjectLit {
			c.m.addProp(n.Value, n)
		}
	case ast.MemberFunctionDef:
		c.m.addProp(n.Value, n)
	}
}

// isVariableReference excludes NAME nodes that are not variable uses or
// definitions: parameters and catch bindings are declarations of locals
// and are resolved by the scope check in Visit, so the only exclusions
// here are structural.
func isVariableReference(n *ast.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Token {
	case ast.Break, ast.Continue, ast.Label:
		return false
	}
	return true
}
