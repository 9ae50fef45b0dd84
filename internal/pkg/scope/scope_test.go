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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/parser"
)

// visitNames records the scope each NAME reference resolves in.
type visitNames struct {
	resolved map[*ast.Node]*Var
}

func (v *visitNames) ShouldTraverse(n *ast.Node, s *Scope) bool { return true }

func (v *visitNames) Visit(n *ast.Node, s *Scope) {
	if n.Token == ast.Name {
		v.resolved[n] = s.GetVar(n.Value)
	}
}

func resolveAll(t *testing.T, src string) map[string][]*Var {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	v := &visitNames{resolved: map[*ast.Node]*Var{}}
	Traverse(root, v)
	byName := map[string][]*Var{}
	for n, found := range v.resolved {
		byName[n.Value] = append(byName[n.Value], found)
	}
	return byName
}

func TestVarHoistsToContainer(t *testing.T) {
	vars := resolveAll(t, `function f() { { var x = 1; } x; }`)
	for _, v := range vars["x"] {
		require.NotNil(t, v)
		assert.True(t, v.Scope.IsFunctionScope())
	}
}

func TestLetStaysInBlock(t *testing.T) {
	vars := resolveAll(t, `function f() { { let x = 1; } }`)
	for _, v := range vars["x"] {
		require.NotNil(t, v)
		assert.False(t, v.Scope.IsFunctionScope())
		assert.Equal(t, ast.Block, v.Scope.RootNode().Token)
	}
}

func TestParamAndCatchRoles(t *testing.T) {
	src := `function f(p) { try { p; } catch (e) { e; } }`
	vars := resolveAll(t, src)
	require.NotEmpty(t, vars["p"])
	for _, v := range vars["p"] {
		require.NotNil(t, v)
		assert.True(t, v.IsParam())
	}
	require.NotEmpty(t, vars["e"])
	for _, v := range vars["e"] {
		require.NotNil(t, v)
		assert.True(t, v.IsCatch())
	}
}

func TestUndeclaredResolvesToNil(t *testing.T) {
	vars := resolveAll(t, `function f() { missing; }`)
	for _, v := range vars["missing"] {
		assert.Nil(t, v)
	}
}

func TestGlobalFunctionDeclaration(t *testing.T) {
	vars := resolveAll(t, `function f() { f(); }`)
	require.NotEmpty(t, vars["f"])
	for _, v := range vars["f"] {
		require.NotNil(t, v)
		assert.True(t, v.Scope.IsGlobalScope())
	}
}

func TestContainerScopeQueries(t *testing.T) {
	root, err := parser.Parse(`function f() { var x = 1; { let y = 2; x; y; } }`)
	require.NoError(t, err)
	var xUse, yUse *Scope
	v := &scopeGrabber{names: map[string]**Scope{"x": &xUse, "y": &yUse}}
	Traverse(root, v)
	require.NotNil(t, xUse)
	require.NotNil(t, yUse)
	assert.True(t, xUse.HasSameContainerScope(yUse))
	assert.Equal(t, xUse.ClosestContainerScope(), yUse.ClosestContainerScope())
	assert.True(t, yUse.ClosestContainerScope().IsFunctionScope())
}

type scopeGrabber struct {
	names map[string]**Scope
}

func (g *scopeGrabber) ShouldTraverse(n *ast.Node, s *Scope) bool { return true }

func (g *scopeGrabber) Visit(n *ast.Node, s *Scope) {
	if n.Token == ast.Name {
		if slot, ok := g.names[n.Value]; ok {
			*slot = s
		}
	}
}

// exitRecorder checks that ExitScope still resolves the scope's own vars.
type exitRecorder struct {
	sawExit bool
	t       *testing.T
}

func (r *exitRecorder) ShouldTraverse(n *ast.Node, s *Scope) bool { return true }
func (r *exitRecorder) Visit(n *ast.Node, s *Scope)               {}
func (r *exitRecorder) EnterScope(s *Scope)                       {}

func (r *exitRecorder) ExitScope(s *Scope) {
	if s.IsFunctionScope() {
		r.sawExit = true
		require.NotNil(r.t, s.GetVar("p"))
		assert.True(r.t, s.GetVar("p").IsParam())
	}
}

func TestExitScopeSeesOwnVars(t *testing.T) {
	root, err := parser.Parse(`function f(p) { return p; }`)
	require.NoError(t, err)
	r := &exitRecorder{t: t}
	Traverse(root, r)
	assert.True(t, r.sawExit)
}

func TestOwnVarsOrdered(t *testing.T) {
	root, err := parser.Parse(`function f(a, b) { var c = 1; }`)
	require.NoError(t, err)
	var got []string
	Traverse(root, &fnVarLister{out: &got})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

type fnVarLister struct {
	out *[]string
}

func (l *fnVarLister) ShouldTraverse(n *ast.Node, s *Scope) bool { return true }
func (l *fnVarLister) Visit(n *ast.Node, s *Scope)               {}
func (l *fnVarLister) EnterScope(s *Scope) {
	if s.IsFunctionScope() {
		for _, v := range s.OwnVars() {
			*l.out = append(*l.out, v.Name)
		}
	}
}
func (l *fnVarLister) ExitScope(s *Scope) {}
