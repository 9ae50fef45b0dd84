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

package purity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/refmap"
)

const testExterns = `
/**
 * @nosideeffects
 * @return {number}
 */
function pureFn(x) {}

/**
 * @modifies {this}
 * @return {number}
 */
function setsThis(v) {}

/**
 * @modifies {arguments}
 * @return {number}
 */
function modsArgs(o) {}

/**
 * @throws {Error}
 * @return {number}
 */
function mayThrow() {}

/**
 * @nosideeffects
 * @return {Object}
 */
function makesObj() {}

/**
 * @nosideeffects
 */
function untypedPure() {}

function unknownFn() {}
`

func analyzeWithExterns(t *testing.T, src string) (*ast.Node, *Pass) {
	t.Helper()
	return analyze(t, src, testExterns)
}

func TestExternNoSideEffectsWithPrimitiveReturn(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(){ return pureFn(1); } t();`)
	require.Equal(t, ast.SideEffects(0), callTo(t, root, "pureFn").SideEffects)
}

func TestExternModifiesThis(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(){ setsThis(1); } t();`)
	require.Equal(t, ast.MutatesThis, callTo(t, root, "setsThis").SideEffects)
}

func TestExternModifiesArguments(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(o){ modsArgs(o); } t({});`)
	require.Equal(t, ast.MutatesArguments, callTo(t, root, "modsArgs").SideEffects)
}

func TestExternThrows(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(){ mayThrow(); } t();`)
	require.Equal(t, ast.Throws, callTo(t, root, "mayThrow").SideEffects)
}

func TestExternObjectReturnEscapes(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(){ return makesObj(); } t();`)
	require.Equal(t, ast.ReturnsTainted, callTo(t, root, "makesObj").SideEffects)
}

func TestExternWithoutReturnTypeEscapes(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(){ return untypedPure(); } t();`)
	require.Equal(t, ast.ReturnsTainted, callTo(t, root, "untypedPure").SideEffects)
}

func TestUnannotatedExternAssumesSideEffects(t *testing.T) {
	root, _ := analyzeWithExterns(t, `function t(){ unknownFn(); } t();`)
	flags := callTo(t, root, "unknownFn").SideEffects
	require.True(t, flags.Has(ast.MutatesGlobalState))
	require.True(t, flags.Has(ast.Throws))
	require.True(t, flags.Has(ast.ReturnsTainted))
}

func TestExternStubPropertyIsPessimized(t *testing.T) {
	externs := `
		var api = {};
		api.helper;`
	_, p := analyze(t, `function t(){ api.helper(); } t();`, externs)
	require.Equal(t, allFlags, p.summariesByName[".helper"].bitmask)
}

func TestEmptyReferenceNameIsRejected(t *testing.T) {
	obj := ast.NewValueNode(ast.Name, "o")
	get := ast.NewValueNode(ast.GetProp, "", obj)
	root := ast.NewNode(ast.Root, ast.NewNode(ast.ExprResult, get))
	p := New()
	require.Error(t, p.Process(nil, root, refmap.Build(root)))
}
