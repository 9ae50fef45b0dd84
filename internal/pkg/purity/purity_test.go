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
	"github.com/google/go-script-purity/internal/pkg/parser"
	"github.com/google/go-script-purity/internal/pkg/refmap"
)

// analyze parses and runs the pass, returning the program root and the
// pass for inspection.
func analyze(t *testing.T, src, externs string) (*ast.Node, *Pass) {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	roots := []*ast.Node{root}
	var externsRoot *ast.Node
	if externs != "" {
		externsRoot, err = parser.ParseExterns(externs)
		require.NoError(t, err)
		roots = []*ast.Node{externsRoot, root}
	}
	p := New()
	require.NoError(t, p.Process(externsRoot, root, refmap.Build(roots...)))
	return root, p
}

// callTo finds the first invocation whose callee renders to the given
// qualified name.
func callTo(t *testing.T, root *ast.Node, callee string) *ast.Node {
	t.Helper()
	var found *ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if found == nil && ast.IsInvocation(n) && ast.QualifiedName(n.FirstChild()) == callee {
			found = n
		}
		return true
	}, nil)
	require.NotNil(t, found, "no invocation of %q", callee)
	return found
}

func TestEmptyFunctionCallIsPure(t *testing.T) {
	root, _ := analyze(t, `function f(){} f();`, "")
	require.Equal(t, ast.SideEffects(0), callTo(t, root, "f").SideEffects)
}

func TestGlobalIncrementMutatesGlobalState(t *testing.T) {
	root, _ := analyze(t, `var n = 0; function f(){ n++; } f();`, "")
	flags := callTo(t, root, "f").SideEffects
	require.True(t, flags.Has(ast.MutatesGlobalState))
	require.False(t, flags.Has(ast.Throws))
	require.False(t, flags.Has(ast.MutatesThis))
	// A global mutator is also permitted to mutate arguments aliasing
	// globals, so the observed arguments bit rides along.
	require.True(t, flags.Has(ast.MutatesArguments))
}

func TestThrowSetsThrows(t *testing.T) {
	root, _ := analyze(t, `function f(){ throw 1; } f();`, "")
	require.Equal(t, ast.Throws, callTo(t, root, "f").SideEffects)
}

func TestParameterMutationWithFreshLiteralArgument(t *testing.T) {
	root, _ := analyze(t, `function f(o){ o.x = 1; } f({});`, "")
	require.Equal(t, ast.MutatesArguments, callTo(t, root, "f").SideEffects)
}

func TestParameterMutationWithGlobalArgument(t *testing.T) {
	src := `
		function f(o){ o.x = 1; }
		var g = {};
		function t(){ f(g); }
		t();`
	root, p := analyze(t, src, "")
	require.Equal(t, ast.MutatesArguments, callTo(t, root, "f").SideEffects)
	// The argument escapes t, so the mutation is unbounded from t's
	// point of view.
	require.True(t, p.summariesByName["t"].mutatesGlobalState())
	require.True(t, callTo(t, root, "t").SideEffects.Has(ast.MutatesGlobalState))
}

func TestConstructorThisMutationIsContained(t *testing.T) {
	root, _ := analyze(t, `function Ctor(){ this.x = 1; } new Ctor();`, "")
	require.Equal(t, ast.SideEffects(0), callTo(t, root, "Ctor").SideEffects)
}

func TestNewNeverPropagatesMutatesThisToCaller(t *testing.T) {
	src := `
		function Ctor(){ this.x = 1; }
		function t(){ return new Ctor().x; }
		t();`
	root, p := analyze(t, src, "")
	require.False(t, p.summariesByName["t"].mutatesThis())
	require.False(t, p.summariesByName["t"].mutatesGlobalState())
	require.False(t, callTo(t, root, "t").SideEffects.Has(ast.MutatesThis))
}

func TestHookCalleeUnionsBranchSummaries(t *testing.T) {
	src := `
		function f(){}
		function g(){ throw 1; }
		var cond = 1;
		function t(){ (cond ? f : g)(); }
		t();`
	root, _ := analyze(t, src, "")
	flags := callTo(t, root, "t").SideEffects
	require.True(t, flags.Has(ast.Throws))
	require.False(t, flags.Has(ast.MutatesGlobalState))
}

func TestHookDefinitionPessimizesName(t *testing.T) {
	// A name bound to a non-literal definition cannot be analyzed; its
	// summary degrades to all flags.
	src := `
		function f(){}
		function g(){}
		var cond = 1;
		var h = cond ? f : g;
		h();`
	root, p := analyze(t, src, "")
	require.Equal(t, allFlags, p.summariesByName["h"].bitmask)
	require.True(t, callTo(t, root, "h").SideEffects.Has(ast.MutatesGlobalState))
}

func TestAmbiguousPropertyAggregatesAllDefinitions(t *testing.T) {
	src := `
		var x = {};
		var y = {};
		var z = {};
		var n = 0;
		x.m = function(){ n++; };
		y.m = function(){};
		z.m();`
	root, _ := analyze(t, src, "")
	require.True(t, callTo(t, root, "z.m").SideEffects.Has(ast.MutatesGlobalState))
}

func TestDynamicFunctionPropsArePinnedToAllFlags(t *testing.T) {
	_, p := analyze(t, `function f(){} f();`, "")
	for _, name := range []string{".call", ".apply", ".constructor"} {
		require.Equal(t, allFlags, p.summariesByName[name].bitmask, name)
	}
}

func TestCallApplyRewritesThisMutationToArguments(t *testing.T) {
	src := `
		function f(){ this.x = 1; }
		function t(o){ f.call(o); }
		t({});`
	root, p := analyze(t, src, "")
	flags := callTo(t, root, "f.call").SideEffects
	require.True(t, flags.Has(ast.MutatesArguments))
	require.False(t, flags.Has(ast.MutatesThis))
	// The rebound receiver escapes t, so t loses containment.
	require.True(t, p.summariesByName["t"].mutatesGlobalState())
}

func TestDirectThisCallPropagatesMutatesThis(t *testing.T) {
	src := `
		var obj = {
			set: function(){ this.x = 1; },
			update: function(){ this.set(); }
		};
		obj.update();`
	root, p := analyze(t, src, "")
	require.True(t, p.summariesByName[".update"].mutatesThis())
	require.False(t, p.summariesByName[".update"].mutatesGlobalState())
	flags := callTo(t, root, "obj.update").SideEffects
	require.True(t, flags.Has(ast.MutatesThis))
}

func TestUnresolvableCalleeGetsDefaultFlags(t *testing.T) {
	root, _ := analyze(t, `var table = []; function t(){ table[0](); } t();`, "")
	var call *ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if call == nil && n.Token == ast.Call && n.FirstChild().Token == ast.GetElem {
			call = n
		}
		return true
	}, nil)
	require.NotNil(t, call)
	require.Equal(t, ast.MutatesGlobalState|ast.Throws|ast.ReturnsTainted, call.SideEffects)
}

func TestEscapedReturnDoesNotPropagateThroughCalls(t *testing.T) {
	src := `
		var store = {};
		function leak(){ return store; }
		function t(){ leak(); return 1; }
		t();`
	root, p := analyze(t, src, "")
	require.True(t, p.summariesByName["leak"].escapedReturn())
	require.False(t, p.summariesByName["t"].escapedReturn())
	require.True(t, callTo(t, root, "leak").SideEffects.Has(ast.ReturnsTainted))
	require.False(t, callTo(t, root, "t").SideEffects.Has(ast.ReturnsTainted))
}

func TestRecursionReachesFixedPoint(t *testing.T) {
	src := `
		var n = 0;
		function even(x){ return x ? odd(x - 1) : done(); }
		function odd(x){ return x ? even(x - 1) : 1; }
		function done(){ n++; return 1; }
		even(10);`
	root, _ := analyze(t, src, "")
	require.True(t, callTo(t, root, "even").SideEffects.Has(ast.MutatesGlobalState))
	require.True(t, callTo(t, root, "odd").SideEffects.Has(ast.MutatesGlobalState))
}

func TestPropagationIsAtFixedPoint(t *testing.T) {
	src := `
		var n = 0;
		function a(){ b(); }
		function b(){ c(); }
		function c(){ n++; }
		a();`
	_, p := analyze(t, src, "")
	before := map[string]uint8{}
	for name, s := range p.summariesByName {
		before[name] = s.bitmask
	}
	// Re-running propagation must not move any summary: the bits are
	// monotone and already at the fixed point.
	p.propagateSideEffects()
	for name, s := range p.summariesByName {
		require.Equal(t, before[name], s.bitmask, name)
	}
}

func TestIdempotentAcrossFreshInstances(t *testing.T) {
	src := `
		var n = 0;
		function f(o){ o.x = 1; }
		function g(){ n++; f({}); }
		g();
		f(n);
		new g();`
	collect := func() []ast.SideEffects {
		root, _ := analyze(t, src, "")
		var flags []ast.SideEffects
		ast.Walk(root, func(n *ast.Node) bool {
			if ast.IsInvocation(n) {
				flags = append(flags, n.SideEffects)
			}
			return true
		}, nil)
		return flags
	}
	require.Equal(t, collect(), collect())
}

func TestProcessTwiceFails(t *testing.T) {
	root, err := parser.Parse(`function f(){} f();`)
	require.NoError(t, err)
	refs := refmap.Build(root)
	p := New()
	require.NoError(t, p.Process(nil, root, refs))
	require.ErrorIs(t, p.Process(nil, root, refs), ErrAlreadyProcessed)
}

func TestIntrinsicMathCallDoesNotTaintCaller(t *testing.T) {
	root, p := analyze(t, `function t(){ return Math.abs(-1); } t();`, "")
	// Known pure builtin calls are skipped at collection time and keep
	// the unknown-call default; what matters is that the caller stays
	// clean.
	require.Equal(t, ast.AllSideEffects, callTo(t, root, "Math.abs").SideEffects)
	require.False(t, p.summariesByName["t"].mutatesGlobalState())
	require.False(t, p.summariesByName["t"].functionThrows())
	require.False(t, callTo(t, root, "t").SideEffects.Has(ast.MutatesGlobalState))
}

func TestIntrinsicConstructorDoesNotTaintCaller(t *testing.T) {
	root, p := analyze(t, `function t(){ return new Date(); } t();`, "")
	require.False(t, p.summariesByName["t"].mutatesGlobalState())
	require.False(t, callTo(t, root, "t").SideEffects.Has(ast.MutatesGlobalState))
}

func TestIIFEBodyEffectsReachTheCallSite(t *testing.T) {
	root, _ := analyze(t, `var n = 0; (function(){ n++; })();`, "")
	var call *ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if call == nil && n.Token == ast.Call && n.FirstChild().Token == ast.Function {
			call = n
		}
		return true
	}, nil)
	require.NotNil(t, call)
	require.True(t, call.SideEffects.Has(ast.MutatesGlobalState))
}

func TestLocalObjectMutationStaysLocal(t *testing.T) {
	root, _ := analyze(t, `function f(){ var o = {}; o.x = 1; return 1; } f();`, "")
	require.Equal(t, ast.SideEffects(0), callTo(t, root, "f").SideEffects)
}

func TestBlacklistedLocalMutationEscapes(t *testing.T) {
	src := `
		var shared = {};
		function pick(){ return shared; }
		function f(){ var o = pick(); o.x = 1; return 1; }
		f();`
	root, _ := analyze(t, src, "")
	require.True(t, callTo(t, root, "f").SideEffects.Has(ast.MutatesGlobalState))
}

func TestForOfIterationIsImpure(t *testing.T) {
	root, _ := analyze(t, `function f(xs){ for (var x of xs) {} } f([]);`, "")
	flags := callTo(t, root, "f").SideEffects
	require.True(t, flags.Has(ast.MutatesGlobalState))
	require.True(t, flags.Has(ast.Throws))
}

func TestForOfOverArrayLiteralIsContained(t *testing.T) {
	root, _ := analyze(t, `function f(){ for (var x of [1, 2]) {} } f();`, "")
	require.Equal(t, ast.SideEffects(0), callTo(t, root, "f").SideEffects)
}

func TestForInAssignsLocalString(t *testing.T) {
	root, _ := analyze(t, `function f(o){ for (var k in o) {} } f({});`, "")
	require.Equal(t, ast.SideEffects(0), callTo(t, root, "f").SideEffects)
}

func TestAwaitLosesControl(t *testing.T) {
	root, _ := analyze(t, `function f(p){ return 1; } async function g(p){ await p; } g(0);`, "")
	require.True(t, callTo(t, root, "g").SideEffects.Has(ast.Throws))
}

func TestYieldLosesControl(t *testing.T) {
	root, _ := analyze(t, `function* g(){ yield 1; } g();`, "")
	require.True(t, callTo(t, root, "g").SideEffects.Has(ast.Throws))
}

func TestMemoizationCacheIdiomResolvesInnerFunctions(t *testing.T) {
	src := `
		var lib = { reflect: {} };
		var n = 0;
		var c = {};
		function t(){ lib.reflect.cache(c, 1, function(){ n++; }); }
		t();`
	_, p := analyze(t, src, "")
	require.True(t, p.summariesByName["t"].mutatesGlobalState())
}
