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
	"fmt"

	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/scope"
)

// analyzeBodies inspects every function body for side effects and
// attributes them to the summaries associated with the function. It also
// fills allFunctionCalls.
func (p *Pass) analyzeBodies(root *ast.Node) {
	scope.Traverse(root, &bodyAnalyzer{
		p:           p,
		blacklisted: map[*ast.Node]map[*scope.Var]bool{},
		tainted:     map[*ast.Node]map[*scope.Var]bool{},
	})
}

type bodyAnalyzer struct {
	p *Pass

	// blacklisted marks locals that may hold a non-local value; tainted
	// marks locals whose properties were written. Both are resolved at
	// scope exit, keyed by the enclosing function node.
	blacklisted map[*ast.Node]map[*scope.Var]bool
	tainted     map[*ast.Node]map[*scope.Var]bool
}

func (a *bodyAnalyzer) ShouldTraverse(n *ast.Node, s *scope.Scope) bool {
	// Functions are handled pre-order so a summary exists by the time
	// assignments and calls inside the body are visited. A function with
	// no entry was not part of any definition, e.g. an IIFE.
	if n.Token == ast.Function {
		if _, ok := a.p.summariesByFunc[n]; !ok {
			a.p.summariesByFunc[n] = []*summary{
				newSummaryInGraph(a.p.reverseCallGraph, anonymousName),
			}
		}
	}
	return true
}

func (a *bodyAnalyzer) Visit(n *ast.Node, s *scope.Scope) {
	if !a.p.mayHaveSideEffects(n) && n.Token != ast.Return {
		return
	}

	if ast.IsInvocation(n) {
		// Collected after the side-effect filter: a known pure call need
		// not be re-annotated, and no optimization will make a pure
		// function impure.
		a.p.allFunctionCalls = append(a.p.allFunctionCalls, n)
	}

	containerScope := s.ClosestContainerScope()
	if !containerScope.IsFunctionScope() {
		// Only code inside functions accumulates onto a summary.
		return
	}
	enclosingFunction := containerScope.RootNode()

	for _, encloserSummary := range a.p.summariesByFunc[enclosingFunction] {
		a.updateSideEffectsForNode(encloserSummary, n, s, enclosingFunction)
	}
}

// Predicates describing the value assigned by a construct to its LHS.
var (
	rhsAlwaysLocal = func(*ast.Node) bool { return true }
	rhsNeverLocal  = func(*ast.Node) bool { return false }
	findRHSAndCheckForLocalValue = func(lhs *ast.Node) bool {
		rhs := ast.RValueOfLValue(lhs)
		return rhs == nil || ast.EvaluatesToLocalValue(rhs)
	}
)

func (a *bodyAnalyzer) updateSideEffectsForNode(
	encloserSummary *summary, n *ast.Node, s *scope.Scope, enclosingFunction *ast.Node) {

	switch n.Token {
	case ast.Assign, ast.DestructuringLhs:
		// lhs = rhs;  ({x, y} = object);  var {x, y} = object;
		a.visitLhsNodes(encloserSummary, s, enclosingFunction,
			ast.FindLHSNodes(n), findRHSAndCheckForLocalValue)

	case ast.Inc, ast.Dec, ast.DelProp:
		// The value assigned by a unary op is always local.
		a.visitLhsNodes(encloserSummary, s, enclosingFunction,
			[]*ast.Node{n.OnlyChild()}, rhsAlwaysLocal)

	case ast.ForAwaitOf:
		// Control is lost while awaiting.
		a.setSideEffectsForControlLoss(encloserSummary)
		fallthrough
	case ast.ForOf:
		// The RHS of a for-of is always an iterable container, so its
		// contents cannot be considered local.
		a.visitLhsNodes(encloserSummary, s, enclosingFunction,
			ast.FindLHSNodes(n), rhsNeverLocal)
		a.checkIteratesImpureIterable(n, encloserSummary)

	case ast.ForIn:
		// A for-in always assigns a string, a local value by definition.
		a.visitLhsNodes(encloserSummary, s, enclosingFunction,
			ast.FindLHSNodes(n), rhsAlwaysLocal)

	case ast.Call, ast.New, ast.TaggedTemplateLit:
		a.visitCall(encloserSummary, n)

	case ast.Name:
		// A declared name is not itself a side effect; check that it
		// indeed sits in a declaration.
		if p := n.Parent(); p == nil || !ast.IsNameDeclaration(p) {
			panic(fmt.Sprintf("purity: NAME with initializer outside declaration at %v", n.Pos))
		}
		// If the initial value isn't a known-local value, the variable
		// may alias outside state; blacklist it for scope exit.
		if value := n.FirstChild(); value != nil && !ast.EvaluatesToLocalValue(value) {
			if v := s.GetVar(n.Value); v != nil {
				a.addTo(a.blacklisted, enclosingFunction, v)
			}
		}

	case ast.Throw:
		encloserSummary.setFunctionThrows()

	case ast.Return:
		if child := n.FirstChild(); child != nil && !ast.EvaluatesToLocalValue(child) {
			encloserSummary.setEscapedReturn()
		}

	case ast.Yield:
		// `yield*` triggers iteration, and `yield` throws if the caller
		// calls `.throw` on the generator object.
		a.checkIteratesImpureIterable(n, encloserSummary)
		a.setSideEffectsForControlLoss(encloserSummary)

	case ast.Await:
		// `await` throws if the awaited promise is rejected.
		a.setSideEffectsForControlLoss(encloserSummary)

	case ast.Rest, ast.Spread:
		a.checkIteratesImpureIterable(n, encloserSummary)

	default:
		if ast.IsCompoundAssign(n) {
			// Update assignments (e.g. `+=`) always assign primitive,
			// and therefore local, values.
			a.visitLhsNodes(encloserSummary, s, enclosingFunction,
				[]*ast.Node{n.FirstChild()}, rhsAlwaysLocal)
			return
		}
		panic(fmt.Sprintf("purity: unhandled side effect node %v at %v", n.Token, n.Pos))
	}
}

// checkIteratesImpureIterable attributes the effects of an iteration
// whose iterable is not provably pure: the implicit `.next()` is an
// unknown call, and the iterable may be a stateful parameter.
func (a *bodyAnalyzer) checkIteratesImpureIterable(n *ast.Node, encloserSummary *summary) {
	if !ast.IteratesImpureIterable(n) {
		return
	}
	encloserSummary.setFunctionThrows()
	encloserSummary.setMutatesGlobalState()
	encloserSummary.setMutatesArguments()
}

// setSideEffectsForControlLoss records an arbitrary loss of control
// flow: the construct may complete abruptly.
func (a *bodyAnalyzer) setSideEffectsForControlLoss(encloserSummary *summary) {
	encloserSummary.setFunctionThrows()
}

func (a *bodyAnalyzer) EnterScope(s *scope.Scope) {}

func (a *bodyAnalyzer) ExitScope(s *scope.Scope) {
	containerScope := s.ClosestContainerScope()
	if !containerScope.IsFunctionScope() {
		// Only functions and the scopes within them matter here.
		return
	}
	function := containerScope.RootNode()

	// Resolve deferred local variable modifications.
	for _, sideEffectInfo := range a.p.summariesByFunc[function] {
		if sideEffectInfo.mutatesGlobalState() {
			continue
		}
		for _, v := range s.OwnVars() {
			if v.IsParam() && !a.blacklisted[function][v] && a.tainted[function][v] {
				sideEffectInfo.setMutatesArguments()
				continue
			}

			// Parameters and catch values can come from other scopes.
			localVar := !v.IsParam() && !v.IsCatch()

			// Locals that may not hold a local value and were tainted
			// have mutated outside state.
			if !localVar || a.blacklisted[function][v] {
				if a.tainted[function][v] {
					sideEffectInfo.setMutatesGlobalState()
					break
				}
			}
		}
	}

	if s.RootNode() == function {
		delete(a.blacklisted, function)
		delete(a.tainted, function)
	}
}

// visitLhsNodes records the side effects of assigning to each LHS: a
// write through `this` marks the receiver mutated, a write through a
// same-container variable defers judgment to scope exit, anything else
// taints global state.
func (a *bodyAnalyzer) visitLhsNodes(
	sideEffectInfo *summary, s *scope.Scope, enclosingFunction *ast.Node,
	lhsNodes []*ast.Node, hasLocalRhs func(*ast.Node) bool) {

	for _, lhs := range lhsNodes {
		if ast.IsGet(lhs) {
			objectNode := lhs.FirstChild()
			switch {
			case objectNode.Token == ast.This:
				sideEffectInfo.setMutatesThis()
			case objectNode.Token == ast.Name:
				v := s.GetVar(objectNode.Value)
				if isVarDeclaredInSameContainerScope(v, s) {
					// Maybe a local object modification; we won't know
					// until scope exit validates the local's value.
					a.addTo(a.tainted, enclosingFunction, v)
				} else {
					sideEffectInfo.setMutatesGlobalState()
				}
			default:
				// Multi-level locals are not tracked: local.prop.prop2++.
				sideEffectInfo.setMutatesGlobalState()
			}
			continue
		}

		if lhs.Token != ast.Name {
			panic(fmt.Sprintf("purity: unexpected LHS %v at %v", lhs.Token, lhs.Pos))
		}
		v := s.GetVar(lhs.Value)
		if isVarDeclaredInSameContainerScope(v, s) {
			if !hasLocalRhs(lhs) {
				// The assigned value may be non-local; property writes
				// on this variable could then taint outside state.
				a.addTo(a.blacklisted, enclosingFunction, v)
			}
		} else {
			sideEffectInfo.setMutatesGlobalState()
		}
	}
}

// visitCall records a call site: an edge per callee summary, or a
// pessimized caller when the callee is unanalyzable.
func (a *bodyAnalyzer) visitCall(callerInfo *summary, invocation *ast.Node) {
	// Intrinsically pure builtin invocations contribute nothing.
	if invocation.Token == ast.Call && !a.p.cfg.FunctionCallHasSideEffects(invocation) {
		return
	}
	if invocation.Token == ast.New && !a.p.cfg.ConstructorCallHasSideEffects(invocation) {
		return
	}

	calleeSummaries := a.p.summariesForCallee(invocation)
	if calleeSummaries == nil {
		callerInfo.setMutatesGlobalState()
		callerInfo.setFunctionThrows()
		return
	}

	for _, calleeInfo := range calleeSummaries {
		edge := computePropagationType(invocation)
		a.p.reverseCallGraph.Connect(calleeInfo.graphNode, edge, callerInfo.graphNode)
	}
}

func (a *bodyAnalyzer) addTo(m map[*ast.Node]map[*scope.Var]bool, fn *ast.Node, v *scope.Var) {
	set, ok := m[fn]
	if !ok {
		set = map[*scope.Var]bool{}
		m[fn] = set
	}
	set[v] = true
}

func isVarDeclaredInSameContainerScope(v *scope.Var, s *scope.Scope) bool {
	return v != nil && v.Scope.HasSameContainerScope(s)
}

// mayHaveSideEffects is the token-class filter deciding which nodes the
// body analyzer must inspect. Invocations consult the intrinsic builtin
// tables, so a known pure call is filtered out here and never collected.
func (p *Pass) mayHaveSideEffects(n *ast.Node) bool {
	switch n.Token {
	case ast.Assign, ast.DestructuringLhs, ast.Inc, ast.Dec, ast.DelProp,
		ast.Throw, ast.Yield, ast.Await, ast.Spread, ast.Rest,
		ast.ForIn, ast.ForOf, ast.ForAwaitOf:
		return true
	case ast.Call, ast.TaggedTemplateLit:
		return p.cfg.FunctionCallHasSideEffects(n)
	case ast.New:
		return p.cfg.ConstructorCallHasSideEffects(n)
	case ast.Name:
		return n.FirstChild() != nil && n.Parent() != nil && ast.IsNameDeclaration(n.Parent())
	default:
		return ast.IsCompoundAssign(n)
	}
}
