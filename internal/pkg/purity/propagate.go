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
)

// propagationInfo is the immutable record of everything about a call
// site needed to propagate side effects from a callee summary to a
// caller summary.
type propagationInfo struct {
	// allArgsUnescapedLocal is set when every argument value is local to
	// the scope the call site occurs in.
	allArgsUnescapedLocal bool
	// calleeThisEqualsCallerThis is set when the receiver bound by the
	// call is the caller's own `this`. When a function is invoked via
	// `call` or `apply` the receiver is one of the arguments instead.
	calleeThisEqualsCallerThis bool
	// callType distinguishes NEW from the other invocation forms.
	callType ast.Token
}

// computePropagationType inspects a call site and captures its
// propagation semantics.
func computePropagationType(callSite *ast.Node) propagationInfo {
	if !ast.IsInvocation(callSite) {
		panic(fmt.Sprintf("purity: computePropagationType on %v", callSite.Token))
	}

	thisIsOuterThis := false
	if ast.IsCallOrTaggedTemplateLit(callSite) {
		// Side effects only propagate via regular calls; calling a
		// constructor that modifies `this` has none. For a `.call` or
		// `.apply` site the receiver is the first argument, and whether
		// that argument is local is not tracked (locals-tracking would
		// be required), so no receiver identity is claimed for it.
		viaCallOrApply := isInvocationViaCallOrApply(callSite)
		var objectNode *ast.Node
		if viaCallOrApply {
			objectNode = callSite.SecondChild()
		} else if callee := callSite.FirstChild(); callee.Token == ast.GetProp {
			objectNode = callee.FirstChild()
		}
		if objectNode != nil && objectNode.Token == ast.This && !viaCallOrApply {
			thisIsOuterThis = true
		}
	}

	return propagationInfo{
		allArgsUnescapedLocal:      ast.AllArgsUnescapedLocal(callSite),
		calleeThisEqualsCallerThis: thisIsOuterThis,
		callType:                   callSite.Token,
	}
}

// propagate pushes the callee's side effects to the caller through this
// call site. Returns true when the caller changed. Bits are only ever
// set, keeping the fixed point monotone.
func (e propagationInfo) propagate(callee, caller *summary) bool {
	changed := false
	// A callee that modifies global state makes the caller do so.
	if callee.mutatesGlobalState() && !caller.mutatesGlobalState() {
		caller.setMutatesGlobalState()
		changed = true
	}
	// A callee that throws makes the caller throw.
	if callee.functionThrows() && !caller.functionThrows() {
		caller.setFunctionThrows()
		changed = true
	}
	// A callee that mutates arguments which escape the caller has
	// unbounded side effects.
	if callee.mutatesArguments() && !e.allArgsUnescapedLocal && !caller.mutatesGlobalState() {
		caller.setMutatesGlobalState()
		changed = true
	}
	if callee.mutatesThis() && e.calleeThisEqualsCallerThis {
		if !caller.mutatesThis() {
			caller.setMutatesThis()
			changed = true
		}
	} else if callee.mutatesThis() && e.callType != ast.New {
		// NEW invocations of a constructor that modifies `this` have no
		// side effects.
		if !caller.mutatesGlobalState() {
			caller.setMutatesGlobalState()
			changed = true
		}
	}
	// escapedReturn is a property of the direct producer and does not
	// propagate through calls.
	return changed
}

// propagateSideEffects iterates the reverse call graph to a fixed point
// where no caller summary gains new side effects from any callee.
func (p *Pass) propagateSideEffects() {
	p.reverseCallGraph.FixedPoint(func(callee *summary, edge propagationInfo, caller *summary) bool {
		return edge.propagate(callee, caller)
	})
}
