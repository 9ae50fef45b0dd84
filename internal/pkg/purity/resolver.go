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
	"github.com/google/go-script-purity/internal/pkg/convention"
)

// unwrapCallableExpression reveals the directly callable nodes a callee
// expression may evaluate to. `(a.c || b)` and `(x ? a.c : b)` both
// become [a.c, b], since either may be the function invoked. Returns nil
// when any branch is of an unsupported form, e.g. `x['asdf'](param)`.
func unwrapCallableExpression(exp *ast.Node) []*ast.Node {
	switch exp.Token {
	case ast.GetProp:
		if p := exp.Parent(); p != nil && exp.IsFirstChildOf(p) && isInvocationViaCallOrApply(p) {
			return unwrapCallableExpression(exp.FirstChild())
		}
		return []*ast.Node{exp}
	case ast.Function, ast.Name:
		return []*ast.Node{exp}
	case ast.Or, ast.Hook:
		var first *ast.Node
		if exp.Token == ast.Hook {
			first = exp.SecondChild()
		} else {
			first = exp.FirstChild()
		}
		firstCallable := unwrapCallableExpression(first)
		secondCallable := unwrapCallableExpression(first.Next())
		if firstCallable == nil || secondCallable == nil {
			return nil
		}
		return append(firstCallable, secondCallable...)
	default:
		return nil // Unsupported call type.
	}
}

// isSupportedFunctionDefinition accepts a function literal, or a ternary
// whose branches both are.
func isSupportedFunctionDefinition(rvalue *ast.Node) bool {
	if rvalue == nil {
		return false
	}
	switch rvalue.Token {
	case ast.Function:
		return true
	case ast.Hook:
		return isSupportedFunctionDefinition(rvalue.SecondChild()) &&
			isSupportedFunctionDefinition(rvalue.LastChild())
	default:
		return false
	}
}

// cacheCallables treats a recognized memoization-cache call as invoking
// its value function and, when present, its key function.
func cacheCallables(cacheCall *convention.Cache) []*ast.Node {
	if cacheCall.KeyFn == nil {
		return unwrapCallableExpression(cacheCall.ValueFn)
	}
	valueCallable := unwrapCallableExpression(cacheCall.ValueFn)
	keyCallable := unwrapCallableExpression(cacheCall.KeyFn)
	if valueCallable == nil || keyCallable == nil {
		return nil
	}
	return append(valueCallable, keyCallable...)
}

// summariesForCallee resolves an invocation's callee into the summaries
// of every function it may dispatch to, or nil when the callee is
// unanalyzable.
func (p *Pass) summariesForCallee(invocation *ast.Node) []*summary {
	if !ast.IsInvocation(invocation) {
		panic(fmt.Sprintf("purity: summariesForCallee on %v", invocation.Token))
	}

	var expanded []*ast.Node
	if cacheCall := p.conv.DescribeCachingCall(invocation); cacheCall != nil {
		expanded = cacheCallables(cacheCall)
	} else {
		expanded = unwrapCallableExpression(invocation.FirstChild())
	}
	if expanded == nil {
		return nil
	}

	var results []*summary
	for _, expression := range expanded {
		if ast.IsFunctionExpression(expression) {
			// A function expression in callee position was never part of
			// a named definition; its summary was created during body
			// analysis (or contributes nothing before it).
			results = append(results, p.summariesByFunc[expression]...)
			continue
		}
		info, ok := p.summariesByName[nameForReference(expression)]
		if !ok {
			return nil
		}
		results = append(results, info)
	}
	return results
}

// nameForReference returns the short name of an R-value reference: the
// name itself for NAMEs, the last segment with the property prefix for
// GETPROPs.
func nameForReference(nameRef *ast.Node) string {
	switch nameRef.Token {
	case ast.Name:
		return nameRef.Value
	case ast.GetProp:
		return propPrefix + nameRef.Value
	default:
		panic(fmt.Sprintf("purity: unexpected name reference %v", nameRef.Token))
	}
}

// isInvocationViaCallOrApply reports a `f.call(...)` or `f.apply(...)`
// call site.
func isInvocationViaCallOrApply(callSite *ast.Node) bool {
	return ast.IsFunctionObjectCall(callSite) || ast.IsFunctionObjectApply(callSite)
}
