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

import "github.com/google/go-script-purity/internal/pkg/ast"

// isDefinitelyRValue reports whether the reference is certainly reading
// a value.
//
// This must never return true for an L-value, including when new syntax
// is added to the language: that would let an impure function pass as
// pure. It is therefore an explicit whitelist; anything unrecognized is
// treated as a potential L-value.
func isDefinitelyRValue(rvalue *ast.Node) bool {
	parent := rvalue.Parent()
	if parent == nil {
		return false
	}

	switch parent.Token {
	case ast.And, ast.Comma, ast.Hook, ast.Or:
		// Function values pass through conditionals.
		return true
	case ast.Eq, ast.Not, ast.SHEq:
		// Functions can be usefully compared for equality / existence.
		return true
	case ast.ArrayLit, ast.Call, ast.New, ast.TaggedTemplateLit:
		// Functions are the callees and parameters of an invocation.
		return true
	case ast.Instanceof, ast.TypeOf:
		// Often used to check that a ctor/method exists or matches.
		return true
	case ast.GetElem, ast.GetProp:
		// Many functions, especially ctors, have properties.
		return true
	case ast.Return, ast.Yield:
		// Higher order functions return functions.
		return true

	case ast.Switch, ast.Case:
		// Delegating on the identity of a function.
		return rvalue.IsFirstChildOf(parent)
	case ast.If, ast.While:
		// Checking the existence of an optional function.
		return rvalue.IsFirstChildOf(parent)

	case ast.ExprResult:
		// Extern declarations are sometimes stubs. Those must be
		// considered L-values with no associated R-values.
		return !rvalue.FromExterns

	case ast.Class, ast.Assign:
		return rvalue.IsSecondChildOf(parent)

	case ast.StringKey:
		// Assignment to an object literal property; excludes object
		// destructuring.
		gp := parent.Parent()
		return gp != nil && gp.Token == ast.ObjectLit

	default:
		// Anything not explicitly listed may be an L-value. Missing some
		// R-values is safe; misclassifying an L-value is not.
		return false
	}
}
