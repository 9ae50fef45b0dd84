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

package ast

import "fmt"

// IsInvocation reports a CALL, NEW or TAGGED_TEMPLATELIT token.
func (t Token) IsInvocation() bool {
	return t == Call || t == New || t == TaggedTemplateLit
}

// IsInvocation reports whether n is a call, constructor call or tagged
// template.
func IsInvocation(n *Node) bool { return n.Token.IsInvocation() }

// IsCallOrTaggedTemplateLit excludes NEW from the invocation forms.
func IsCallOrTaggedTemplateLit(n *Node) bool {
	return n.Token == Call || n.Token == TaggedTemplateLit
}

// IsNameDeclaration reports a VAR, LET or CONST statement.
func IsNameDeclaration(n *Node) bool {
	return n.Token == Var || n.Token == Let || n.Token == Const
}

// IsGet reports a property or element access.
func IsGet(n *Node) bool { return n.Token == GetProp || n.Token == GetElem }

// IsCompoundAssign reports an op-assignment such as `+=`.
func IsCompoundAssign(n *Node) bool {
	return n.Token >= AssignBitOr && n.Token <= AssignExponent
}

// IsFunctionExpression reports a FUNCTION used as a value rather than a
// statement-level declaration.
func IsFunctionExpression(n *Node) bool {
	if n.Token != Function {
		return false
	}
	p := n.Parent()
	return p == nil || (p.Token != Block && p.Token != Root)
}

// IsFunctionObjectCall reports an invocation of the form `f.call(...)`.
func IsFunctionObjectCall(n *Node) bool {
	return isFunctionObjectInvocation(n, "call")
}

// IsFunctionObjectApply reports an invocation of the form `f.apply(...)`.
func IsFunctionObjectApply(n *Node) bool {
	return isFunctionObjectInvocation(n, "apply")
}

func isFunctionObjectInvocation(n *Node, prop string) bool {
	if n.Token != Call {
		return false
	}
	callee := n.FirstChild()
	return callee != nil && callee.Token == GetProp && callee.Value == prop
}

// QualifiedName renders a dotted chain of names (`Math.abs`) or "" when
// the expression is not a static name chain.
func QualifiedName(n *Node) string {
	switch n.Token {
	case Name:
		return n.Value
	case GetProp:
		obj := QualifiedName(n.FirstChild())
		if obj == "" {
			return ""
		}
		return obj + "." + n.Value
	default:
		return ""
	}
}

// EvaluatesToLocalValue reports whether the expression definitely
// produces a fresh, unescaped value: a primitive, a literal, or an
// allocation whose reference has not flowed out.
//
// Local variables are not tracked; a NAME is never considered local even
// when its binding obviously is. Only literals, `new` allocations,
// primitives, and operations on primitives qualify.
func EvaluatesToLocalValue(n *Node) bool {
	switch n.Token {
	case Number, String, True, False, Null, TemplateLitString:
		return true
	case TemplateLit:
		// Always produces a fresh string regardless of substitutions.
		return true
	case Name:
		return n.Value == "undefined"
	case ArrayLit, ObjectLit, New, Function, Class:
		// Fresh allocations.
		return true
	case Assign:
		return EvaluatesToLocalValue(n.SecondChild())
	case Inc, Dec, DelProp:
		return true
	case Comma:
		return EvaluatesToLocalValue(n.LastChild())
	case Hook:
		return EvaluatesToLocalValue(n.SecondChild()) && EvaluatesToLocalValue(n.LastChild())
	case Or, And:
		return EvaluatesToLocalValue(n.FirstChild()) && EvaluatesToLocalValue(n.SecondChild())
	case Not, BitNot, Pos, Neg, TypeOf, Void:
		return true
	case Eq, Ne, SHEq, SHNe, Lt, Gt, Le, Ge, Instanceof, In,
		Add, Sub, Mul, Div, Mod, Exponent, Lsh, Rsh, URsh, BitOr, BitXor, BitAnd:
		// Primitive-producing operators.
		return true
	default:
		if IsCompoundAssign(n) {
			return true
		}
		return false
	}
}

// InvocationArgs returns the positional arguments of an invocation; for
// a tagged template these are the substitution expressions.
func InvocationArgs(n *Node) []*Node {
	switch n.Token {
	case Call, New:
		return n.Children[1:]
	case TaggedTemplateLit:
		var args []*Node
		for _, c := range n.SecondChild().Children {
			if c.Token == TemplateLitSub {
				args = append(args, c.OnlyChild())
			}
		}
		return args
	default:
		panic(fmt.Sprintf("ast: InvocationArgs on %v", n.Token))
	}
}

// AllArgsUnescapedLocal reports whether every argument of the invocation
// passes EvaluatesToLocalValue. Subject to the same locals-tracking
// limitation as that predicate.
func AllArgsUnescapedLocal(invocation *Node) bool {
	for _, arg := range InvocationArgs(invocation) {
		if !EvaluatesToLocalValue(arg) {
			return false
		}
	}
	return true
}

// IteratesImpureIterable reports whether n triggers iteration protocol
// over a value that is not provably a pure iterable. Array literals,
// strings and template strings iterate without observable effects;
// anything else may run an arbitrary `.next`.
func IteratesImpureIterable(n *Node) bool {
	var iterable *Node
	switch n.Token {
	case Spread:
		if p := n.Parent(); p != nil && p.Token == ObjectLit {
			// Object spread copies own properties without iteration.
			return false
		}
		iterable = n.OnlyChild()
	case Rest:
		// Object rest copies own properties, and a parameter rest is
		// built by the engine from the arguments; only a rest inside an
		// array pattern drains an iterator of unknown purity.
		p := n.Parent()
		return p != nil && p.Token == ArrayPattern
	case Yield:
		if !n.YieldAll {
			return false
		}
		iterable = n.FirstChild()
	case ForOf, ForAwaitOf:
		iterable = n.SecondChild()
	default:
		return false
	}
	if iterable == nil {
		return true
	}
	switch iterable.Token {
	case ArrayLit, String, TemplateLit:
		return false
	default:
		return true
	}
}

// FindLHSNodes enumerates every NAME, GETPROP and GETELEM target assigned
// by the given assigning node (assignment, destructuring assignment, or
// the LHS of a for-in/for-of loop).
func FindLHSNodes(n *Node) []*Node {
	var targets []*Node
	switch {
	case n.Token == Assign || IsCompoundAssign(n):
		collectLHSTargets(n.FirstChild(), &targets)
	case n.Token == DestructuringLhs:
		collectLHSTargets(n.FirstChild(), &targets)
	case n.Token == ForIn || n.Token == ForOf || n.Token == ForAwaitOf:
		lhs := n.FirstChild()
		if IsNameDeclaration(lhs) {
			collectLHSTargets(lhs.FirstChild(), &targets)
		} else {
			collectLHSTargets(lhs, &targets)
		}
	default:
		panic(fmt.Sprintf("ast: FindLHSNodes on %v", n.Token))
	}
	return targets
}

func collectLHSTargets(n *Node, out *[]*Node) {
	if n == nil {
		return
	}
	switch n.Token {
	case Name, GetProp, GetElem:
		*out = append(*out, n)
	case ObjectPattern:
		for _, c := range n.Children {
			switch c.Token {
			case StringKey, ComputedProp:
				collectLHSTargets(c.LastChild(), out)
			case Rest:
				collectLHSTargets(c.OnlyChild(), out)
			default:
				collectLHSTargets(c, out)
			}
		}
	case ArrayPattern:
		for _, c := range n.Children {
			if c.Token == Empty {
				continue
			}
			collectLHSTargets(c, out)
		}
	case DefaultValue:
		collectLHSTargets(n.FirstChild(), out)
	case Rest:
		collectLHSTargets(n.OnlyChild(), out)
	case DestructuringLhs:
		collectLHSTargets(n.FirstChild(), out)
	}
}

// RValueOfLValue returns the expression assigned to an L-value reference,
// or nil when no analyzable R-value exists (parameters, patterns, bare
// extern stubs).
func RValueOfLValue(n *Node) *Node {
	if n.Token == StringKey || n.Token == MemberFunctionDef {
		if p := n.Parent(); p != nil && (p.Token == ObjectLit || p.Token == ClassMembers) {
			return n.FirstChild()
		}
		return nil
	}
	p := n.Parent()
	if p == nil {
		return nil
	}
	switch p.Token {
	case Assign:
		if n.IsFirstChildOf(p) {
			return p.SecondChild()
		}
	case Var, Let, Const:
		if n.Token == Name {
			return n.FirstChild()
		}
	case Function:
		if n.IsFirstChildOf(p) {
			return p
		}
	case Class:
		if n.IsFirstChildOf(p) {
			return p
		}
	case DefaultValue:
		if n.IsFirstChildOf(p) {
			return p.SecondChild()
		}
	}
	return nil
}
