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

// Package jstypes answers the one type question the purity analysis
// asks: can a declared return type hold an object? A type whose meet
// with the root object type is empty is primitive-only, so the returned
// value cannot alias non-local state.
package jstypes

import "strings"

// Kind is the coarse classification of a type expression.
type Kind uint8

const (
	// Unknown covers `*`, `?`, unrecognized names, and missing info.
	Unknown Kind = iota
	// Primitive covers types disjoint from the root object type.
	Primitive
	// Object covers everything that may alias an object.
	Object
)

// Type is a resolved type expression.
type Type struct {
	kind Kind
}

// Kind returns the classification.
func (t Type) Kind() Kind { return t.kind }

// MeetWithObjectIsEmpty reports whether the meet of t and the root
// object type is the empty type, i.e. t is provably primitive.
func (t Type) MeetWithObjectIsEmpty() bool { return t.kind == Primitive }

// Registry resolves type expressions to Types.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry returns a registry preloaded with the native types.
func NewRegistry() *Registry {
	r := &Registry{kinds: map[string]Kind{}}
	for _, name := range []string{
		"number", "string", "boolean", "undefined", "null", "void",
		"symbol", "bigint",
	} {
		r.kinds[name] = Primitive
	}
	for _, name := range []string{
		"Object", "Array", "Function", "Date", "RegExp", "Error",
		"Promise", "Map", "Set",
	} {
		r.kinds[name] = Object
	}
	return r
}

// Declare registers a named type; unknown names default to Unknown.
func (r *Registry) Declare(name string, kind Kind) { r.kinds[name] = kind }

// TypeOf resolves a JSDoc type expression. Nullability prefixes are
// stripped; a union is Primitive only when every member is. Anything
// unrecognized is Unknown.
func (r *Registry) TypeOf(expr string) Type {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" || expr == "?" {
		return Type{Unknown}
	}
	kind := Primitive
	for _, part := range strings.Split(expr, "|") {
		part = strings.TrimSpace(strings.TrimLeft(part, "!?"))
		if i := strings.IndexAny(part, "<.(["); i >= 0 {
			// Parameterized, qualified and record types may hold objects.
			return Type{Object}
		}
		k, ok := r.kinds[part]
		if !ok {
			return Type{Unknown}
		}
		if k != Primitive {
			kind = k
		}
	}
	return Type{kind}
}
