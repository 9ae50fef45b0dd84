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

// Package config holds the intrinsic knowledge about runtime builtins
// that are known to be free of side effects. The compiled-in defaults
// cover the standard runtime; a YAML file can extend them.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/google/go-script-purity/internal/pkg/ast"
)

// Config lists invocations the runtime declares side-effect free.
type Config struct {
	// PureConstructors are global constructors whose `new` calls have no
	// side effects (`Object`, `Date`, ...).
	PureConstructors []string
	// PureFunctions are qualified names of side-effect-free callables
	// (`Math.abs`, `parseInt`, ...).
	PureFunctions []string
	// PureMethods are property names whose invocation is side-effect
	// free on any receiver (`toString`, `valueOf`, ...).
	PureMethods []string

	pureConstructors map[string]bool
	pureFunctions    map[string]bool
	pureMethods      map[string]bool
}

// Default returns the compiled-in builtin tables.
func Default() *Config {
	c := &Config{
		PureConstructors: []string{
			"Array", "Date", "Error", "Object", "RegExp", "XMLHttpRequest",
		},
		PureFunctions: []string{
			"Object", "Array", "String", "Number", "Boolean",
			"parseInt", "parseFloat", "isNaN", "isFinite",
			"encodeURI", "encodeURIComponent", "decodeURI", "decodeURIComponent",
			"escape", "unescape",
			"Math.abs", "Math.acos", "Math.asin", "Math.atan", "Math.atan2",
			"Math.cbrt", "Math.ceil", "Math.cos", "Math.exp", "Math.floor",
			"Math.hypot", "Math.log", "Math.max", "Math.min", "Math.pow",
			"Math.random", "Math.round", "Math.sign", "Math.sin", "Math.sqrt",
			"Math.tan", "Math.trunc",
		},
		PureMethods: []string{
			"toString", "valueOf", "indexOf", "lastIndexOf", "charAt",
			"charCodeAt", "substring", "slice", "concat", "join", "split",
			"toUpperCase", "toLowerCase", "trim",
		},
	}
	c.index()
	return c
}

// Load reads a YAML file and merges it over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var overlay Config
	if err := yaml.UnmarshalStrict(bytes, &overlay); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.PureConstructors = append(c.PureConstructors, overlay.PureConstructors...)
	c.PureFunctions = append(c.PureFunctions, overlay.PureFunctions...)
	c.PureMethods = append(c.PureMethods, overlay.PureMethods...)
	c.index()
	return c, nil
}

func (c *Config) index() {
	c.pureConstructors = toSet(c.PureConstructors)
	c.pureFunctions = toSet(c.PureFunctions)
	c.pureMethods = toSet(c.PureMethods)
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// FunctionCallHasSideEffects reports whether a CALL or tagged template
// may have side effects according to the builtin tables. Unknown callees
// are assumed side-effectful.
func (c *Config) FunctionCallHasSideEffects(call *ast.Node) bool {
	if call.Token != ast.Call && call.Token != ast.TaggedTemplateLit {
		return true
	}
	callee := call.FirstChild()
	// `Math.abs.call(null, x)` is as pure as `Math.abs(x)`.
	if callee.Token == ast.GetProp && (callee.Value == "call" || callee.Value == "apply") {
		callee = callee.FirstChild()
	}
	switch callee.Token {
	case ast.Name:
		return !c.pureFunctions[callee.Value]
	case ast.GetProp:
		if q := ast.QualifiedName(callee); q != "" && c.pureFunctions[q] {
			return false
		}
		return !c.pureMethods[callee.Value]
	default:
		return true
	}
}

// ConstructorCallHasSideEffects reports whether a NEW expression may
// have side effects according to the builtin tables.
func (c *Config) ConstructorCallHasSideEffects(n *ast.Node) bool {
	if n.Token != ast.New {
		return true
	}
	callee := n.FirstChild()
	return callee.Token != ast.Name || !c.pureConstructors[callee.Value]
}
