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

// Package scriptpurity exposes the whole-program call purity analysis:
// parse a program and its externs, run the pass, and report the
// side-effect flags stamped on every invocation.
package scriptpurity

import (
	"fmt"

	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/config"
	"github.com/google/go-script-purity/internal/pkg/debug/render"
	"github.com/google/go-script-purity/internal/pkg/parser"
	"github.com/google/go-script-purity/internal/pkg/purity"
	"github.com/google/go-script-purity/internal/pkg/refmap"
)

// CallSite is the annotation result for one invocation node.
type CallSite struct {
	// Pos is the source position, line:col.
	Pos string `json:"pos"`
	// Kind is "call", "new" or "template".
	Kind string `json:"kind"`
	// Callee is the callee's qualified name when it is a static name
	// chain, else "<expr>".
	Callee string `json:"callee"`
	// Flags names the side-effect bits set on the call.
	Flags string `json:"flags"`
	// Pure means no side-effect flags and an untainted return.
	Pure bool `json:"pure"`
}

// Result is the outcome of one analysis run.
type Result struct {
	Calls []CallSite `json:"calls"`
	// Changed counts call nodes whose flags changed during annotation.
	Changed int `json:"changed"`
	// GraphDOT is the reverse call graph in DOT form, when requested.
	GraphDOT string `json:"graphDot,omitempty"`
}

// Options configures an analysis run.
type Options struct {
	// Externs is the source of the declared external environment.
	Externs string
	// ConfigPath optionally points at a YAML file extending the builtin
	// purity tables.
	ConfigPath string
	// RenderGraph fills Result.GraphDOT.
	RenderGraph bool
}

// Analyze parses and analyzes a program.
func Analyze(src string, opts Options) (*Result, error) {
	root, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing program: %w", err)
	}
	var externsRoot *ast.Node
	roots := []*ast.Node{root}
	if opts.Externs != "" {
		externsRoot, err = parser.ParseExterns(opts.Externs)
		if err != nil {
			return nil, fmt.Errorf("parsing externs: %w", err)
		}
		roots = []*ast.Node{externsRoot, root}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	pass := purity.New(
		purity.WithConfig(cfg),
		purity.WithChangeReporter(func(*ast.Node) { result.Changed++ }),
	)
	if err := pass.Process(externsRoot, root, refmap.Build(roots...)); err != nil {
		return nil, err
	}

	ast.Walk(root, func(n *ast.Node) bool {
		if ast.IsInvocation(n) {
			result.Calls = append(result.Calls, describeCall(n))
		}
		return true
	}, nil)

	if opts.RenderGraph {
		result.GraphDOT = render.DOT(pass.GraphSnapshot())
	}
	return result, nil
}

func describeCall(n *ast.Node) CallSite {
	kind := "call"
	switch n.Token {
	case ast.New:
		kind = "new"
	case ast.TaggedTemplateLit:
		kind = "template"
	}
	callee := ast.QualifiedName(n.FirstChild())
	if callee == "" {
		callee = "<expr>"
	}
	flags := n.SideEffects
	return CallSite{
		Pos:    n.Pos.String(),
		Kind:   kind,
		Callee: callee,
		Flags:  flags.String(),
		Pure:   flags.IsPure(),
	}
}
