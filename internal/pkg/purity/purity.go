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

// Package purity computes function purity for a whole program and
// annotates every invocation node with its side-effect flags.
//
// A function is pure if it has no outside-visible side effects and its
// result does not depend on external factors beyond the program's
// control.
//
// Functions are not tracked individually but in aggregate by their short
// name: it is impossible to know exactly which function named "foo" a
// particular site calls, so if any function "foo" has a side effect,
// every invocation of "foo" is assumed to trigger it.
//
// The analysis would be sharper with proper tracking of locals inside
// bodies; ast.EvaluatesToLocalValue and ast.AllArgsUnescapedLocal only
// accept literals, `new` allocations, primitives and operations on
// primitives.
package purity

import (
	"errors"
	"fmt"

	"github.com/google/go-script-purity/internal/pkg/ast"
	"github.com/google/go-script-purity/internal/pkg/config"
	"github.com/google/go-script-purity/internal/pkg/convention"
	"github.com/google/go-script-purity/internal/pkg/graph"
	"github.com/google/go-script-purity/internal/pkg/jstypes"
	"github.com/google/go-script-purity/internal/pkg/refmap"
)

// propPrefix differentiates property names from variable names in the
// shared summary key space.
const propPrefix = "."

// anonymousName keys summaries of function expressions reachable through
// no name.
const anonymousName = "<anonymous>"

// dynamicFunctionProps are property names known to refer to functions
// too dynamic to analyze; their summaries are pinned to all-flags. Of
// interest when the properties are aliased, not when invoked: a direct
// `foo.call(this)` is still analyzed precisely.
var dynamicFunctionProps = []string{
	propPrefix + "call",
	propPrefix + "apply",
	propPrefix + "constructor",
}

// ErrAlreadyProcessed is returned when Process is invoked twice on one
// Pass instance.
var ErrAlreadyProcessed = errors.New("purity: Process may only be called once per instance")

// Pass is a single-shot purity analysis over one program.
type Pass struct {
	conv         convention.Convention
	cfg          *config.Config
	registry     *jstypes.Registry
	reportChange func(*ast.Node)

	// summariesByName maps each short name to the summary shared by all
	// functions with that name. Iteration happens over the reference
	// map's entry order, never over this map, to keep runs deterministic.
	summariesByName map[string]*summary

	// summariesByFunc maps a function node to the summaries of all names
	// bound to it. One function can contribute to several names:
	//
	//	SomeClass.staticMethod = function anotherName() {};
	//	OtherClass.staticMethod = function() { global++; };
	summariesByFunc map[*ast.Node][]*summary

	// allFunctionCalls collects invocation sites for annotation. Calls
	// whose callee was already known pure at collection time are skipped;
	// re-runs cannot make a pure function impure.
	allFunctionCalls []*ast.Node

	// reverseCallGraph links the summary of a callee to the summaries of
	// its callers; edges carry the call-site details needed to propagate
	// impurity.
	reverseCallGraph *graph.Graph[*summary, propagationInfo]

	processed bool
}

// Option configures a Pass.
type Option func(*Pass)

// WithConvention sets the coding-convention query.
func WithConvention(c convention.Convention) Option {
	return func(p *Pass) { p.conv = c }
}

// WithConfig sets the intrinsic builtin tables.
func WithConfig(c *config.Config) Option {
	return func(p *Pass) { p.cfg = c }
}

// WithTypeRegistry sets the registry used to classify extern return
// types.
func WithTypeRegistry(r *jstypes.Registry) Option {
	return func(p *Pass) { p.registry = r }
}

// WithChangeReporter registers a callback invoked for every call node
// whose flags changed.
func WithChangeReporter(report func(*ast.Node)) Option {
	return func(p *Pass) { p.reportChange = report }
}

// New creates a Pass.
func New(opts ...Option) *Pass {
	p := &Pass{
		conv:             convention.Default{},
		cfg:              config.Default(),
		registry:         jstypes.NewRegistry(),
		summariesByName:  map[string]*summary{},
		summariesByFunc:  map[*ast.Node][]*summary{},
		reverseCallGraph: graph.New[*summary, propagationInfo](),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the analysis: seeds summaries from the reference map,
// scans externs and function bodies, propagates side effects to a fixed
// point, and writes flags back onto every collected call node. It may be
// called once per instance.
func (p *Pass) Process(externs, root *ast.Node, refs *refmap.Map) error {
	if p.processed {
		return ErrAlreadyProcessed
	}
	p.processed = true

	if err := p.populate(refs); err != nil {
		return err
	}
	if externs != nil {
		p.analyzeExterns(externs)
	}
	p.analyzeBodies(root)
	p.propagateSideEffects()
	p.markPureFunctionCalls()
	return nil
}

// GraphNode describes one reverse-call-graph node for rendering.
type GraphNode struct {
	Name    string
	Effects string
}

// GraphEdge is a callee→caller edge by node index.
type GraphEdge struct {
	Callee int
	Caller int
}

// GraphSnapshot returns the reverse call graph in a renderable form;
// meaningful after Process.
func (p *Pass) GraphSnapshot() (nodes []GraphNode, edges []GraphEdge) {
	for id := 0; id < p.reverseCallGraph.Len(); id++ {
		s := p.reverseCallGraph.Node(graph.NodeID(id))
		nodes = append(nodes, GraphNode{Name: s.name, Effects: s.effects()})
	}
	for _, e := range p.reverseCallGraph.Edges() {
		edges = append(edges, GraphEdge{Callee: int(e.Src), Caller: int(e.Dst)})
	}
	return nodes, edges
}

// populate fills the summary store and the function-node association
// from the reference map. This must run before body analysis, which
// needs global knowledge of every name's definitions.
func (p *Pass) populate(refs *refmap.Map) error {
	type entry struct {
		name string
		refs []*ast.Node
	}
	var merged []entry
	for _, e := range refs.NameReferences() {
		merged = append(merged, entry{e.Name, e.Refs})
	}
	for _, e := range refs.PropReferences() {
		merged = append(merged, entry{propPrefix + e.Name, e.Refs})
	}

	// Empty names would crash later analysis; there is also no value in
	// tracking anonymous functions by name.
	for _, e := range merged {
		if e.name == "" || e.name == propPrefix {
			return fmt.Errorf("purity: empty name in reference map")
		}
	}

	for _, e := range merged {
		p.putSummary(e.name)
	}
	for _, prop := range dynamicFunctionProps {
		p.putSummary(prop).setAllFlags()
	}
	for _, e := range merged {
		p.populateFunctionDefinitions(e.name, e.refs)
	}
	return nil
}

func (p *Pass) putSummary(name string) *summary {
	if s, ok := p.summariesByName[name]; ok {
		return s
	}
	s := newSummaryInGraph(p.reverseCallGraph, name)
	p.summariesByName[name] = s
	return s
}

// populateFunctionDefinitions records the functions that may define the
// given name, or pessimizes the name when any definition is unclear.
// Every R-value assigned to the name must be accounted for; overlooking
// one would invalidate the analysis, so references that cannot be shown
// to be plain reads are chased to their assigned expression.
func (p *Pass) populateFunctionDefinitions(name string, refs []*ast.Node) {
	summaryForName := p.summariesByName[name]

	var definitions []*ast.Node
	sawLValue := false
	for _, ref := range refs {
		if isDefinitelyRValue(ref) {
			continue
		}
		sawLValue = true
		rvalue := ast.RValueOfLValue(ref)
		if !isSupportedFunctionDefinition(rvalue) {
			summaryForName.setAllFlags()
			return
		}
		fns := unwrapCallableExpression(rvalue)
		if fns == nil {
			summaryForName.setAllFlags()
			return
		}
		definitions = append(definitions, fns...)
	}
	if !sawLValue {
		// No L-values with this name: no definitions to analyze.
		summaryForName.setAllFlags()
		return
	}
	for _, fn := range definitions {
		if fn.Token != ast.Function {
			panic(fmt.Sprintf("purity: non-function definition %v for %q", fn.Token, name))
		}
		p.summariesByFunc[fn] = append(p.summariesByFunc[fn], summaryForName)
	}
}
