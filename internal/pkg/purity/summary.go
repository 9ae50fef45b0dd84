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
	"strings"

	"github.com/google/go-script-purity/internal/pkg/graph"
)

// Summary flag bits. The bits only ever accumulate; nothing clears them.
const (
	flagThrows uint8 = 1 << iota
	flagMutatesGlobalState
	flagMutatesThis
	flagMutatesArguments
	flagEscapedReturn

	allFlags = flagThrows | flagMutatesGlobalState | flagMutatesThis |
		flagMutatesArguments | flagEscapedReturn
)

// summary aggregates the side effects of every function that shares a
// short name. Because the functions are ambiguated, the recorded effects
// are the union across all members of the set.
type summary struct {
	// name is the short name: a variable name, or a property name
	// carrying the propPrefix sentinel.
	name string
	// graphNode is this summary's handle in the reverse call graph.
	graphNode graph.NodeID
	bitmask   uint8
}

// newSummaryInGraph creates a summary and registers it as a graph node.
func newSummaryInGraph(g *graph.Graph[*summary, propagationInfo], name string) *summary {
	s := &summary{name: name}
	s.graphNode = g.AddNode(s)
	return s
}

func (s *summary) has(mask uint8) bool { return s.bitmask&mask != 0 }

func (s *summary) mutatesThis() bool      { return s.has(flagMutatesThis) }
func (s *summary) setMutatesThis()        { s.bitmask |= flagMutatesThis }
func (s *summary) functionThrows() bool   { return s.has(flagThrows) }
func (s *summary) setFunctionThrows()     { s.bitmask |= flagThrows }
func (s *summary) escapedReturn() bool    { return s.has(flagEscapedReturn) }
func (s *summary) setEscapedReturn()      { s.bitmask |= flagEscapedReturn }
func (s *summary) mutatesGlobalState() bool { return s.has(flagMutatesGlobalState) }
func (s *summary) setMutatesGlobalState()   { s.bitmask |= flagMutatesGlobalState }

// mutatesArguments is observed-true for global mutators too: a function
// allowed to touch globals may touch arguments that alias them.
func (s *summary) mutatesArguments() bool {
	return s.has(flagMutatesGlobalState | flagMutatesArguments)
}
func (s *summary) setMutatesArguments() { s.bitmask |= flagMutatesArguments }

func (s *summary) setAllFlags() { s.bitmask = allFlags }

func (s *summary) String() string {
	return s.name + "[" + s.effects() + "]"
}

func (s *summary) effects() string {
	var status []string
	if s.mutatesThis() {
		status = append(status, "this")
	}
	if s.mutatesGlobalState() {
		status = append(status, "global")
	}
	if s.mutatesArguments() {
		status = append(status, "args")
	}
	if s.escapedReturn() {
		status = append(status, "return")
	}
	if s.functionThrows() {
		status = append(status, "throw")
	}
	return strings.Join(status, ",")
}
