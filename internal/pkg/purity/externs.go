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

// analyzeExterns reads each extern function's declarative annotations
// and return type into the summaries associated with it.
func (p *Pass) analyzeExterns(externs *ast.Node) {
	ast.Walk(externs, func(n *ast.Node) bool {
		if n.Token != ast.Function {
			return true
		}
		for _, definitionSummary := range p.summariesByFunc[n] {
			p.updateSideEffectsForExternFunction(n, definitionSummary)
		}
		return true
	}, nil)
}

func (p *Pass) updateSideEffectsForExternFunction(externFunction *ast.Node, defSummary *summary) {
	if !externFunction.FromExterns {
		panic(fmt.Sprintf("purity: extern analyzer on non-extern function at %v", externFunction.Pos))
	}

	info := ast.BestJSDocInfo(externFunction)

	// Classify the declared return type. A return that may hold an
	// object can alias non-local state; only a provably primitive type
	// is identity-less and immutable enough to be local. With no type
	// information, assume the return escapes.
	if info == nil || !info.HasReturnType {
		defSummary.setEscapedReturn()
	} else if retType := p.registry.TypeOf(info.ReturnType); !retType.MeetWithObjectIsEmpty() {
		defSummary.setEscapedReturn()
	}

	if info == nil {
		// Nothing is known about this function; assume side effects.
		defSummary.setMutatesGlobalState()
		defSummary.setFunctionThrows()
		return
	}
	switch {
	case info.ModifiesThis:
		defSummary.setMutatesThis()
	case info.ModifiesArguments:
		defSummary.setMutatesArguments()
	case len(info.ThrownTypes) > 0:
		defSummary.setFunctionThrows()
	case info.NoSideEffects:
		// Declared pure.
	default:
		defSummary.setMutatesGlobalState()
	}
}
