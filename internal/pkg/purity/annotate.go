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

// markPureFunctionCalls computes the final flag set for every collected
// call node and writes it back onto the tree.
func (p *Pass) markPureFunctionCalls() {
	for _, callNode := range p.allFunctionCalls {
		calleeSummaries := p.summariesForCallee(callNode)

		var flags ast.SideEffects
		if calleeSummaries == nil {
			// Default to side effects and a non-local result.
			flags = ast.MutatesGlobalState | ast.Throws | ast.ReturnsTainted
		} else {
			for _, calleeSummary := range calleeSummaries {
				if calleeSummary.mutatesGlobalState() {
					flags |= ast.MutatesGlobalState
				}
				if calleeSummary.mutatesArguments() {
					flags |= ast.MutatesArguments
				}
				if calleeSummary.functionThrows() {
					flags |= ast.Throws
				}
				if ast.IsCallOrTaggedTemplateLit(callNode) && calleeSummary.mutatesThis() {
					// A summary for "f" covers both `f()` and `f.call()`
					// sites; at a `.call`/`.apply` site the receiver is
					// actually an argument.
					if isInvocationViaCallOrApply(callNode) {
						flags |= ast.MutatesArguments
					} else {
						flags |= ast.MutatesThis
					}
				}
				if calleeSummary.escapedReturn() {
					flags |= ast.ReturnsTainted
				}
			}
		}

		// Intrinsically pure builtins override the computed effects;
		// the return taint stands as computed.
		if ast.IsCallOrTaggedTemplateLit(callNode) {
			if !p.cfg.FunctionCallHasSideEffects(callNode) {
				flags = flags.ClearSideEffects()
			}
		} else if callNode.Token == ast.New {
			if !p.cfg.ConstructorCallHasSideEffects(callNode) {
				flags = flags.ClearSideEffects()
			}
		}

		if callNode.SideEffects != flags {
			callNode.SideEffects = flags
			if p.reportChange != nil {
				p.reportChange(callNode)
			}
		}
	}
}
