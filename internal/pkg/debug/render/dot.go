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

// Package render produces DOT source for the analysis' internal graphs.
package render

import (
	"fmt"
	"strings"

	"github.com/google/go-script-purity/internal/pkg/purity"
)

// DOT renders the reverse call graph. Edges point callee → caller, the
// direction side effects flow during propagation. Impure summaries are
// filled red.
func DOT(nodes []purity.GraphNode, edges []purity.GraphEdge) string {
	r := &renderer{nodes: nodes, edges: edges}
	return r.render()
}

type renderer struct {
	strings.Builder
	nodes []purity.GraphNode
	edges []purity.GraphEdge
}

func (r *renderer) render() string {
	r.WriteString("digraph {\n")
	r.writeNodes()
	r.writeEdges()
	r.WriteString("}\n")
	return r.String()
}

func (r *renderer) writeNodes() {
	for i, n := range r.nodes {
		attrs := fmt.Sprintf("label=%q", renderNode(n))
		if n.Effects != "" {
			attrs += " style=filled fillcolor=lightcoral"
		}
		r.WriteString(fmt.Sprintf("\t%d [%s];\n", i, attrs))
	}
}

func (r *renderer) writeEdges() {
	for _, e := range r.edges {
		r.WriteString(fmt.Sprintf("\t%d -> %d;\n", e.Callee, e.Caller))
	}
}

func renderNode(n purity.GraphNode) string {
	if n.Effects == "" {
		return n.Name
	}
	return fmt.Sprintf("%s\n(%s)", n.Name, n.Effects)
}
