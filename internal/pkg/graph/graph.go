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

// Package graph provides a directed multigraph held in flat arenas with
// stable integer handles, and a fixed-point traversal over it.
package graph

// NodeID is a stable handle to a graph node.
type NodeID int

// Edge is one directed edge. Src and Dst are node handles; Value is the
// edge payload.
type Edge[E any] struct {
	Src   NodeID
	Dst   NodeID
	Value E
}

// Graph is a directed multigraph. Nodes and edges live in arenas; edges
// are indexed by source so successors can be walked without allocation.
type Graph[N, E any] struct {
	nodes []N
	edges []Edge[E]
	out   [][]int // node -> indexes into edges
}

// New returns an empty graph.
func New[N, E any]() *Graph[N, E] {
	return &Graph[N, E]{}
}

// AddNode appends a node and returns its handle.
func (g *Graph[N, E]) AddNode(value N) NodeID {
	g.nodes = append(g.nodes, value)
	g.out = append(g.out, nil)
	return NodeID(len(g.nodes) - 1)
}

// Node returns the node value for a handle.
func (g *Graph[N, E]) Node(id NodeID) N { return g.nodes[id] }

// Len returns the node count.
func (g *Graph[N, E]) Len() int { return len(g.nodes) }

// Connect adds a src→dst edge carrying value.
func (g *Graph[N, E]) Connect(src NodeID, value E, dst NodeID) {
	g.edges = append(g.edges, Edge[E]{Src: src, Dst: dst, Value: value})
	g.out[src] = append(g.out[src], len(g.edges)-1)
}

// Edges returns all edges in insertion order.
func (g *Graph[N, E]) Edges() []Edge[E] { return g.edges }

// FixedPoint repeatedly applies visit to edges until no application
// reports a change. visit receives the source node, the edge value and
// the destination node, and must return true iff it changed the
// destination. Transitions must be monotone over a finite lattice or the
// traversal will not terminate.
func (g *Graph[N, E]) FixedPoint(visit func(src N, edge E, dst N) bool) {
	queued := make([]bool, len(g.nodes))
	worklist := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		worklist = append(worklist, NodeID(id))
		queued[id] = true
	}
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		queued[id] = false
		for _, ei := range g.out[id] {
			e := g.edges[ei]
			if visit(g.nodes[e.Src], e.Value, g.nodes[e.Dst]) && !queued[e.Dst] {
				worklist = append(worklist, e.Dst)
				queued[e.Dst] = true
			}
		}
	}
}
