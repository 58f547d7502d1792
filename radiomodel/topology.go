// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.


package radiomodel

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	. "github.com/mrwifi/mrns/types"
)

// Topology is the hearing graph of the medium: a directed edge from a to b means b is within
// a's radio range and hears what a transmits.
type Topology struct {
	g     *simple.DirectedGraph
	nodes map[NodeId]*RadioNode
}

func newTopology() *Topology {
	return &Topology{
		g:     simple.NewDirectedGraph(),
		nodes: map[NodeId]*RadioNode{},
	}
}

func (t *Topology) addNode(rn *RadioNode) {
	t.nodes[rn.Id] = rn
	t.rebuild()
}

func (t *Topology) removeNode(id NodeId) {
	if _, ok := t.nodes[id]; !ok {
		return
	}
	delete(t.nodes, id)
	t.rebuild()
}

// rebuild recomputes all edges from current positions and ranges.
func (t *Topology) rebuild() {
	g := simple.NewDirectedGraph()
	for id := range t.nodes {
		g.AddNode(simple.Node(id))
	}
	for _, src := range t.nodes {
		for _, dst := range t.nodes {
			if dst.InRangeOf(src) {
				g.SetEdge(g.NewEdge(simple.Node(src.Id), simple.Node(dst.Id)))
			}
		}
	}
	t.g = g
}

// Hears is true if dst receives transmissions of src.
func (t *Topology) Hears(dst NodeId, src NodeId) bool {
	return t.g.HasEdgeFromTo(int64(src), int64(dst))
}

// Listeners returns the nodes that hear src, in ascending id order.
func (t *Topology) Listeners(src NodeId) []NodeId {
	return sortedIds(t.g.From(int64(src)), nil)
}

// Neighbors returns the nodes src hears and that hear src, in ascending id order.
func (t *Topology) Neighbors(src NodeId) []NodeId {
	return sortedIds(t.g.From(int64(src)), func(n graph.Node) bool {
		return t.g.HasEdgeFromTo(n.ID(), int64(src))
	})
}

func sortedIds(it graph.Nodes, filter func(n graph.Node) bool) []NodeId {
	var res []NodeId
	for it.Next() {
		n := it.Node()
		if filter == nil || filter(n) {
			res = append(res, NodeId(n.ID()))
		}
	}
	slices.Sort(res)
	return res
}
