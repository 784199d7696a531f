package graph

import (
	"fmt"
	"sort"

	"github.com/natevvv/indoor-routing/pkg/geometry"
)

// Implementation for static graphs. Immutable after construction and safe for concurrent readers.
type AdjacencyArrayGraph struct {
	nodes   []Node
	arcs    []Edge
	offsets []int

	ids            map[string]NodeId                   // nodesById
	groups         []string                            // group key per node
	groupNodes     map[string][]NodeId                 // nodesByGroupKey
	groupKeys      []string                            // sorted group keys
	obstructions   map[string]*geometry.ObstructionSet // line of sight geometry per group
	scaling        WeightScaling
	heuristicScale float64
}

// Create an AdjacencyArrayGraph from the given dynamic graph.
// groupOf returns the group key for each node.
func NewAdjacencyArrayFromGraph(alg *AdjacencyListGraph, groupOf func(Node) string, obstructions map[string]*geometry.ObstructionSet) *AdjacencyArrayGraph {
	nodes := make([]Node, 0, alg.NodeCount())
	arcs := make([]Edge, 0, alg.ArcCount())
	offsets := make([]int, alg.NodeCount()+1)

	aag := AdjacencyArrayGraph{
		ids:            make(map[string]NodeId, alg.NodeCount()),
		groups:         make([]string, alg.NodeCount()),
		groupNodes:     make(map[string][]NodeId),
		obstructions:   obstructions,
		scaling:        alg.scaling,
		heuristicScale: 1,
	}
	if aag.obstructions == nil {
		aag.obstructions = make(map[string]*geometry.ObstructionSet)
	}

	for i := 0; i < alg.NodeCount(); i++ {
		// add node
		node := *alg.GetNode(i)
		nodes = append(nodes, node)
		aag.ids[node.Id] = i

		key := groupOf(node)
		aag.groups[i] = key
		if _, ok := aag.groupNodes[key]; !ok {
			aag.groupKeys = append(aag.groupKeys, key)
		}
		aag.groupNodes[key] = append(aag.groupNodes[key], i)

		// add all edges of node
		for _, arc := range alg.GetArcsFrom(i) {
			if arc.Distance > 0 && arc.Weight/arc.Distance < aag.heuristicScale {
				aag.heuristicScale = arc.Weight / arc.Distance
			}
			arcs = append(arcs, arc)
		}

		// set stop-offset
		offsets[i+1] = len(arcs)
	}
	sort.Strings(aag.groupKeys)

	aag.nodes, aag.arcs, aag.offsets = nodes, arcs, offsets
	return &aag
}

// Get the node for the given id
func (aag *AdjacencyArrayGraph) GetNode(id NodeId) *Node {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return &aag.nodes[id]
}

// Get the Arcs for the given node id
func (aag *AdjacencyArrayGraph) GetArcsFrom(id NodeId) []Edge {
	if id < 0 || id >= aag.NodeCount() {
		panic(fmt.Sprintf("NodeId %d is not contained in the graph.", id))
	}
	return aag.arcs[aag.offsets[id]:aag.offsets[id+1]:aag.offsets[id+1]]
}

// Returns the number of Nodes in the graph
func (aag *AdjacencyArrayGraph) NodeCount() int {
	return len(aag.nodes)
}

// Returns the total number of arcs in the graph
func (aag *AdjacencyArrayGraph) ArcCount() int {
	return len(aag.arcs)
}

// Returns a human readable string of the graph
func (aag *AdjacencyArrayGraph) AsString() string {
	return GraphAsString(aag)
}

func (aag *AdjacencyArrayGraph) Lookup(id string) (NodeId, bool) {
	index, ok := aag.ids[id]
	return index, ok
}

func (aag *AdjacencyArrayGraph) Group(id NodeId) string {
	return aag.groups[id]
}

func (aag *AdjacencyArrayGraph) GroupKeys() []string {
	return append([]string(nil), aag.groupKeys...)
}

func (aag *AdjacencyArrayGraph) NodesInGroup(key string) []NodeId {
	return append([]NodeId(nil), aag.groupNodes[key]...)
}

func (aag *AdjacencyArrayGraph) Obstructions(key string) *geometry.ObstructionSet {
	return aag.obstructions[key]
}

func (aag *AdjacencyArrayGraph) Scaling() WeightScaling { return aag.scaling }

func (aag *AdjacencyArrayGraph) HeuristicScale() float64 { return aag.heuristicScale }
