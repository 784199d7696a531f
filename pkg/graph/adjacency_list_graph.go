package graph

import (
	"fmt"
	"math"
)

// Implementation for dynamic graphs. Used while building, frozen into an AdjacencyArrayGraph afterwards.
type AdjacencyListGraph struct {
	Nodes    []Node   // The nodes of the graph
	Edges    [][]Edge // The Edges of the graph. The first slice specifies to which node the edge belongs
	scaling  WeightScaling
	arcCount int // the number of arcs in the graph
}

func NewAdjacencyListGraph(scaling WeightScaling) *AdjacencyListGraph {
	return &AdjacencyListGraph{
		Nodes:   make([]Node, 0),
		Edges:   make([][]Edge, 0),
		scaling: scaling,
	}
}

// Return the node for the given id
func (alg *AdjacencyListGraph) GetNode(id NodeId) *Node {
	if id < 0 || id >= alg.NodeCount() {
		panic(id)
	}
	return &alg.Nodes[id]
}

// Get the arcs for the given node
func (alg *AdjacencyListGraph) GetArcsFrom(id NodeId) []Edge {
	if id < 0 || id >= alg.NodeCount() {
		panic(id)
	}
	return alg.Edges[id]
}

// Return the number of total nodes
func (alg *AdjacencyListGraph) NodeCount() int {
	return len(alg.Nodes)
}

// Return the number of total arcs
func (alg *AdjacencyListGraph) ArcCount() int {
	return alg.arcCount
}

// Add a node to the graph and return its id
func (alg *AdjacencyListGraph) AddNode(n Node) NodeId {
	alg.Nodes = append(alg.Nodes, n)
	alg.Edges = append(alg.Edges, make([]Edge, 0, len(n.Neighbors)))
	return len(alg.Nodes) - 1
}

// Add an arc to the graph, going from source to target with the given path weight.
// Distance and angle are derived from the node positions.
// If the arc already exists, the cheaper one is kept at the position of the first.
func (alg *AdjacencyListGraph) AddArc(from, to NodeId, pathWeight float64) (bool, error) {
	if from >= alg.NodeCount() || to >= alg.NodeCount() {
		panic(fmt.Sprintf("Arc out of range %v -> %v", from, to))
	}
	if math.IsNaN(pathWeight) {
		return false, ErrInvalidWeight
	}

	origin, destination := alg.Nodes[from].Position, alg.Nodes[to].Position
	edge := MakeEdge(from, to, origin.DistanceTo(destination), origin.BearingTo(destination), pathWeight, alg.scaling)

	arcs := alg.Edges[from]
	for i := range arcs {
		arc := &arcs[i]
		if to == arc.To {
			if edge.Weight < arc.Weight {
				*arc = edge
				return true, nil
			}
			return false, nil
		}
	}

	alg.Edges[from] = append(alg.Edges[from], edge)
	alg.arcCount++
	return true, nil
}
