package graph

import (
	"fmt"
	"strings"

	"github.com/natevvv/indoor-routing/pkg/geometry"
)

// NodeId is the internal index of a node in a built graph
type NodeId = int

type Graph interface {
	GetNode(id NodeId) *Node
	GetArcsFrom(id NodeId) []Edge
	NodeCount() int
	ArcCount() int
	AsString() string

	Lookup(id string) (NodeId, bool)                  // resolve an external node id
	Group(id NodeId) string                           // group key (floor) of the node
	GroupKeys() []string                              // all group keys, sorted
	NodesInGroup(key string) []NodeId                 // nodes of a group in input order
	Obstructions(key string) *geometry.ObstructionSet // line of sight geometry of a group, nil if absent
	Scaling() WeightScaling
	HeuristicScale() float64 // factor which keeps the straight line distance a lower bound of any path weight
}

// WeightScaling defines how the path weight of a neighbor is combined with the distance
type WeightScaling int

const (
	Additive       WeightScaling = iota // distance + pathWeight
	Multiplicative                      // distance * pathWeight
)

func (s WeightScaling) Apply(distance, pathWeight float64) float64 {
	if s == Multiplicative {
		return distance * pathWeight
	}
	return distance + pathWeight
}

func (s WeightScaling) String() string {
	if s == Multiplicative {
		return "multiplicative"
	}
	return "additive"
}

// ParseWeightScaling parses "additive" or "multiplicative"
func ParseWeightScaling(s string) (WeightScaling, bool) {
	switch strings.ToLower(s) {
	case "", "additive":
		return Additive, true
	case "multiplicative":
		return Multiplicative, true
	}
	return Additive, false
}

// Edge is a directed weighted edge between two nodes of a graph
type Edge struct {
	From       NodeId
	To         NodeId
	Distance   float64 // meters
	Angle      float64 // bearing in radians, clockwise from north
	PathWeight float64 // weight given by the neighbor entry
	Weight     float64 // composite weight used by the path finding
}

// EdgeKey identifies an edge by the external ids of its end points
type EdgeKey struct {
	From string
	To   string
}

func MakeEdge(from, to NodeId, distance, angle, pathWeight float64, scaling WeightScaling) Edge {
	e := Edge{From: from, To: to, Distance: distance, Angle: angle}
	return e.Scale(scaling, pathWeight)
}

func (e Edge) Destination() NodeId {
	return e.To
}

func (e Edge) Cost() float64 {
	return e.Weight
}

// Scale recomputes the weight from the distance with the given path weight.
// Negative composite weights are clamped to 0.
func (e Edge) Scale(scaling WeightScaling, pathWeight float64) Edge {
	e.PathWeight = pathWeight
	e.Weight = scaling.Apply(e.Distance, pathWeight)
	if e.Weight < 0 {
		e.Weight = 0
	}
	return e
}

// WithWeight returns a copy of the edge with an overridden weight
func (e Edge) WithWeight(weight float64) Edge {
	e.Weight = weight
	return e
}

// Key returns the EdgeKey of the edge in the given graph
func (e Edge) Key(g Graph) EdgeKey {
	return EdgeKey{From: g.GetNode(e.From).Id, To: g.GetNode(e.To).Id}
}

// Crosses reports whether the edge connects two different groups (floors)
func (e Edge) Crosses(g Graph) bool {
	return g.Group(e.From) != g.Group(e.To)
}

func GraphAsString(g Graph) string {
	var sb strings.Builder

	// write number of nodes and number of edges
	sb.WriteString(fmt.Sprintf("%v\n", g.NodeCount()))
	sb.WriteString(fmt.Sprintf("%v\n", g.ArcCount()))

	// list all nodes structured as "id lat lon group"
	sb.WriteString("#Nodes\n")
	for i := 0; i < g.NodeCount(); i++ {
		node := g.GetNode(i)
		sb.WriteString(fmt.Sprintf("%v %v %v %v\n", node.Id, node.Position.Lat(), node.Position.Lon(), g.Group(i)))
	}

	// list all edges structured as "fromId targetId pathWeight"
	sb.WriteString("#Edges\n")
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			sb.WriteString(fmt.Sprintf("%v %v %v\n", g.GetNode(i).Id, g.GetNode(arc.Destination()).Id, arc.PathWeight))
		}
	}
	return sb.String()
}
