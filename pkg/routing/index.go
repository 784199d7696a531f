package routing

import (
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

type indexedNode struct {
	point orb.Point // projected, meters
	node  graph.NodeId
}

func (n indexedNode) Point() orb.Point { return n.point }

// nodeIndex finds the nearest node of a floor for raw coordinates
type nodeIndex struct {
	projection geometry.Projection
	floors     map[string]*quadtree.Quadtree // "" holds every node
}

func newNodeIndex(g graph.Graph) *nodeIndex {
	index := &nodeIndex{floors: make(map[string]*quadtree.Quadtree)}
	if g.NodeCount() == 0 {
		return index
	}
	index.projection = geometry.NewProjection(g.GetNode(0).Position)

	points := make([]indexedNode, g.NodeCount())
	bounds := make(map[string]orb.Bound)
	extend := func(floor string, p orb.Point) {
		if b, ok := bounds[floor]; ok {
			bounds[floor] = b.Extend(p)
		} else {
			bounds[floor] = p.Bound()
		}
	}
	for i := range points {
		node := g.GetNode(i)
		points[i] = indexedNode{point: index.projection.Project(node.Position.Orb()), node: i}
		extend("", points[i].point)
		extend(node.Floor, points[i].point)
	}
	for floor, bound := range bounds {
		index.floors[floor] = quadtree.New(bound.Pad(1))
	}
	for i, p := range points {
		// bounds contain every point, Add can't fail
		_ = index.floors[""].Add(p)
		if floor := g.GetNode(i).Floor; floor != "" {
			_ = index.floors[floor].Add(p)
		}
	}
	return index
}

// nearest returns the node closest to the position on the floor
func (index *nodeIndex) nearest(position geometry.Point, floor string) (graph.NodeId, bool) {
	tree, ok := index.floors[floor]
	if !ok {
		return 0, false
	}
	found := tree.Find(index.projection.Project(position.Orb()))
	if found == nil {
		return 0, false
	}
	return found.(indexedNode).node, true
}
