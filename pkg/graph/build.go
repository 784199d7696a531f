package graph

import (
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/slice"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GroupByFloor groups the nodes by their Floor field
const GroupByFloor = "floor"

// BuildOptions configures Build. Obstructions are given per Node.Floor and are stored per group:
// an obstruction applies to every group which has nodes on its floor.
type BuildOptions struct {
	GroupBy string        // "" or "floor" groups by Node.Floor, otherwise by the Extra value with this key
	Scaling WeightScaling // how neighbor weights combine with distances
	Logger  *zap.Logger
}

// Build creates the immutable graph for the given nodes.
// Every neighbor must reference a node of the collection, otherwise a *MissingNodeReferenceError is returned
// and nothing is kept from the partial build.
func Build(nodes []Node, obstructions []geometry.Obstruction, opts BuildOptions) (*AdjacencyArrayGraph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ids := make(map[string]NodeId, len(nodes))
	for i, node := range nodes {
		if node.Id == "" {
			return nil, errors.Wrapf(ErrEmptyNodeId, "node at position %d", i)
		}
		if _, ok := ids[node.Id]; ok {
			return nil, errors.Wrapf(ErrDuplicateNode, "node %q", node.Id)
		}
		ids[node.Id] = i
	}
	for _, node := range nodes {
		for _, neighbor := range node.Neighbors {
			if _, ok := ids[neighbor.Id]; !ok {
				return nil, &MissingNodeReferenceError{Node: node.Id, Neighbor: neighbor.Id}
			}
		}
	}

	alg := NewAdjacencyListGraph(opts.Scaling)
	for _, node := range nodes {
		alg.AddNode(node)
	}
	clamped := 0
	for from, node := range nodes {
		for _, neighbor := range node.Neighbors {
			to := ids[neighbor.Id]
			if _, err := alg.AddArc(from, to, neighbor.Weight); err != nil {
				return nil, errors.Wrapf(err, "edge %q -> %q", node.Id, neighbor.Id)
			}
			if opts.Scaling.Apply(nodes[from].Position.DistanceTo(nodes[to].Position), neighbor.Weight) < 0 {
				clamped++
			}
		}
	}
	if clamped > 0 {
		logger.Warn("clamped negative edge weights to zero", zap.Int("edges", clamped))
	}

	groupOf := groupFunc(opts.GroupBy)
	g := NewAdjacencyArrayFromGraph(alg, groupOf, geometry.GroupObstructions(obstructionsByGroup(nodes, obstructions, groupOf, logger)))
	logger.Debug("built graph",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("arcs", g.ArcCount()),
		zap.Strings("groups", g.GroupKeys()),
		zap.Float64("heuristicScale", g.HeuristicScale()),
	)
	return g, nil
}

func groupFunc(key string) func(Node) string {
	if key == "" || key == GroupByFloor {
		return func(n Node) string { return n.Floor }
	}
	return func(n Node) string {
		v, _ := n.Extra.Get(key)
		return v.String()
	}
}

// obstructionsByGroup re-keys the obstructions from floors to the group keys of the nodes on that floor
func obstructionsByGroup(nodes []Node, obstructions []geometry.Obstruction, groupOf func(Node) string, logger *zap.Logger) []geometry.Obstruction {
	groups := make(map[string][]string)
	for _, node := range nodes {
		group := groupOf(node)
		if !slice.Contains(groups[node.Floor], group) {
			groups[node.Floor] = append(groups[node.Floor], group)
		}
	}
	keyed := make([]geometry.Obstruction, 0, len(obstructions))
	for _, o := range obstructions {
		if len(groups[o.Floor]) == 0 {
			logger.Warn("obstruction on a floor without nodes", zap.String("floor", o.Floor))
			continue
		}
		for _, group := range groups[o.Floor] {
			o.Floor = group
			keyed = append(keyed, o)
		}
	}
	return keyed
}
