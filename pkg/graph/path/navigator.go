package path

import (
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrUnknownNavigator = errors.New("path: unknown navigator")

type Navigator interface {
	ShortestPath(q Query) (Result, error)                                       // Compute the cheapest path from the origins to the nearest destination
	FindWithinTravelDistance(origin string, q WithinQuery) ([]Reachable, error) // Find the nodes reachable from the origin within a travel budget
	GetGraph() graph.Graph                                                      // Get the used graph
}

// NewNavigator creates the navigator with the given name: "astar", "dijkstra" or "plain-dijkstra"
func NewNavigator(name string, g graph.Graph, logger *zap.Logger) (Navigator, error) {
	switch name {
	case "astar", "":
		d := NewAStar(g)
		d.SetLogger(logger)
		return d, nil
	case "dijkstra":
		d := NewUniversalDijkstra(g)
		d.SetLogger(logger)
		return d, nil
	case "plain-dijkstra":
		return NewDijkstra(g), nil
	default:
		return nil, errors.Wrapf(ErrUnknownNavigator, "%q", name)
	}
}
