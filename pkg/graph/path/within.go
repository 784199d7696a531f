package path

import (
	"math"
	"sort"

	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/queue"
	"github.com/pkg/errors"
)

// WithinQuery searches every node reachable from one origin within a travel budget.
// The edge rule of the embedded Query applies, its Origins and Destinations are ignored.
type WithinQuery struct {
	Query
	MaxTravelDistance float64  // budget in edge cost, must be > 0
	AllowList         []string // only these nodes are reported, every node if empty
	Limit             int      // maximum number of results, 0 means unlimited
	LineOfSight       bool     // only report nodes visible from the origin
	LineOfSightBuffer float64  // clearance for the line of sight test in meters
}

// Reachable is a node with its cumulative cost from the origin
type Reachable struct {
	Node     graph.NodeId
	Id       string
	Distance float64
}

func (d *UniversalDijkstra) FindWithinTravelDistance(origin string, q WithinQuery) ([]Reachable, error) {
	return findWithinTravelDistance(d.g, origin, q)
}

// findWithinTravelDistance runs Dijkstra from the origin until the budget is exceeded,
// every allowed node is settled or the limit is reached.
// Results are sorted by distance, ties by node id.
func findWithinTravelDistance(g graph.Graph, origin string, q WithinQuery) ([]Reachable, error) {
	if math.IsNaN(q.MaxTravelDistance) || q.MaxTravelDistance <= 0 {
		return nil, errors.Wrap(ErrInvalidQueryOption, "travel distance must be positive")
	}
	if q.Limit < 0 || q.LineOfSightBuffer < 0 {
		return nil, errors.Wrap(ErrInvalidQueryOption, "negative limit or buffer")
	}
	query := q.Query
	query.Origins = []string{origin}
	query.Destinations = nil
	p, err := prepare(g, query, false)
	if err != nil {
		return nil, err
	}

	allowed := make([]bool, g.NodeCount())
	remaining := g.NodeCount()
	if len(q.AllowList) > 0 {
		nodes, err := lookupAll(g, q.AllowList)
		if err != nil {
			return nil, errors.Wrap(err, "allow list")
		}
		for _, node := range nodes {
			allowed[node] = true
		}
		remaining = len(nodes)
	} else {
		for i := range allowed {
			allowed[i] = true
		}
	}

	results := make([]Reachable, 0)
	if len(p.origins) == 0 {
		return results, nil
	}
	originNode := p.origins[0]
	originPosition := g.GetNode(originNode).Position
	originGroup := g.Group(originNode)
	obstructions := g.Obstructions(originGroup)

	visible := func(node graph.NodeId) bool {
		if !q.LineOfSight {
			return true
		}
		if g.Group(node) != originGroup {
			return false
		}
		return obstructions.LineOfSight(originPosition, g.GetNode(node).Position, q.LineOfSightBuffer)
	}

	searchSpace := make([]*DijkstraItem, g.NodeCount())
	settled := make([]bool, g.NodeCount())
	minHeap := queue.NewMinHeap[*DijkstraItem](nil)
	var sequence uint64
	searchSpace[originNode] = NewDijkstraItem(originNode, 0, graph.Edge{From: -1, To: originNode}, 0, sequence)
	minHeap.Push(searchSpace[originNode])

	limitDistance := math.Inf(1)
	for minHeap.Len() > 0 {
		current := minHeap.Pop()
		if current.distance > q.MaxTravelDistance || current.distance > limitDistance {
			break
		}
		settled[current.nodeId] = true

		if allowed[current.nodeId] {
			remaining--
			if visible(current.nodeId) {
				results = append(results, Reachable{Node: current.nodeId, Id: g.GetNode(current.nodeId).Id, Distance: current.distance})
				if q.Limit > 0 && len(results) == q.Limit {
					// drain the nodes with the same distance before cutting
					limitDistance = current.distance
				}
			}
			if remaining == 0 {
				break
			}
		}

		for _, arc := range g.GetArcsFrom(current.nodeId) {
			cost, ok := p.cost(arc)
			if !ok || settled[arc.To] {
				continue
			}
			distance := current.distance + cost
			if item := searchSpace[arc.To]; item == nil {
				sequence++
				searchSpace[arc.To] = NewDijkstraItem(arc.To, distance, arc.WithWeight(cost), 0, sequence)
				minHeap.Push(searchSpace[arc.To])
			} else if distance < item.distance {
				sequence++
				item.distance, item.predecessor, item.sequence = distance, arc.WithWeight(cost), sequence
				minHeap.Update(item)
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Id < results[j].Id
		}
		return results[i].Distance < results[j].Distance
	})
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}
