package path

import (
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/queue"
	"go.uber.org/zap"
)

type SearchOptions struct {
	useHeuristic bool // flag indicating if heuristic (remaining distance) should be used (AStar implementation)
	debugLevel   int  // debug level for logging purpose
}

// UniversalDijkstra implements the path finding algorithms which are based on Dijkstra.
// It can be used for plain Dijkstra and A*.
// The struct only holds configuration, every search allocates its own state. Safe for concurrent use.
// Implements the Navigator Interface.
type UniversalDijkstra struct {
	g             graph.Graph
	searchOptions SearchOptions
	logger        *zap.Logger
}

// per search state
type search struct {
	*prepared
	minHeap     queue.MinHeap[*DijkstraItem] // priority queue to find the shortest path
	searchSpace []*DijkstraItem              // items by node id, a map really reduces performance
	settled     []bool                       // indicates if the node was settled
	sequence    uint64                       // next insertion sequence
}

// Create a new Dijkstra instance with the given graph g
func NewUniversalDijkstra(g graph.Graph) *UniversalDijkstra {
	return &UniversalDijkstra{g: g, logger: zap.NewNop()}
}

// Create a new A* instance with the given graph g
func NewAStar(g graph.Graph) *UniversalDijkstra {
	d := NewUniversalDijkstra(g)
	d.SetUseHeuristic(true)
	return d
}

func (d *UniversalDijkstra) newSearch(p *prepared) *search {
	return &search{
		prepared:    p,
		minHeap:     *queue.NewMinHeap[*DijkstraItem](nil),
		searchSpace: make([]*DijkstraItem, d.g.NodeCount()),
		settled:     make([]bool, d.g.NodeCount()),
	}
}

// ShortestPath computes the cheapest path from any origin to the nearest reachable destination.
// All origins start with cost 0. The search stops at the first destination which is settled.
// An unreachable destination is not an error, the result is just not Found.
func (d *UniversalDijkstra) ShortestPath(q Query) (Result, error) {
	p, err := prepare(d.g, q, true)
	if err != nil {
		return Result{}, err
	}
	if d.searchOptions.debugLevel >= 1 {
		d.logger.Debug("New search", zap.Strings("origins", q.Origins), zap.Strings("destinations", q.Destinations), zap.Bool("heuristic", d.searchOptions.useHeuristic))
	}

	s := d.newSearch(p)
	for _, origin := range p.origins {
		d.push(s, origin, 0, graph.Edge{From: -1, To: origin})
	}

	for s.minHeap.Len() > 0 {
		currentNode := s.minHeap.Pop()
		p.kpis.PqPops++

		if currentNode.Priority() > p.costUpperBound || p.kpis.SettledNodes >= p.maxSettled {
			// Each following node exceeds the max allowed cost or the number of allowed nodes is reached
			if d.searchOptions.debugLevel >= 1 {
				d.logger.Debug("Exceeded limits",
					zap.Float64("costUpperBound", p.costUpperBound),
					zap.Float64("currentCost", currentNode.Priority()),
					zap.Int("settledNodes", p.kpis.SettledNodes))
			}
			break
		}

		if d.searchOptions.debugLevel >= 2 {
			d.logger.Debug("Settling node", zap.Int("node", currentNode.nodeId), zap.Float64("distance", currentNode.distance))
		}
		s.settled[currentNode.nodeId] = true
		p.kpis.SettledNodes++

		if p.isDestination[currentNode.nodeId] {
			if d.searchOptions.debugLevel >= 1 {
				d.logger.Debug("Found path", zap.Int("destination", currentNode.nodeId), zap.Float64("distance", currentNode.distance))
			}
			return p.result(currentNode.nodeId, s.predecessor, currentNode.distance), nil
		}

		d.relaxEdges(s, currentNode)
	}

	if d.searchOptions.debugLevel >= 1 {
		d.logger.Debug("Finished search, no path found")
	}
	return Result{Origin: -1, Destination: -1, KPIs: p.kpis}, nil
}

func (s *search) predecessor(node graph.NodeId) (graph.Edge, bool) {
	item := s.searchSpace[node]
	if item == nil || item.predecessor.From < 0 {
		return graph.Edge{}, false
	}
	return item.predecessor, true
}

// push a new item for the node or lower the cost of the existing one
func (d *UniversalDijkstra) push(s *search, node graph.NodeId, distance float64, predecessor graph.Edge) {
	item := s.searchSpace[node]
	if item == nil {
		heuristic := 0.0
		if d.searchOptions.useHeuristic {
			heuristic = s.heuristic(node)
		}
		item = NewDijkstraItem(node, distance, predecessor, heuristic, s.sequence)
		s.sequence++
		s.searchSpace[node] = item
		s.minHeap.Push(item)
		s.kpis.PqUpdates++
		return
	}
	if distance >= item.distance {
		return
	}

	item.distance = distance
	item.predecessor = predecessor
	item.sequence = s.sequence
	s.sequence++
	if item.index >= 0 {
		s.minHeap.Update(item)
	} else {
		// already settled, reopen the node
		s.settled[node] = false
		s.kpis.ReopenedNodes++
		s.minHeap.Push(item)
	}
	s.kpis.PqUpdates++
}

// Relax the Edges for the given node item and add the new nodes to the MinPath priority queue
func (d *UniversalDijkstra) relaxEdges(s *search, node *DijkstraItem) {
	for _, arc := range d.g.GetArcsFrom(node.nodeId) {
		s.kpis.RelaxationAttempts++
		cost, ok := s.cost(arc)
		if !ok {
			if d.searchOptions.debugLevel >= 3 {
				d.logger.Debug("Ignore Edge", zap.Int("from", arc.From), zap.Int("to", arc.To))
			}
			continue
		}
		if d.searchOptions.debugLevel >= 3 {
			d.logger.Debug("Relax Edge", zap.Int("from", arc.From), zap.Int("to", arc.To), zap.Float64("cost", cost))
		}
		d.push(s, arc.To, node.distance+cost, arc.WithWeight(cost))
		s.kpis.RelaxedEdges++
	}
}

// Specify whether a heuristic for path finding (AStar) should be used
func (d *UniversalDijkstra) SetUseHeuristic(useHeuristic bool) {
	d.searchOptions.useHeuristic = useHeuristic
}

// Set the debug level to show different debug messages.
// If it is 0, no debug messages are logged
func (d *UniversalDijkstra) SetDebugLevel(level int) {
	d.searchOptions.debugLevel = level
}

func (d *UniversalDijkstra) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d.logger = logger
}

// Get the used graph
func (d *UniversalDijkstra) GetGraph() graph.Graph { return d.g }
