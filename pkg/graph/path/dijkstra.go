package path

import (
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/queue"
)

// Dijkstra is the plain textbook implementation on the simple queue.
// It serves as reference for the other navigators and shares their edge rule.
type Dijkstra struct {
	g graph.Graph
}

func NewDijkstra(g graph.Graph) *Dijkstra {
	return &Dijkstra{g: g}
}

func (d *Dijkstra) ShortestPath(q Query) (Result, error) {
	p, err := prepare(d.g, q, true)
	if err != nil {
		return Result{}, err
	}

	dijkstraItems := make([]*queue.Item, d.g.NodeCount())
	predecessors := make([]graph.Edge, d.g.NodeCount())
	settled := make([]bool, d.g.NodeCount())

	pq := queue.NewQueue(nil)
	for _, origin := range p.origins {
		dijkstraItems[origin] = queue.NewQueueItem(origin, 0, -1)
		pq.Add(dijkstraItems[origin])
	}

	for pq.Len() > 0 {
		currentPqItem := pq.Next()
		currentNodeId := currentPqItem.ItemId
		p.kpis.PqPops++

		if currentPqItem.Priority > p.costUpperBound || p.kpis.SettledNodes >= p.maxSettled {
			break
		}
		settled[currentNodeId] = true
		p.kpis.SettledNodes++

		if p.isDestination[currentNodeId] {
			predecessor := func(node graph.NodeId) (graph.Edge, bool) {
				if dijkstraItems[node].Predecessor == -1 {
					return graph.Edge{}, false
				}
				return predecessors[node], true
			}
			return p.result(currentNodeId, predecessor, currentPqItem.Priority), nil
		}

		for _, arc := range d.g.GetArcsFrom(currentNodeId) {
			p.kpis.RelaxationAttempts++
			cost, ok := p.cost(arc)
			if !ok {
				continue
			}
			successor := arc.Destination()
			newPriority := currentPqItem.Priority + cost

			if dijkstraItems[successor] == nil {
				dijkstraItems[successor] = queue.NewQueueItem(successor, newPriority, currentNodeId)
				predecessors[successor] = arc.WithWeight(cost)
				pq.Add(dijkstraItems[successor])
				p.kpis.PqUpdates++
			} else if !settled[successor] && newPriority < dijkstraItems[successor].Priority {
				dijkstraItems[successor].Predecessor = currentNodeId
				predecessors[successor] = arc.WithWeight(cost)
				pq.Update(dijkstraItems[successor], newPriority)
				p.kpis.PqUpdates++
			}
			p.kpis.RelaxedEdges++
		}
	}

	return Result{Origin: -1, Destination: -1, KPIs: p.kpis}, nil
}

func (d *Dijkstra) FindWithinTravelDistance(origin string, q WithinQuery) ([]Reachable, error) {
	return findWithinTravelDistance(d.g, origin, q)
}

func (d *Dijkstra) GetGraph() graph.Graph { return d.g }
