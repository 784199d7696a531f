package path

import (
	"math"

	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/slice"
	"github.com/natevvv/indoor-routing/pkg/zone"
	"github.com/pkg/errors"
)

var (
	ErrUnknownNode        = errors.New("path: unknown node")
	ErrEmptyOrigins       = errors.New("path: no origin")
	ErrEmptyDestinations  = errors.New("path: no destination")
	ErrInvalidQueryOption = errors.New("path: invalid query option")
)

// ConnectionIndex provides the connection nodes which don't match the requested accessibility
type ConnectionIndex interface {
	DisabledConnectionNodeIds(accessible bool) []string
}

// Query describes a single path search. It is built fresh for every call.
type Query struct {
	Origins             []string
	Destinations        []string
	DisabledConnections []string // connection nodes which can't change the floor
	ExcludedConnections []string // connection nodes which can't be passed at all
	Zones               []zone.CostZone
	EdgeWeightOverrides map[graph.EdgeKey]float64 // replaces the weight of the edge
	AccessibleOnly      bool                      // merge the inaccessible connection nodes of Connections into the disabled ones
	Connections         ConnectionIndex
	CostUpperBound      float64 // 0 means unbounded
	MaxSettledNodes     int     // 0 means unbounded
}

// KPIs of a single search
type KPIs struct {
	PqPops             int // amount of Pops which were performed on the priority queue
	PqUpdates          int // each update or push to the priority queue
	RelaxationAttempts int // attempted edge relaxations
	RelaxedEdges       int // edges which passed the edge rule
	SettledNodes       int
	ReopenedNodes      int // settled nodes which got a cheaper cost afterwards
	ClampedEdges       int // negative effective costs which were clamped to 0
}

// Result of a path search. Found with no edges means origin and destination are the same node.
type Result struct {
	Found       bool
	Origin      graph.NodeId
	Destination graph.NodeId
	Edges       []graph.Edge // weight of each edge is its effective cost in this query
	Cost        float64
	KPIs        KPIs
}

// Nodes returns the node sequence of the result
func (r Result) Nodes() []graph.NodeId {
	if !r.Found {
		return nil
	}
	nodes := []graph.NodeId{r.Origin}
	for _, e := range r.Edges {
		nodes = append(nodes, e.To)
	}
	return nodes
}

type edgeIndex struct {
	from, to graph.NodeId
}

// prepared holds the per query state of the edge rule. Never shared between searches.
type prepared struct {
	g              graph.Graph
	origins        []graph.NodeId
	destinations   []graph.NodeId
	isDestination  []bool
	excluded       []bool
	disabled       []bool
	overrides      map[edgeIndex]float64
	overlay        *zone.Overlay
	costUpperBound float64
	maxSettled     int
	heuristicScale float64
	heuristics     []float64 // memoized heuristic per node, NaN if not computed
	kpis           KPIs
}

func lookupAll(g graph.Graph, ids []string) ([]graph.NodeId, error) {
	nodes := make([]graph.NodeId, 0, len(ids))
	seen := make(map[graph.NodeId]bool, len(ids))
	for _, id := range ids {
		node, ok := g.Lookup(id)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownNode, "%q", id)
		}
		if !seen[node] {
			seen[node] = true
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func markAll(g graph.Graph, ids []string, mask []bool) {
	for _, id := range ids {
		// unknown connection nodes are not part of this graph and can't be used anyway
		if node, ok := g.Lookup(id); ok {
			mask[node] = true
		}
	}
}

// prepare validates the query and resolves every id. Destinations may be empty for searches without target.
func prepare(g graph.Graph, q Query, needDestinations bool) (*prepared, error) {
	if len(q.Origins) == 0 {
		return nil, ErrEmptyOrigins
	}
	if needDestinations && len(q.Destinations) == 0 {
		return nil, ErrEmptyDestinations
	}
	if q.CostUpperBound < 0 || math.IsNaN(q.CostUpperBound) || q.MaxSettledNodes < 0 {
		return nil, errors.Wrap(ErrInvalidQueryOption, "negative search limit")
	}
	if err := zone.ValidateAll(q.Zones); err != nil {
		return nil, err
	}

	p := &prepared{
		g:              g,
		excluded:       make([]bool, g.NodeCount()),
		disabled:       make([]bool, g.NodeCount()),
		isDestination:  make([]bool, g.NodeCount()),
		overlay:        zone.NewOverlay(g, q.Zones),
		costUpperBound: math.Inf(1),
		maxSettled:     math.MaxInt,
		heuristicScale: g.HeuristicScale(),
	}
	if q.CostUpperBound > 0 {
		p.costUpperBound = q.CostUpperBound
	}
	if q.MaxSettledNodes > 0 {
		p.maxSettled = q.MaxSettledNodes
	}

	origins, err := lookupAll(g, q.Origins)
	if err != nil {
		return nil, errors.Wrap(err, "origin")
	}
	p.destinations, err = lookupAll(g, q.Destinations)
	if err != nil {
		return nil, errors.Wrap(err, "destination")
	}
	for _, d := range p.destinations {
		p.isDestination[d] = true
	}

	markAll(g, q.ExcludedConnections, p.excluded)
	markAll(g, q.DisabledConnections, p.disabled)
	if q.AccessibleOnly && q.Connections != nil {
		markAll(g, q.Connections.DisabledConnectionNodeIds(true), p.disabled)
	}

	if len(q.EdgeWeightOverrides) > 0 {
		p.overrides = make(map[edgeIndex]float64, len(q.EdgeWeightOverrides))
		for key, weight := range q.EdgeWeightOverrides {
			from, okFrom := g.Lookup(key.From)
			to, okTo := g.Lookup(key.To)
			if !okFrom || !okTo || math.IsNaN(weight) {
				continue
			}
			p.overrides[edgeIndex{from, to}] = weight
		}
		// overrides below the straight line distance would make the heuristic overestimate
		for key, weight := range p.overrides {
			for _, arc := range g.GetArcsFrom(key.from) {
				if arc.To != key.to || arc.Distance <= 0 {
					continue
				}
				if scale := math.Max(0, weight) / arc.Distance; scale < p.heuristicScale {
					p.heuristicScale = scale
				}
			}
		}
	}

	// origins inside a forbidden zone can't start a path
	p.origins = make([]graph.NodeId, 0, len(origins))
	for _, o := range origins {
		if p.overlay == nil || !p.overlay.Forbidden(o) {
			p.origins = append(p.origins, o)
		}
	}
	return p, nil
}

// cost applies the edge rule. The second return value is false if the edge can't be used.
func (p *prepared) cost(arc graph.Edge) (float64, bool) {
	if p.excluded[arc.From] || p.excluded[arc.To] {
		return 0, false
	}
	if (p.disabled[arc.From] || p.disabled[arc.To]) && arc.Crosses(p.g) {
		return 0, false
	}
	weight := arc.Weight
	if override, ok := p.overrides[edgeIndex{arc.From, arc.To}]; ok {
		weight = override
	}
	weight += p.overlay.Cost(arc.To)
	if math.IsInf(weight, 1) || math.IsNaN(weight) {
		return 0, false
	}
	if weight < 0 {
		p.kpis.ClampedEdges++
		weight = 0
	}
	return weight, true
}

// heuristic returns a lower bound of the remaining cost from the node to the nearest destination
func (p *prepared) heuristic(node graph.NodeId) float64 {
	if p.heuristicScale <= 0 || len(p.destinations) == 0 {
		return 0
	}
	if p.heuristics == nil {
		p.heuristics = make([]float64, p.g.NodeCount())
		for i := range p.heuristics {
			p.heuristics[i] = math.NaN()
		}
	}
	if h := p.heuristics[node]; !math.IsNaN(h) {
		return h
	}
	position := p.g.GetNode(node).Position
	nearest := math.Inf(1)
	for _, d := range p.destinations {
		nearest = math.Min(nearest, position.DistanceTo(p.g.GetNode(d).Position))
	}
	h := 0.99 * p.heuristicScale * nearest
	p.heuristics[node] = h
	return h
}

func (p *prepared) result(destination graph.NodeId, predecessor func(graph.NodeId) (graph.Edge, bool), cost float64) Result {
	edges := make([]graph.Edge, 0)
	node := destination
	for {
		edge, ok := predecessor(node)
		if !ok {
			break
		}
		edges = append(edges, edge)
		node = edge.From
	}
	slice.ReverseInPlace(edges)
	return Result{Found: true, Origin: node, Destination: destination, Edges: edges, Cost: cost, KPIs: p.kpis}
}
