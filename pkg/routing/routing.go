package routing

import (
	"context"
	"sync"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/directions"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/graph/path"
	"github.com/natevvv/indoor-routing/pkg/slice"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Route is the outcome of a single search. Directions is nil if no path exists.
type Route struct {
	Directions *directions.Directions
	KPIs       path.KPIs
}

// Router answers directions queries on one immutable graph
type Router struct {
	graph       graph.Graph
	connections *connection.Resolver
	processor   *directions.Processor
	targets     TargetLookup
	index       *nodeIndex
	config      Config
	logger      *zap.Logger

	mutex         sync.RWMutex
	navigator     path.Navigator
	navigatorName string
}

// NewRouter creates a router. connections and targets may be nil.
func NewRouter(g graph.Graph, connections *connection.Resolver, targets TargetLookup, config Config, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if connections == nil {
		var err error
		if connections, err = connection.NewResolver(g, nil, logger); err != nil {
			return nil, err
		}
	}
	r := &Router{
		graph:       g,
		connections: connections,
		processor:   directions.NewProcessor(g, connections, logger),
		targets:     targets,
		index:       newNodeIndex(g),
		config:      config,
		logger:      logger,
	}
	if err := r.SetNavigator(config.Navigator); err != nil {
		return nil, err
	}
	return r, nil
}

// SetNavigator switches the search algorithm for all following queries
func (r *Router) SetNavigator(name string) error {
	navigator, err := path.NewNavigator(name, r.graph, r.logger)
	if err != nil {
		return err
	}
	if name == "" {
		name = "astar"
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.navigator, r.navigatorName = navigator, name
	r.logger.Info("navigator set", zap.String("navigator", name))
	return nil
}

func (r *Router) Navigator() (path.Navigator, string) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.navigator, r.navigatorName
}

func (r *Router) Graph() graph.Graph { return r.graph }

func (r *Router) Connections() *connection.Resolver { return r.connections }

func (r *Router) Config() Config { return r.config }

// resolved holds the node ids of a target and the raw position of coordinate targets
type resolved struct {
	nodeIds    []string
	coordinate *geometry.Point
}

func (r *Router) resolve(t NavigationTarget) (resolved, error) {
	ids := r.nodeIdsOf(t)
	if len(ids) == 0 {
		return resolved{}, &UnresolvableTargetError{Target: t}
	}
	res := resolved{nodeIds: ids}
	if t.Kind == Coordinate {
		position := t.Position
		res.coordinate = &position
	}
	return res, nil
}

func (r *Router) nodeIdsOf(t NavigationTarget) []string {
	switch t.Kind {
	case Node:
		if _, ok := r.graph.Lookup(t.Id); ok {
			return []string{t.Id}
		}
		return nil
	case Coordinate:
		if node, ok := r.index.nearest(t.Position, t.Floor); ok {
			return []string{r.graph.GetNode(node).Id}
		}
		return nil
	case Targets:
		ids := make([]string, 0)
		for _, child := range t.Targets {
			for _, id := range r.nodeIdsOf(child) {
				if !slice.Contains(ids, id) {
					ids = append(ids, id)
				}
			}
		}
		return ids
	case Connection:
		if ids := r.connections.NodeIds(t.Id); len(ids) > 0 {
			return ids
		}
	}

	if r.targets == nil {
		return nil
	}
	ids := make([]string, 0)
	for _, id := range r.targets.NodeIds(t.Kind, t.Id) {
		if _, ok := r.graph.Lookup(id); !ok {
			r.logger.Warn("target references unknown node", zap.Stringer("target", t), zap.String("node", id))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (r *Router) query(origins, destinations []string, opts Options) path.Query {
	return path.Query{
		Origins:             origins,
		Destinations:        destinations,
		ExcludedConnections: r.connections.NodeIds(opts.ExcludedConnections...),
		Zones:               opts.Zones,
		EdgeWeightOverrides: opts.EdgeWeightOverrides,
		AccessibleOnly:      opts.Accessible,
		Connections:         r.connections,
	}
}

func (r *Router) smoothing(opts Options) Smoothing {
	smoothing := r.config.DefaultSmoothing()
	if opts.Smoothing != nil {
		smoothing.Enabled = opts.Smoothing.Enabled
		if opts.Smoothing.Radius > 0 {
			smoothing.Radius = opts.Smoothing.Radius
		}
	}
	return smoothing
}

func (r *Router) search(from, to resolved, opts Options) (Route, error) {
	navigator, _ := r.Navigator()
	result, err := navigator.ShortestPath(r.query(from.nodeIds, to.nodeIds, opts))
	if err != nil {
		return Route{}, err
	}
	route := Route{KPIs: result.KPIs}
	if !result.Found {
		return route, nil
	}

	edges := result.Edges
	if smoothing := r.smoothing(opts); smoothing.Enabled {
		edges = r.processor.Simplify(edges, smoothing.Radius, opts.Zones)
	}
	d := r.processor.Generate(result.Origin, edges)
	if from.coordinate != nil && !from.coordinate.Equal(d.Path[0].Position) {
		r.processor.StitchOrigin(d, *from.coordinate)
	}
	if to.coordinate != nil && !to.coordinate.Equal(d.Path[len(d.Path)-1].Position) {
		r.processor.StitchDestination(d, *to.coordinate)
	}
	route.Directions = d
	return route, nil
}

// Route computes the cheapest route between two targets.
// Targets which don't resolve to any node return an *UnresolvableTargetError before searching.
func (r *Router) Route(from, to NavigationTarget, opts Options) (Route, error) {
	origin, err := r.resolve(from)
	if err != nil {
		return Route{}, errors.Wrap(err, "from")
	}
	destination, err := r.resolve(to)
	if err != nil {
		return Route{}, errors.Wrap(err, "to")
	}
	return r.search(origin, destination, opts)
}

// GetDirections returns the directions between two targets, nil if no path exists
func (r *Router) GetDirections(from, to NavigationTarget, opts Options) (*directions.Directions, error) {
	route, err := r.Route(from, to, opts)
	if err != nil {
		return nil, err
	}
	return route.Directions, nil
}

// RouteMultiDestination computes one route per destination, index aligned with to.
// Every target is resolved before the searches start, the searches run concurrently.
func (r *Router) RouteMultiDestination(from NavigationTarget, to []NavigationTarget, opts Options) ([]Route, error) {
	origin, err := r.resolve(from)
	if err != nil {
		return nil, errors.Wrap(err, "from")
	}
	destinations := make([]resolved, len(to))
	for i, target := range to {
		if destinations[i], err = r.resolve(target); err != nil {
			return nil, errors.Wrapf(err, "to[%d]", i)
		}
	}

	routes := make([]Route, len(to))
	errs := make([]error, len(to))
	var wg sync.WaitGroup
	for i := range destinations {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			routes[i], errs[i] = r.search(origin, destinations[i], opts)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "to[%d]", i)
		}
	}
	return routes, nil
}

// GetDirectionsMultiDestination returns the directions to every destination, nil entries for unreachable ones
func (r *Router) GetDirectionsMultiDestination(from NavigationTarget, to []NavigationTarget, opts Options) ([]*directions.Directions, error) {
	routes, err := r.RouteMultiDestination(from, to, opts)
	if err != nil {
		return nil, err
	}
	result := make([]*directions.Directions, len(routes))
	for i, route := range routes {
		result[i] = route.Directions
	}
	return result, nil
}

// RouteContext runs Route and returns early with the context error once ctx is done.
// The search itself is not interrupted, its result is discarded.
func (r *Router) RouteContext(ctx context.Context, from, to NavigationTarget, opts Options) (Route, error) {
	if err := ctx.Err(); err != nil {
		return Route{}, err
	}
	type outcome struct {
		route Route
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		route, err := r.Route(from, to, opts)
		done <- outcome{route, err}
	}()
	select {
	case <-ctx.Done():
		return Route{}, ctx.Err()
	case o := <-done:
		return o.route, o.err
	}
}

// GetDirectionsContext is GetDirections bounded by ctx
func (r *Router) GetDirectionsContext(ctx context.Context, from, to NavigationTarget, opts Options) (*directions.Directions, error) {
	route, err := r.RouteContext(ctx, from, to, opts)
	if err != nil {
		return nil, err
	}
	return route.Directions, nil
}

// NearbyOptions configures FindNearby
type NearbyOptions struct {
	Options
	MaxTravelDistance float64            `json:"maxTravelDistance"`
	Candidates        []NavigationTarget `json:"candidates,omitempty"` // every node if empty
	Limit             int                `json:"limit,omitempty"`
	LineOfSight       bool               `json:"lineOfSight,omitempty"`
	LineOfSightBuffer float64            `json:"lineOfSightBuffer,omitempty"`
}

// FindNearby returns the nodes reachable from the origin within the travel distance.
// Origins resolving to several nodes start at the first of them.
func (r *Router) FindNearby(origin NavigationTarget, opts NearbyOptions) ([]path.Reachable, error) {
	from, err := r.resolve(origin)
	if err != nil {
		return nil, errors.Wrap(err, "origin")
	}
	allow := make([]string, 0)
	for i, candidate := range opts.Candidates {
		c, err := r.resolve(candidate)
		if err != nil {
			return nil, errors.Wrapf(err, "candidates[%d]", i)
		}
		allow = append(allow, c.nodeIds...)
	}

	navigator, _ := r.Navigator()
	return navigator.FindWithinTravelDistance(from.nodeIds[0], path.WithinQuery{
		Query:             r.query(nil, nil, opts.Options),
		MaxTravelDistance: opts.MaxTravelDistance,
		AllowList:         allow,
		Limit:             opts.Limit,
		LineOfSight:       opts.LineOfSight,
		LineOfSightBuffer: opts.LineOfSightBuffer,
	})
}

// NearestNode returns the node closest to the position, an empty floor searches every floor
func (r *Router) NearestNode(position geometry.Point, floor string) (*graph.Node, bool) {
	node, ok := r.index.nearest(position, floor)
	if !ok {
		return nil, false
	}
	return r.graph.GetNode(node), true
}
