package openapi_server

import (
	"context"
	"net/http"

	"github.com/natevvv/indoor-routing/pkg/directions"
	"github.com/natevvv/indoor-routing/pkg/routing"
	"go.uber.org/zap"
)

// DefaultApiService is a service that implements the logic for the DefaultApiServicer
// This service should implement the business logic for every endpoint for the DefaultApi API.
// Include any external packages or services that will be required by this service.
type DefaultApiService struct {
	router  *routing.Router
	metrics *Metrics
	logger  *zap.Logger
}

// NewDefaultApiService creates a default api service. metrics may be nil.
func NewDefaultApiService(router *routing.Router, metrics *Metrics, logger *zap.Logger) DefaultApiServicer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultApiService{
		router:  router,
		metrics: metrics,
		logger:  logger,
	}
}

// GetDirections - Compute the directions between two targets
func (s *DefaultApiService) GetDirections(ctx context.Context, directionsRequest DirectionsRequest) (ImplResponse, error) {
	route, err := s.router.RouteContext(ctx, directionsRequest.From, directionsRequest.To, directionsRequest.Options.Options())
	if err != nil {
		return Response(http.StatusInternalServerError, nil), err
	}
	s.metrics.observeSearch(route.KPIs, route.Directions != nil)
	s.logger.Debug("directions",
		zap.Stringer("from", directionsRequest.From),
		zap.Stringer("to", directionsRequest.To),
		zap.Bool("reachable", route.Directions != nil),
		zap.Int("settledNodes", route.KPIs.SettledNodes),
	)

	if directionsRequest.Format == FormatGeoJson {
		return Response(http.StatusOK, directions.ToGeoJSON(route.Directions)), nil
	}
	return Response(http.StatusOK, directionsResult(route)), nil
}

func directionsResult(route routing.Route) DirectionsResult {
	return DirectionsResult{
		Reachable:  route.Directions != nil,
		Directions: route.Directions,
		KPIs:       route.KPIs,
	}
}

// GetDirectionsMulti - Compute the directions from one target to several destinations
func (s *DefaultApiService) GetDirectionsMulti(ctx context.Context, multiDirectionsRequest MultiDirectionsRequest) (ImplResponse, error) {
	routes, err := s.router.RouteMultiDestination(multiDirectionsRequest.From, multiDirectionsRequest.To, multiDirectionsRequest.Options.Options())
	if err != nil {
		return Response(http.StatusInternalServerError, nil), err
	}
	result := MultiDirectionsResult{Results: make([]DirectionsResult, 0, len(routes))}
	for _, route := range routes {
		s.metrics.observeSearch(route.KPIs, route.Directions != nil)
		result.Results = append(result.Results, directionsResult(route))
	}
	return Response(http.StatusOK, result), nil
}

// FindNearby - Find the nodes within a travel distance
func (s *DefaultApiService) FindNearby(ctx context.Context, nearbyRequest NearbyRequest) (ImplResponse, error) {
	reachable, err := s.router.FindNearby(nearbyRequest.Origin, nearbyRequest.NearbyOptions())
	if err != nil {
		return Response(http.StatusInternalServerError, nil), err
	}
	g := s.router.Graph()
	nodes := Nodes{Nodes: make([]Node, 0, len(reachable))}
	for _, r := range reachable {
		n := g.GetNode(r.Node)
		distance := r.Distance
		nodes.Nodes = append(nodes.Nodes, Node{Id: n.Id, Floor: n.Floor, Position: n.Position, Distance: &distance})
	}
	return Response(http.StatusOK, nodes), nil
}

// GetNodes returns the nodes of a floor, every node if floor is empty
func (s *DefaultApiService) GetNodes(ctx context.Context, floor string) (ImplResponse, error) {
	g := s.router.Graph()
	nodes := Nodes{Nodes: make([]Node, 0)}
	add := func(id int) {
		n := g.GetNode(id)
		nodes.Nodes = append(nodes.Nodes, Node{Id: n.Id, Floor: n.Floor, Position: n.Position})
	}
	if floor != "" {
		for _, id := range g.NodesInGroup(floor) {
			add(id)
		}
	} else {
		for id := 0; id < g.NodeCount(); id++ {
			add(id)
		}
	}
	return Response(http.StatusOK, nodes), nil
}

func (s *DefaultApiService) SetNavigator(ctx context.Context, navigatorRequest NavigatorRequest) (ImplResponse, error) {
	if err := s.router.SetNavigator(navigatorRequest.Navigator); err != nil {
		return Response(http.StatusBadRequest, nil), err
	}
	_, name := s.router.Navigator()
	return Response(http.StatusOK, NavigatorRequest{Navigator: name}), nil
}
