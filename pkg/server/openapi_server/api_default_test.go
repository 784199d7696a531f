package openapi_server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/routing"
	"github.com/natevvv/indoor-routing/pkg/venue"
	gj "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = geometry.MakePoint(47.37, 8.54)

func node(id, floor string, north, east float64, neighbors ...venue.Neighbor) venue.Node {
	p := origin.Offset(north, east)
	return venue.Node{Id: id, Lat: p.Lat(), Lon: p.Lon(), Floor: floor, Neighbors: neighbors}
}

// A-B-L1 on floor 1, an elevator to L2 and C on floor 2, X is isolated
func newHandler(t *testing.T) http.Handler {
	v := venue.New("test")
	v.Nodes = []venue.Node{
		node("A", "1", 0, 0, venue.Neighbor{Id: "B"}),
		node("B", "1", 10, 0, venue.Neighbor{Id: "A"}, venue.Neighbor{Id: "L1"}),
		node("L1", "1", 10, 10, venue.Neighbor{Id: "B"}, venue.Neighbor{Id: "L2", Weight: 5}),
		node("L2", "2", 10, 10, venue.Neighbor{Id: "L1", Weight: 5}, venue.Neighbor{Id: "C"}),
		node("C", "2", 20, 10, venue.Neighbor{Id: "L2"}),
		node("X", "2", 50, 50),
	}
	v.Connections = []connection.Descriptor{
		{Id: "lift", NodeIds: []string{"L1", "L2"}, Type: connection.Elevator, Accessible: true},
	}
	v.Targets = []venue.Target{
		{Kind: routing.PointOfInterest, Id: "cafe", Floor: "2", NodeIds: []string{"C"}},
	}
	router, err := v.NewRouter(routing.Config{Mode: routing.Enterprise}, nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	controller := NewDefaultApiController(NewDefaultApiService(router, metrics, nil))
	return NewRouter(nil, metrics, reg, controller)
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	request := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, request)
	return recorder
}

type directionsResponse struct {
	Reachable  bool `json:"reachable"`
	Directions *struct {
		Path []struct {
			NodeId string `json:"nodeId"`
		} `json:"path"`
		Distance     float64 `json:"distance"`
		Instructions []struct {
			Action string `json:"action"`
		} `json:"instructions"`
	} `json:"directions"`
	KPIs struct {
		SettledNodes int
	} `json:"kpis"`
}

func (d directionsResponse) nodeIds() []string {
	ids := make([]string, 0)
	for _, w := range d.Directions.Path {
		ids = append(ids, w.NodeId)
	}
	return ids
}

func TestGetDirections(t *testing.T) {
	h := newHandler(t)
	response := do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": {"kind": "poi", "id": "cafe"}}`)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	assert.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))

	var result directionsResponse
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	require.True(t, result.Reachable)
	assert.Equal(t, []string{"A", "B", "L1", "L2", "C"}, result.nodeIds())
	assert.InDelta(t, 30.0, result.Directions.Distance, 0.5)
	assert.Equal(t, "Departure", result.Directions.Instructions[0].Action)
	assert.Positive(t, result.KPIs.SettledNodes)

	response = do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": "X"}`)
	require.Equal(t, http.StatusOK, response.Code)
	result = directionsResponse{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	assert.False(t, result.Reachable)
	assert.Nil(t, result.Directions)
}

func TestGetDirectionsGeoJson(t *testing.T) {
	h := newHandler(t)
	response := do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": "C", "format": "geojson"}`)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	fc, err := gj.UnmarshalFeatureCollection(response.Body.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, fc.Features)
}

func TestGetDirectionsZones(t *testing.T) {
	h := newHandler(t)
	ring := orb.Ring{
		origin.Offset(19, 9).Orb(), origin.Offset(19, 11).Orb(), origin.Offset(21, 11).Orb(),
		origin.Offset(21, 9).Orb(), origin.Offset(19, 9).Orb(),
	}
	request := DirectionsRequest{
		From: routing.NodeTarget("A"),
		To:   routing.NodeTarget("C"),
		Options: RequestOptions{
			Zones: []Zone{{Geometry: geojson.NewGeometry(orb.Polygon{ring}), Forbidden: true}},
		},
	}
	response := do(t, h, http.MethodPost, "/directions", request)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	var result directionsResponse
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	assert.False(t, result.Reachable)

	// finite zones only add cost
	request.Options.Zones[0] = Zone{Geometry: geojson.NewGeometry(orb.Polygon{ring}), AdditionalCost: 100, Floor: "2"}
	response = do(t, h, http.MethodPost, "/directions", request)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	result = directionsResponse{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	assert.True(t, result.Reachable)

	request.Options.Zones[0] = Zone{Geometry: geojson.NewGeometry(orb.Point{8.54, 47.37})}
	response = do(t, h, http.MethodPost, "/directions", request)
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestGetDirectionsErrors(t *testing.T) {
	h := newHandler(t)
	cases := map[string]struct {
		body string
		code int
	}{
		"syntax":        {`{"from": `, http.StatusBadRequest},
		"unknown field": {`{"from": "A", "to": "C", "speed": 3}`, http.StatusBadRequest},
		"missing to":    {`{"from": "A"}`, http.StatusBadRequest},
		"format":        {`{"from": "A", "to": "C", "format": "kml"}`, http.StatusBadRequest},
		"unknown node":  {`{"from": "A", "to": "nope"}`, http.StatusNotFound},
		"unknown space": {`{"from": "A", "to": {"kind": "space", "id": "nope"}}`, http.StatusNotFound},
		"override":      {`{"from": "A", "to": "C", "options": {"edgeWeightOverrides": [{"to": "B", "weight": 1}]}}`, http.StatusBadRequest},
	}
	for name, c := range cases {
		response := do(t, h, http.MethodPost, "/directions", c.body)
		assert.Equal(t, c.code, response.Code, name)
		assert.Contains(t, response.Body.String(), `"error"`, name)
	}
}

func TestGetDirectionsMulti(t *testing.T) {
	h := newHandler(t)
	response := do(t, h, http.MethodPost, "/directions/multi", `{"from": "A", "to": ["C", "X", "A"]}`)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	var result struct {
		Results []directionsResponse `json:"results"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Reachable)
	assert.False(t, result.Results[1].Reachable)
	assert.True(t, result.Results[2].Reachable)
	assert.Equal(t, []string{"A"}, result.Results[2].nodeIds())
}

func TestFindNearby(t *testing.T) {
	h := newHandler(t)
	response := do(t, h, http.MethodPost, "/nearby", `{"origin": "A", "maxTravelDistance": 15}`)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	var result Nodes
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "A", result.Nodes[0].Id)
	assert.Equal(t, "B", result.Nodes[1].Id)
	require.NotNil(t, result.Nodes[1].Distance)
	assert.InDelta(t, 10.0, *result.Nodes[1].Distance, 0.1)

	response = do(t, h, http.MethodPost, "/nearby", `{"origin": "A"}`)
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestGetNodes(t *testing.T) {
	h := newHandler(t)
	response := do(t, h, http.MethodGet, "/nodes", nil)
	require.Equal(t, http.StatusOK, response.Code)
	var result Nodes
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	assert.Len(t, result.Nodes, 6)

	response = do(t, h, http.MethodGet, "/nodes?floor=2", nil)
	require.Equal(t, http.StatusOK, response.Code)
	result = Nodes{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
	ids := make([]string, 0)
	for _, n := range result.Nodes {
		assert.Equal(t, "2", n.Floor)
		ids = append(ids, n.Id)
	}
	assert.Equal(t, []string{"L2", "C", "X"}, ids)
}

func TestSetNavigator(t *testing.T) {
	h := newHandler(t)
	response := do(t, h, http.MethodPost, "/navigator", `{"navigator": "dijkstra"}`)
	require.Equal(t, http.StatusOK, response.Code, response.Body.String())
	assert.JSONEq(t, `{"navigator": "dijkstra"}`, response.Body.String())

	response = do(t, h, http.MethodPost, "/navigator", `{"navigator": "teleport"}`)
	assert.Equal(t, http.StatusBadRequest, response.Code)

	response = do(t, h, http.MethodPost, "/navigator", `{}`)
	assert.Equal(t, http.StatusBadRequest, response.Code)

	response = do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": "C"}`)
	assert.Equal(t, http.StatusOK, response.Code)
}

func TestMetrics(t *testing.T) {
	h := newHandler(t)
	do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": "C"}`)
	do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": "X"}`)
	do(t, h, http.MethodPost, "/directions", `{"from": "A", "to": "nope"}`)

	response := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, response.Code)
	body := response.Body.String()
	assert.True(t, strings.Contains(body, `indoor_routing_requests_total{code="200",route="GetDirections"} 2`), body)
	assert.True(t, strings.Contains(body, `indoor_routing_requests_total{code="404",route="GetDirections"} 1`), body)
	assert.True(t, strings.Contains(body, "indoor_routing_unreachable_total 1"), body)
	assert.True(t, strings.Contains(body, "indoor_routing_search_settled_nodes_count 2"), body)
}
