package openapi_server

import (
	"github.com/natevvv/indoor-routing/pkg/directions"
	"github.com/natevvv/indoor-routing/pkg/graph/path"
)

type DirectionsResult struct {
	Reachable  bool                   `json:"reachable"`
	Directions *directions.Directions `json:"directions,omitempty"`
	KPIs       path.KPIs              `json:"kpis"`
}

type MultiDirectionsResult struct {
	Results []DirectionsResult `json:"results"`
}
