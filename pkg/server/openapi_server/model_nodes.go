package openapi_server

import (
	"github.com/natevvv/indoor-routing/pkg/geometry"
)

type Node struct {
	Id       string         `json:"id"`
	Floor    string         `json:"floor"`
	Position geometry.Point `json:"position"`
	Distance *float64       `json:"distance,omitempty"` // travel distance, nearby results only
}

type Nodes struct {
	Nodes []Node `json:"nodes"`
}
