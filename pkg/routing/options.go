package routing

import (
	"encoding/json"
	"strings"

	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/zone"
	"github.com/pkg/errors"
)

// DefaultSmoothingRadius is the clearance in meters kept to walls when paths are smoothed
const DefaultSmoothingRadius = 0.3

type DeploymentMode int

const (
	Consumer   DeploymentMode = iota // smoothing enabled by default
	Enterprise                       // smoothing disabled by default
)

func (m DeploymentMode) String() string {
	if m == Enterprise {
		return "enterprise"
	}
	return "consumer"
}

func ParseDeploymentMode(s string) (DeploymentMode, error) {
	switch strings.ToLower(s) {
	case "", "consumer":
		return Consumer, nil
	case "enterprise":
		return Enterprise, nil
	default:
		return Consumer, errors.Errorf("unknown deployment mode %q", s)
	}
}

type Config struct {
	Mode            DeploymentMode
	SmoothingRadius float64 // 0 uses DefaultSmoothingRadius
	Navigator       string  // "astar" if empty
}

// DefaultSmoothing returns the smoothing used by queries which don't set it
func (c Config) DefaultSmoothing() Smoothing {
	radius := c.SmoothingRadius
	if radius <= 0 {
		radius = DefaultSmoothingRadius
	}
	return Smoothing{Enabled: c.Mode == Consumer, Radius: radius}
}

type Smoothing struct {
	Enabled bool    `json:"enabled"`
	Radius  float64 `json:"radius,omitempty"` // 0 uses the radius of the router config
}

// UnmarshalJSON accepts a bare bool next to the object form
func (s *Smoothing) UnmarshalJSON(data []byte) error {
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err == nil {
		*s = Smoothing{Enabled: enabled}
		return nil
	}
	type plain Smoothing
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "Can't decode smoothing")
	}
	*s = Smoothing(decoded)
	return nil
}

// Options of a single directions query
type Options struct {
	Accessible          bool                      `json:"accessible"`
	Smoothing           *Smoothing                `json:"smoothing,omitempty"` // nil uses the default of the deployment mode
	ExcludedConnections []string                  `json:"excludedConnections,omitempty"`
	Zones               []zone.CostZone           `json:"-"`
	EdgeWeightOverrides map[graph.EdgeKey]float64 `json:"-"`
}
