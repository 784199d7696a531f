// Package zone evaluates polygon shaped cost surcharges for a query.
//
// Containment follows the even-odd rule of orb/planar: a point is inside a polygon when it
// lies inside the outer ring and inside none of the holes. A multi-polygon contains the point
// when any of its polygons does. Points on a ring count as inside.
package zone

import (
	"math"

	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

var ErrInvalidZone = errors.New("zone: invalid cost zone")

// CostZone adds AdditionalCost to every edge which ends inside the geometry
type CostZone struct {
	Geometry       orb.Geometry // orb.Polygon or orb.MultiPolygon
	AdditionalCost float64      // >= 0, +Inf forbids the area
	Floor          string       // "" applies the zone to every floor
}

func (z CostZone) Validate() error {
	if math.IsNaN(z.AdditionalCost) || z.AdditionalCost < 0 {
		return errors.Wrapf(ErrInvalidZone, "additional cost %v", z.AdditionalCost)
	}
	switch z.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return nil
	case nil:
		return errors.Wrap(ErrInvalidZone, "missing geometry")
	default:
		return errors.Wrapf(ErrInvalidZone, "unsupported geometry %s", z.Geometry.GeoJSONType())
	}
}

// Infinite reports whether the zone forbids its area
func (z CostZone) Infinite() bool {
	return math.IsInf(z.AdditionalCost, 1)
}

// AppliesTo reports whether the zone is scoped to the floor
func (z CostZone) AppliesTo(floor string) bool {
	return z.Floor == "" || z.Floor == floor
}

// Contains reports whether the point lies inside the zone geometry
func (z CostZone) Contains(p geometry.Point) bool {
	switch g := z.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p.Orb())
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p.Orb())
	}
	return false
}

// CostFor sums the applicable zones which contain the point.
// Returns 0 if none applies and +Inf if any applicable zone is infinite.
func CostFor(p geometry.Point, floor string, zones []CostZone) float64 {
	cost := 0.0
	for _, z := range zones {
		if !z.AppliesTo(floor) || !z.Contains(p) {
			continue
		}
		if z.Infinite() {
			return math.Inf(1)
		}
		cost += z.AdditionalCost
	}
	return cost
}

// ValidateAll checks every zone and reports the first invalid one
func ValidateAll(zones []CostZone) error {
	for i, z := range zones {
		if err := z.Validate(); err != nil {
			return errors.Wrapf(err, "zone %d", i)
		}
	}
	return nil
}

// Overlay memoizes the surcharge per node for a single query.
// It is not safe for concurrent use; every search creates its own.
type Overlay struct {
	g      graph.Graph
	zones  []CostZone
	cost   []float64
	cached []bool
}

// NewOverlay returns nil if there are no zones
func NewOverlay(g graph.Graph, zones []CostZone) *Overlay {
	if len(zones) == 0 {
		return nil
	}
	return &Overlay{
		g:      g,
		zones:  zones,
		cost:   make([]float64, g.NodeCount()),
		cached: make([]bool, g.NodeCount()),
	}
}

// Cost returns the surcharge at the node position
func (o *Overlay) Cost(node graph.NodeId) float64 {
	if o == nil {
		return 0
	}
	if !o.cached[node] {
		o.cost[node] = CostFor(o.g.GetNode(node).Position, o.g.Group(node), o.zones)
		o.cached[node] = true
	}
	return o.cost[node]
}

// Forbidden reports whether the node lies inside an infinite zone
func (o *Overlay) Forbidden(node graph.NodeId) bool {
	return math.IsInf(o.Cost(node), 1)
}

// Blocks reports whether the segment a-b touches an infinite zone of the floor
func Blocks(a, b geometry.Point, floor string, zones []CostZone) bool {
	for _, z := range zones {
		if z.Infinite() && z.AppliesTo(floor) && geometry.SegmentIntersectsArea(a, b, z.Geometry) {
			return true
		}
	}
	return false
}
