package geometry

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Kind describes how an obstruction blocks the line of sight
type Kind int

const (
	Solid Kind = iota // boundary and interior block (pillars, fixtures, desks)
	Walls             // only the boundary blocks (outlines of spaces)
)

func (k Kind) String() string {
	switch k {
	case Solid:
		return "solid"
	case Walls:
		return "walls"
	default:
		return "unknown"
	}
}

// ParseKind parses the textual representation of a Kind. Unknown values are Solid.
func ParseKind(s string) Kind {
	if s == "walls" || s == "space" {
		return Walls
	}
	return Solid
}

// Obstruction is a piece of geometry on one floor used for line of sight tests
type Obstruction struct {
	Geometry orb.Geometry
	Floor    string
	Kind     Kind
}

type obstacle struct {
	kind     Kind
	bound    orb.Bound      // projected bound
	segments [][2]orb.Point // projected boundary segments
	polygons []orb.Polygon  // unprojected polygons for containment tests
}

// ObstructionSet holds the obstructions of a single floor in a local planar projection
type ObstructionSet struct {
	floor      string
	projection Projection
	obstacles  []obstacle
}

// NewObstructionSet prepares the given obstructions for line of sight tests.
// Returns nil if no obstruction contributes any boundary.
func NewObstructionSet(floor string, obstructions []Obstruction) *ObstructionSet {
	var s *ObstructionSet
	for _, o := range obstructions {
		if o.Geometry == nil {
			continue
		}
		if s == nil {
			center := o.Geometry.Bound().Center()
			s = &ObstructionSet{floor: floor, projection: NewProjection(Point(center))}
		}
		ob := obstacle{kind: o.Kind}
		s.collect(o.Geometry, &ob)
		if len(ob.segments) == 0 {
			continue
		}
		s.obstacles = append(s.obstacles, ob)
	}
	if s == nil || len(s.obstacles) == 0 {
		return nil
	}
	return s
}

// GroupObstructions creates one ObstructionSet per Obstruction.Floor key
func GroupObstructions(obstructions []Obstruction) map[string]*ObstructionSet {
	byFloor := make(map[string][]Obstruction)
	floors := make([]string, 0)
	for _, o := range obstructions {
		if o.Geometry == nil {
			continue
		}
		if _, ok := byFloor[o.Floor]; !ok {
			floors = append(floors, o.Floor)
		}
		byFloor[o.Floor] = append(byFloor[o.Floor], o)
	}
	sort.Strings(floors)

	sets := make(map[string]*ObstructionSet, len(floors))
	for _, floor := range floors {
		if set := NewObstructionSet(floor, byFloor[floor]); set != nil {
			sets[floor] = set
		}
	}
	return sets
}

func (s *ObstructionSet) collect(g orb.Geometry, ob *obstacle) {
	addLine := func(line []orb.Point) {
		for i := 1; i < len(line); i++ {
			a, b := s.projection.Project(line[i-1]), s.projection.Project(line[i])
			ob.segments = append(ob.segments, [2]orb.Point{a, b})
			if len(ob.segments) == 1 {
				ob.bound = orb.Bound{Min: a, Max: a}
			}
			ob.bound = ob.bound.Extend(a).Extend(b)
		}
	}

	switch g := g.(type) {
	case orb.LineString:
		addLine(g)
	case orb.MultiLineString:
		for _, ls := range g {
			addLine(ls)
		}
	case orb.Ring:
		addLine(g)
		ob.polygons = append(ob.polygons, orb.Polygon{g})
	case orb.Polygon:
		for _, r := range g {
			addLine(r)
		}
		ob.polygons = append(ob.polygons, g)
	case orb.MultiPolygon:
		for _, p := range g {
			s.collect(p, ob)
		}
	case orb.Bound:
		s.collect(g.ToPolygon(), ob)
	case orb.Collection:
		for _, c := range g {
			s.collect(c, ob)
		}
	}
}

// Floor returns the floor of the set
func (s *ObstructionSet) Floor() string { return s.floor }

// Len returns the number of obstacles in the set
func (s *ObstructionSet) Len() int { return len(s.obstacles) }

// LineOfSight reports whether the straight segment a-b keeps at least buffer meters of clearance
// to every boundary and does not pass through a solid obstruction.
// With a buffer of 0, touching a boundary already blocks.
func (s *ObstructionSet) LineOfSight(a, b Point, buffer float64) bool {
	if s == nil {
		return true
	}
	if buffer < 0 {
		buffer = 0
	}
	pa, pb := s.projection.Project(a.Orb()), s.projection.Project(b.Orb())
	segmentBound := orb.Bound{Min: pa, Max: pa}.Extend(pb).Pad(buffer)
	mid := orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}

	for _, ob := range s.obstacles {
		if !ob.bound.Intersects(segmentBound) {
			continue
		}
		for _, seg := range ob.segments {
			if buffer == 0 {
				if SegmentsIntersect(pa, pb, seg[0], seg[1]) {
					return false
				}
			} else if SegmentDistance(pa, pb, seg[0], seg[1]) < buffer {
				return false
			}
		}
		if ob.kind != Solid {
			continue
		}
		for _, polygon := range ob.polygons {
			if planar.PolygonContains(polygon, a.Orb()) || planar.PolygonContains(polygon, b.Orb()) || planar.PolygonContains(polygon, mid) {
				return false
			}
		}
	}
	return true
}
