package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// orientation of the triplet (p, q, r): >0 counter clockwise, <0 clockwise, 0 collinear
func orientation(p, q, r orb.Point) float64 {
	return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
}

// onSegment reports whether r lies within the bounding box of the segment p-q
func onSegment(p, q, r orb.Point) bool {
	return math.Min(p[0], q[0]) <= r[0] && r[0] <= math.Max(p[0], q[0]) &&
		math.Min(p[1], q[1]) <= r[1] && r[1] <= math.Max(p[1], q[1])
}

// SegmentsIntersect reports whether the closed segments p1-p2 and p3-p4 share at least one point
func SegmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

// PointSegmentDistance returns the planar distance from p to the segment a-b
func PointSegmentDistance(p, a, b orb.Point) float64 {
	return planar.DistanceFromSegment(a, b, p)
}

// SegmentDistance returns the planar distance between the segments a-b and c-d
func SegmentDistance(a, b, c, d orb.Point) float64 {
	if SegmentsIntersect(a, b, c, d) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(a, c, d), PointSegmentDistance(b, c, d)),
		math.Min(PointSegmentDistance(c, a, b), PointSegmentDistance(d, a, b)),
	)
}

// SegmentIntersectsArea reports whether the segment a-b touches the area of a Polygon or MultiPolygon.
// Other geometry types never intersect.
func SegmentIntersectsArea(a, b Point, g orb.Geometry) bool {
	var polygons []orb.Polygon
	switch g := g.(type) {
	case orb.Polygon:
		polygons = []orb.Polygon{g}
	case orb.MultiPolygon:
		polygons = g
	case orb.Bound:
		polygons = []orb.Polygon{g.ToPolygon()}
	default:
		return false
	}

	pa, pb := a.Orb(), b.Orb()
	segmentBound := orb.Bound{Min: pa, Max: pa}.Extend(pb)
	for _, polygon := range polygons {
		if !polygon.Bound().Intersects(segmentBound) {
			continue
		}
		if planar.PolygonContains(polygon, pa) || planar.PolygonContains(polygon, pb) {
			return true
		}
		for _, ring := range polygon {
			for i := 1; i < len(ring); i++ {
				if SegmentsIntersect(pa, pb, ring[i-1], ring[i]) {
					return true
				}
			}
		}
	}
	return false
}
