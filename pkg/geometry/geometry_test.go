package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = MakePoint(45.5017, -73.5673)

func TestDistanceTo(t *testing.T) {
	north := origin.Offset(10, 0)
	east := origin.Offset(0, 25)

	assert.InDelta(t, 10, origin.DistanceTo(north), 1e-6)
	assert.InDelta(t, 25, origin.DistanceTo(east), 1e-6)
	assert.InDelta(t, 0, origin.DistanceTo(origin), 1e-12)
	// diagonal moves round trip with the distance metric
	assert.InDelta(t, 50, origin.DistanceTo(origin.Offset(30, -40)), 1e-7)
	assert.InDelta(t, 10*math.Sqrt2, origin.DistanceTo(origin.Offset(10, 10)), 1e-7)
	assert.InDelta(t, 10, origin.Offset(10, 0).DistanceTo(origin.Offset(10, 0).Offset(0, 10)), 1e-7)
	// equirectangular and haversine agree at indoor scale
	assert.InDelta(t, origin.Haversine(east), origin.DistanceTo(east), 0.01)
}

func TestBearingTo(t *testing.T) {
	assert.InDelta(t, 0, origin.BearingTo(origin.Offset(10, 0)), 1e-6)
	assert.InDelta(t, math.Pi/2, origin.BearingTo(origin.Offset(0, 10)), 1e-4)
	assert.InDelta(t, -math.Pi/2, origin.BearingTo(origin.Offset(0, -10)), 1e-4)
	assert.InDelta(t, math.Pi, math.Abs(origin.BearingTo(origin.Offset(-10, 0))), 1e-6)
	assert.Equal(t, 0.0, origin.BearingTo(origin))
}

func TestAngleDelta(t *testing.T) {
	assert.InDelta(t, math.Pi/2, AngleDelta(0, math.Pi/2), 1e-12)
	assert.InDelta(t, -math.Pi/2, AngleDelta(math.Pi/2, 0), 1e-12)
	// crossing the +-pi seam takes the short way round
	assert.InDelta(t, math.Pi/6, AngleDelta(math.Pi-math.Pi/12, -math.Pi+math.Pi/12), 1e-12)
	assert.InDelta(t, math.Pi, AngleDelta(0, math.Pi), 1e-12)
}

func TestString(t *testing.T) {
	assert.Equal(t, "POINT(1 2)", MakePoint(2, 1).String())
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0}))
	assert.False(t, SegmentsIntersect(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1}))
	// touching end points
	assert.True(t, SegmentsIntersect(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{1, 0}, orb.Point{1, 1}))
	// collinear disjoint
	assert.False(t, SegmentsIntersect(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}, orb.Point{3, 0}))
}

func TestSegmentDistance(t *testing.T) {
	assert.InDelta(t, 1, SegmentDistance(orb.Point{0, 0}, orb.Point{2, 0}, orb.Point{1, 1}, orb.Point{1, 3}), 1e-12)
	assert.Equal(t, 0.0, SegmentDistance(orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0}))
	assert.InDelta(t, math.Sqrt2, PointSegmentDistance(orb.Point{1, 1}, orb.Point{0, 0}, orb.Point{0, 0}), 1e-12)
	assert.InDelta(t, 2, PointSegmentDistance(orb.Point{1, 2}, orb.Point{0, 0}, orb.Point{3, 0}), 1e-12)
	assert.InDelta(t, 5, PointSegmentDistance(orb.Point{6, 4}, orb.Point{0, 0}, orb.Point{3, 0}), 1e-12)
}

// wall running north-south 5m east of the origin, from 5m south to 5m north
func wall() Obstruction {
	return Obstruction{
		Geometry: orb.LineString{origin.Offset(-5, 5).Orb(), origin.Offset(5, 5).Orb()},
		Floor:    "L1",
		Kind:     Walls,
	}
}

func TestLineOfSight(t *testing.T) {
	set := NewObstructionSet("L1", []Obstruction{wall()})
	require.NotNil(t, set)
	assert.Equal(t, 1, set.Len())

	west := origin
	east := origin.Offset(0, 10)
	north := origin.Offset(8, 0)
	farNorthEast := origin.Offset(8, 10)

	assert.False(t, set.LineOfSight(west, east, 0), "wall crosses the segment")
	assert.True(t, set.LineOfSight(west, north, 0))
	assert.True(t, set.LineOfSight(north, farNorthEast, 0), "segment passes 3m north of the wall end")
	assert.False(t, set.LineOfSight(north, farNorthEast, 3.5), "buffer exceeds the clearance")
	assert.True(t, set.LineOfSight(north, farNorthEast, 2.5))
}

func TestLineOfSightSolid(t *testing.T) {
	// a 2x2m pillar around a point 10m north
	c := origin.Offset(10, 0)
	ring := orb.Ring{c.Offset(-1, -1).Orb(), c.Offset(-1, 1).Orb(), c.Offset(1, 1).Orb(), c.Offset(1, -1).Orb(), c.Offset(-1, -1).Orb()}
	set := NewObstructionSet("L1", []Obstruction{{Geometry: orb.Polygon{ring}, Floor: "L1", Kind: Solid}})
	require.NotNil(t, set)

	assert.False(t, set.LineOfSight(origin, origin.Offset(20, 0), 0))
	assert.False(t, set.LineOfSight(c, c.Offset(0.5, 0), 0), "segment inside the pillar")
	assert.True(t, set.LineOfSight(origin.Offset(0, 5), origin.Offset(20, 5), 0))
}

func TestNilObstructionSet(t *testing.T) {
	var set *ObstructionSet
	assert.True(t, set.LineOfSight(origin, origin.Offset(1, 1), 1))
	assert.Nil(t, NewObstructionSet("L1", nil))
}

func TestGroupObstructions(t *testing.T) {
	w := wall()
	other := wall()
	other.Floor = "L2"
	sets := GroupObstructions([]Obstruction{w, other, {Floor: "L3"}})
	assert.Len(t, sets, 2)
	assert.Equal(t, "L2", sets["L2"].Floor())
	assert.Nil(t, sets["L3"])
}

func TestSegmentIntersectsArea(t *testing.T) {
	c := origin.Offset(10, 0)
	square := orb.Polygon{orb.Ring{c.Offset(-1, -1).Orb(), c.Offset(-1, 1).Orb(), c.Offset(1, 1).Orb(), c.Offset(1, -1).Orb(), c.Offset(-1, -1).Orb()}}

	assert.True(t, SegmentIntersectsArea(origin, origin.Offset(20, 0), square))
	assert.True(t, SegmentIntersectsArea(c, c.Offset(0.1, 0.1), orb.MultiPolygon{square}))
	assert.False(t, SegmentIntersectsArea(origin, origin.Offset(0, 20), square))
	assert.False(t, SegmentIntersectsArea(origin, c, orb.LineString{}))
}
