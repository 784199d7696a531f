package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"
)

const (
	EarthRadius = orb.EarthRadius // meters
	pi180       = math.Pi / 180.0
)

// Point is a WGS84 position. The underlying orb.Point stores longitude first.
type Point orb.Point

func MakePoint(lat, lon float64) Point {
	return Point{lon, lat}
}

func NewPoint(lat, lon float64) *Point {
	p := MakePoint(lat, lon)
	return &p
}

func (p Point) Lat() float64       { return p[1] }
func (p Point) Lon() float64       { return p[0] }
func (p Point) Orb() orb.Point     { return orb.Point(p) }
func (p Point) Equal(q Point) bool { return p[0] == q[0] && p[1] == q[1] }

// String returns the WKT representation of the point
func (p Point) String() string {
	return wkt.MarshalString(p.Orb())
}

// DistanceTo returns the equirectangular approximation of the distance to q in meters.
// The same approximation is used for edge distances and for the A* heuristic.
func (p Point) DistanceTo(q Point) float64 {
	x := (q.Lon() - p.Lon()) * pi180 * math.Cos((p.Lat()+q.Lat())/2*pi180)
	y := (q.Lat() - p.Lat()) * pi180
	return math.Sqrt(x*x+y*y) * EarthRadius
}

// Haversine returns the great circle distance to q in meters
func (p Point) Haversine(q Point) float64 {
	return geo.DistanceHaversine(p.Orb(), q.Orb())
}

// BearingTo returns the initial bearing towards q in radians, clockwise from north, in (-pi, pi].
// Identical points have a bearing of 0.
func (p Point) BearingTo(q Point) float64 {
	if p.Equal(q) {
		return 0
	}
	return NormalizeAngle(geo.Bearing(p.Orb(), q.Orb()) * pi180)
}

// NormalizeAngle maps an angle in radians into (-pi, pi]
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// AngleDelta returns the signed smallest rotation from bearing a to bearing b.
// Positive values turn clockwise (right).
func AngleDelta(a, b float64) float64 {
	return NormalizeAngle(b - a)
}

// Offset moves the point by the given meters towards north and east.
// Uses the mean latitude like DistanceTo, so p.DistanceTo(p.Offset(n, e)) is hypot(n, e).
func (p Point) Offset(north, east float64) Point {
	lat := p.Lat() + north/EarthRadius/pi180
	lon := p.Lon() + east/(EarthRadius*math.Cos((p.Lat()+lat)/2*pi180))/pi180
	return MakePoint(lat, lon)
}

// Projection maps WGS84 positions into a local plane (meters) around an origin.
type Projection struct {
	origin Point
	cosLat float64
}

func NewProjection(origin Point) Projection {
	return Projection{origin: origin, cosLat: math.Cos(origin.Lat() * pi180)}
}

// Project returns x (east) and y (north) in meters relative to the origin
func (pr Projection) Project(p orb.Point) orb.Point {
	x := (p.Lon() - pr.origin.Lon()) * pi180 * pr.cosLat * EarthRadius
	y := (p.Lat() - pr.origin.Lat()) * pi180 * EarthRadius
	return orb.Point{x, y}
}
