package directions

import (
	"github.com/natevvv/indoor-routing/pkg/geometry"
	gj "github.com/paulmach/go.geojson"
)

func coordinates(points ...geometry.Point) [][]float64 {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lon(), p.Lat()})
	}
	return coords
}

// ToGeoJSON exports the directions as a FeatureCollection with one LineString per walked floor section
// and one Point per instruction.
func ToGeoJSON(d *Directions) *gj.FeatureCollection {
	fc := gj.NewFeatureCollection()
	if d == nil || len(d.Path) == 0 {
		return fc
	}

	section := []geometry.Point{d.Path[0].Position}
	floor := d.Path[0].Floor
	flush := func() {
		if len(section) < 2 {
			return
		}
		f := gj.NewLineStringFeature(coordinates(section...))
		f.SetProperty("floor", floor)
		fc.AddFeature(f)
	}
	for _, s := range d.Steps {
		if s.Crosses {
			flush()
			section = []geometry.Point{s.To.Position}
			floor = s.To.Floor
			continue
		}
		section = append(section, s.To.Position)
	}
	flush()

	for i, in := range d.Instructions {
		f := gj.NewPointFeature(coordinates(in.Position)[0])
		f.SetProperty("index", i)
		f.SetProperty("action", in.Action.String())
		f.SetProperty("bearing", in.Bearing.String())
		f.SetProperty("fromFloor", in.FromFloor)
		f.SetProperty("toFloor", in.ToFloor)
		f.SetProperty("distance", in.Distance)
		if in.Connection != nil {
			f.SetProperty("connection", in.Connection.Id)
			f.SetProperty("connectionType", string(in.Connection.Type))
		}
		fc.AddFeature(f)
	}
	return fc
}
