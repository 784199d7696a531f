package pbf

import (
	"os"

	"github.com/natevvv/indoor-routing/pkg/venue"
	gj "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// ExportVenueJson writes the venue bundle
func ExportVenueJson(v *venue.Venue, filename string) error {
	return v.Save(filename)
}

// NetworkGeoJson returns every edge of the venue as line string, edges in both directions only once.
// Edges between floors carry the "connection" property.
func NetworkGeoJson(v *venue.Venue) *gj.FeatureCollection {
	connectionOf := make(map[string]string)
	for _, c := range v.Connections {
		for _, id := range c.NodeIds {
			connectionOf[id] = c.Id
		}
	}
	nodes := make(map[string]venue.Node, len(v.Nodes))
	for _, n := range v.Nodes {
		nodes[n.Id] = n
	}

	fc := gj.NewFeatureCollection()
	written := make(map[[2]string]bool)
	for _, n := range v.Nodes {
		for _, neighbor := range n.Neighbors {
			to, ok := nodes[neighbor.Id]
			if !ok || written[[2]string{to.Id, n.Id}] || written[[2]string{n.Id, to.Id}] {
				continue
			}
			written[[2]string{n.Id, to.Id}] = true

			f := gj.NewLineStringFeature([][]float64{{n.Lon, n.Lat}, {to.Lon, to.Lat}})
			f.SetProperty("from", n.Id)
			f.SetProperty("to", to.Id)
			f.SetProperty("weight", neighbor.Weight)
			if n.Floor != to.Floor {
				f.SetProperty("connection", connectionOf[n.Id])
			} else {
				f.SetProperty("floor", n.Floor)
			}
			fc.AddFeature(f)
		}
	}
	return fc
}

// ExportNetworkGeoJson writes the walkable network for inspection in GIS tools
func ExportNetworkGeoJson(v *venue.Venue, filename string) error {
	data, err := NetworkGeoJson(v).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't encode network")
	}
	return errors.Wrap(os.WriteFile(filename, data, 0o644), "Can't write network")
}
