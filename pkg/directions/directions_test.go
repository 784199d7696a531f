package directions

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/zone"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = geometry.MakePoint(52.52, 13.405)

func TestClassifyBearing(t *testing.T) {
	cases := []struct {
		delta    float64
		expected BearingType
	}{
		{0, Straight},
		{20, Straight},
		{-20, Straight},
		{20.5, SlightRight},
		{60, SlightRight},
		{61, Right},
		{150, Right},
		{151, Back},
		{180, Back},
		{-180, Back},
		{-151, Back},
		{-150, Left},
		{-61, Left},
		{-60, SlightLeft},
		{-21, SlightLeft},
		{270, Left},
		{-300, SlightRight},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, ClassifyBearing(c.delta), "delta %v", c.delta)
	}
}

type fixture struct {
	g         graph.Graph
	processor *Processor
}

func (f fixture) edges(t *testing.T, ids ...string) []graph.Edge {
	edges := make([]graph.Edge, 0)
	for i := 1; i < len(ids); i++ {
		from, ok := f.g.Lookup(ids[i-1])
		require.True(t, ok, ids[i-1])
		to, ok := f.g.Lookup(ids[i])
		require.True(t, ok, ids[i])
		found := false
		for _, arc := range f.g.GetArcsFrom(from) {
			if arc.To == to {
				edges = append(edges, arc)
				found = true
				break
			}
		}
		require.True(t, found, "%v -> %v", ids[i-1], ids[i])
	}
	return edges
}

func (f fixture) node(id string) graph.NodeId {
	n, _ := f.g.Lookup(id)
	return n
}

func link(weight float64, ids ...string) []graph.Neighbor {
	neighbors := make([]graph.Neighbor, 0, len(ids))
	for _, id := range ids {
		neighbors = append(neighbors, graph.Neighbor{Id: id, Weight: weight})
	}
	return neighbors
}

// Floor 1: A, 10m north B, 10m east of B C with a lift to floor 2 and 3.
// Floor 2 and 3 each have a lift node above C and a room D 10m east of it.
func building(t *testing.T, obstructions ...geometry.Obstruction) fixture {
	b := origin.Offset(10, 0)
	c := b.Offset(0, 10)
	nodes := []graph.Node{
		{Id: "A", Position: origin, Floor: "1", Neighbors: link(1, "B")},
		{Id: "B", Position: b, Floor: "1", Neighbors: link(1, "A", "C")},
		{Id: "C", Position: c, Floor: "1", Neighbors: append(link(1, "B"), link(5, "L2")...)},
		{Id: "L2", Position: c, Floor: "2", Neighbors: append(link(1, "D2"), link(5, "C", "L3")...)},
		{Id: "D2", Position: c.Offset(0, 10), Floor: "2", Neighbors: link(1, "L2")},
		{Id: "L3", Position: c, Floor: "3", Neighbors: append(link(1, "D3"), link(5, "L2")...)},
		{Id: "D3", Position: c.Offset(0, 10), Floor: "3", Neighbors: link(1, "L3")},
	}
	g, err := graph.Build(nodes, obstructions, graph.BuildOptions{Scaling: graph.Multiplicative})
	require.NoError(t, err)
	r, err := connection.NewResolver(g, []connection.Descriptor{
		{Id: "lift", NodeIds: []string{"C", "L2", "L3"}, Type: connection.Elevator, Accessible: true},
	}, nil)
	require.NoError(t, err)
	return fixture{g: g, processor: NewProcessor(g, r, nil)}
}

func actions(d *Directions) []ActionType {
	result := make([]ActionType, 0, len(d.Instructions))
	for _, in := range d.Instructions {
		result = append(result, in.Action)
	}
	return result
}

func TestGenerateWithConnection(t *testing.T) {
	f := building(t)
	d := f.processor.Generate(f.node("A"), f.edges(t, "A", "B", "C", "L2", "D2"))

	assert.Equal(t, []ActionType{Departure, Turn, TakeConnection, ExitConnection, Arrival}, actions(d))
	assert.Equal(t, Right, d.Instructions[1].Bearing)

	take, exit := d.Instructions[2], d.Instructions[3]
	require.NotNil(t, take.Connection)
	assert.Equal(t, "lift", take.Connection.Id)
	assert.Equal(t, "1", take.FromFloor)
	assert.Equal(t, "2", take.ToFloor)
	assert.Equal(t, "2", exit.ToFloor)

	assert.InDelta(t, 30, d.Distance, 1e-6)
	assert.InDelta(t, 10, d.Instructions[0].Distance, 1e-6)
	assert.InDelta(t, 10, d.Instructions[1].Distance, 1e-6)
	assert.InDelta(t, 0, d.Instructions[2].Distance, 1e-6)
	assert.InDelta(t, 10, d.Instructions[3].Distance, 1e-6)
	assert.Equal(t, 0.0, d.Instructions[4].Distance)

	assert.Len(t, d.Path, 5)
	assert.Equal(t, "D2", d.Path[4].NodeId)
	assert.Len(t, d.Coordinates, 5)
	assert.Len(t, d.Steps, 4)
	assert.True(t, d.Steps[2].Crosses)
}

func TestConsecutiveConnectionsAreMerged(t *testing.T) {
	f := building(t)
	d := f.processor.Generate(f.node("C"), f.edges(t, "C", "L2", "L3", "D3"))

	assert.Equal(t, []ActionType{Departure, TakeConnection, ExitConnection, Arrival}, actions(d))
	assert.Equal(t, "1", d.Instructions[1].FromFloor)
	assert.Equal(t, "3", d.Instructions[1].ToFloor)
	assert.Equal(t, 1, d.Instructions[2].Step)
}

func TestZeroLengthDirections(t *testing.T) {
	f := building(t)
	d := f.processor.Generate(f.node("B"), nil)

	require.Len(t, d.Instructions, 1)
	assert.Equal(t, Arrival, d.Instructions[0].Action)
	assert.Equal(t, 0.0, d.Instructions[0].Distance)
	assert.Equal(t, 0.0, d.Distance)
	require.Len(t, d.Path, 1)
	assert.Equal(t, "B", d.Path[0].NodeId)
}

func TestStitchCoordinates(t *testing.T) {
	f := building(t)
	d := f.processor.Generate(f.node("A"), f.edges(t, "A", "B"))
	f.processor.StitchOrigin(d, origin.Offset(-5, 0))
	f.processor.StitchDestination(d, origin.Offset(10, 0).Offset(0, -3))

	require.Len(t, d.Path, 4)
	assert.Equal(t, "", d.Path[0].NodeId)
	assert.Equal(t, "1", d.Path[0].Floor)
	assert.Equal(t, "", d.Path[3].NodeId)
	assert.InDelta(t, 18, d.Distance, 1e-6)
	assert.Equal(t, 0.0, d.Steps[0].Cost)
	assert.Equal(t, []ActionType{Departure, Turn, Arrival}, actions(d))
	assert.Equal(t, Left, d.Instructions[1].Bearing)
}

// P0 north to P2 with a kink at P1, east to P3 and back south to P4, then a floor change to X and Y.
// A wall running north-south between P0 and P4 blocks every shortcut across it.
func zigzag(t *testing.T, withGeometry bool) fixture {
	nodes := []graph.Node{
		{Id: "P0", Position: origin, Floor: "1", Neighbors: link(1, "P1")},
		{Id: "P1", Position: origin.Offset(5, 1), Floor: "1", Neighbors: link(1, "P2")},
		{Id: "P2", Position: origin.Offset(10, 0), Floor: "1", Neighbors: link(1, "P3")},
		{Id: "P3", Position: origin.Offset(10, 10), Floor: "1", Neighbors: link(1, "P4")},
		{Id: "P4", Position: origin.Offset(0, 10), Floor: "1", Neighbors: link(1, "X")},
		{Id: "X", Position: origin.Offset(0, 10), Floor: "2", Neighbors: link(1, "Y")},
		{Id: "Y", Position: origin.Offset(5, 10), Floor: "2"},
	}
	var obstructions []geometry.Obstruction
	if withGeometry {
		// 5m east of P0, from 5m south up to 2m before the P2-P3 corridor
		obstructions = append(obstructions, geometry.Obstruction{
			Geometry: orb.LineString{origin.Offset(-5, 5).Orb(), origin.Offset(8, 5).Orb()},
			Floor:    "1",
			Kind:     geometry.Walls,
		})
	}
	g, err := graph.Build(nodes, obstructions, graph.BuildOptions{Scaling: graph.Multiplicative})
	require.NoError(t, err)
	return fixture{g: g, processor: NewProcessor(g, nil, nil)}
}

func nodeIds(g graph.Graph, edges []graph.Edge) []string {
	ids := []string{g.GetNode(edges[0].From).Id}
	for _, e := range edges {
		ids = append(ids, g.GetNode(e.To).Id)
	}
	return ids
}

func TestSimplify(t *testing.T) {
	f := zigzag(t, true)
	edges := f.edges(t, "P0", "P1", "P2", "P3", "P4", "X", "Y")

	simplified := f.processor.Simplify(edges, 0, nil)
	assert.Equal(t, []string{"P0", "P2", "P3", "P4", "X", "Y"}, nodeIds(f.g, simplified))

	total := 0.0
	for _, e := range edges[:4] {
		total += e.Weight
	}
	assert.InDelta(t, total, simplified[0].Weight+simplified[1].Weight+simplified[2].Weight, 1e-9)

	// P0-P2 passes the wall in 5m distance
	buffered := f.processor.Simplify(edges, 5.5, nil)
	assert.Equal(t, []string{"P0", "P1", "P2", "P3", "P4", "X", "Y"}, nodeIds(f.g, buffered))
}

func TestSimplifySafety(t *testing.T) {
	f := zigzag(t, true)
	edges := f.edges(t, "P0", "P1", "P2", "P3", "P4", "X", "Y")
	original := make(map[[2]graph.NodeId]bool)
	for _, e := range edges {
		original[[2]graph.NodeId{e.From, e.To}] = true
	}

	for _, buffer := range []float64{0, 0.5, 1, 2, 5, 6} {
		for _, e := range f.processor.Simplify(edges, buffer, nil) {
			if original[[2]graph.NodeId{e.From, e.To}] {
				continue
			}
			assert.False(t, e.Crosses(f.g))
			set := f.g.Obstructions(f.g.Group(e.From))
			assert.True(t, set.LineOfSight(f.g.GetNode(e.From).Position, f.g.GetNode(e.To).Position, buffer))
		}
	}
}

func TestSimplifyAvoidsInfiniteZones(t *testing.T) {
	f := zigzag(t, true)
	edges := f.edges(t, "P0", "P1", "P2", "P3", "P4")
	// forbid the area around the P0-P2 shortcut
	ring := orb.Ring{origin.Offset(4, -1).Orb(), origin.Offset(4, 1).Orb(), origin.Offset(6, 1).Orb(), origin.Offset(6, -1).Orb(), origin.Offset(4, -1).Orb()}
	zones := []zone.CostZone{{Geometry: orb.Polygon{ring}, AdditionalCost: math.Inf(1)}}

	simplified := f.processor.Simplify(edges, 0, zones)
	assert.Equal(t, []string{"P0", "P1", "P2", "P3", "P4"}, nodeIds(f.g, simplified))

	zones[0].AdditionalCost = 100
	simplified = f.processor.Simplify(edges, 0, zones)
	assert.Equal(t, []string{"P0", "P2", "P3", "P4"}, nodeIds(f.g, simplified))
}

func TestSimplifyWithoutGeometry(t *testing.T) {
	f := zigzag(t, false)
	edges := f.edges(t, "P0", "P1", "P2", "P3", "P4", "X", "Y")
	assert.Equal(t, edges, f.processor.Simplify(edges, 0, nil))
}

// the west and east wings of floor 1 are separate groups, the wall on floor 1 applies to both
func TestWingGroups(t *testing.T) {
	wing := func(name string) graph.Extra { return graph.Extra{"wing": graph.StringValue(name)} }
	nodes := []graph.Node{
		{Id: "P0", Position: origin, Floor: "1", Neighbors: link(1, "P1"), Extra: wing("west")},
		{Id: "P1", Position: origin.Offset(5, 1), Floor: "1", Neighbors: link(1, "P2"), Extra: wing("west")},
		{Id: "P2", Position: origin.Offset(10, 0), Floor: "1", Neighbors: link(1, "P3"), Extra: wing("west")},
		{Id: "P3", Position: origin.Offset(10, 10), Floor: "1", Neighbors: link(1, "P4"), Extra: wing("east")},
		{Id: "P4", Position: origin.Offset(0, 10), Floor: "1", Extra: wing("east")},
	}
	wall := geometry.Obstruction{
		Geometry: orb.LineString{origin.Offset(-5, 5).Orb(), origin.Offset(8, 5).Orb()},
		Floor:    "1",
		Kind:     geometry.Walls,
	}
	g, err := graph.Build(nodes, []geometry.Obstruction{wall}, graph.BuildOptions{GroupBy: "wing", Scaling: graph.Multiplicative})
	require.NoError(t, err)
	f := fixture{g: g, processor: NewProcessor(g, nil, nil)}
	edges := f.edges(t, "P0", "P1", "P2", "P3", "P4")

	assert.Equal(t, []string{"P0", "P2", "P3", "P4"}, nodeIds(g, f.processor.Simplify(edges, 0, nil)))

	d := f.processor.Generate(f.node("P0"), edges)
	assert.Equal(t, "west", d.Path[0].Floor)
	assert.Equal(t, "east", d.Path[4].Floor)
	assert.True(t, d.Steps[2].Crosses)
	// the step between the wings is a group change like a floor change
	assert.Equal(t, []ActionType{Departure, Turn, TakeConnection, ExitConnection, Arrival}, actions(d))
	take := d.Instructions[2]
	assert.Equal(t, "west", take.FromFloor)
	assert.Equal(t, "east", take.ToFloor)
}

func TestToGeoJSON(t *testing.T) {
	f := building(t)
	d := f.processor.Generate(f.node("A"), f.edges(t, "A", "B", "C", "L2", "D2"))

	fc := ToGeoJSON(d)
	// two floor sections and five instructions
	require.Len(t, fc.Features, 7)
	assert.True(t, fc.Features[0].Geometry.IsLineString())
	assert.Equal(t, "1", fc.Features[0].Properties["floor"])
	assert.Len(t, fc.Features[0].Geometry.LineString, 3)
	assert.Equal(t, "2", fc.Features[1].Properties["floor"])
	assert.Equal(t, "TakeConnection", fc.Features[4].Properties["action"])
	assert.Equal(t, "lift", fc.Features[4].Properties["connection"])

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)

	data, err = json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"TakeConnection"`)
	assert.Contains(t, string(data), `"bearing":"Right"`)
}
