package graph

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cuttableGraph = `13
42
#Nodes
0 0 0 0
1 0 2 0
2 1 1 0
3 1 2 0
4 2 0 0
5 2 1 0
6 2 2 0
7 3 0 1
8 3 1 1
9 3 3 1
10 5 0 1
11 4 1 1
12 5 2 1
#Edges
0 1 3
0 2 4
0 4 7
1 0 3
1 2 5
1 3 2
2 0 4
2 1 5
2 3 2
2 5 1
3 1 2
3 2 2
3 6 5
4 0 7
4 5 4
4 7 6
5 2 1
5 4 4
5 6 3
5 8 1
6 3 5
6 5 3
6 9 7
7 4 6
7 8 3
7 10 5
8 5 1
8 7 3
8 9 3
8 11 1
9 6 7
9 8 3
9 12 4
10 7 5
10 11 2
10 12 4
11 8 1
11 10 2
11 12 3
12 9 4
12 10 4
12 11 3
`

func TestGraphReading(t *testing.T) {
	g, err := NewGraphFromFmiString(cuttableGraph, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, cuttableGraph, g.AsString(), "Graph wrongly parsed")
	assert.Equal(t, 13, g.NodeCount())
	assert.Equal(t, 42, g.ArcCount())
	assert.Equal(t, []string{"0", "1"}, g.GroupKeys())
	assert.Len(t, g.NodesInGroup("1"), 6)
}

func TestFmiRejectsUnknownEdgeSource(t *testing.T) {
	_, err := NewGraphFromFmiString("1\n1\n#Nodes\na 0 0 0\n#Edges\nb a 1\n", BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingNodeReference))
}

func squareNodes() []Node {
	origin := geometry.MakePoint(48.0, 11.0)
	return []Node{
		{Id: "a", Position: origin, Floor: "0", Neighbors: []Neighbor{{Id: "b", Weight: 1}, {Id: "c", Weight: 1}}},
		{Id: "b", Position: origin.Offset(10, 0), Floor: "0", Neighbors: []Neighbor{{Id: "a", Weight: 1}, {Id: "d", Weight: 1}}},
		{Id: "c", Position: origin.Offset(0, 10), Floor: "0", Neighbors: []Neighbor{{Id: "a", Weight: 1}, {Id: "d", Weight: 1}}},
		{Id: "d", Position: origin.Offset(10, 10), Floor: "1", Neighbors: []Neighbor{{Id: "b", Weight: 1}, {Id: "c", Weight: 1}}},
	}
}

func TestBuild(t *testing.T) {
	g, err := Build(squareNodes(), nil, BuildOptions{Scaling: Multiplicative})
	require.NoError(t, err)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 8, g.ArcCount())

	id, ok := g.Lookup("d")
	require.True(t, ok)
	assert.Equal(t, "1", g.Group(id))
	_, ok = g.Lookup("x")
	assert.False(t, ok)

	arcs := g.GetArcsFrom(0)
	require.Len(t, arcs, 2)
	assert.InDelta(t, 10, arcs[0].Distance, 1e-3)
	assert.InDelta(t, arcs[0].Distance, arcs[0].Weight, 1e-9)
	assert.InDelta(t, 0, arcs[0].Angle, 1e-6)
	assert.InDelta(t, math.Pi/2, arcs[1].Angle, 1e-3)
	assert.True(t, arcs[1].Crosses(g) == false)
	assert.Equal(t, EdgeKey{From: "a", To: "c"}, arcs[1].Key(g))
	assert.InDelta(t, 1, g.HeuristicScale(), 1e-9)
}

func TestBuildGroupByExtra(t *testing.T) {
	nodes := squareNodes()
	for i := range nodes {
		nodes[i].Extra = Extra{"level": NumberValue(float64(i % 2))}
	}
	g, err := Build(nodes, nil, BuildOptions{GroupBy: "level"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, g.GroupKeys())
	assert.Equal(t, []NodeId{0, 2}, g.NodesInGroup("0"))
}

func TestBuildGroupsObstructions(t *testing.T) {
	nodes := squareNodes()
	for i := range nodes {
		nodes[i].Extra = Extra{"wing": StringValue([]string{"west", "east"}[i%2])}
	}
	origin := nodes[0].Position
	wall := func(floor string) geometry.Obstruction {
		return geometry.Obstruction{
			Geometry: orb.LineString{origin.Offset(-5, 5).Orb(), origin.Offset(5, 5).Orb()},
			Floor:    floor,
			Kind:     geometry.Walls,
		}
	}
	g, err := Build(nodes, []geometry.Obstruction{wall("0"), wall("7")}, BuildOptions{GroupBy: "wing"})
	require.NoError(t, err)

	// floor 0 has nodes in both wings, floor 7 has no nodes
	require.NotNil(t, g.Obstructions("west"))
	require.NotNil(t, g.Obstructions("east"))
	assert.Equal(t, "west", g.Obstructions("west").Floor())
	assert.Nil(t, g.Obstructions("0"))
	assert.Nil(t, g.Obstructions("7"))

	g, err = Build(nodes, []geometry.Obstruction{wall("0")}, BuildOptions{})
	require.NoError(t, err)
	assert.NotNil(t, g.Obstructions("0"))
	assert.Nil(t, g.Obstructions("1"))
}

func TestBuildErrors(t *testing.T) {
	nodes := squareNodes()
	nodes[3].Neighbors = append(nodes[3].Neighbors, Neighbor{Id: "missing", Weight: 1})
	g, err := Build(nodes, nil, BuildOptions{})
	assert.Nil(t, g)
	var missing *MissingNodeReferenceError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "d", missing.Node)
	assert.Equal(t, "missing", missing.Neighbor)
	assert.True(t, errors.Is(err, ErrMissingNodeReference))

	nodes = squareNodes()
	nodes[1].Id = "a"
	_, err = Build(nodes, nil, BuildOptions{})
	assert.True(t, errors.Is(err, ErrDuplicateNode))

	nodes = squareNodes()
	nodes[2].Id = ""
	_, err = Build(nodes, nil, BuildOptions{})
	assert.True(t, errors.Is(err, ErrEmptyNodeId))

	nodes = squareNodes()
	nodes[0].Neighbors[0].Weight = math.NaN()
	_, err = Build(nodes, nil, BuildOptions{})
	assert.True(t, errors.Is(err, ErrInvalidWeight))
}

func TestBuildClampsNegativeWeights(t *testing.T) {
	nodes := squareNodes()
	nodes[0].Neighbors[0].Weight = -100
	g, err := Build(nodes, nil, BuildOptions{Scaling: Additive})
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.GetArcsFrom(0)[0].Weight)
	assert.Equal(t, 0.0, g.HeuristicScale())
}

func TestDuplicateArcKeepsCheaper(t *testing.T) {
	alg := NewAdjacencyListGraph(Additive)
	a := alg.AddNode(Node{Id: "a"})
	b := alg.AddNode(Node{Id: "b"})
	c := alg.AddNode(Node{Id: "c"})

	added, err := alg.AddArc(a, b, 5)
	require.NoError(t, err)
	assert.True(t, added)
	_, _ = alg.AddArc(a, c, 1)
	added, _ = alg.AddArc(a, b, 7)
	assert.False(t, added)
	added, _ = alg.AddArc(a, b, 2)
	assert.True(t, added)

	arcs := alg.GetArcsFrom(a)
	require.Len(t, arcs, 2)
	assert.Equal(t, b, arcs[0].To)
	assert.Equal(t, 2.0, arcs[0].Weight)
	assert.Equal(t, 2, alg.ArcCount())
}

func TestExtraValues(t *testing.T) {
	var extra Extra
	require.NoError(t, json.Unmarshal([]byte(`{"name":"lobby","rank":3,"open":true,"tags":["a", "b"],"none":null}`), &extra))
	s, ok := extra["name"].AsString()
	assert.True(t, ok)
	assert.Equal(t, "lobby", s)
	assert.Equal(t, "3", extra["rank"].String())
	assert.Equal(t, Bool, extra["open"].Kind())
	assert.Equal(t, Raw, extra["tags"].Kind())
	assert.Equal(t, Null, extra["none"].Kind())

	data, err := json.Marshal(extra["tags"])
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(data))
}
