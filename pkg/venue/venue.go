// Package venue reads and writes the map data bundle of one building.
//
// A bundle is a JSON document holding the walkable nodes, the floor changing connections,
// the navigation targets and a GeoJSON feature collection with the geometry used for
// line of sight tests.
package venue

import (
	"encoding/json"
	"io"
	"os"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/routing"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FormatVersion is the newest bundle version this package understands
const FormatVersion = 1

// feature properties of the geometry collection
const (
	PropertyFloor       = "floor"
	PropertyObstruction = "obstruction" // "walls" or "solid"
	PropertyTarget      = "target"      // id of the target the outline belongs to
	PropertyKind        = "kind"        // kind of the target
)

var ErrInvalidVenue = errors.New("venue: invalid venue")

type Neighbor struct {
	Id     string  `json:"id"`
	Weight float64 `json:"weight"`
}

type Node struct {
	Id        string      `json:"id"`
	Lat       float64     `json:"lat"`
	Lon       float64     `json:"lon"`
	Floor     string      `json:"floor,omitempty"`
	Neighbors []Neighbor  `json:"neighbors"`
	Extra     graph.Extra `json:"extra,omitempty"`
}

// Target is a named feature of the map which resolves to graph nodes
type Target struct {
	Kind    routing.TargetKind `json:"kind"`
	Id      string             `json:"id"`
	Name    string             `json:"name,omitempty"`
	Floor   string             `json:"floor,omitempty"`
	NodeIds []string           `json:"nodeIds"`
}

type Venue struct {
	Version     int                        `json:"version"`
	Name        string                     `json:"name,omitempty"`
	Scaling     string                     `json:"scaling,omitempty"` // additive if empty
	GroupBy     string                     `json:"groupBy,omitempty"` // floor if empty
	Nodes       []Node                     `json:"nodes"`
	Connections []connection.Descriptor    `json:"connections,omitempty"`
	Targets     []Target                   `json:"targets,omitempty"`
	Geometry    *geojson.FeatureCollection `json:"geometry,omitempty"`
}

func New(name string) *Venue {
	return &Venue{
		Version:  FormatVersion,
		Name:     name,
		Nodes:    make([]Node, 0),
		Geometry: geojson.NewFeatureCollection(),
	}
}

// Load reads the bundle from a file
func Load(filename string) (*Venue, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open venue")
	}
	defer file.Close()
	v, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return v, nil
}

func Read(r io.Reader) (*Venue, error) {
	var v Venue
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, errors.Wrap(err, "Can't decode venue")
	}
	if v.Version > FormatVersion {
		return nil, errors.Wrapf(ErrInvalidVenue, "unsupported version %d", v.Version)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Save writes the bundle to a file
func (v *Venue) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "Can't create venue")
	}
	defer file.Close()
	if err := v.Write(file); err != nil {
		return err
	}
	return file.Close()
}

func (v *Venue) Write(w io.Writer) error {
	if v.Version == 0 {
		v.Version = FormatVersion
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(v), "Can't encode venue")
}

// Validate checks the parts the graph builder doesn't: targets and geometry
func (v *Venue) Validate() error {
	if _, ok := graph.ParseWeightScaling(v.Scaling); !ok {
		return errors.Wrapf(ErrInvalidVenue, "unknown scaling %q", v.Scaling)
	}
	seen := make(map[routing.TargetKind]map[string]bool)
	for i, t := range v.Targets {
		if t.Id == "" {
			return errors.Wrapf(ErrInvalidVenue, "target %d has no id", i)
		}
		if t.Kind == routing.Coordinate || t.Kind == routing.Targets || t.Kind == routing.Node {
			return errors.Wrapf(ErrInvalidVenue, "target %q: kind %v can't be stored", t.Id, t.Kind)
		}
		if seen[t.Kind] == nil {
			seen[t.Kind] = make(map[string]bool)
		}
		if seen[t.Kind][t.Id] {
			return errors.Wrapf(ErrInvalidVenue, "duplicate target %v %q", t.Kind, t.Id)
		}
		seen[t.Kind][t.Id] = true
	}
	if v.Geometry != nil {
		for i, f := range v.Geometry.Features {
			if f.Geometry == nil {
				return errors.Wrapf(ErrInvalidVenue, "feature %d has no geometry", i)
			}
		}
	}
	return nil
}

// AddObstruction appends the obstruction to the geometry collection
func (v *Venue) AddObstruction(o geometry.Obstruction) {
	if v.Geometry == nil {
		v.Geometry = geojson.NewFeatureCollection()
	}
	f := geojson.NewFeature(o.Geometry)
	f.Properties[PropertyFloor] = o.Floor
	f.Properties[PropertyObstruction] = o.Kind.String()
	v.Geometry.Append(f)
}

// AddOutline stores the outline of a target. Outlines are drawn by clients but not used for routing.
func (v *Venue) AddOutline(t Target, g orb.Geometry) {
	if v.Geometry == nil {
		v.Geometry = geojson.NewFeatureCollection()
	}
	f := geojson.NewFeature(g)
	f.Properties[PropertyFloor] = t.Floor
	f.Properties[PropertyTarget] = t.Id
	f.Properties[PropertyKind] = t.Kind.String()
	if t.Name != "" {
		f.Properties["name"] = t.Name
	}
	v.Geometry.Append(f)
}

// Obstructions returns every feature of the geometry collection marked as obstruction
func (v *Venue) Obstructions() []geometry.Obstruction {
	obstructions := make([]geometry.Obstruction, 0)
	if v.Geometry == nil {
		return obstructions
	}
	for _, f := range v.Geometry.Features {
		kind, ok := f.Properties[PropertyObstruction].(string)
		if !ok {
			continue
		}
		obstructions = append(obstructions, geometry.Obstruction{
			Geometry: f.Geometry,
			Floor:    f.Properties.MustString(PropertyFloor, ""),
			Kind:     geometry.ParseKind(kind),
		})
	}
	return obstructions
}

// GraphNodes converts the nodes for the graph builder
func (v *Venue) GraphNodes() []graph.Node {
	nodes := make([]graph.Node, 0, len(v.Nodes))
	for _, n := range v.Nodes {
		neighbors := make([]graph.Neighbor, 0, len(n.Neighbors))
		for _, neighbor := range n.Neighbors {
			neighbors = append(neighbors, graph.Neighbor{Id: neighbor.Id, Weight: neighbor.Weight})
		}
		nodes = append(nodes, graph.Node{
			Id:        n.Id,
			Position:  geometry.MakePoint(n.Lat, n.Lon),
			Floor:     n.Floor,
			Neighbors: neighbors,
			Extra:     n.Extra,
		})
	}
	return nodes
}

// Build creates the graph and the connection resolver of the venue
func (v *Venue) Build(logger *zap.Logger) (*graph.AdjacencyArrayGraph, *connection.Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scaling, ok := graph.ParseWeightScaling(v.Scaling)
	if !ok {
		return nil, nil, errors.Wrapf(ErrInvalidVenue, "unknown scaling %q", v.Scaling)
	}
	g, err := graph.Build(v.GraphNodes(), v.Obstructions(), graph.BuildOptions{
		GroupBy: v.GroupBy,
		Scaling: scaling,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}
	resolver, err := connection.NewResolver(g, v.Connections, logger)
	if err != nil {
		return nil, nil, err
	}
	return g, resolver, nil
}

// NewRouter builds the venue and creates a router which resolves the targets of the venue
func (v *Venue) NewRouter(config routing.Config, logger *zap.Logger) (*routing.Router, error) {
	g, resolver, err := v.Build(logger)
	if err != nil {
		return nil, err
	}
	return routing.NewRouter(g, resolver, v.TargetIndex(), config, logger)
}

// TargetIndex maps kind and id of every target to its node ids. Immutable after creation.
type TargetIndex map[routing.TargetKind]map[string][]string

func (v *Venue) TargetIndex() TargetIndex {
	index := make(TargetIndex)
	for _, t := range v.Targets {
		if index[t.Kind] == nil {
			index[t.Kind] = make(map[string][]string)
		}
		index[t.Kind][t.Id] = append([]string(nil), t.NodeIds...)
	}
	return index
}

func (index TargetIndex) NodeIds(kind routing.TargetKind, id string) []string {
	return index[kind][id]
}
