// Package pbf imports indoor maps tagged with the Simple Indoor Tagging schema from OpenStreetMap files.
package pbf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/routing"
	"github.com/natevvv/indoor-routing/pkg/venue"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"github.com/qedus/osmpbf"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("pbf: unsupported file format")

type Options struct {
	ElevatorWeight float64 // path weight between two floors of an elevator
	StairsWeight   float64 // path weight of a floor changing way on top of its length
	Logger         *zap.Logger
}

func DefaultOptions() Options {
	return Options{ElevatorWeight: 15, StairsWeight: 5}
}

type osmNode struct {
	position geometry.Point
	tags     osm.Tags
}

type osmWay struct {
	id    osm.WayID
	nodes []osm.NodeID
	tags  osm.Tags
}

func (w *osmWay) closed() bool {
	return len(w.nodes) > 3 && w.nodes[0] == w.nodes[len(w.nodes)-1]
}

// Importer converts the indoor features of an OSM file into a venue
type Importer struct {
	filename string
	options  Options
	logger   *zap.Logger

	nodes map[osm.NodeID]*osmNode
	ways  []*osmWay

	venue   *venue.Venue
	indices map[string]int // graph node id -> index in venue.Nodes
	skipped int
}

func NewImporter(filename string, options Options) *Importer {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		filename: filename,
		options:  options,
		logger:   logger,
		nodes:    make(map[osm.NodeID]*osmNode),
		ways:     make([]*osmWay, 0),
		indices:  make(map[string]int),
	}
}

// Import reads the file and returns the venue. ".osm" and ".xml" files are read as OSM XML, everything else as PBF.
func (im *Importer) Import(ctx context.Context) (*venue.Venue, error) {
	file, err := os.Open(im.filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open osm file")
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(im.filename)); ext {
	case ".osm", ".xml":
		err = im.readXml(ctx, file)
	case ".pbf":
		err = im.readPbf(file)
	default:
		err = errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(im.filename), filepath.Ext(im.filename))
	return im.build(strings.TrimSuffix(name, ".osm")), nil
}

func (im *Importer) readPbf(r io.Reader) error {
	decoder := osmpbf.NewDecoder(r)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return errors.Wrap(err, "Can't start pbf decoder")
	}
	for {
		v, err := decoder.Decode()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "Can't decode pbf")
		}
		switch v := v.(type) {
		case *osmpbf.Node:
			im.nodes[osm.NodeID(v.ID)] = &osmNode{position: geometry.MakePoint(v.Lat, v.Lon), tags: tagsOf(v.Tags)}
		case *osmpbf.Way:
			way := &osmWay{id: osm.WayID(v.ID), nodes: make([]osm.NodeID, 0, len(v.NodeIDs)), tags: tagsOf(v.Tags)}
			for _, id := range v.NodeIDs {
				way.nodes = append(way.nodes, osm.NodeID(id))
			}
			im.ways = append(im.ways, way)
		}
	}
}

func (im *Importer) readXml(ctx context.Context, r io.Reader) error {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			im.nodes[o.ID] = &osmNode{position: geometry.MakePoint(o.Lat, o.Lon), tags: o.Tags}
		case *osm.Way:
			way := &osmWay{id: o.ID, nodes: make([]osm.NodeID, 0, len(o.Nodes)), tags: o.Tags}
			for _, n := range o.Nodes {
				way.nodes = append(way.nodes, n.ID)
			}
			im.ways = append(im.ways, way)
		}
	}
	return errors.Wrap(scanner.Err(), "Can't read osm xml")
}

func tagsOf(m map[string]string) osm.Tags {
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	return tags
}

func nodeId(id osm.NodeID, level string) string {
	return fmt.Sprintf("%d@%s", id, level)
}

// graphNode returns the venue node of the osm node on the level, creating it if needed
func (im *Importer) graphNode(id osm.NodeID, level string) (string, bool) {
	n, ok := im.nodes[id]
	if !ok {
		return "", false
	}
	key := nodeId(id, level)
	if _, ok := im.indices[key]; !ok {
		extra := graph.Extra{"osmId": graph.NumberValue(float64(id))}
		if name := n.tags.Find("name"); name != "" {
			extra["name"] = graph.StringValue(name)
		}
		im.indices[key] = len(im.venue.Nodes)
		im.venue.Nodes = append(im.venue.Nodes, venue.Node{
			Id:        key,
			Lat:       n.position.Lat(),
			Lon:       n.position.Lon(),
			Floor:     level,
			Neighbors: make([]venue.Neighbor, 0),
			Extra:     extra,
		})
	}
	return key, true
}

func (im *Importer) link(from, to string, weight float64, oneway bool) {
	im.venue.Nodes[im.indices[from]].Neighbors = append(im.venue.Nodes[im.indices[from]].Neighbors, venue.Neighbor{Id: to, Weight: weight})
	if !oneway {
		im.venue.Nodes[im.indices[to]].Neighbors = append(im.venue.Nodes[im.indices[to]].Neighbors, venue.Neighbor{Id: from, Weight: weight})
	}
}

var walkableHighways = map[string]bool{
	"footway":    true,
	"corridor":   true,
	"path":       true,
	"pedestrian": true,
	"steps":      true,
	"elevator":   true,
}

func walkable(w *osmWay) bool {
	if walkableHighways[w.tags.Find("highway")] || w.tags.Find("conveying") != "" {
		return true
	}
	return w.tags.Find("indoor") == "corridor" && !w.closed()
}

// connectionType returns the connector type of a floor changing way
func connectionType(tags osm.Tags) (connection.Type, bool) {
	switch {
	case tags.Find("conveying") != "" && tags.Find("highway") == "steps":
		return connection.Escalator, false
	case tags.Find("conveying") != "":
		return connection.Ramp, true
	case tags.Find("highway") == "steps":
		return connection.Stairs, false
	case tags.Find("ramp") == "yes" || tags.Find("incline") != "":
		return connection.Ramp, tags.Find("wheelchair") != "no"
	default:
		return connection.Stairs, false
	}
}

func (im *Importer) build(name string) *venue.Venue {
	im.venue = venue.New(name)
	im.venue.Scaling = graph.Additive.String()

	for _, w := range im.ways {
		if walkable(w) {
			im.addWalkway(w)
		}
	}

	ids := make([]osm.NodeID, 0, len(im.nodes))
	for id := range im.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		im.addNodeFeature(id)
	}

	for _, w := range im.ways {
		im.addArea(w)
	}

	im.logger.Info("imported venue",
		zap.String("file", im.filename),
		zap.Int("nodes", len(im.venue.Nodes)),
		zap.Int("connections", len(im.venue.Connections)),
		zap.Int("targets", len(im.venue.Targets)),
		zap.Int("skipped ways", im.skipped),
	)
	return im.venue
}

func (im *Importer) addWalkway(w *osmWay) {
	levels := levelsOf(w.tags)
	if len(levels) == 0 || len(w.nodes) < 2 {
		im.skipped++
		im.logger.Debug("skipping way without level", zap.Int64("way", int64(w.id)))
		return
	}
	forward := w.tags.Find("conveying") == "forward" || w.tags.Find("oneway") == "yes"
	backward := w.tags.Find("conveying") == "backward" || w.tags.Find("oneway") == "-1"

	if len(levels) == 1 {
		for i := 1; i < len(w.nodes); i++ {
			from, okFrom := im.graphNode(w.nodes[i-1], levels[0])
			to, okTo := im.graphNode(w.nodes[i], levels[0])
			if !okFrom || !okTo {
				continue
			}
			if backward {
				from, to = to, from
			}
			im.link(from, to, 0, forward || backward)
		}
		return
	}

	// floor changing way from its first node on the lowest level to its last node on the highest
	first, last := w.nodes[0], w.nodes[len(w.nodes)-1]
	if w.tags.Find("incline") == "down" {
		first, last = last, first
	}
	from, okFrom := im.graphNode(first, levels[0])
	to, okTo := im.graphNode(last, levels[len(levels)-1])
	if !okFrom || !okTo {
		im.skipped++
		return
	}
	if backward {
		im.link(to, from, im.options.StairsWeight, true)
	} else {
		im.link(from, to, im.options.StairsWeight, forward)
	}
	kind, accessible := connectionType(w.tags)
	im.venue.Connections = append(im.venue.Connections, connection.Descriptor{
		Id:         fmt.Sprintf("way/%d", w.id),
		NodeIds:    []string{from, to},
		Type:       kind,
		Accessible: accessible,
	})
}

func (im *Importer) existing(id osm.NodeID, levels []string) []string {
	nodeIds := make([]string, 0, len(levels))
	for _, level := range levels {
		if _, ok := im.indices[nodeId(id, level)]; ok {
			nodeIds = append(nodeIds, nodeId(id, level))
		}
	}
	return nodeIds
}

func (im *Importer) addNodeFeature(id osm.NodeID) {
	n := im.nodes[id]
	levels := levelsOf(n.tags)
	if len(levels) == 0 {
		return
	}

	switch {
	case n.tags.Find("highway") == "elevator":
		nodeIds := make([]string, 0, len(levels))
		for i, level := range levels {
			key, _ := im.graphNode(id, level)
			if i > 0 {
				im.link(nodeIds[i-1], key, im.options.ElevatorWeight, false)
			}
			nodeIds = append(nodeIds, key)
		}
		if len(nodeIds) > 1 {
			im.venue.Connections = append(im.venue.Connections, connection.Descriptor{
				Id:         fmt.Sprintf("node/%d", id),
				NodeIds:    nodeIds,
				Type:       connection.Elevator,
				Accessible: n.tags.Find("wheelchair") != "no",
			})
		}
	case n.tags.Find("door") != "" || n.tags.Find("entrance") != "":
		if nodeIds := im.existing(id, levels); len(nodeIds) > 0 {
			im.addTarget(routing.Door, fmt.Sprintf("node/%d", id), n.tags, levels[0], nodeIds)
		} else {
			im.logger.Debug("door is not part of a walkway", zap.Int64("node", int64(id)))
		}
	case n.tags.Find("amenity") != "" || n.tags.Find("shop") != "":
		nodeIds := im.existing(id, levels)
		if len(nodeIds) == 0 {
			if nearest, ok := im.nearest(n.position, levels[0]); ok {
				nodeIds = []string{nearest}
			}
		}
		if len(nodeIds) > 0 {
			im.addTarget(routing.PointOfInterest, fmt.Sprintf("node/%d", id), n.tags, levels[0], nodeIds)
		}
	}
}

func (im *Importer) nearest(position geometry.Point, level string) (string, bool) {
	best, bestDistance := "", 0.0
	for _, n := range im.venue.Nodes {
		if n.Floor != level {
			continue
		}
		d := position.DistanceTo(geometry.MakePoint(n.Lat, n.Lon))
		if best == "" || d < bestDistance {
			best, bestDistance = n.Id, d
		}
	}
	return best, best != ""
}

func (im *Importer) addTarget(kind routing.TargetKind, id string, tags osm.Tags, level string, nodeIds []string) venue.Target {
	name := tags.Find("name")
	if name == "" {
		name = tags.Find("ref")
	}
	target := venue.Target{Kind: kind, Id: id, Name: name, Floor: level, NodeIds: nodeIds}
	im.venue.Targets = append(im.venue.Targets, target)
	return target
}

func (im *Importer) ring(w *osmWay) (orb.Ring, bool) {
	ring := make(orb.Ring, 0, len(w.nodes))
	for _, id := range w.nodes {
		n, ok := im.nodes[id]
		if !ok {
			return nil, false
		}
		ring = append(ring, n.position.Orb())
	}
	return ring, true
}

// addArea adds rooms, areas, walls and columns of a single level
func (im *Importer) addArea(w *osmWay) {
	indoor := w.tags.Find("indoor")
	levels := levelsOf(w.tags)
	if indoor == "" || len(levels) != 1 {
		return
	}
	level := levels[0]
	ring, ok := im.ring(w)
	if !ok {
		return
	}

	switch indoor {
	case "wall":
		im.venue.AddObstruction(geometry.Obstruction{Geometry: orb.LineString(ring), Floor: level, Kind: geometry.Walls})
	case "column":
		if w.closed() {
			im.venue.AddObstruction(geometry.Obstruction{Geometry: orb.Polygon{ring}, Floor: level, Kind: geometry.Solid})
		}
	case "room", "area":
		if !w.closed() {
			return
		}
		polygon := orb.Polygon{ring}
		if indoor == "room" {
			im.venue.AddObstruction(geometry.Obstruction{Geometry: polygon, Floor: level, Kind: geometry.Walls})
		}
		kind := routing.Space
		if indoor == "area" {
			kind = routing.Area
		}
		nodeIds := make([]string, 0)
		for _, n := range im.venue.Nodes {
			if n.Floor == level && planar.PolygonContains(polygon, orb.Point{n.Lon, n.Lat}) {
				nodeIds = append(nodeIds, n.Id)
			}
		}
		target := venue.Target{Kind: kind, Id: fmt.Sprintf("way/%d", w.id), Name: w.tags.Find("name"), Floor: level, NodeIds: nodeIds}
		if len(nodeIds) > 0 {
			target = im.addTarget(kind, target.Id, w.tags, level, nodeIds)
		}
		im.venue.AddOutline(target, polygon)
	}
}
