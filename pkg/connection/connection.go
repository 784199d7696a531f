// Package connection resolves which graph nodes belong to floor changing connectors.
package connection

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrMalformedConnection = errors.New("connection: malformed connection")

type Type string

const (
	Stairs    Type = "stairs"
	Elevator  Type = "elevator"
	Escalator Type = "escalator"
	Door      Type = "door"
	Ramp      Type = "ramp"
	Slide     Type = "slide"
	Portal    Type = "portal"
	Security  Type = "security"
	Shuttle   Type = "shuttle"
	Ladder    Type = "ladder"
)

var types = []Type{Stairs, Elevator, Escalator, Door, Ramp, Slide, Portal, Security, Shuttle, Ladder}

// ParseType parses a connection type, case insensitive
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range types {
		if t == known {
			return t, true
		}
	}
	return "", false
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "Can't decode connection type")
	}
	parsed, ok := ParseType(s)
	if !ok {
		return errors.Wrapf(ErrMalformedConnection, "unknown type %q", s)
	}
	*t = parsed
	return nil
}

// Descriptor groups the nodes which represent the same real world connector
type Descriptor struct {
	Id         string      `json:"id"`
	NodeIds    []string    `json:"nodeIds"`
	Type       Type        `json:"type"`
	Accessible bool        `json:"accessible"`
	Extra      graph.Extra `json:"extra,omitempty"`
}

// Resolver answers connection queries for one graph. Immutable after construction.
type Resolver struct {
	descriptors []Descriptor
	byNode      map[graph.NodeId]int // node index -> descriptor index
	byId        map[string]int       // descriptor id -> descriptor index
	nodeIds     map[int][]string     // descriptor index -> node ids present in the graph
}

// NewResolver validates the descriptors against the graph.
// Node ids unknown to the graph are skipped with a warning.
func NewResolver(g graph.Graph, descriptors []Descriptor, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		byNode:      make(map[graph.NodeId]int),
		byId:        make(map[string]int),
		nodeIds:     make(map[int][]string),
	}
	for i, d := range descriptors {
		if _, ok := ParseType(string(d.Type)); !ok {
			return nil, errors.Wrapf(ErrMalformedConnection, "connection %d (%q): unknown type %q", i, d.Id, d.Type)
		}
		if len(d.NodeIds) == 0 {
			return nil, errors.Wrapf(ErrMalformedConnection, "connection %d (%q): no nodes", i, d.Id)
		}
		if d.Id == "" {
			d.Id = strings.Join(d.NodeIds, "+")
		}
		if _, ok := r.byId[d.Id]; ok {
			return nil, errors.Wrapf(ErrMalformedConnection, "duplicate connection id %q", d.Id)
		}

		index := len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
		r.byId[d.Id] = index
		for _, nodeId := range d.NodeIds {
			node, ok := g.Lookup(nodeId)
			if !ok {
				logger.Warn("connection references unknown node", zap.String("connection", d.Id), zap.String("node", nodeId))
				continue
			}
			if previous, ok := r.byNode[node]; ok && previous != index {
				logger.Warn("node belongs to several connections, keeping the first",
					zap.String("node", nodeId),
					zap.String("connection", r.descriptors[previous].Id),
					zap.String("ignored", d.Id))
				continue
			}
			r.byNode[node] = index
			r.nodeIds[index] = append(r.nodeIds[index], nodeId)
		}
	}
	return r, nil
}

// DisabledConnectionNodeIds returns the sorted ids of every connection node whose accessibility does not match.
func (r *Resolver) DisabledConnectionNodeIds(accessible bool) []string {
	ids := make([]string, 0)
	for index, d := range r.descriptors {
		if d.Accessible != accessible {
			ids = append(ids, r.nodeIds[index]...)
		}
	}
	sort.Strings(ids)
	return ids
}

// ConnectionOf returns the descriptor the node belongs to
func (r *Resolver) ConnectionOf(node graph.NodeId) (*Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	index, ok := r.byNode[node]
	if !ok {
		return nil, false
	}
	return &r.descriptors[index], true
}

// Connection returns the descriptor with the given id
func (r *Resolver) Connection(id string) (*Descriptor, bool) {
	index, ok := r.byId[id]
	if !ok {
		return nil, false
	}
	return &r.descriptors[index], true
}

// NodeIds returns the graph node ids of the given connections, unknown connection ids are ignored
func (r *Resolver) NodeIds(connectionIds ...string) []string {
	ids := make([]string, 0)
	for _, id := range connectionIds {
		if index, ok := r.byId[id]; ok {
			ids = append(ids, r.nodeIds[index]...)
		}
	}
	return ids
}

func (r *Resolver) Descriptors() []Descriptor {
	return append([]Descriptor(nil), r.descriptors...)
}
