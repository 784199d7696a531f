package routing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/pkg/errors"
)

var ErrUnresolvableTarget = errors.New("routing: unresolvable target")

type TargetKind int

const (
	Space TargetKind = iota
	Door
	PointOfInterest
	Coordinate
	Connection
	Node
	Area
	Location
	Facade
	Targets // a group of targets, resolved to the union of its members
)

var targetKindNames = []string{"space", "door", "poi", "coordinate", "connection", "node", "area", "location", "facade", "targets"}

func (k TargetKind) String() string {
	if k < 0 || int(k) >= len(targetKindNames) {
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
	return targetKindNames[k]
}

func ParseTargetKind(s string) (TargetKind, bool) {
	for i, name := range targetKindNames {
		if strings.EqualFold(s, name) {
			return TargetKind(i), true
		}
	}
	return 0, false
}

func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TargetKind) UnmarshalText(text []byte) error {
	kind, ok := ParseTargetKind(string(text))
	if !ok {
		return errors.Errorf("unknown target kind %q", text)
	}
	*k = kind
	return nil
}

// NavigationTarget is something a route can start or end at.
// Id names the feature for every kind except Coordinate, which uses Position and Floor, and Targets.
type NavigationTarget struct {
	Kind     TargetKind         `json:"kind"`
	Id       string             `json:"id,omitempty"`
	Position geometry.Point     `json:"position"`
	Floor    string             `json:"floor,omitempty"`
	Targets  []NavigationTarget `json:"targets,omitempty"`
}

func NodeTarget(id string) NavigationTarget {
	return NavigationTarget{Kind: Node, Id: id}
}

func FeatureTarget(kind TargetKind, id string) NavigationTarget {
	return NavigationTarget{Kind: kind, Id: id}
}

// CoordinateTarget is a raw position, an empty floor matches every floor
func CoordinateTarget(position geometry.Point, floor string) NavigationTarget {
	return NavigationTarget{Kind: Coordinate, Position: position, Floor: floor}
}

func GroupTarget(targets ...NavigationTarget) NavigationTarget {
	return NavigationTarget{Kind: Targets, Targets: targets}
}

func (t NavigationTarget) String() string {
	switch t.Kind {
	case Coordinate:
		return fmt.Sprintf("coordinate %v floor %q", t.Position, t.Floor)
	case Targets:
		parts := make([]string, 0, len(t.Targets))
		for _, child := range t.Targets {
			parts = append(parts, child.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v %q", t.Kind, t.Id)
	}
}

// UnmarshalJSON accepts a bare string as node id next to the object form
func (t *NavigationTarget) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*t = NodeTarget(id)
		return nil
	}
	type plain NavigationTarget
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "Can't decode navigation target")
	}
	*t = NavigationTarget(decoded)
	return nil
}

// TargetLookup maps features of the map data to graph node ids
type TargetLookup interface {
	NodeIds(kind TargetKind, id string) []string
}

// UnresolvableTargetError is returned when a target doesn't resolve to any node of the graph
type UnresolvableTargetError struct {
	Target NavigationTarget
}

func (e *UnresolvableTargetError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUnresolvableTarget, e.Target)
}

func (e *UnresolvableTargetError) Unwrap() error {
	return ErrUnresolvableTarget
}
