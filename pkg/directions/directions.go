// Package directions turns the edges of a path search into turn-by-turn directions.
package directions

import (
	"math"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/pkg/errors"
)

// TurnThreshold is the bearing change in degrees above which a turn instruction is emitted
const TurnThreshold = 20.0

type ActionType int

const (
	Departure ActionType = iota
	TakeConnection
	ExitConnection
	Turn
	Arrival
)

var actionNames = []string{"Departure", "TakeConnection", "ExitConnection", "Turn", "Arrival"}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}

func (a ActionType) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(actionNames) {
		return nil, errors.Errorf("invalid action type %d", a)
	}
	return []byte(a.String()), nil
}

type BearingType int

const (
	Straight BearingType = iota
	Right
	SlightRight
	Left
	SlightLeft
	Back
)

var bearingNames = []string{"Straight", "Right", "SlightRight", "Left", "SlightLeft", "Back"}

func (b BearingType) String() string {
	if b < 0 || int(b) >= len(bearingNames) {
		return "Unknown"
	}
	return bearingNames[b]
}

func (b BearingType) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(bearingNames) {
		return nil, errors.Errorf("invalid bearing type %d", b)
	}
	return []byte(b.String()), nil
}

// ClassifyBearing buckets a signed bearing change in degrees, positive to the right.
//
//	Straight    [-20, 20]
//	SlightRight (20, 60]
//	Right       (60, 150]
//	Back        (150, 180] and [-180, -150)
//	Left        [-150, -60)
//	SlightLeft  [-60, -20)
func ClassifyBearing(delta float64) BearingType {
	delta = math.Mod(delta, 360)
	if delta <= -180 {
		delta += 360
	} else if delta > 180 {
		delta -= 360
	}
	switch {
	case delta >= -TurnThreshold && delta <= TurnThreshold:
		return Straight
	case delta > TurnThreshold && delta <= 60:
		return SlightRight
	case delta > 60 && delta <= 150:
		return Right
	case delta > 150 || delta < -150 || delta == -180:
		return Back
	case delta < -60:
		return Left
	default:
		return SlightLeft
	}
}

// Waypoint is a position on the path. NodeId is empty for stitched coordinates.
// Floor is the group key of the node, which is Node.Floor unless the graph groups by another key.
type Waypoint struct {
	NodeId   string         `json:"nodeId,omitempty"`
	Position geometry.Point `json:"position"`
	Floor    string         `json:"floor"`
}

// Step is one straight segment of the path
type Step struct {
	From       Waypoint               `json:"from"`
	To         Waypoint               `json:"to"`
	Distance   float64                `json:"distance"` // meters
	Bearing    float64                `json:"bearing"`  // degrees, clockwise from north
	Cost       float64                `json:"cost"`
	Crosses    bool                   `json:"crossesFloor"`
	Connection *connection.Descriptor `json:"connection,omitempty"`
}

type Instruction struct {
	Action     ActionType             `json:"action"`
	Bearing    BearingType            `json:"bearing"`
	FromFloor  string                 `json:"fromFloor"`
	ToFloor    string                 `json:"toFloor"`
	Connection *connection.Descriptor `json:"connection,omitempty"`
	Distance   float64                `json:"distance"` // meters until the next instruction
	Position   geometry.Point         `json:"position"`
	Step       int                    `json:"step"` // index of the step the instruction belongs to
}

// Directions is the post-processed result of a path search
type Directions struct {
	Path         []Waypoint       `json:"path"`
	Coordinates  []geometry.Point `json:"coordinates"`
	Distance     float64          `json:"distance"` // meters
	Cost         float64          `json:"cost"`
	Steps        []Step           `json:"steps"`
	Instructions []Instruction    `json:"instructions"`
}
