package graph

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/pkg/errors"
)

// Node is a walkable point of the graph
type Node struct {
	Id        string
	Position  geometry.Point
	Floor     string
	Neighbors []Neighbor
	Extra     Extra // never read by the path finding
}

// Neighbor references another node with the path weight of the connecting edge
type Neighbor struct {
	Id     string
	Weight float64
}

type ValueKind int

const (
	Null ValueKind = iota
	String
	Number
	Bool
	Raw // nested arrays or objects, kept as compact JSON
)

// Value is a closed JSON-like value of an Extra bag
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// Extra is an opaque key value bag attached to nodes and connections
type Extra map[string]Value

func StringValue(s string) Value  { return Value{kind: String, str: s} }
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }
func NullValue() Value            { return Value{} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool)  { return v.str, v.kind == String }
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == Number }
func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == Bool }

// String returns a textual form of the value, "" for null
func (v Value) String() string {
	switch v.kind {
	case String, Raw:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case String:
		return json.Marshal(v.str)
	case Number:
		return json.Marshal(v.num)
	case Bool:
		return json.Marshal(v.b)
	case Raw:
		return []byte(v.str), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "Can't decode extra value")
	}
	switch d := decoded.(type) {
	case nil:
		*v = NullValue()
	case string:
		*v = StringValue(d)
	case float64:
		*v = NumberValue(d)
	case bool:
		*v = BoolValue(d)
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			return errors.Wrap(err, "Can't compact extra value")
		}
		*v = Value{kind: Raw, str: compact.String()}
	}
	return nil
}

// Get returns the value for the key
func (e Extra) Get(key string) (Value, bool) {
	v, ok := e[key]
	return v, ok
}
