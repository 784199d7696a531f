package directions

import (
	"math"

	"github.com/natevvv/indoor-routing/pkg/connection"
	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"go.uber.org/zap"
)

// ConnectionLookup finds the connector a node belongs to
type ConnectionLookup interface {
	ConnectionOf(node graph.NodeId) (*connection.Descriptor, bool)
}

// Processor converts edge lists of one graph into Directions. Immutable and safe for concurrent use.
type Processor struct {
	g           graph.Graph
	connections ConnectionLookup
	logger      *zap.Logger
}

func NewProcessor(g graph.Graph, connections ConnectionLookup, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{g: g, connections: connections, logger: logger}
}

func (p *Processor) waypoint(node graph.NodeId) Waypoint {
	n := p.g.GetNode(node)
	return Waypoint{NodeId: n.Id, Position: n.Position, Floor: p.g.Group(node)}
}

func (p *Processor) connectionOf(edge graph.Edge) *connection.Descriptor {
	if p.connections == nil {
		return nil
	}
	if d, ok := p.connections.ConnectionOf(edge.From); ok {
		return d
	}
	if d, ok := p.connections.ConnectionOf(edge.To); ok {
		return d
	}
	return nil
}

// Generate creates the directions for the edges starting at origin.
// No edges means origin and destination are the same node.
func (p *Processor) Generate(origin graph.NodeId, edges []graph.Edge) *Directions {
	d := &Directions{Steps: make([]Step, 0, len(edges))}
	start := p.waypoint(origin)
	for _, e := range edges {
		step := Step{
			From:     p.waypoint(e.From),
			To:       p.waypoint(e.To),
			Distance: e.Distance,
			Bearing:  e.Angle * 180 / math.Pi,
			Cost:     e.Weight,
			Crosses:  e.Crosses(p.g),
		}
		if step.Crosses {
			step.Connection = p.connectionOf(e)
		}
		d.Steps = append(d.Steps, step)
	}
	p.finish(d, start)
	return d
}

// StitchOrigin prepends a step from a raw coordinate to the first waypoint
func (p *Processor) StitchOrigin(d *Directions, position geometry.Point) {
	first := d.Path[0]
	from := Waypoint{Position: position, Floor: first.Floor}
	d.Steps = append([]Step{coordinateStep(from, first)}, d.Steps...)
	p.finish(d, from)
}

// StitchDestination appends a step from the last waypoint to a raw coordinate
func (p *Processor) StitchDestination(d *Directions, position geometry.Point) {
	last := d.Path[len(d.Path)-1]
	to := Waypoint{Position: position, Floor: last.Floor}
	d.Steps = append(d.Steps, coordinateStep(last, to))
	p.finish(d, d.Path[0])
}

func coordinateStep(from, to Waypoint) Step {
	return Step{
		From:     from,
		To:       to,
		Distance: from.Position.DistanceTo(to.Position),
		Bearing:  from.Position.BearingTo(to.Position) * 180 / math.Pi,
	}
}

// finish recomputes path, totals and instructions from the steps
func (p *Processor) finish(d *Directions, start Waypoint) {
	d.Path = []Waypoint{start}
	d.Coordinates = []geometry.Point{start.Position}
	d.Distance, d.Cost = 0, 0
	for _, s := range d.Steps {
		d.Path = append(d.Path, s.To)
		d.Coordinates = append(d.Coordinates, s.To.Position)
		d.Distance += s.Distance
		d.Cost += s.Cost
	}
	d.Instructions = instructions(start, d.Steps)
}

// instructions emits Departure, one TakeConnection/ExitConnection pair per run of floor changing steps,
// Turn for bearing changes above TurnThreshold and Arrival.
func instructions(start Waypoint, steps []Step) []Instruction {
	if len(steps) == 0 {
		return []Instruction{{Action: Arrival, Bearing: Straight, FromFloor: start.Floor, ToFloor: start.Floor, Position: start.Position}}
	}

	result := make([]Instruction, 0)
	at := make([]float64, 0) // distance along the path of every instruction
	emit := func(in Instruction, distance float64) {
		result = append(result, in)
		at = append(at, distance)
	}

	emit(Instruction{Action: Departure, Bearing: Straight, FromFloor: start.Floor, ToFloor: start.Floor, Position: start.Position}, 0)

	travelled := 0.0
	heading := math.NaN() // bearing of the last walked step, NaN after a connection
	for i := 0; i < len(steps); i++ {
		step := steps[i]
		if step.Crosses {
			last := i
			for last+1 < len(steps) && steps[last+1].Crosses {
				last++
			}
			take := Instruction{
				Action:     TakeConnection,
				Bearing:    Straight,
				FromFloor:  step.From.Floor,
				ToFloor:    steps[last].To.Floor,
				Connection: step.Connection,
				Position:   step.From.Position,
				Step:       i,
			}
			emit(take, travelled)
			for ; i <= last; i++ {
				travelled += steps[i].Distance
			}
			i = last
			exit := take
			exit.Action = ExitConnection
			exit.Position = steps[last].To.Position
			exit.Step = last
			emit(exit, travelled)
			heading = math.NaN()
			continue
		}

		if step.Distance > 0 {
			if !math.IsNaN(heading) {
				delta := geometry.AngleDelta(heading*math.Pi/180, step.Bearing*math.Pi/180) * 180 / math.Pi
				if math.Abs(delta) > TurnThreshold {
					emit(Instruction{
						Action:    Turn,
						Bearing:   ClassifyBearing(delta),
						FromFloor: step.From.Floor,
						ToFloor:   step.To.Floor,
						Position:  step.From.Position,
						Step:      i,
					}, travelled)
				}
			}
			heading = step.Bearing
		}
		travelled += step.Distance
	}

	end := steps[len(steps)-1].To
	emit(Instruction{Action: Arrival, Bearing: Straight, FromFloor: end.Floor, ToFloor: end.Floor, Position: end.Position, Step: len(steps) - 1}, travelled)

	for i := 0; i < len(result)-1; i++ {
		result[i].Distance = at[i+1] - at[i]
	}
	return result
}
