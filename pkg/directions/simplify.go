package directions

import (
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/zone"
	"go.uber.org/zap"
)

// Simplify collapses runs of same floor edges into direct edges wherever the straight line keeps
// bufferRadius meters of clearance to the floor's obstructions and touches no infinite cost zone.
// Floor changes are never collapsed. Floors without obstruction geometry stay unsimplified.
// A collapsed edge keeps the summed weight of the edges it replaces.
func (p *Processor) Simplify(edges []graph.Edge, bufferRadius float64, zones []zone.CostZone) []graph.Edge {
	simplified := make([]graph.Edge, 0, len(edges))
	for start := 0; start < len(edges); {
		if edges[start].Crosses(p.g) {
			simplified = append(simplified, edges[start])
			start++
			continue
		}
		end := start
		for end+1 < len(edges) && !edges[end+1].Crosses(p.g) {
			end++
		}
		simplified = append(simplified, p.simplifyRun(edges[start:end+1], bufferRadius, zones)...)
		start = end + 1
	}
	return simplified
}

// simplifyRun greedily connects each kept node with the farthest visible node of the run
func (p *Processor) simplifyRun(run []graph.Edge, bufferRadius float64, zones []zone.CostZone) []graph.Edge {
	if len(run) < 2 {
		return run
	}
	group := p.g.Group(run[0].From)
	obstructions := p.g.Obstructions(group)
	if obstructions == nil {
		p.logger.Debug("no obstruction geometry, skipping simplification", zap.String("floor", group), zap.Int("edges", len(run)))
		return run
	}

	visible := func(from, to graph.NodeId) bool {
		a, b := p.g.GetNode(from).Position, p.g.GetNode(to).Position
		return obstructions.LineOfSight(a, b, bufferRadius) && !zone.Blocks(a, b, group, zones)
	}

	result := make([]graph.Edge, 0, len(run))
	for i := 0; i < len(run); {
		from := run[i].From
		j := len(run) - 1
		for ; j > i; j-- {
			if visible(from, run[j].To) {
				break
			}
		}
		if j == i {
			result = append(result, run[i])
			i++
			continue
		}

		weight := 0.0
		for k := i; k <= j; k++ {
			weight += run[k].Weight
		}
		a, b := p.g.GetNode(from).Position, p.g.GetNode(run[j].To).Position
		result = append(result, graph.Edge{
			From:     from,
			To:       run[j].To,
			Distance: a.DistanceTo(b),
			Angle:    a.BearingTo(b),
			Weight:   weight,
		})
		i = j + 1
	}
	return result
}
