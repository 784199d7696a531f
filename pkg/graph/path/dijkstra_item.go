package path

import (
	"fmt"

	"github.com/natevvv/indoor-routing/pkg/graph"
)

// implements queue.Priorizable
type DijkstraItem struct {
	nodeId      graph.NodeId // node id of this item in the graph
	distance    float64      // cost from the origin to this node
	heuristic   float64      // estimated cost from node to destination
	predecessor graph.Edge   // edge which reached this node, From is -1 for origins
	index       int          // internal usage
	sequence    uint64       // insertion order for stable tie-breaks
}

func NewDijkstraItem(nodeId graph.NodeId, distance float64, predecessor graph.Edge, heuristic float64, sequence uint64) *DijkstraItem {
	return &DijkstraItem{nodeId: nodeId, distance: distance, predecessor: predecessor, index: -1, heuristic: heuristic, sequence: sequence}
}

func (item *DijkstraItem) NodeId() graph.NodeId { return item.nodeId }
func (item *DijkstraItem) Distance() float64    { return item.distance }
func (item *DijkstraItem) Priority() float64    { return item.distance + item.heuristic }
func (item *DijkstraItem) Sequence() uint64     { return item.sequence }
func (item *DijkstraItem) Index() int           { return item.index }
func (item *DijkstraItem) SetIndex(index int)   { item.index = index }
func (item *DijkstraItem) String() string {
	return fmt.Sprintf("%v: %v, %v\n", item.index, item.nodeId, item.Priority())
}
