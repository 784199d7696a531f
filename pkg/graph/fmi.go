package graph

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/natevvv/indoor-routing/pkg/geometry"
	"github.com/pkg/errors"
)

// fmi parse states
const (
	PARSE_NODE_COUNT = iota
	PARSE_EDGE_COUNT = iota
	PARSE_NODES      = iota
	PARSE_EDGES      = iota
)

// WriteFmi writes the graph in the fmi text format
func WriteFmi(g Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "Can't create fmi file")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(g.AsString()); err != nil {
		return errors.Wrap(err, "Can't write fmi file")
	}
	return writer.Flush()
}

// NewNodesFromFmiString parses the fmi text format into a node collection.
// Node lines are "id lat lon floor", edge lines are "fromId toId pathWeight".
func NewNodesFromFmiString(fmi string) ([]Node, error) {
	scanner := bufio.NewScanner(strings.NewReader(fmi))

	numNodes := 0
	nodes := make([]Node, 0)
	id2index := make(map[string]int)

	parseState := PARSE_NODE_COUNT
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}

		switch parseState {
		case PARSE_NODE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid node count", lineNumber)
			}
			numNodes = val
			parseState = PARSE_EDGE_COUNT
		case PARSE_EDGE_COUNT:
			parseState = PARSE_NODES
			if numNodes == 0 {
				parseState = PARSE_EDGES
			}
		case PARSE_NODES:
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return nil, errors.Errorf("line %d: expected \"id lat lon floor\"", lineNumber)
			}
			lat, latErr := strconv.ParseFloat(fields[1], 64)
			lon, lonErr := strconv.ParseFloat(fields[2], 64)
			if latErr != nil || lonErr != nil {
				return nil, errors.Errorf("line %d: invalid coordinate", lineNumber)
			}
			node := Node{Id: fields[0], Position: geometry.MakePoint(lat, lon)}
			if len(fields) > 3 {
				node.Floor = fields[3]
			}
			id2index[node.Id] = len(nodes)
			nodes = append(nodes, node)
			if len(nodes) == numNodes {
				parseState = PARSE_EDGES
			}
		case PARSE_EDGES:
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return nil, errors.Errorf("line %d: expected \"fromId toId pathWeight\"", lineNumber)
			}
			weight, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid weight", lineNumber)
			}
			from, ok := id2index[fields[0]]
			if !ok {
				return nil, errors.Wrapf(ErrMissingNodeReference, "line %d: unknown node %q", lineNumber, fields[0])
			}
			nodes[from].Neighbors = append(nodes[from].Neighbors, Neighbor{Id: fields[1], Weight: weight})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't read fmi")
	}

	if len(nodes) != numNodes {
		return nil, errors.Errorf("Invalid parsing result: expected %d nodes, got %d", numNodes, len(nodes))
	}
	return nodes, nil
}

func NewGraphFromFmiString(fmi string, opts BuildOptions) (*AdjacencyArrayGraph, error) {
	nodes, err := NewNodesFromFmiString(fmi)
	if err != nil {
		return nil, err
	}
	return Build(nodes, nil, opts)
}

func NewGraphFromFmiFile(filename string, opts BuildOptions) (*AdjacencyArrayGraph, error) {
	fmi, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read fmi file")
	}
	return NewGraphFromFmiString(string(fmi), opts)
}
