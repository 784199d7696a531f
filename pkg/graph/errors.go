package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingNodeReference = errors.New("graph: neighbor references a missing node")
	ErrDuplicateNode        = errors.New("graph: duplicate node id")
	ErrEmptyNodeId          = errors.New("graph: empty node id")
	ErrInvalidWeight        = errors.New("graph: invalid path weight")
)

// MissingNodeReferenceError is returned by Build when a neighbor id is not part of the node collection
type MissingNodeReferenceError struct {
	Node     string // node which holds the reference
	Neighbor string // the missing neighbor id
}

func (e *MissingNodeReferenceError) Error() string {
	return fmt.Sprintf("graph: node %q references missing neighbor %q", e.Node, e.Neighbor)
}

func (e *MissingNodeReferenceError) Unwrap() error {
	return ErrMissingNodeReference
}
