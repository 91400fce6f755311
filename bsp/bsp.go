/*
   implements the BSP https://en.wikipedia.org/wiki/Bulk_synchronous_parallel computing model
   for processing page graphs one synchronous superstep at a time.
*/
package bsp

import (
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownEdgeSource is returned by AddEdge when the source vertex
	// has not been added to the graph.
	ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

	// ErrInvalidMessageDestination is returned when a message is sent to a
	// vertex that is not part of the graph.
	ErrInvalidMessageDestination = xerrors.New("invalid message destination")
)

// Aggregator is implemented by values that accumulate a global result from
// the per-vertex contributions of a superstep. Implementations must be safe
// for concurrent use as compute workers call Aggregate in parallel.
type Aggregator interface {
	Type() string
	Set(val any)
	Get() any
	// updates the Aggregator value based on the current value.
	Aggregate(val any)

	// Delta returns the change in the aggregator's value since the last
	// call to Delta.
	Delta() any
}
