package aggregators

import (
	"sync/atomic"

	"github.com/Ahmed-Sermani/go-pagerank/bsp"
)

var _ bsp.Aggregator = (*IntAggregator)(nil)

// IntAggregator implements a concurrent-safe accumulator for int values.
type IntAggregator struct {
	prevSum, curSum atomic.Int64
}

func (a *IntAggregator) Type() string {
	return "IntAggregator"
}

func (a *IntAggregator) Get() any {
	return int(a.curSum.Load())
}

func (a *IntAggregator) Set(v any) {
	v64 := int64(v.(int))
	a.curSum.Store(v64)
	a.prevSum.Store(v64)
}

func (a *IntAggregator) Aggregate(v any) {
	a.curSum.Add(int64(v.(int)))
}

func (a *IntAggregator) Delta() any {
	cur := a.curSum.Load()
	return int(cur - a.prevSum.Swap(cur))
}
