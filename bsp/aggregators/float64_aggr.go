package aggregators

import (
	"math"
	"sync/atomic"

	"github.com/Ahmed-Sermani/go-pagerank/bsp"
)

var (
	_ bsp.Aggregator = (*Float64Aggregator)(nil)
	_ bsp.Aggregator = (*Float64MaxAggregator)(nil)
)

// float64Cell stores a float64 as its IEEE 754 bit pattern so it can be
// updated with atomic operations.
type float64Cell struct {
	bits atomic.Uint64
}

func (c *float64Cell) load() float64 { return math.Float64frombits(c.bits.Load()) }

func (c *float64Cell) store(v float64) { c.bits.Store(math.Float64bits(v)) }

func (c *float64Cell) swap(v float64) float64 {
	return math.Float64frombits(c.bits.Swap(math.Float64bits(v)))
}

// update applies fn to the current value until the result is stored without
// interference from a concurrent update.
func (c *float64Cell) update(fn func(cur float64) float64) {
	for {
		oldBits := c.bits.Load()
		newVal := fn(math.Float64frombits(oldBits))
		if c.bits.CompareAndSwap(oldBits, math.Float64bits(newVal)) {
			return
		}
	}
}

// Float64Aggregator implements a concurrent-safe accumulator for float64
// values.
type Float64Aggregator struct {
	curSum, prevSum float64Cell
}

func (a *Float64Aggregator) Type() string {
	return "Float64Aggregator"
}

func (a *Float64Aggregator) Get() any {
	return a.curSum.load()
}

func (a *Float64Aggregator) Set(v any) {
	v64 := v.(float64)
	a.curSum.store(v64)
	a.prevSum.store(v64)
}

func (a *Float64Aggregator) Aggregate(v any) {
	v64 := v.(float64)
	a.curSum.update(func(cur float64) float64 { return cur + v64 })
}

func (a *Float64Aggregator) Delta() any {
	cur := a.curSum.load()
	return cur - a.prevSum.swap(cur)
}

// Float64MaxAggregator tracks the largest float64 value it has been given.
type Float64MaxAggregator struct {
	curMax, prevMax float64Cell
}

func (a *Float64MaxAggregator) Type() string {
	return "Float64MaxAggregator"
}

func (a *Float64MaxAggregator) Get() any {
	return a.curMax.load()
}

func (a *Float64MaxAggregator) Set(v any) {
	v64 := v.(float64)
	a.curMax.store(v64)
	a.prevMax.store(v64)
}

func (a *Float64MaxAggregator) Aggregate(v any) {
	v64 := v.(float64)
	a.curMax.update(func(cur float64) float64 { return math.Max(cur, v64) })
}

// Delta returns how much the maximum grew since the last call to Delta.
func (a *Float64MaxAggregator) Delta() any {
	cur := a.curMax.load()
	return cur - a.prevMax.swap(cur)
}
