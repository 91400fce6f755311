package ranker

import (
	"math"

	"github.com/Ahmed-Sermani/go-pagerank/bsp"
	"github.com/Ahmed-Sermani/go-pagerank/bsp/message"
)

// Aggregator names.
const (
	pageCountAggr = "page_count"
	maxDeltaAggr  = "max_delta"
)

// IncomingScoreMessage is used for distributing PageRank scores to neighbors.
type IncomingScoreMessage struct {
	Score float64
}

func (pr IncomingScoreMessage) Type() string { return "score" }

// makeRankerComputeFunc returns a ComputeFunc that executes the PageRank
// recurrence using the provided dampingFactor value.
//
// Superstep 0 counts the pages, superstep 1 assigns every page 1/N and every
// later superstep performs one synchronous score update.
func makeRankerComputeFunc(dampingFactor float64) bsp.ComputeFunc[float64, any] {
	return func(g *bsp.Graph[float64, any], v *bsp.Vertex[float64, any], msgIt message.Iterator) error {
		superstep := g.Superstep()
		pageCountAgg := g.Aggregator(pageCountAggr)

		if superstep == 0 {
			pageCountAgg.Aggregate(1)
			return nil
		}

		var (
			pageCount = float64(pageCountAgg.Get().(int))
			newScore  float64
		)
		switch superstep {
		case 1:
			newScore = 1.0 / pageCount
		default:
			var sum float64
			for msgIt.Next() {
				sum += msgIt.Message().(IncomingScoreMessage).Score
			}

			// Pages without links behave as if they linked to every page;
			// their share was accumulated during the previous superstep.
			sum += g.Aggregator(residualInputAccName(superstep)).Get().(float64)
			newScore = (1.0-dampingFactor)/pageCount + dampingFactor*sum

			g.Aggregator(maxDeltaAggr).Aggregate(math.Abs(v.Value() - newScore))
		}

		v.SetValue(newScore)

		numOutLinks := float64(len(v.Edges()))
		if numOutLinks == 0 {
			g.Aggregator(residualOutputAccName(superstep)).Aggregate(newScore / pageCount)
			return nil
		}

		return g.BroadcastToNeighbors(v, IncomingScoreMessage{newScore / numOutLinks})
	}
}

// residualOutputAccName returns the name of the aggregator where the
// residual PageRank scores for the specified superstep are to be written to.
func residualOutputAccName(superstep int) string {
	if superstep%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}

// residualInputAccName returns the name of the aggregator where the
// residual PageRank scores for the specified superstep are to be read from.
func residualInputAccName(superstep int) string {
	if (superstep+1)%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}
