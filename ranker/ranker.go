// Package ranker computes PageRank scores on top of the bsp engine. It
// evaluates the same recurrence as pagerank.Iterate with every page being a
// vertex that pushes its rank to its neighbors as messages, which makes it a
// useful cross-check of the sequential estimator and a template for corpora
// that outgrow a single loop.
package ranker

import (
	"context"

	"github.com/Ahmed-Sermani/go-pagerank/bsp"
	"github.com/Ahmed-Sermani/go-pagerank/bsp/aggregators"
	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	"golang.org/x/xerrors"
)

// Ranker executes the iterative version of the PageRank algorithm
// on a graph until the desired level of convergence is reached.
type Ranker struct {
	g   *bsp.Graph[float64, any]
	cfg Config

	executorFactory bsp.ExecutorFactory[float64, any]
}

// NewRanker returns a new Ranker instance using the provided config
// options.
func NewRanker(cfg Config) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank ranker config validation failed: %w", err)
	}

	g, err := bsp.NewGraph(bsp.GraphConfig[float64, any]{
		ComputeWorkers: cfg.ComputeWorkers,
		ComputeFn:      makeRankerComputeFunc(cfg.DampingFactor),
	})
	if err != nil {
		return nil, err
	}

	return &Ranker{
		cfg:             cfg,
		g:               g,
		executorFactory: bsp.NewExecutor[float64, any],
	}, nil
}

// Rank is a convenience function that loads g into a new Ranker, runs it to
// completion and returns the resulting scores.
func Rank(ctx context.Context, g *graph.Graph, cfg Config) (pagerank.Distribution, error) {
	r, err := NewRanker(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	if err = r.Load(g); err != nil {
		return nil, err
	}
	if err = r.Executor().RunToCompletion(ctx); err != nil {
		return nil, err
	}
	return r.Scores(), nil
}

// Close releases any resources allocated by this PageRank ranker instance.
func (r *Ranker) Close() error {
	return r.g.Close()
}

// SetExecutorFactory configures the ranker to use the a custom executor
// factory when the Executor method is invoked.
func (r *Ranker) SetExecutorFactory(factory bsp.ExecutorFactory[float64, any]) {
	r.executorFactory = factory
}

// AddVertex inserts a new vertex to the graph with the given id.
func (r *Ranker) AddVertex(id string) {
	r.g.AddVertex(id, 0.0)
}

// AddEdge inserts a directed edge from src to dst. If both src and dst refer
// to the same vertex then this is a no-op.
func (r *Ranker) AddEdge(src, dst string) error {
	// Don't allow self-links
	if src == dst {
		return nil
	}
	return r.g.AddEdge(src, dst, nil)
}

// Load adds every page of g as a vertex and every link as an edge.
func (r *Ranker) Load(g *graph.Graph) error {
	if g == nil {
		return xerrors.Errorf("load: %w", pagerank.ErrInvalidGraph)
	}
	for _, page := range g.Pages() {
		r.AddVertex(page)
	}
	for _, page := range g.Pages() {
		for _, link := range g.Links(page) {
			if err := r.AddEdge(page, link); err != nil {
				return xerrors.Errorf("load: %w", err)
			}
		}
	}
	return nil
}

// Graph returns the underlying bsp.Graph instance.
func (r *Ranker) Graph() *bsp.Graph[float64, any] {
	return r.g
}

// Executor creates and return a bsp.Executor for running the PageRank
// algorithm once the graph layout has been properly set up.
func (r *Ranker) Executor() *bsp.Executor[float64, any] {
	r.registerAggregators()
	cb := bsp.ExecutorHooks[float64, any]{
		PreStep: func(_ context.Context, g *bsp.Graph[float64, any]) error {
			// Reset the max delta aggregator and the residual aggregator
			// for the next step.
			g.Aggregator(maxDeltaAggr).Set(0.0)
			g.Aggregator(residualOutputAccName(g.Superstep())).Set(0.0)
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, g *bsp.Graph[float64, any], _ int) (bool, error) {
			// Supersteps 0 and 1 are part of the algorithm initialization;
			// the predicate should only be evaluated for supersteps > 1
			if g.Superstep() < 2 {
				return true, nil
			}

			maxDelta := g.Aggregator(maxDeltaAggr).Get().(float64)
			if maxDelta < r.cfg.ConvergenceThreshold {
				return false, nil
			}

			iterations := g.Superstep() - 1
			if r.cfg.MaxIterations > 0 && iterations >= r.cfg.MaxIterations {
				return false, xerrors.Errorf("rank: max change %v after %d iterations: %w", maxDelta, iterations, pagerank.ErrNoConvergence)
			}
			return true, nil
		},
	}

	return r.executorFactory(r.g, cb)
}

// registerAggregators creates and registers the aggregator instances that we
// need to run the PageRank ranker algorithm.
func (r *Ranker) registerAggregators() {
	r.g.RegisterAggregator(pageCountAggr, new(aggregators.IntAggregator))
	r.g.RegisterAggregator("residual_0", new(aggregators.Float64Aggregator))
	r.g.RegisterAggregator("residual_1", new(aggregators.Float64Aggregator))
	r.g.RegisterAggregator(maxDeltaAggr, new(aggregators.Float64MaxAggregator))
}

// Scores returns the current score of every vertex.
func (r *Ranker) Scores() pagerank.Distribution {
	out := make(pagerank.Distribution, len(r.g.Vertices()))
	for id, v := range r.g.Vertices() {
		out[id] = v.Value()
	}
	return out
}
