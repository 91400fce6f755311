package pagerank

import (
	"math"

	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// IterationConfig encapsulates the parameters of the iterative estimator.
type IterationConfig struct {
	// DampingFactor is the probability that the surfer follows a link
	// instead of teleporting. If not specified, DefaultDampingFactor is
	// used instead.
	DampingFactor float64

	// The estimator stops once the largest absolute change of any page's
	// rank between two iterations drops below ConvergenceThreshold. If not
	// specified, a default value of 0.001 is used instead.
	ConvergenceThreshold float64

	// MaxIterations optionally bounds the number of iterations. Reaching
	// the bound before convergence is reported as ErrNoConvergence. Zero
	// means no bound.
	MaxIterations int

	// OnIteration, if defined, is invoked after each iteration with the
	// 1-based iteration number and the largest rank change it produced.
	OnIteration func(iteration int, maxDelta float64)
}

// validate checks whether the configuration is valid and sets the default
// values where required.
func (c *IterationConfig) validate() error {
	var err error
	if c.DampingFactor == 0 {
		c.DampingFactor = DefaultDampingFactor
	} else if vErr := validateDamping(c.DampingFactor); vErr != nil {
		err = multierror.Append(err, vErr)
	}

	if c.ConvergenceThreshold == 0 {
		c.ConvergenceThreshold = ConvergenceThreshold
	} else if !(c.ConvergenceThreshold > 0) {
		err = multierror.Append(err, xerrors.Errorf("convergence threshold %v must be positive: %w", c.ConvergenceThreshold, ErrInvalidParameter))
	}

	if c.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.Errorf("max iterations %d must not be negative: %w", c.MaxIterations, ErrInvalidParameter))
	}
	return err
}

// Iterate estimates PageRank by repeatedly applying the PageRank recurrence
// to all pages of g until no rank changes by ConvergenceThreshold or more.
func Iterate(g *graph.Graph, damping float64) (Distribution, error) {
	if err := validateDamping(damping); err != nil {
		return nil, xerrors.Errorf("iterate: %w", err)
	}
	return IterateWithConfig(g, IterationConfig{DampingFactor: damping})
}

// IterateWithConfig is like Iterate but allows the stopping rule to be
// tuned.
//
// Every rank starts at 1/N. A page without outgoing links is treated as if
// it linked to every page of the corpus, itself included. Each iteration
// computes
//
//     rank'(p) = (1-d)/N + d * sum(rank(q) / outdegree(q)) for each q linking to p
//
// from the ranks of the previous iteration only. The returned ranks are not
// renormalised.
func IterateWithConfig(g *graph.Graph, cfg IterationConfig) (Distribution, error) {
	if g == nil {
		return nil, xerrors.Errorf("iterate: %w", ErrInvalidGraph)
	}
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("iterate: %w", err)
	}

	var (
		pages    = g.Pages()
		n        = float64(len(pages))
		d        = cfg.DampingFactor
		inbound  = inboundLinks(g)
		dangling = danglingPages(g)
		ranks    = make([]float64, len(pages))
		next     = make([]float64, len(pages))
	)
	for i := range ranks {
		ranks[i] = 1.0 / n
	}

	for iteration := 1; ; iteration++ {
		// Dangling pages link to every page so each of them hands the same
		// share of its rank to all pages.
		var danglingShare float64
		for _, q := range dangling {
			danglingShare += ranks[q] / n
		}

		var maxDelta float64
		for p := range pages {
			var sum float64
			for _, q := range inbound[p] {
				sum += ranks[q] / float64(g.OutDegree(pages[q]))
			}
			next[p] = (1.0-d)/n + d*(sum+danglingShare)
			maxDelta = math.Max(maxDelta, math.Abs(next[p]-ranks[p]))
		}
		ranks, next = next, ranks

		if cfg.OnIteration != nil {
			cfg.OnIteration(iteration, maxDelta)
		}
		if maxDelta < cfg.ConvergenceThreshold {
			break
		}
		if cfg.MaxIterations > 0 && iteration >= cfg.MaxIterations {
			return nil, xerrors.Errorf("iterate: max change %v after %d iterations: %w", maxDelta, iteration, ErrNoConvergence)
		}
	}

	out := make(Distribution, len(pages))
	for i, page := range pages {
		out[page] = ranks[i]
	}
	return out, nil
}

// inboundLinks returns, for every page index, the indices of the pages that
// link to it.
func inboundLinks(g *graph.Graph) [][]int {
	pages := g.Pages()
	inbound := make([][]int, len(pages))
	for q, page := range pages {
		for _, link := range g.Links(page) {
			p, _ := g.Index(link)
			inbound[p] = append(inbound[p], q)
		}
	}
	return inbound
}

func danglingPages(g *graph.Graph) []int {
	var dangling []int
	for i, page := range g.Pages() {
		if g.IsDangling(page) {
			dangling = append(dangling, i)
		}
	}
	return dangling
}
