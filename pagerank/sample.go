package pagerank

import (
	"math/rand"
	"time"

	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"golang.org/x/xerrors"
)

// Sample estimates PageRank by walking a random surfer over n pages of g and
// returning the fraction of visits each page received.
//
// The walk starts on a page chosen uniformly at random. Each following page
// is drawn from the Transition distribution of the current page. All draws
// come from src so a seeded source yields a reproducible result; a nil src
// uses a time-seeded generator.
func Sample(g *graph.Graph, damping float64, n int, src RandSource) (Distribution, error) {
	if g == nil {
		return nil, xerrors.Errorf("sample: %w", ErrInvalidGraph)
	}
	if err := validateDamping(damping); err != nil {
		return nil, xerrors.Errorf("sample: %w", err)
	}
	if n <= 0 {
		return nil, xerrors.Errorf("sample: sample count %d must be positive: %w", n, ErrInvalidParameter)
	}
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var (
		pages  = g.Pages()
		counts = make([]int, len(pages))
		walker = newSurfer(g, damping)
	)

	current := src.Intn(len(pages))
	counts[current]++
	for i := 1; i < n; i++ {
		current = walker.next(current, src.Float64())
		counts[current]++
	}

	ranks := make(Distribution, len(pages))
	for i, page := range pages {
		ranks[page] = float64(counts[i]) / float64(n)
	}
	return ranks, nil
}

// surfer draws the next page of a walk from the transition model. The
// cumulative transition weights of each page are computed on first visit and
// reused since they only depend on the page.
type surfer struct {
	g       *graph.Graph
	damping float64
	cdf     [][]float64
}

func newSurfer(g *graph.Graph, damping float64) *surfer {
	return &surfer{
		g:       g,
		damping: damping,
		cdf:     make([][]float64, g.Len()),
	}
}

// next maps a uniform draw r in [0, 1) to the index of the page visited after
// the page at index from.
func (s *surfer) next(from int, r float64) int {
	cdf := s.cdf[from]
	if cdf == nil {
		cdf = s.cumulative(from)
		s.cdf[from] = cdf
	}

	for i, upper := range cdf {
		if r < upper {
			return i
		}
	}
	// The last bound may fall short of 1 because of rounding.
	return len(cdf) - 1
}

func (s *surfer) cumulative(from int) []float64 {
	pages := s.g.Pages()
	dist := transition(s.g, pages[from], s.damping)

	var (
		cdf = make([]float64, len(pages))
		acc float64
	)
	for i, page := range pages {
		acc += dist[page]
		cdf[i] = acc
	}
	return cdf
}
