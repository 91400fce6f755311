package pagerank

import (
	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"golang.org/x/xerrors"
)

// Transition returns the probability of the surfer moving from page to each
// page of the graph.
//
// If page has outgoing links every page receives (1-damping)/N and each
// linked page an extra damping/L where L is the number of links. A dangling
// page spreads the surfer uniformly over the corpus and ignores damping.
func Transition(g *graph.Graph, page string, damping float64) (Distribution, error) {
	if g == nil {
		return nil, xerrors.Errorf("transition: %w", ErrInvalidGraph)
	}
	if !g.Has(page) {
		return nil, xerrors.Errorf("transition from %q: %w", page, ErrUnknownPage)
	}
	if err := validateDamping(damping); err != nil {
		return nil, xerrors.Errorf("transition: %w", err)
	}
	return transition(g, page, damping), nil
}

// transition assumes its arguments were already validated.
func transition(g *graph.Graph, page string, damping float64) Distribution {
	var (
		n     = float64(g.Len())
		links = g.Links(page)
		dist  = make(Distribution, g.Len())
	)

	if len(links) == 0 {
		for _, p := range g.Pages() {
			dist[p] = 1.0 / n
		}
		return dist
	}

	for _, p := range g.Pages() {
		dist[p] = (1.0 - damping) / n
	}
	for _, link := range links {
		dist[link] += damping / float64(len(links))
	}
	return dist
}
