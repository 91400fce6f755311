package pagerank_test

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(TransitionTestSuite))

type TransitionTestSuite struct{}

func (s *TransitionTestSuite) TestLinkedPage(c *gc.C) {
	g := mustGraph(c, danglingLinks)

	dist, err := pagerank.Transition(g, "A", 0.85)
	c.Assert(err, gc.IsNil)
	assertDistribution(c, g, dist, 1e-9)

	assertClose(c, dist["A"], 0.15/3, 1e-12)
	assertClose(c, dist["B"], 0.15/3+0.85/2, 1e-12)
	assertClose(c, dist["C"], 0.15/3+0.85/2, 1e-12)
}

func (s *TransitionTestSuite) TestDanglingPageIsUniform(c *gc.C) {
	g := mustGraph(c, danglingLinks)

	dist, err := pagerank.Transition(g, "B", 0.85)
	c.Assert(err, gc.IsNil)
	c.Assert(dist, gc.HasLen, 3)
	for page, p := range dist {
		assertClose(c, p, 1.0/3, 1e-12, page)
	}
}

func (s *TransitionTestSuite) TestSinglePage(c *gc.C) {
	g := mustGraph(c, map[string][]string{"only": nil})

	dist, err := pagerank.Transition(g, "only", 0.5)
	c.Assert(err, gc.IsNil)
	c.Assert(dist, gc.DeepEquals, pagerank.Distribution{"only": 1.0})
}

func (s *TransitionTestSuite) TestRandomGraphsSumToOne(c *gc.C) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		g := randomGraph(c, rng, 1+rng.Intn(12))
		damping := 0.05 + 0.9*rng.Float64()
		for _, page := range g.Pages() {
			dist, err := pagerank.Transition(g, page, damping)
			c.Assert(err, gc.IsNil)
			assertDistribution(c, g, dist, 1e-9)

			links := g.Links(page)
			n := float64(g.Len())
			for _, p := range g.Pages() {
				exp := (1 - damping) / n
				switch {
				case len(links) == 0:
					exp = 1 / n
				case contains(links, p):
					exp += damping / float64(len(links))
				}
				assertClose(c, dist[p], exp, 1e-12, fmt.Sprintf("round %d from %q to %q", round, page, p))
			}
		}
	}
}

func (s *TransitionTestSuite) TestErrors(c *gc.C) {
	g := mustGraph(c, cycleLinks)

	_, err := pagerank.Transition(nil, "A", 0.85)
	c.Assert(xerrors.Is(err, pagerank.ErrInvalidGraph), gc.Equals, true)

	_, err = pagerank.Transition(g, "Z", 0.85)
	c.Assert(xerrors.Is(err, pagerank.ErrUnknownPage), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `transition from "Z": page is not part of the graph`)

	for _, damping := range []float64{0, 1, -0.2, 1.5, math.NaN()} {
		_, err = pagerank.Transition(g, "A", damping)
		c.Assert(xerrors.Is(err, pagerank.ErrInvalidParameter), gc.Equals, true, gc.Commentf("damping %v", damping))
	}
}

func randomGraph(c *gc.C, rng *rand.Rand, numPages int) *graph.Graph {
	links := make(map[string][]string, numPages)
	for i := 0; i < numPages; i++ {
		links[fmt.Sprintf("p%02d", i)] = nil
	}
	for i := 0; i < numPages; i++ {
		src := fmt.Sprintf("p%02d", i)
		for j := 0; j < numPages; j++ {
			if rng.Float64() < 0.3 {
				links[src] = append(links[src], fmt.Sprintf("p%02d", j))
			}
		}
	}
	return mustGraph(c, links)
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
