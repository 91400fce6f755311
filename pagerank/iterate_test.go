package pagerank_test

import (
	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(IterateTestSuite))

type IterateTestSuite struct{}

func (s *IterateTestSuite) TestSymmetricCycle(c *gc.C) {
	g := mustGraph(c, cycleLinks)

	ranks, err := pagerank.Iterate(g, 0.85)
	c.Assert(err, gc.IsNil)
	assertClose(c, ranks["A"], 0.5, 1e-12)
	assertClose(c, ranks["B"], 0.5, 1e-12)
}

func (s *IterateTestSuite) TestDanglingMassIsRedistributed(c *gc.C) {
	g := mustGraph(c, danglingLinks)

	ranks, err := pagerank.Iterate(g, 0.85)
	c.Assert(err, gc.IsNil)
	assertDistribution(c, g, ranks, 1e-3)

	// A collects everything C has plus its share of B's redistributed
	// mass; B and C are fed by A alone.
	assertClose(c, ranks["A"], 0.39341120653427974, 1e-9)
	assertClose(c, ranks["B"], 0.3032943967328601, 1e-9)
	assertClose(c, ranks["C"], 0.3032943967328601, 1e-9)
	c.Assert(ranks["A"] > ranks["C"], gc.Equals, true)
}

func (s *IterateTestSuite) TestCorpus(c *gc.C) {
	g := mustGraph(c, corpus0Links)

	ranks, err := pagerank.Iterate(g, 0.85)
	c.Assert(err, gc.IsNil)
	assertDistribution(c, g, ranks, 1e-3)

	exp := map[string]float64{
		"1.html": 0.219777327275683,
		"2.html": 0.429357664651155,
		"3.html": 0.219777327275683,
		"4.html": 0.13108768079747898,
	}
	for page, rank := range exp {
		assertClose(c, ranks[page], rank, 1e-9, page)
	}
}

func (s *IterateTestSuite) TestSinglePageConvergesAfterFirstIteration(c *gc.C) {
	g := mustGraph(c, map[string][]string{"only": nil})

	var iterations int
	ranks, err := pagerank.IterateWithConfig(g, pagerank.IterationConfig{
		OnIteration: func(int, float64) { iterations++ },
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterations, gc.Equals, 1)
	assertClose(c, ranks["only"], 1.0, 1e-12)
}

func (s *IterateTestSuite) TestStoppingRule(c *gc.C) {
	g := mustGraph(c, corpus0Links)

	var deltas []float64
	_, err := pagerank.IterateWithConfig(g, pagerank.IterationConfig{
		DampingFactor: 0.85,
		OnIteration: func(iteration int, maxDelta float64) {
			c.Assert(iteration, gc.Equals, len(deltas)+1)
			deltas = append(deltas, maxDelta)
		},
	})
	c.Assert(err, gc.IsNil)
	c.Assert(len(deltas) > 1, gc.Equals, true)

	last := len(deltas) - 1
	c.Assert(deltas[last] < pagerank.ConvergenceThreshold, gc.Equals, true)
	for _, d := range deltas[:last] {
		c.Assert(d >= pagerank.ConvergenceThreshold, gc.Equals, true)
	}
}

func (s *IterateTestSuite) TestMaxIterations(c *gc.C) {
	_, err := pagerank.IterateWithConfig(mustGraph(c, corpus0Links), pagerank.IterationConfig{MaxIterations: 1})
	c.Assert(xerrors.Is(err, pagerank.ErrNoConvergence), gc.Equals, true)

	// The cycle is already at its fixed point after one iteration.
	ranks, err := pagerank.IterateWithConfig(mustGraph(c, cycleLinks), pagerank.IterationConfig{MaxIterations: 1})
	c.Assert(err, gc.IsNil)
	c.Assert(ranks, gc.HasLen, 2)
}

func (s *IterateTestSuite) TestAgreesWithGonum(c *gc.C) {
	for _, links := range []map[string][]string{cycleLinks, danglingLinks, corpus0Links} {
		g := mustGraph(c, links)

		ranks, err := pagerank.IterateWithConfig(g, pagerank.IterationConfig{ConvergenceThreshold: 1e-12})
		c.Assert(err, gc.IsNil)

		exp := gonumPageRank(g, 0.85)
		for _, page := range g.Pages() {
			assertClose(c, ranks[page], exp[page], 1e-6, page)
		}

		ranks, err = pagerank.Iterate(g, 0.85)
		c.Assert(err, gc.IsNil)
		for _, page := range g.Pages() {
			assertClose(c, ranks[page], exp[page], 0.01, page)
		}
	}
}

func (s *IterateTestSuite) TestInvalidParameters(c *gc.C) {
	g := mustGraph(c, cycleLinks)

	_, err := pagerank.Iterate(nil, 0.85)
	c.Assert(xerrors.Is(err, pagerank.ErrInvalidGraph), gc.Equals, true)

	for _, damping := range []float64{0, 1, -1} {
		_, err = pagerank.Iterate(g, damping)
		c.Assert(xerrors.Is(err, pagerank.ErrInvalidParameter), gc.Equals, true)
	}

	_, err = pagerank.IterateWithConfig(g, pagerank.IterationConfig{
		ConvergenceThreshold: -1,
		MaxIterations:        -1,
	})
	c.Assert(xerrors.Is(err, pagerank.ErrInvalidParameter), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `(?s)iterate: 2 errors occurred:.*convergence threshold.*max iterations.*`)
}

// gonumPageRank computes reference scores with gonum, which also spreads the
// rank of dangling pages uniformly over the graph.
func gonumPageRank(g *graph.Graph, damping float64) pagerank.Distribution {
	dg := simple.NewDirectedGraph()
	for i := range g.Pages() {
		dg.AddNode(simple.Node(i))
	}
	for i, page := range g.Pages() {
		for _, link := range g.Links(page) {
			j, _ := g.Index(link)
			dg.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
		}
	}

	scores := network.PageRank(dg, damping, 1e-12)
	out := make(pagerank.Distribution, g.Len())
	for i, page := range g.Pages() {
		out[page] = scores[int64(i)]
	}
	return out
}
