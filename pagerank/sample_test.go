package pagerank_test

import (
	"math/rand"

	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	"github.com/Ahmed-Sermani/go-pagerank/pagerank/mocks"
	"github.com/golang/mock/gomock"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SampleTestSuite))

type SampleTestSuite struct{}

func (s *SampleTestSuite) TestScriptedWalk(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	g := mustGraph(c, map[string][]string{
		"A": {"B"},
		"B": {"A"},
		"C": nil,
	})

	// Cumulative transition bounds in page order A, B, C:
	//   from A: 0.05, 0.95, 1
	//   from B: 0.90, 0.95, 1
	//   from C: 1/3,  2/3,  1
	src := mocks.NewMockRandSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Intn(3).Return(0),      // start on A
		src.EXPECT().Float64().Return(0.5),  // A -> B
		src.EXPECT().Float64().Return(0.97), // B -> C
		src.EXPECT().Float64().Return(0.1),  // C -> A
	)

	ranks, err := pagerank.Sample(g, 0.85, 4, src)
	c.Assert(err, gc.IsNil)
	c.Assert(ranks, gc.DeepEquals, pagerank.Distribution{"A": 0.5, "B": 0.25, "C": 0.25})
}

func (s *SampleTestSuite) TestSingleSampleOnlyPicksStartPage(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	g := mustGraph(c, cycleLinks)
	src := mocks.NewMockRandSource(ctrl)
	src.EXPECT().Intn(2).Return(1)

	ranks, err := pagerank.Sample(g, 0.85, 1, src)
	c.Assert(err, gc.IsNil)
	c.Assert(ranks, gc.DeepEquals, pagerank.Distribution{"A": 0, "B": 1})
}

func (s *SampleTestSuite) TestSinglePageCorpus(c *gc.C) {
	g := mustGraph(c, map[string][]string{"only": nil})
	for _, n := range []int{1, 2, 10, 1000} {
		ranks, err := pagerank.Sample(g, 0.85, n, rand.New(rand.NewSource(int64(n))))
		c.Assert(err, gc.IsNil)
		c.Assert(ranks, gc.DeepEquals, pagerank.Distribution{"only": 1.0})
	}
}

func (s *SampleTestSuite) TestResultIsADistribution(c *gc.C) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 10; round++ {
		g := randomGraph(c, rng, 1+rng.Intn(10))
		ranks, err := pagerank.Sample(g, 0.85, 1+rng.Intn(5000), rng)
		c.Assert(err, gc.IsNil)
		assertDistribution(c, g, ranks, 1e-12)
	}
}

func (s *SampleTestSuite) TestSeededSourceIsReproducible(c *gc.C) {
	g := mustGraph(c, corpus0Links)

	first, err := pagerank.Sample(g, 0.85, pagerank.DefaultSamples, rand.New(rand.NewSource(42)))
	c.Assert(err, gc.IsNil)
	second, err := pagerank.Sample(g, 0.85, pagerank.DefaultSamples, rand.New(rand.NewSource(42)))
	c.Assert(err, gc.IsNil)
	c.Assert(first, gc.DeepEquals, second)
}

func (s *SampleTestSuite) TestNilSourceFallsBackToDefault(c *gc.C) {
	g := mustGraph(c, cycleLinks)

	ranks, err := pagerank.Sample(g, 0.85, 100, nil)
	c.Assert(err, gc.IsNil)
	assertDistribution(c, g, ranks, 1e-12)
}

func (s *SampleTestSuite) TestAgreesWithIteration(c *gc.C) {
	for _, links := range []map[string][]string{cycleLinks, danglingLinks, corpus0Links} {
		g := mustGraph(c, links)

		sampled, err := pagerank.Sample(g, 0.85, 100000, rand.New(rand.NewSource(1)))
		c.Assert(err, gc.IsNil)
		iterated, err := pagerank.Iterate(g, 0.85)
		c.Assert(err, gc.IsNil)

		for _, page := range g.Pages() {
			assertClose(c, sampled[page], iterated[page], 0.02, page)
		}
	}
}

func (s *SampleTestSuite) TestInvalidParametersFailBeforeDrawing(c *gc.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	// No expectations: any draw fails the test.
	src := mocks.NewMockRandSource(ctrl)
	g := mustGraph(c, cycleLinks)

	_, err := pagerank.Sample(nil, 0.85, 10, src)
	c.Assert(xerrors.Is(err, pagerank.ErrInvalidGraph), gc.Equals, true)

	for _, n := range []int{0, -5} {
		_, err = pagerank.Sample(g, 0.85, n, src)
		c.Assert(xerrors.Is(err, pagerank.ErrInvalidParameter), gc.Equals, true)
	}

	for _, damping := range []float64{0, 1, 2} {
		_, err = pagerank.Sample(g, damping, 10, src)
		c.Assert(xerrors.Is(err, pagerank.ErrInvalidParameter), gc.Equals, true)
	}
}
