/*
   Estimates PageRank https://en.wikipedia.org/wiki/PageRank scores over a
   closed corpus of pages.
*/
package pagerank

import (
	"golang.org/x/xerrors"
)

/*
   The random surfer model: a surfer lands on a page of the corpus and from
   then on repeatedly either

       follows one of the outgoing links of the current page, with a
       probability equal to the damping factor, or

       teleports to a page picked uniformly at random from the corpus.

   The PageRank of a page is the long-run fraction of time the surfer spends
   on it. Two estimators are provided:

       Sample walks the surfer for a fixed number of steps and counts visits.

       Iterate applies the PageRank recurrence to every page at once until
       no page moves by more than the convergence threshold.

   Both return a Distribution keyed by every page of the graph whose values
   sum to 1.
*/

const (
	// DefaultDampingFactor is the conventional probability of following a
	// link instead of teleporting.
	DefaultDampingFactor = 0.85

	// DefaultSamples is the default number of pages visited by Sample.
	DefaultSamples = 10000

	// ConvergenceThreshold is the largest per-page change between two
	// successive iterations at which Iterate stops.
	ConvergenceThreshold = 0.001
)

var (
	// ErrInvalidGraph is returned when an estimator is handed a missing
	// graph.
	ErrInvalidGraph = xerrors.New("invalid graph")

	// ErrUnknownPage is returned when a page is not part of the graph.
	ErrUnknownPage = xerrors.New("page is not part of the graph")

	// ErrInvalidParameter is returned for a damping factor outside (0, 1),
	// a non-positive sample count or a non-positive threshold.
	ErrInvalidParameter = xerrors.New("invalid parameter")

	// ErrNoConvergence is returned by Iterate when a maximum number of
	// iterations was requested and reached before the ranks settled.
	ErrNoConvergence = xerrors.New("ranks did not converge within the iteration limit")
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/Ahmed-Sermani/go-pagerank/pagerank RandSource

// RandSource is implemented by random number generators that drive the
// sampling estimator. *rand.Rand from math/rand satisfies it.
type RandSource interface {
	// Intn returns a uniformly distributed value in [0, n).
	Intn(n int) int

	// Float64 returns a uniformly distributed value in [0.0, 1.0).
	Float64() float64
}

func validateDamping(damping float64) error {
	if !(damping > 0 && damping < 1) {
		return xerrors.Errorf("damping factor %v must be in the range (0, 1): %w", damping, ErrInvalidParameter)
	}
	return nil
}
