package ranker

import (
	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Config encapsulates the required parameters for creating a new PageRank
// ranker instance.
type Config struct {
	// DampingFactor is the probability that a random surfer will click on
	// one of the outgoing links on the page they are currently visiting
	// instead of visiting (teleporting to) a random page in the graph.
	//
	// If not specified, a default value of 0.85 will be used instead.
	DampingFactor float64

	// At each step of the iterative PageRank algorithm, an aggregator
	// tracks the largest absolute change of any vertex score.
	//
	// The algorithm will keep executing until that change becomes less
	// than ConvergenceThreshold.
	//
	// If not specified, a default value of 0.001 will be used instead.
	ConvergenceThreshold float64

	// MaxIterations optionally bounds the number of score updates. A run
	// that reaches the bound before converging fails with
	// pagerank.ErrNoConvergence. Zero means no bound.
	MaxIterations int

	// The number of workers to spin up for computing PageRank scores. If
	// not specified, a default value of 1 will be used instead.
	ComputeWorkers int
}

// validate checks whether the PageRank ranker configuration is valid and
// sets the default values where required.
func (c *Config) validate() error {
	var err error
	if c.DampingFactor < 0 || c.DampingFactor >= 1.0 {
		err = multierror.Append(err, xerrors.New("DampingFactor must be in the range (0, 1)"))
	} else if c.DampingFactor == 0 {
		c.DampingFactor = pagerank.DefaultDampingFactor
	}

	if c.ConvergenceThreshold < 0 || c.ConvergenceThreshold >= 1.0 {
		err = multierror.Append(err, xerrors.New("ConvergenceThreshold must be in the range (0, 1)"))
	} else if c.ConvergenceThreshold == 0 {
		c.ConvergenceThreshold = pagerank.ConvergenceThreshold
	}

	if c.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.New("MaxIterations must not be negative"))
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	return err
}
