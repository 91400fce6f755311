// Package ranker runs a PageRank estimator over a corpus graph as a
// service.
package ranker

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"github.com/Ahmed-Sermani/go-pagerank/pagerank"
	bspranker "github.com/Ahmed-Sermani/go-pagerank/ranker"
	"github.com/Ahmed-Sermani/go-pagerank/service"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var _ service.Service = (*Service)(nil)

// Method selects the estimator run by a Service.
type Method string

// The supported estimators.
const (
	MethodSampling  Method = "sampling"
	MethodIteration Method = "iteration"
	MethodBSP       Method = "bsp"
)

// ParseMethod returns the Method with the given name.
func ParseMethod(name string) (Method, error) {
	switch m := Method(name); m {
	case MethodSampling, MethodIteration, MethodBSP:
		return m, nil
	default:
		return "", xerrors.Errorf("unknown method %q", name)
	}
}

// Result is produced by a Service once its estimator completes.
type Result struct {
	Method Method
	Ranks  pagerank.Distribution

	// Samples is the number of samples drawn by the sampling estimator.
	Samples int

	// Iterations is the number of score updates performed by the iterative
	// estimators.
	Iterations int

	StartedAt time.Time
	Took      time.Duration
}

// ResultSink is implemented by objects that receive estimator results.
type ResultSink interface {
	Consume(ctx context.Context, res Result) error
}

// ResultSinkFunc is an adapter that allows plain functions to be used as
// ResultSink instances.
type ResultSinkFunc func(context.Context, Result) error

func (f ResultSinkFunc) Consume(ctx context.Context, res Result) error {
	return f(ctx, res)
}

// Config encapsulates the settings for configuring the PageRank estimator
// service.
type Config struct {
	// The graph to rank.
	Graph *graph.Graph

	// The estimator to run.
	Method Method

	// The damping factor used by every estimator. Defaults to 0.85.
	DampingFactor float64

	// The number of samples drawn by the sampling estimator. Defaults to
	// 10000.
	Samples int

	// Seed for the sampling estimator's random source. Zero seeds it from
	// the current time.
	Seed int64

	// Stopping rule for the iterative estimators. Defaults to 0.001.
	ConvergenceThreshold float64

	// Optional upper bound on the iterations; zero means no bound.
	MaxIterations int

	// The number of workers used by the BSP estimator. Defaults to 1.
	ComputeWorkers int

	// The sink that receives the result.
	Sink ResultSink

	// The clock instance to use. If not defined, the wall clock is used.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Graph == nil {
		err = multierror.Append(err, xerrors.Errorf("graph has not been provided"))
	}
	if _, mErr := ParseMethod(string(cfg.Method)); mErr != nil {
		err = multierror.Append(err, mErr)
	}
	if cfg.DampingFactor == 0 {
		cfg.DampingFactor = pagerank.DefaultDampingFactor
	}
	if cfg.Samples == 0 {
		cfg.Samples = pagerank.DefaultSamples
	} else if cfg.Samples < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for samples: %d", cfg.Samples))
	}
	if cfg.ConvergenceThreshold == 0 {
		cfg.ConvergenceThreshold = pagerank.ConvergenceThreshold
	}
	if cfg.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for max iterations: %d", cfg.MaxIterations))
	}
	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}
	if cfg.Sink == nil {
		err = multierror.Append(err, xerrors.Errorf("result sink has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		cfg.Logger = logrus.NewEntry(l)
	}
	return err
}

// Service runs a single PageRank estimator and hands its result to the
// configured sink.
type Service struct {
	cfg Config
}

// NewService creates a new PageRank estimator service instance with the
// specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("ranker service: config validation failed: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "ranker-" + string(svc.cfg.Method) }

// Run implements service.Service. It computes the ranks once, delivers them
// to the sink and returns.
func (svc *Service) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := svc.cfg.Logger.WithField("method", svc.cfg.Method)
	logger.WithField("pages", svc.cfg.Graph.Len()).Info("starting PageRank estimation")

	res := Result{
		Method:    svc.cfg.Method,
		StartedAt: svc.cfg.Clock.Now(),
	}

	var err error
	switch svc.cfg.Method {
	case MethodSampling:
		res.Samples = svc.cfg.Samples
		res.Ranks, err = pagerank.Sample(svc.cfg.Graph, svc.cfg.DampingFactor, svc.cfg.Samples, svc.randSource())
	case MethodIteration:
		res.Ranks, res.Iterations, err = svc.iterate(logger)
	case MethodBSP:
		res.Ranks, res.Iterations, err = svc.runBSP(ctx)
	}
	if err != nil {
		return err
	}

	res.Took = svc.cfg.Clock.Now().Sub(res.StartedAt)
	logger.WithFields(logrus.Fields{
		"iterations": res.Iterations,
		"took":       res.Took.String(),
	}).Info("completed PageRank estimation")

	return svc.cfg.Sink.Consume(ctx, res)
}

func (svc *Service) randSource() pagerank.RandSource {
	if svc.cfg.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(svc.cfg.Seed))
}

func (svc *Service) iterate(logger *logrus.Entry) (pagerank.Distribution, int, error) {
	var iterations int
	ranks, err := pagerank.IterateWithConfig(svc.cfg.Graph, pagerank.IterationConfig{
		DampingFactor:        svc.cfg.DampingFactor,
		ConvergenceThreshold: svc.cfg.ConvergenceThreshold,
		MaxIterations:        svc.cfg.MaxIterations,
		OnIteration: func(iteration int, maxDelta float64) {
			iterations = iteration
			logger.WithFields(logrus.Fields{
				"iteration": iteration,
				"max_delta": maxDelta,
			}).Debug("completed iteration")
		},
	})
	return ranks, iterations, err
}

func (svc *Service) runBSP(ctx context.Context) (pagerank.Distribution, int, error) {
	r, err := bspranker.NewRanker(bspranker.Config{
		DampingFactor:        svc.cfg.DampingFactor,
		ConvergenceThreshold: svc.cfg.ConvergenceThreshold,
		MaxIterations:        svc.cfg.MaxIterations,
		ComputeWorkers:       svc.cfg.ComputeWorkers,
	})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = r.Close() }()

	if err = r.Load(svc.cfg.Graph); err != nil {
		return nil, 0, err
	}

	ex := r.Executor()
	if err = ex.RunToCompletion(ctx); err != nil {
		return nil, 0, err
	}

	// Supersteps 0 and 1 initialise the scores.
	return r.Scores(), ex.Superstep() - 1, nil
}
