package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Ahmed-Sermani/go-pagerank/config"
	"github.com/Ahmed-Sermani/go-pagerank/corpus"
	"github.com/Ahmed-Sermani/go-pagerank/indexer"
	memindexer "github.com/Ahmed-Sermani/go-pagerank/indexer/store/memory"
	"github.com/Ahmed-Sermani/go-pagerank/service"
	"github.com/Ahmed-Sermani/go-pagerank/service/ranker"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

var (
	appName = "pagerank"
	appSha  = ""
)

// maxSearchResults bounds the number of hits printed for -query.
const maxSearchResults = 10

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetOutput(os.Stderr)
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGHUP)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		cancel()
		os.Exit(1)
	}
}

// options holds the settings that only the command line provides.
type options struct {
	cfg       *config.Config
	corpusDir string
	query     string
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *logrus.Entry) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	level, _ := logrus.ParseLevel(opts.cfg.LogLevel)
	logger.Logger.SetLevel(level)

	crp, err := corpus.Load(ctx, os.DirFS(opts.corpusDir), corpus.Config{
		ReadWorkers: opts.cfg.Workers,
		Logger:      logger.WithField("service", "corpus"),
	})
	if err != nil {
		return err
	}

	methods, _ := opts.cfg.ParsedMethods()
	results, err := rank(ctx, crp, opts.cfg, methods, logger)
	if err != nil {
		return err
	}

	for _, m := range methods {
		res, _ := results.Result(m)
		printResult(stdout, res)
	}

	if opts.query == "" {
		return nil
	}
	return search(ctx, stdout, crp, searchRanks(results, methods), opts.query, logger)
}

// parseOptions applies the command line on top of the configuration file.
// Flags only override the file when they are explicitly set.
func parseOptions(args []string) (*options, error) {
	var (
		fs   = flag.NewFlagSet(appName, flag.ContinueOnError)
		def  = config.Default()
		opts options

		configPath    = fs.String("config", "", "Path to a YAML configuration file")
		damping       = fs.Float64("damping", def.DampingFactor, "The probability of following a link instead of jumping to a random page")
		samples       = fs.Int("samples", def.Samples, "The number of samples drawn by the sampling estimator")
		threshold     = fs.Float64("threshold", def.ConvergenceThreshold, "Stop iterating once no rank changes by this much")
		maxIterations = fs.Int("max-iterations", def.MaxIterations, "Fail if the iterative estimators do not converge within this many iterations (0 means no limit)")
		seed          = fs.Int64("seed", def.Seed, "Seed for the sampling estimator (0 seeds from the current time)")
		workers       = fs.Int("workers", def.Workers, "The number of workers used to read pages and run the BSP estimator (defaults to number of CPUs)")
		methods       = fs.String("methods", strings.Join(def.Methods, ","), "Comma-separated estimators to run: sampling, iteration, bsp")
		logLevel      = fs.String("log-level", def.LogLevel, "The log level (panic, fatal, error, warn, info, debug, trace)")
	)
	fs.StringVar(&opts.query, "query", "", "Search the corpus and list the matching pages by PageRank")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] corpus\n", appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, xerrors.New("exactly one corpus directory must be specified")
	}
	opts.corpusDir = fs.Arg(0)

	opts.cfg = def
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		opts.cfg = cfg
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "damping":
			opts.cfg.DampingFactor = *damping
		case "samples":
			opts.cfg.Samples = *samples
		case "threshold":
			opts.cfg.ConvergenceThreshold = *threshold
		case "max-iterations":
			opts.cfg.MaxIterations = *maxIterations
		case "seed":
			opts.cfg.Seed = *seed
		case "workers":
			opts.cfg.Workers = *workers
		case "methods":
			opts.cfg.Methods = splitList(*methods)
		case "log-level":
			opts.cfg.LogLevel = *logLevel
		}
	})

	if err := opts.cfg.Validate(); err != nil {
		return nil, xerrors.Errorf("invalid settings: %w", err)
	}
	return &opts, nil
}

// rank runs every requested estimator side by side.
func rank(ctx context.Context, crp *corpus.Corpus, cfg *config.Config, methods []ranker.Method, logger *logrus.Entry) (*ranker.Collector, error) {
	var (
		results  = new(ranker.Collector)
		svcGroup service.Group
	)
	for _, m := range methods {
		svc, err := ranker.NewService(ranker.Config{
			Graph:                crp.Graph,
			Method:               m,
			DampingFactor:        cfg.DampingFactor,
			Samples:              cfg.Samples,
			Seed:                 cfg.Seed,
			ConvergenceThreshold: cfg.ConvergenceThreshold,
			MaxIterations:        cfg.MaxIterations,
			ComputeWorkers:       cfg.Workers,
			Sink:                 results,
			Logger:               logger.WithField("service", "ranker"),
		})
		if err != nil {
			return nil, err
		}
		svcGroup = append(svcGroup, svc)
	}

	if err := svcGroup.Run(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// printResult writes the ranks in page order with four decimals.
func printResult(w io.Writer, res ranker.Result) {
	switch res.Method {
	case ranker.MethodSampling:
		fmt.Fprintf(w, "PageRank Results from Sampling (n = %d)\n", res.Samples)
	case ranker.MethodIteration:
		fmt.Fprintln(w, "PageRank Results from Iteration")
	case ranker.MethodBSP:
		fmt.Fprintln(w, "PageRank Results from BSP")
	}
	for _, page := range res.Ranks.Pages() {
		fmt.Fprintf(w, "  %s: %.4f\n", page, res.Ranks[page])
	}
}

// searchRanks picks the result used to order search hits. Iterative
// estimates are exact up to the threshold so they win over sampled ones.
func searchRanks(results *ranker.Collector, methods []ranker.Method) ranker.Result {
	for _, preferred := range []ranker.Method{ranker.MethodIteration, ranker.MethodBSP, ranker.MethodSampling} {
		for _, m := range methods {
			if m != preferred {
				continue
			}
			if res, ok := results.Result(m); ok {
				return res
			}
		}
	}
	return ranker.Result{}
}

// search indexes the corpus documents, assigns them the ranks of res and
// prints the best matches for query.
func search(ctx context.Context, w io.Writer, crp *corpus.Corpus, res ranker.Result, query string, logger *logrus.Entry) error {
	idx, err := memindexer.NewInMemoryBleveIndexer(nil)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	for _, doc := range crp.Documents {
		if err = idx.Index(&indexer.Document{
			ID:      doc.ID,
			Page:    doc.Page,
			Title:   doc.Title,
			Content: doc.Content,
		}); err != nil {
			return err
		}
	}
	if err = ranker.NewIndexSink(idx).Consume(ctx, res); err != nil {
		return err
	}

	it, err := idx.Search(indexer.Query{Type: indexer.QueryTypeMatch, Expression: query})
	if err != nil {
		return err
	}
	defer func() { _ = it.Close() }()

	logger.WithFields(logrus.Fields{
		"query":   query,
		"matches": it.TotalCount(),
		"ranks":   res.Method,
	}).Info("searched corpus")

	fmt.Fprintf(w, "Search Results for %q\n", query)
	for n := 0; n < maxSearchResults && it.Next(); n++ {
		doc := it.Document()
		fmt.Fprintf(w, "  %s: %.4f %s\n", doc.Page, doc.PageRank, doc.Title)
	}
	return it.Error()
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
