// Package corpus loads a directory of HTML pages into a link graph.
package corpus

import (
	"context"
	"io/fs"
	"path"
	"sort"

	"github.com/Ahmed-Sermani/go-pagerank/graph"
	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"github.com/Ahmed-Sermani/go-pagerank/pipeline/runners"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// ErrNoPages is returned when a directory contains no HTML pages.
var ErrNoPages = xerrors.New("corpus contains no pages")

// Config encapsulates the settings for loading a corpus.
type Config struct {
	// ReadWorkers bounds the number of workers reading and parsing pages
	// concurrently. If not specified, a default value of 4 is used instead.
	ReadWorkers int

	// Logger receives diagnostics about the loaded pages. If not
	// specified, the standard logrus logger is used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() {
	if cfg.ReadWorkers <= 0 {
		cfg.ReadWorkers = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
}

// Document holds the indexable contents of a corpus page.
type Document struct {
	// ID is derived from the page name so that the same page always
	// receives the same ID.
	ID      uuid.UUID
	Page    string
	Title   string
	Content string
}

// Corpus is the result of loading a directory of pages.
type Corpus struct {
	Graph *graph.Graph

	// Documents are sorted by page name.
	Documents []Document
}

// Document returns the document for the specified page.
func (c *Corpus) Document(page string) (Document, bool) {
	i := sort.Search(len(c.Documents), func(i int) bool { return c.Documents[i].Page >= page })
	if i < len(c.Documents) && c.Documents[i].Page == page {
		return c.Documents[i], true
	}
	return Document{}, false
}

// DocumentID returns the stable document ID for page.
func DocumentID(page string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(page))
}

// Load parses every ".html" file at the top level of fsys and returns the
// resulting corpus. Pages are keyed by file name. Links to the page itself or
// to files outside the corpus are ignored, so the returned graph is closed.
//
// Pages are sent through a pipeline with the following stages:
//
// - Read the page contents.
// - Extract the targets of anchor tags.
// - Extract the title and the text content.
// - Record the outgoing links and the document.
func Load(ctx context.Context, fsys fs.FS, cfg Config) (*Corpus, error) {
	cfg.validate()

	pages, err := listPages(fsys)
	if err != nil {
		return nil, xerrors.Errorf("load corpus: %w", err)
	}
	if len(pages) == 0 {
		return nil, xerrors.Errorf("load corpus: %w", ErrNoPages)
	}

	var (
		links = newLinkRecorder()
		docs  = newDocumentRecorder()
		sink  = new(countingSink)
	)
	p := pipeline.New(
		runners.FixedWorkerPool(newPageReader(fsys), cfg.ReadWorkers),
		runners.DynamicWorkerPool(newLinkExtractor(), cfg.ReadWorkers),
		runners.FIFO(newTextExtractor()),
		runners.Broadcast(links, docs),
	)
	if err = p.Process(ctx, &pageSource{pages: pages}, sink); err != nil {
		return nil, xerrors.Errorf("load corpus: %w", err)
	} else if err = ctx.Err(); err != nil {
		// The pipeline stops quietly on cancellation.
		return nil, xerrors.Errorf("load corpus: %w", err)
	}

	adjacency := closeLinks(pages, links.links)
	for _, page := range pages {
		cfg.Logger.WithFields(logrus.Fields{
			"page":  page,
			"links": len(adjacency[page]),
		}).Debug("loaded page")
	}

	g, err := graph.New(adjacency)
	if err != nil {
		return nil, xerrors.Errorf("load corpus: %w", err)
	}

	documents := docs.documents
	sort.Slice(documents, func(i, j int) bool { return documents[i].Page < documents[j].Page })

	cfg.Logger.WithFields(logrus.Fields{
		"pages":     g.Len(),
		"processed": sink.getCount(),
	}).Info("loaded corpus")

	return &Corpus{Graph: g, Documents: documents}, nil
}

// listPages returns the sorted names of the HTML files at the top level of
// fsys.
func listPages(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".html" {
			continue
		}
		pages = append(pages, entry.Name())
	}
	return pages, nil
}

// closeLinks keeps, for every page, the links that point to another page of
// the corpus.
func closeLinks(pages []string, links map[string][]string) map[string][]string {
	known := make(map[string]struct{}, len(pages))
	for _, page := range pages {
		known[page] = struct{}{}
	}

	out := make(map[string][]string, len(pages))
	for _, page := range pages {
		var kept []string
		for _, link := range links[page] {
			if _, ok := known[link]; !ok || link == page {
				continue
			}
			kept = append(kept, link)
		}
		out[page] = kept
	}
	return out
}
