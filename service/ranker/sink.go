package ranker

import (
	"context"
	"sync"

	"github.com/Ahmed-Sermani/go-pagerank/corpus"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// IndexAPI is implemented by objects that can store the PageRank score of
// a document.
type IndexAPI interface {
	UpdateScore(id uuid.UUID, score float64) error
}

// NewIndexSink returns a ResultSink that copies every rank into the index.
// Pages are mapped to documents with corpus.DocumentID.
func NewIndexSink(idx IndexAPI) ResultSink {
	return ResultSinkFunc(func(ctx context.Context, res Result) error {
		for _, page := range res.Ranks.Pages() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := idx.UpdateScore(corpus.DocumentID(page), res.Ranks[page]); err != nil {
				return xerrors.Errorf("update score for %q: %w", page, err)
			}
		}
		return nil
	})
}

// Collector is a ResultSink that keeps every result it receives. It is safe
// for concurrent use.
type Collector struct {
	mu      sync.Mutex
	results map[Method]Result
}

// Consume implements ResultSink.
func (c *Collector) Consume(_ context.Context, res Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		c.results = make(map[Method]Result)
	}
	c.results[res.Method] = res
	return nil
}

// Result returns the result produced by the specified method.
func (c *Collector) Result(m Method) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[m]
	return res, ok
}
