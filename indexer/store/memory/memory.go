// Package memory provides an in-memory indexer backed by bleve.
package memory

import (
	"sync"

	"github.com/Ahmed-Sermani/go-pagerank/indexer"
	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/xerrors"
)

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

// Compile-time check for ensuring InMemoryBleveIndexer implements Indexer.
var _ indexer.Indexer = (*InMemoryBleveIndexer)(nil)

// InMemoryBleveIndexer is an Indexer implementation that uses an in-memory
// bleve instance to catalogue and search documents.
type InMemoryBleveIndexer struct {
	mu        sync.RWMutex
	documents map[string]*indexer.Document

	idx bleve.Index
	clk clock.Clock
}

// bleveDoc is the subset of a document that bleve indexes.
type bleveDoc struct {
	Page     string
	Title    string
	Content  string
	PageRank float64
}

// NewInMemoryBleveIndexer creates a text indexer that uses an in-memory
// bleve instance for indexing documents. Documents are stamped with the time
// reported by clk; a nil clk means the wall clock.
func NewInMemoryBleveIndexer(clk clock.Clock) (*InMemoryBleveIndexer, error) {
	if clk == nil {
		clk = clock.WallClock
	}

	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, err
	}

	return &InMemoryBleveIndexer{
		idx:       idx,
		clk:       clk,
		documents: make(map[string]*indexer.Document),
	}, nil
}

// Close the indexer and release any allocated resources.
func (i *InMemoryBleveIndexer) Close() error {
	return i.idx.Close()
}

// Index inserts a new document to the index or updates the index entry for
// an existing document.
func (i *InMemoryBleveIndexer) Index(doc *indexer.Document) error {
	if doc.ID == uuid.Nil {
		return xerrors.Errorf("index: %w", indexer.ErrMissingID)
	}

	doc.IndexedAt = i.clk.Now().UTC()
	dcopy := copyDoc(doc)
	key := dcopy.ID.String()

	i.mu.Lock()
	defer i.mu.Unlock()

	// If updating, preserve existing PageRank score
	if orig, exists := i.documents[key]; exists {
		dcopy.PageRank = orig.PageRank
	}

	if err := i.idx.Index(key, makeBleveDoc(dcopy)); err != nil {
		return xerrors.Errorf("index: %w", err)
	}

	i.documents[key] = dcopy
	return nil
}

// FindByID looks up a document by its ID.
func (i *InMemoryBleveIndexer) FindByID(id uuid.UUID) (*indexer.Document, error) {
	return i.findByID(id.String())
}

// findByID looks up a document by its ID expressed as a string.
func (i *InMemoryBleveIndexer) findByID(id string) (*indexer.Document, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if d, found := i.documents[id]; found {
		return copyDoc(d), nil
	}

	return nil, xerrors.Errorf("find by ID: %w", indexer.ErrNotFound)
}

// Search the index for a particular query and return back a result
// iterator. Results are ordered by descending PageRank and then by
// relevance.
func (i *InMemoryBleveIndexer) Search(q indexer.Query) (indexer.Iterator, error) {
	var bq query.Query
	switch q.Type {
	case indexer.QueryTypePhrase:
		bq = bleve.NewMatchPhraseQuery(q.Expression)
	default:
		bq = bleve.NewMatchQuery(q.Expression)
	}

	searchReq := bleve.NewSearchRequest(bq)
	searchReq.SortBy([]string{"-PageRank", "-_score"})
	searchReq.Size = batchSize
	searchReq.From = int(q.Offset)
	rs, err := i.idx.Search(searchReq)
	if err != nil {
		return nil, xerrors.Errorf("search: %w", err)
	}

	return &bleveIterator{idx: i, searchReq: searchReq, rs: rs, cumIdx: q.Offset}, nil
}

// UpdateScore updates the PageRank score for a document with the specified
// ID. If no such document exists, a placeholder document with the provided
// score will be created.
func (i *InMemoryBleveIndexer) UpdateScore(id uuid.UUID, score float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := id.String()
	doc, found := i.documents[key]
	if !found {
		doc = &indexer.Document{ID: id}
		i.documents[key] = doc
	}

	doc.PageRank = score
	if err := i.idx.Index(key, makeBleveDoc(doc)); err != nil {
		return xerrors.Errorf("update score: %w", err)
	}

	return nil
}

func copyDoc(d *indexer.Document) *indexer.Document {
	dcopy := new(indexer.Document)
	*dcopy = *d
	return dcopy
}

func makeBleveDoc(d *indexer.Document) bleveDoc {
	return bleveDoc{
		Page:     d.Page,
		Title:    d.Title,
		Content:  d.Content,
		PageRank: d.PageRank,
	}
}
