// Package indexertest provides a test suite that any indexer.Indexer
// implementation can embed to verify its behavior.
package indexertest

import (
	"fmt"
	"sort"
	"time"

	"github.com/Ahmed-Sermani/go-pagerank/indexer"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

// SuiteBase defines a re-usable set of index-related tests that can
// be executed against any type that implements indexer.Indexer.
type SuiteBase struct {
	idx indexer.Indexer
}

// SetIndexer configures the test-suite to run all tests against idx.
func (s *SuiteBase) SetIndexer(idx indexer.Indexer) {
	s.idx = idx
}

// TestIndexDocument verifies the indexing logic for new and existing documents.
func (s *SuiteBase) TestIndexDocument(c *gc.C) {
	// Insert new document
	doc := &indexer.Document{
		ID:      uuid.New(),
		Page:    "1.html",
		Title:   "One",
		Content: "Lorem Ipsum",
	}
	err := s.idx.Index(doc)
	c.Assert(err, gc.IsNil)
	c.Assert(doc.IndexedAt.IsZero(), gc.Equals, false)

	// Update existing document
	updatedDoc := &indexer.Document{
		ID:       doc.ID,
		Page:     "1.html",
		Title:    "One again",
		Content:  "Ipsum Lorem",
		PageRank: 0.5,
	}
	err = s.idx.Index(updatedDoc)
	c.Assert(err, gc.IsNil)

	got, err := s.idx.FindByID(doc.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(got.Title, gc.Equals, "One again")
	c.Assert(got.Content, gc.Equals, "Ipsum Lorem")
	// The score is only changed through UpdateScore.
	c.Assert(got.PageRank, gc.Equals, 0.0)

	// Insert document without an ID
	incompleteDoc := &indexer.Document{Page: "2.html"}
	err = s.idx.Index(incompleteDoc)
	c.Assert(xerrors.Is(err, indexer.ErrMissingID), gc.Equals, true)
}

// TestFindByID verifies the document lookup logic.
func (s *SuiteBase) TestFindByID(c *gc.C) {
	doc := &indexer.Document{
		ID:      uuid.New(),
		Page:    "1.html",
		Title:   "One",
		Content: "Lorem Ipsum",
	}
	c.Assert(s.idx.Index(doc), gc.IsNil)

	got, err := s.idx.FindByID(doc.ID)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, doc, gc.Commentf("document returned by FindByID does not match inserted document"))

	_, err = s.idx.FindByID(uuid.New())
	c.Assert(xerrors.Is(err, indexer.ErrNotFound), gc.Equals, true)
}

// TestPhraseSearch verifies the document search logic when searching for
// exact phrases.
func (s *SuiteBase) TestPhraseSearch(c *gc.C) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		doc := &indexer.Document{
			ID:      id,
			Page:    fmt.Sprintf("%d.html", i),
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "Lorem Ipsum Dolor",
		}

		if i%5 == 0 {
			doc.Content = "Lorem Dolor Ipsum"
			expIDs = append(expIDs, id)
		}

		c.Assert(s.idx.Index(doc), gc.IsNil, gc.Commentf("inserting document %d", i))
		c.Assert(s.idx.UpdateScore(id, float64(numDocs-i)), gc.IsNil)
	}

	it, err := s.idx.Search(indexer.Query{
		Type:       indexer.QueryTypePhrase,
		Expression: "lorem dolor ipsum",
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs)
}

// TestMatchSearch verifies the document search logic when searching for
// keyword matches.
func (s *SuiteBase) TestMatchSearch(c *gc.C) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		doc := &indexer.Document{
			ID:      id,
			Page:    fmt.Sprintf("%d.html", i),
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "Ovid anthropology",
		}

		c.Assert(s.idx.Index(doc), gc.IsNil, gc.Commentf("inserting document %d", i))
		c.Assert(s.idx.UpdateScore(id, float64(numDocs-i)), gc.IsNil)
	}

	it, err := s.idx.Search(indexer.Query{
		Type:       indexer.QueryTypeMatch,
		Expression: "anthropology",
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs)
}

// TestMatchSearchWithOffset verifies the document search logic when
// searching for keyword matches and skipping some results.
func (s *SuiteBase) TestMatchSearchWithOffset(c *gc.C) {
	var (
		numDocs = 50
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		doc := &indexer.Document{
			ID:      id,
			Page:    fmt.Sprintf("%d.html", i),
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "Ovid anthropology",
		}

		c.Assert(s.idx.Index(doc), gc.IsNil, gc.Commentf("inserting document %d", i))
		c.Assert(s.idx.UpdateScore(id, float64(numDocs-i)), gc.IsNil)
	}

	it, err := s.idx.Search(indexer.Query{
		Type:       indexer.QueryTypeMatch,
		Expression: "anthropology",
		Offset:     20,
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs[20:])

	// Search with offset beyond the total number of results
	it, err = s.idx.Search(indexer.Query{
		Type:       indexer.QueryTypeMatch,
		Expression: "anthropology",
		Offset:     200,
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterateDocs(c, it), gc.HasLen, 0)
}

// TestUpdateScore checks that PageRank score updates work as expected.
func (s *SuiteBase) TestUpdateScore(c *gc.C) {
	var (
		numDocs = 100
		expIDs  []uuid.UUID
	)
	for i := 0; i < numDocs; i++ {
		id := uuid.New()
		expIDs = append(expIDs, id)
		doc := &indexer.Document{
			ID:      id,
			Page:    fmt.Sprintf("%d.html", i),
			Title:   fmt.Sprintf("doc with ID %s", id.String()),
			Content: "Ovid anthropology",
		}

		c.Assert(s.idx.Index(doc), gc.IsNil, gc.Commentf("inserting document %d", i))
	}

	// Assign a unique PageRank score to every document. The list of
	// expected IDs is shuffled to match the score order.
	scores := make(map[uuid.UUID]float64, numDocs)
	for i, id := range expIDs {
		scores[id] = float64((i*7)%numDocs + 1)
		c.Assert(s.idx.UpdateScore(id, scores[id]), gc.IsNil)
	}
	sort.Slice(expIDs, func(i, j int) bool { return scores[expIDs[i]] > scores[expIDs[j]] })

	it, err := s.idx.Search(indexer.Query{
		Type:       indexer.QueryTypeMatch,
		Expression: "anthropology",
	})
	c.Assert(err, gc.IsNil)
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs)

	// Update the score of the first result so it moves to the end
	c.Assert(s.idx.UpdateScore(expIDs[0], 0), gc.IsNil)
	it, err = s.idx.Search(indexer.Query{
		Type:       indexer.QueryTypeMatch,
		Expression: "anthropology",
	})
	c.Assert(err, gc.IsNil)
	expIDs = append(expIDs[1:], expIDs[0])
	c.Assert(iterateDocs(c, it), gc.DeepEquals, expIDs)
}

// TestUpdateScoreForUnknownDocument checks that a placeholder document will
// be created when setting the PageRank score for an unknown document.
func (s *SuiteBase) TestUpdateScoreForUnknownDocument(c *gc.C) {
	id := uuid.New()
	c.Assert(s.idx.UpdateScore(id, 0.5), gc.IsNil)

	doc, err := s.idx.FindByID(id)
	c.Assert(err, gc.IsNil)

	c.Assert(doc.Page, gc.Equals, "")
	c.Assert(doc.Title, gc.Equals, "")
	c.Assert(doc.Content, gc.Equals, "")
	c.Assert(doc.IndexedAt.Equal(time.Time{}), gc.Equals, true)
	c.Assert(doc.PageRank, gc.Equals, 0.5)
}

func iterateDocs(c *gc.C, it indexer.Iterator) []uuid.UUID {
	var seen []uuid.UUID
	for it.Next() {
		seen = append(seen, it.Document().ID)
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(it.Close(), gc.IsNil)
	return seen
}
