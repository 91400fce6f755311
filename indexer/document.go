package indexer

import (
	"time"

	"github.com/google/uuid"
)

// Document describes a corpus page that can be searched.
type Document struct {
	ID   uuid.UUID
	Page string

	// Title holds the value of the page's <title> element whereas Content
	// stores the block of text extracted from the page body.
	Title   string
	Content string

	// IndexedAt indicates when the document was last indexed.
	IndexedAt time.Time

	// PageRank is the score assigned to the page by a PageRank estimator.
	PageRank float64
}
