// Package indexer defines the full-text index that makes the pages of a
// corpus searchable, with results ordered by PageRank.
package indexer

import (
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

var (
	// ErrNotFound is returned by the indexer when attempting to look up
	// a document that does not exist.
	ErrNotFound = xerrors.New("not found")

	// ErrMissingID is returned when attempting to index a document that
	// does not specify a valid ID.
	ErrMissingID = xerrors.New("document does not provide a valid ID")
)

// Indexer is implemented by objects that can index and search documents.
type Indexer interface {
	// Index inserts a new document to the index or updates the index entry
	// for an existing document. The PageRank of an existing document is
	// retained.
	Index(doc *Document) error

	// FindByID looks up a document by its ID.
	FindByID(id uuid.UUID) (*Document, error)

	// Search the index for a particular query and return back a result
	// iterator.
	Search(query Query) (Iterator, error)

	// UpdateScore updates the PageRank score for a document with the
	// specified ID. If no such document exists, a placeholder document
	// with the provided score will be created.
	UpdateScore(id uuid.UUID, score float64) error
}

// Iterator is implemented by objects that can paginate search results.
type Iterator interface {
	// Close the iterator and release any allocated resources.
	Close() error

	// Next loads the next document matching the search query.
	// It returns false if no more documents are available.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Document returns the current document from the result set.
	Document() *Document

	// TotalCount returns the approximate number of search results.
	TotalCount() uint64
}

// QueryType describes the types of queries supported by the indexer
// implementations.
type QueryType uint8

const (
	// QueryTypeMatch requests the indexer to match each expression term.
	QueryTypeMatch QueryType = iota

	// QueryTypePhrase searches for an exact phrase match.
	QueryTypePhrase
)

// Query encapsulates a set of parameters to use when searching indexed
// documents.
type Query struct {
	// The way that the indexer should interpret the search expression.
	Type QueryType

	// The search expression.
	Expression string

	// The number of search results to skip.
	Offset uint64
}
