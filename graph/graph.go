/*
   Immutable link graph of a closed corpus of pages.
*/
package graph

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

var (
	// ErrEmptyGraph is returned when a graph is built without any pages.
	ErrEmptyGraph = xerrors.New("graph must contain at least one page")

	// ErrUnknownLinkTarget is returned when a link points to a page that is
	// not part of the graph.
	ErrUnknownLinkTarget = xerrors.New("link target is not part of the graph")
)

// Graph maps each page of a corpus to the set of pages it links to. A Graph
// is never modified after New returns so it can be shared freely.
type Graph struct {
	pages []string
	index map[string]int

	// links[i] holds the sorted, de-duplicated targets of pages[i].
	links [][]string
}

// New builds a Graph from a page -> outbound links mapping. Self-links are
// dropped and duplicate targets collapse into one. Every target must itself
// be a key of links, otherwise New reports all the offending links.
func New(links map[string][]string) (*Graph, error) {
	if len(links) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		pages: make([]string, 0, len(links)),
		index: make(map[string]int, len(links)),
	}
	for page := range links {
		g.pages = append(g.pages, page)
	}
	sort.Strings(g.pages)
	for i, page := range g.pages {
		g.index[page] = i
	}

	var err error
	g.links = make([][]string, len(g.pages))
	for i, src := range g.pages {
		seen := make(map[string]struct{}, len(links[src]))
		for _, dst := range links[src] {
			// Don't allow self-links
			if dst == src {
				continue
			}
			if _, known := g.index[dst]; !known {
				err = multierror.Append(err, xerrors.Errorf("link from %q to %q: %w", src, dst, ErrUnknownLinkTarget))
				continue
			}
			if _, dup := seen[dst]; dup {
				continue
			}
			seen[dst] = struct{}{}
			g.links[i] = append(g.links[i], dst)
		}
		sort.Strings(g.links[i])
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Len returns the number of pages in the graph.
func (g *Graph) Len() int { return len(g.pages) }

// Pages returns the pages of the graph in ascending order. The returned slice
// must not be modified.
func (g *Graph) Pages() []string { return g.pages }

// Has reports whether page is part of the graph.
func (g *Graph) Has(page string) bool {
	_, ok := g.index[page]
	return ok
}

// Index returns the position of page within Pages and whether it was found.
func (g *Graph) Index(page string) (int, bool) {
	i, ok := g.index[page]
	return i, ok
}

// Links returns the sorted outbound links of page. Unknown pages have no
// links. The returned slice must not be modified.
func (g *Graph) Links(page string) []string {
	i, ok := g.index[page]
	if !ok {
		return nil
	}
	return g.links[i]
}

// OutDegree returns the number of outbound links of page.
func (g *Graph) OutDegree(page string) int { return len(g.Links(page)) }

// IsDangling reports whether page has no outbound links.
func (g *Graph) IsDangling(page string) bool { return g.OutDegree(page) == 0 }

// Adjacency returns a copy of the graph as a page -> links mapping.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.pages))
	for i, page := range g.pages {
		out[page] = append([]string(nil), g.links[i]...)
	}
	return out
}
