package pagerank

import "sort"

// Distribution maps every page of a graph to a probability.
type Distribution map[string]float64

// Sum returns the total probability mass of the distribution.
func (d Distribution) Sum() float64 {
	var sum float64
	for _, p := range d {
		sum += p
	}
	return sum
}

// Pages returns the pages of the distribution in ascending order.
func (d Distribution) Pages() []string {
	pages := make([]string, 0, len(d))
	for page := range d {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}
