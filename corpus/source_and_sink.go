package corpus

import (
	"context"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
)

type pageSource struct {
	pages []string
	next  int
}

func (ps *pageSource) Error() error { return nil }

func (ps *pageSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil || ps.next == len(ps.pages) {
		return false
	}
	ps.next++
	return true
}

func (ps *pageSource) Payload() pipeline.Payload {
	payload := payloadPool.Get().(*pagePayload)
	payload.Page = ps.pages[ps.next-1]
	return payload
}

type countingSink struct {
	count int
}

func (s *countingSink) Consume(_ context.Context, p pipeline.Payload) error {
	s.count++
	return nil
}

func (s *countingSink) getCount() int {
	return s.count
}
