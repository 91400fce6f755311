package corpus

import (
	"context"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
)

var (
	_ pipeline.Processor = (*linkRecorder)(nil)
	_ pipeline.Processor = (*documentRecorder)(nil)
)

// linkRecorder collects the extracted links of every page. It runs inside a
// single FIFO runner so it needs no locking.
type linkRecorder struct {
	links map[string][]string
}

func newLinkRecorder() *linkRecorder {
	return &linkRecorder{links: make(map[string][]string)}
}

func (lr *linkRecorder) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*pagePayload)

	// The payload is recycled once processed so its slices can't be kept.
	lr.links[payload.Page] = append([]string(nil), payload.Links...)
	return nil, nil
}

// documentRecorder collects the indexable contents of every page. Its
// output reaches the sink.
type documentRecorder struct {
	documents []Document
}

func newDocumentRecorder() *documentRecorder {
	return new(documentRecorder)
}

func (dr *documentRecorder) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*pagePayload)
	dr.documents = append(dr.documents, Document{
		ID:      DocumentID(payload.Page),
		Page:    payload.Page,
		Title:   payload.Title,
		Content: payload.TextContent,
	})
	return p, nil
}
