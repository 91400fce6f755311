package corpus

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
)

var (
	_ pipeline.Payload = (*pagePayload)(nil)

	// Payloads are recycled through a pool to keep allocations down while
	// the pipeline runs.
	payloadPool = sync.Pool{
		New: func() any { return new(pagePayload) },
	}
)

type pagePayload struct {
	Page string

	RawContent bytes.Buffer

	Links       []string
	Title       string
	TextContent string
}

func (p *pagePayload) Clone() pipeline.Payload {
	newp := payloadPool.Get().(*pagePayload)
	newp.Page = p.Page
	newp.Links = append([]string(nil), p.Links...)
	newp.Title = p.Title
	newp.TextContent = p.TextContent

	_, err := io.Copy(&newp.RawContent, bytes.NewReader(p.RawContent.Bytes()))
	if err != nil {
		panic(fmt.Sprintf("error while cloning payload RawContent: %v", err))
	}
	return newp
}

// MarkAsProcessed resets the payload and returns it to the pool. Slice and
// buffer capacities are kept so that a recycled payload reuses them.
func (p *pagePayload) MarkAsProcessed() {
	p.Page = p.Page[:0]
	p.RawContent.Reset()
	p.Links = p.Links[:0]
	p.Title = p.Title[:0]
	p.TextContent = p.TextContent[:0]
	payloadPool.Put(p)
}
