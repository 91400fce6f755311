package corpus

import (
	"context"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"github.com/microcosm-cc/bluemonday"
)

var (
	_ pipeline.Processor = (*textExtractor)(nil)

	titleRegex         = regexp.MustCompile(`(?is)<title.*?>(.*?)</title>`)
	repeatedSpaceRegex = regexp.MustCompile(`\s+`)
)

type textExtractor struct {
	policyPool sync.Pool
}

func newTextExtractor() *textExtractor {
	return &textExtractor{
		policyPool: sync.Pool{
			New: func() any {
				return bluemonday.StrictPolicy()
			},
		},
	}
}

func (te *textExtractor) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*pagePayload)
	policy := te.policyPool.Get().(*bluemonday.Policy)
	defer te.policyPool.Put(policy)

	if titleMatch := titleRegex.FindStringSubmatch(payload.RawContent.String()); len(titleMatch) == 2 {
		payload.Title = normalizeText(policy.Sanitize(titleMatch[1]))
	}
	payload.TextContent = normalizeText(string(policy.SanitizeBytes(payload.RawContent.Bytes())))

	return payload, nil
}

// normalizeText collapses whitespace and decodes the entities the sanitizer
// leaves escaped.
func normalizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(repeatedSpaceRegex.ReplaceAllString(s, " ")))
}
