package corpus

import (
	"bytes"
	"context"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ pipeline.Processor = (*linkExtractor)(nil)

type linkExtractor struct{}

func newLinkExtractor() *linkExtractor {
	return new(linkExtractor)
}

// Process collects the raw href value of every anchor tag. Targets are page
// names, so they are kept as written and not resolved.
func (le *linkExtractor) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*pagePayload)

	seen := make(map[string]struct{})
	z := html.NewTokenizer(bytes.NewReader(payload.RawContent.Bytes()))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return payload, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			if token.DataAtom != atom.A {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key != "href" {
					continue
				}
				if _, dup := seen[attr.Val]; dup {
					break
				}
				seen[attr.Val] = struct{}{}
				payload.Links = append(payload.Links, attr.Val)
				break
			}
		}
	}
}
