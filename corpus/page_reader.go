package corpus

import (
	"context"
	"io"
	"io/fs"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"golang.org/x/xerrors"
)

var _ pipeline.Processor = (*pageReader)(nil)

type pageReader struct {
	fsys fs.FS
}

func newPageReader(fsys fs.FS) *pageReader {
	return &pageReader{fsys: fsys}
}

func (pr *pageReader) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*pagePayload)

	f, err := pr.fsys.Open(payload.Page)
	if err != nil {
		return nil, xerrors.Errorf("read page %q: %w", payload.Page, err)
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(&payload.RawContent, f); err != nil {
		return nil, xerrors.Errorf("read page %q: %w", payload.Page, err)
	}
	return payload, nil
}
