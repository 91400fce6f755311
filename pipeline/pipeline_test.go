package pipeline_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(PipelineTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type PipelineTestSuite struct{}

func (s *PipelineTestSuite) TestDataFlow(c *gc.C) {
	stages := make([]pipeline.StageRunner, 10)
	for i := range stages {
		stages[i] = testStage{c: c}
	}

	src := &sourceStub{data: stringPayloads(3)}
	sink := new(sinkStub)

	p := pipeline.New(stages...)
	err := p.Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.data, gc.DeepEquals, src.data)
}

func (s *PipelineTestSuite) TestProcessorErrorHandling(c *gc.C) {
	expErr := xerrors.New("some error")
	stages := make([]pipeline.StageRunner, 10)
	for i := range stages {
		var err error
		if i == 5 {
			err = expErr
		}
		stages[i] = testStage{c: c, err: err}
	}

	src := &sourceStub{data: stringPayloads(3)}
	sink := new(sinkStub)

	p := pipeline.New(stages...)
	err := p.Process(context.TODO(), src, sink)
	c.Assert(err, gc.ErrorMatches, "(?s).*some error.*")
}

func (s *PipelineTestSuite) TestSourceErrorHandling(c *gc.C) {
	expErr := xerrors.New("some error")
	src := &sourceStub{data: stringPayloads(3), err: expErr}
	sink := new(sinkStub)

	p := pipeline.New(testStage{c: c})
	err := p.Process(context.TODO(), src, sink)
	c.Assert(err, gc.ErrorMatches, "(?s).*sourceWorker: some error.*")
}

func (s *PipelineTestSuite) TestSinkErrorHandling(c *gc.C) {
	expErr := xerrors.New("some error")
	src := &sourceStub{data: stringPayloads(3)}
	sink := &sinkStub{err: expErr}

	p := pipeline.New(testStage{c: c})
	err := p.Process(context.TODO(), src, sink)
	c.Assert(err, gc.ErrorMatches, "(?s).*sinkWorker: some error.*")
}

func (s *PipelineTestSuite) TestPayloadsMarkedAsProcessed(c *gc.C) {
	src := &sourceStub{data: stringPayloads(5)}
	sink := new(sinkStub)

	p := pipeline.New(testStage{c: c, dropEven: true})
	c.Assert(p.Process(context.TODO(), src, sink), gc.IsNil)

	var kept []string
	for _, p := range sink.data {
		kept = append(kept, p.(*stringPayload).val)
	}
	sort.Strings(kept)
	c.Assert(kept, gc.DeepEquals, []string{"1", "3"})

	for _, p := range src.data {
		c.Assert(p.(*stringPayload).processed, gc.Equals, true, gc.Commentf("payload %v", p))
	}
}

type testStage struct {
	c        *gc.C
	dropEven bool
	err      error
}

func (s testStage) Run(ctx context.Context, params pipeline.StageParams) {
	defer func() {
		s.c.Logf("[stage %d] exiting", params.StageIndex())
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-params.Input():
			if !ok {
				return
			}
			s.c.Logf("[stage %d] received payload: %v", params.StageIndex(), p)
			if s.err != nil {
				s.c.Logf("[stage %d] emit error: %v", params.StageIndex(), s.err)
				params.Error() <- s.err
				return
			}
			if s.dropEven && isEven(p.(*stringPayload).val) {
				p.MarkAsProcessed()
				continue
			}

			select {
			case <-ctx.Done():
				return
			case params.Output() <- p:
			}
		}
	}
}

type sourceStub struct {
	index int
	data  []pipeline.Payload
	err   error
}

func (s *sourceStub) Next(context.Context) bool {
	if s.err != nil || s.index == len(s.data) {
		return false
	}
	s.index++
	return true
}

func (s *sourceStub) Error() error { return s.err }

func (s *sourceStub) Payload() pipeline.Payload {
	return s.data[s.index-1]
}

type sinkStub struct {
	data []pipeline.Payload
	err  error
}

func (s *sinkStub) Consume(_ context.Context, p pipeline.Payload) error {
	s.data = append(s.data, p)
	return s.err
}

type stringPayload struct {
	processed bool
	val       string
}

func (s *stringPayload) Clone() pipeline.Payload { return &stringPayload{val: s.val} }
func (s *stringPayload) MarkAsProcessed()        { s.processed = true }
func (s *stringPayload) String() string          { return s.val }

func stringPayloads(numValues int) []pipeline.Payload {
	out := make([]pipeline.Payload, numValues)
	for i := 0; i < len(out); i++ {
		out[i] = &stringPayload{val: fmt.Sprint(i)}
	}
	return out
}

func isEven(val string) bool {
	var n int
	_, _ = fmt.Sscan(val, &n)
	return n%2 == 0
}
