package runners_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"github.com/Ahmed-Sermani/go-pagerank/pipeline/runners"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RunnersTestSuite))

func Test(t *testing.T) {
	gc.TestingT(t)
}

type RunnersTestSuite struct{}

func (s *RunnersTestSuite) TestFIFO(c *gc.C) {
	stages := make([]pipeline.StageRunner, 10)
	for i := range stages {
		stages[i] = runners.FIFO(makePassthroughProcessor())
	}

	src := &sourceStub{data: stringPayloads(3)}
	sink := new(sinkStub)

	p := pipeline.New(stages...)
	err := p.Process(context.TODO(), src, sink)
	c.Assert(err, gc.IsNil)
	c.Assert(sink.data, gc.DeepEquals, src.data)
	assertAllProcessed(c, src.data)
}

func (s *RunnersTestSuite) TestFIFOProcessorError(c *gc.C) {
	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return nil, xerrors.New("boom")
	})

	src := &sourceStub{data: stringPayloads(3)}
	err := pipeline.New(runners.FIFO(proc)).Process(context.TODO(), src, new(sinkStub))
	c.Assert(err, gc.ErrorMatches, "(?s).*pipeline stage 0: boom.*")
}

func (s *RunnersTestSuite) TestFixedWorkerPool(c *gc.C) {
	numWorkers := 10
	syncCh := make(chan struct{})
	rendezvousCh := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
		// Signal that we have reached the sync point and wait for the
		// green light to proceed by the test code.
		syncCh <- struct{}{}
		<-rendezvousCh
		return nil, nil
	})

	src := &sourceStub{data: stringPayloads(numWorkers)}

	p := pipeline.New(runners.FixedWorkerPool(proc, numWorkers))
	doneCh := make(chan struct{})
	go func() {
		err := p.Process(context.TODO(), src, nil)
		c.Check(err, gc.IsNil)
		close(doneCh)
	}()

	// Wait for all workers to reach sync point. This means that each input
	// from the source is currently handled by a worker in parallel.
	for i := 0; i < numWorkers; i++ {
		select {
		case <-syncCh:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to reach sync point", i)
		}
	}

	// Allow workers to proceed and wait for the pipeline to complete.
	close(rendezvousCh)
	select {
	case <-doneCh:
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}
	assertAllProcessed(c, src.data)
}

func (s *RunnersTestSuite) TestDynamicWorkerPool(c *gc.C) {
	var (
		maxWorkers = 5
		active     int32
		peak       int32
		mu         sync.Mutex
	)

	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		cur := atomic.AddInt32(&active, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return p, nil
	})

	src := &sourceStub{data: stringPayloads(50)}
	sink := new(sinkStub)

	p := pipeline.New(runners.DynamicWorkerPool(proc, maxWorkers))
	c.Assert(p.Process(context.TODO(), src, sink), gc.IsNil)

	c.Assert(sink.data, gc.HasLen, len(src.data))
	c.Assert(peak <= int32(maxWorkers), gc.Equals, true, gc.Commentf("peak concurrency %d", peak))
	assertAllProcessed(c, src.data)
}

func (s *RunnersTestSuite) TestBroadcast(c *gc.C) {
	num := 3
	procs := make([]pipeline.Processor, num)
	for i := range procs {
		procs[i] = makeMutatingProcessor(i)
	}

	src := &sourceStub{data: stringPayloads(1)}
	sink := new(sinkStub)

	p := pipeline.New(runners.Broadcast(procs...))
	c.Assert(p.Process(context.TODO(), src, sink), gc.IsNil)

	var got []string
	for _, p := range sink.data {
		got = append(got, p.(*stringPayload).val)
	}
	sort.Strings(got)
	c.Assert(got, gc.DeepEquals, []string{"0_0", "0_1", "0_2"})
}

func (s *RunnersTestSuite) TestInvalidWorkerCounts(c *gc.C) {
	proc := makePassthroughProcessor()
	c.Assert(func() { runners.FixedWorkerPool(proc, 0) }, gc.PanicMatches, ".*greater than 0.*")
	c.Assert(func() { runners.DynamicWorkerPool(proc, 0) }, gc.PanicMatches, ".*greater than 0.*")
	c.Assert(func() { runners.Broadcast() }, gc.PanicMatches, ".*at least one processor.*")
}

func assertAllProcessed(c *gc.C, payloads []pipeline.Payload) {
	for i, p := range payloads {
		payload := p.(*stringPayload)
		c.Assert(payload.processed, gc.Equals, true, gc.Commentf("payload %d not processed", i))
	}
}

func makeMutatingProcessor(index int) pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		// Mutate payload to check that each processor got a copy
		sp := p.(*stringPayload)
		sp.val = fmt.Sprintf("%s_%d", sp.val, index)
		return p, nil
	})
}

func makePassthroughProcessor() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})
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
	mu   sync.Mutex
	data []pipeline.Payload
	err  error
}

func (s *sinkStub) Consume(_ context.Context, p pipeline.Payload) error {
	s.mu.Lock()
	s.data = append(s.data, p)
	s.mu.Unlock()
	return s.err
}

type stringPayload struct {
	mu        sync.Mutex
	processed bool
	val       string
}

func (s *stringPayload) Clone() pipeline.Payload { return &stringPayload{val: s.val} }

func (s *stringPayload) MarkAsProcessed() {
	s.mu.Lock()
	s.processed = true
	s.mu.Unlock()
}

func (s *stringPayload) String() string { return s.val }

func stringPayloads(numValues int) []pipeline.Payload {
	out := make([]pipeline.Payload, numValues)
	for i := 0; i < len(out); i++ {
		out[i] = &stringPayload{val: fmt.Sprint(i)}
	}
	return out
}
