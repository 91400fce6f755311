package runners

import (
	"context"

	"github.com/Ahmed-Sermani/go-pagerank/pipeline"
	"golang.org/x/xerrors"
)

type dynamicWorkerPool struct {
	proc pipeline.Processor
	// used as a concurrency control mechanism to implement the dynamic pool
	tPool chan struct{}
}

// DynamicWorkerPool returns a StageRunner that implements a dynamic worker pool
// that can scale up to maxWorkers for processing incoming payloads concurrently
func DynamicWorkerPool(proc pipeline.Processor, maxWorkers int) pipeline.StageRunner {
	if maxWorkers <= 0 {
		panic("DynamicWorkerPool: maxWorkers must be greater than 0")
	}
	tPool := make(chan struct{}, maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		tPool <- struct{}{}
	}
	return &dynamicWorkerPool{proc: proc, tPool: tPool}
}

func (p *dynamicWorkerPool) Run(ctx context.Context, params pipeline.StageParams) {
stop:
	for {
		select {
		case <-ctx.Done():
			break stop
		case payloadIn, open := <-params.Input():
			if !open {
				break stop
			}

			// obtain a token
			// blocks until it gets one or the context is cancelled
			var t struct{}
			select {
			case t = <-p.tPool:
			case <-ctx.Done():
				break stop
			}

			// run the work in a goroutine
			// when it ends it returns the token to tPool
			go func(payloadIn pipeline.Payload, t struct{}) {
				defer func() { p.tPool <- t }()
				payloadOut, err := p.proc.Process(ctx, payloadIn)
				if err != nil {
					wErr := xerrors.Errorf("pipeline stage %d: %w", params.StageIndex(), err)
					emitError(wErr, params.Error())
					return
				}

				if payloadOut == nil {
					payloadIn.MarkAsProcessed()
					return
				}

				// output processed data
				select {
				case params.Output() <- payloadOut:
				case <-ctx.Done():
				}
			}(payloadIn, t)
		}
	}

	// make sure all workers exit before returning by draining tPool, then
	// refill it so the runner can be reused.
	for i := 0; i < cap(p.tPool); i++ {
		<-p.tPool
	}
	for i := 0; i < cap(p.tPool); i++ {
		p.tPool <- struct{}{}
	}
}
