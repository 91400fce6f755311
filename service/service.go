// Package service runs independent units of work side by side.
package service

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// Service describes a unit of work that can be executed as part of a
// Group.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service and blocks until it completes, the context
	// gets cancelled or an error occurs.
	Run(context.Context) error
}

// Group is a list of Service instances that can execute in parallel.
type Group []Service

// Run executes all Service instances in the group using the provided context.
// Calls to Run block until all services have completed executing either
// because they finished their work, the context was cancelled or any of the
// services reported an error. The first error cancels the remaining
// services.
func (g Group) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(g))
	wg.Add(len(g))
	for _, s := range g {
		go func(s Service) {
			defer wg.Done()
			if err := s.Run(runCtx); err != nil {
				errCh <- xerrors.Errorf("%s: %w", s.Name(), err)
				cancel()
			}
		}(s)
	}

	wg.Wait()
	close(errCh)

	var err error
	for svcErr := range errCh {
		err = multierror.Append(err, svcErr)
	}
	return err
}
