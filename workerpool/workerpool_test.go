package workerpool_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/freightlane/sitekit/workerpool"
)

type WorkerPoolSuite struct {
	suite.Suite
}

func TestWorkerPoolSuite(t *testing.T) {
	suite.Run(t, new(WorkerPoolSuite))
}

func (s *WorkerPoolSuite) TestSubmitRunsTasks() {
	ctx := context.Background()
	pool, err := workerpool.New(ctx, workerpool.WithCapacity(4))
	s.Require().NoError(err)
	defer pool.Shutdown()

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := map[int]bool{}

	for i := range 8 {
		wg.Add(1)
		err = pool.Submit(ctx, func() {
			defer wg.Done()
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		})
		s.Require().NoError(err)
	}

	wg.Wait()
	s.Len(seen, 8)
}

func (s *WorkerPoolSuite) TestSubmitRejectsCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	pool, err := workerpool.New(ctx, workerpool.WithCapacity(1))
	s.Require().NoError(err)
	defer pool.Shutdown()

	cancel()
	err = pool.Submit(ctx, func() {})
	s.Require().ErrorIs(err, context.Canceled)
}
