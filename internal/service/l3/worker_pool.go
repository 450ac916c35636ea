package l3_service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

type workInput struct {
	Index int
}

type workResult[T any] struct {
	Index int
	Value T
	Err   error
}

// runWorkers evaluates work(i) for i in [0, numInputs) on a fixed pool of
// goroutines. the returned slice is indexed by input; entries that never
// ran because ctx finished first are nil. onResult is called from the
// collecting goroutine only
func runWorkers[T any](
	ctx context.Context,
	numWorkers int,
	numInputs int,
	work func(ctx context.Context, index int) (T, error),
	onResult func(completed int, res *workResult[T]),
) []*workResult[T] {
	out := make([]*workResult[T], numInputs)
	if numInputs == 0 {
		return out
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > numInputs {
		numWorkers = numInputs
	}

	inputCh := make(chan workInput, numInputs)
	resultCh := make(chan workResult[T], numInputs)
	for i := 0; i < numInputs; i++ {
		inputCh <- workInput{Index: i}
	}
	close(inputCh)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case input, ok := <-inputCh:
					if !ok {
						return
					}
					// select picks randomly when both are ready
					if ctx.Err() != nil {
						return
					}
					value, err := runRecovered(ctx, input.Index, work)
					resultCh <- workResult[T]{
						Index: input.Index,
						Value: value,
						Err:   err,
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	completed := 0
	for res := range resultCh {
		completed++
		out[res.Index] = &res
		if onResult != nil {
			onResult(completed, &res)
		}
	}

	return out
}

// runRecovered turns a panic inside one job into that job's error so a
// single bad sample can't take down the batch
func runRecovered[T any](ctx context.Context, index int, work func(ctx context.Context, index int) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job %d: %v", index, r)
		}
	}()
	return work(ctx, index)
}
