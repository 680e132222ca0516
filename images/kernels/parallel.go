package kernels

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a requested worker count: values below 1 mean one worker per
// CPU, and the result never exceeds n (there is no point in idle workers).
func Workers(requested, n int) int {
	w := requested
	if w < 1 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Band returns the half-open range [start, end) of part i when n items are
// split into parts contiguous bands whose sizes differ by at most one.
func Band(i, parts, n int) (start, end int) {
	return i * n / parts, (i + 1) * n / parts
}

// Parallel splits [0, n) into at most workers contiguous bands and runs fn on
// each band in its own goroutine. With a single worker fn runs on the calling
// goroutine.
//
// Arguments:
// - n: Number of items (rows or columns).
// - workers: Requested worker count (see Workers).
// - fn: Callback processing the items in [partStart, partEnd).
//
// @example
//
//	Parallel(img.Height, 8, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        processRow(y)
//	    }
//	})
func Parallel(n, workers int, fn func(partStart, partEnd int)) {
	if n <= 0 {
		return
	}
	workers = Workers(workers, n)
	if workers == 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		start, end := Band(i, workers, n)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelContext is Parallel with cancellation and error propagation. Each
// band runs in an errgroup goroutine; the first error (or ctx cancellation)
// cancels the context handed to the remaining bands, and is returned once all
// of them have stopped. Callbacks are expected to check ctx between items.
func ParallelContext(ctx context.Context, n, workers int, fn func(ctx context.Context, partStart, partEnd int) error) error {
	if n <= 0 {
		return ctx.Err()
	}
	workers = Workers(workers, n)
	if workers == 1 {
		return fn(ctx, 0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < workers; i++ {
		start, end := Band(i, workers, n)
		g.Go(func() error {
			return fn(gctx, start, end)
		})
	}
	return g.Wait()
}
