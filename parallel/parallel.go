// Package parallel splits independent per-element work across goroutines.
//
// Callers follow a snapshot/compute/apply pattern: inputs are frozen before
// For is called, each worker writes only to its own index range of a
// preallocated output slice, and results are consumed after For returns.
package parallel

import (
	"runtime"
	"sync"
)

// Threshold is the minimum element count to use multiple workers.
// Below this, single-threaded is faster due to goroutine overhead.
const Threshold = 64

// Workers returns the number of workers For will use for n elements.
func Workers(n int) int {
	if n < Threshold {
		return 1
	}
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// For calls fn over contiguous chunks [start, end) covering [0, n).
// fn must only write state owned by its own range.
func For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	numWorkers := Workers(n)
	if numWorkers == 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

// ForWorker is like For but also passes the worker index so callers can
// reuse per-worker scratch buffers.
func ForWorker(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	numWorkers := Workers(n)
	if numWorkers == 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			fn(worker, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
