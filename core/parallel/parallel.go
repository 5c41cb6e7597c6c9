// Package parallel provides the worker fan-out helpers used to run
// independent resample fits concurrently.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across one worker per available CPU core and runs
// fn for each contiguous range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWithWorkers(items, runtime.NumCPU(), fn)
}

// ParallelizeWithWorkers divides items across the given number of workers and
// runs fn for each contiguous range [start, end). workers <= 0 means one
// worker per CPU core; workers == 1 runs sequentially on the calling
// goroutine. Callers are responsible for ensuring fn invocations touch
// disjoint state; results should be written into index-addressed slots so the
// outcome does not depend on completion order.
func ParallelizeWithWorkers(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}

	if workers == 1 {
		fn(0, items)
		return
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
