package fields

import (
	"runtime"
	"sync"
)

// Parallel splits [0, n) into contiguous partitions and runs fn on each from
// its own goroutine, waiting for all of them. Each partition must only write
// output it owns.
//
// Arguments:
//   - n: The number of work items.
//   - workers: The maximum number of goroutines. Values <= 0 use runtime.NumCPU().
//   - fn: Function receiving the half-open range [start, end) to process.
//
// @example
//
//	Parallel(len(channels), 0, func(start, end int) {
//	    for c := start; c < end; c++ {
//	        out[c] = process(channels[c])
//	    }
//	})
func Parallel(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	part := n / workers
	rem := n % workers

	var wg sync.WaitGroup
	wg.Add(workers)
	start := 0
	for i := 0; i < workers; i++ {
		end := start + part
		// Spread the remainder over the first partitions.
		if i < rem {
			end++
		}
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
		start = end
	}
	wg.Wait()
}
