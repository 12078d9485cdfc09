package resample

import (
	"runtime"
	"sync"
)

// Workers is the number of goroutines a single resize or blur fans out to:
// one fewer than the available hardware threads, never less than one.
func Workers() int {
	return max(1, runtime.NumCPU()-1)
}

// splitRange returns the [start, end) rows owned by workerIndex when
// length rows are divided into ceil-sized chunks.
func splitRange(length, workers, workerIndex int) (int, int) {
	chunk := (length + workers - 1) / workers
	start := min(workerIndex*chunk, length)
	end := min(start+chunk, length)
	return start, end
}

// parallelRows runs fn over disjoint row ranges of [0, height). Each
// worker writes only its own rows of the destination, so no locking is
// needed as long as the source stays read-only.
func parallelRows(height int, fn func(start, end int)) {
	workers := min(Workers(), height)
	if workers <= 1 {
		fn(0, height)
		return
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start, end := splitRange(height, workers, w)
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
