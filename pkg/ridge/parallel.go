package ridge

import (
	"runtime"
	"sync"
)

// forEachRowBand splits rows into contiguous bands and runs fn on each band
// in its own goroutine. fn must only write cells inside its band.
func forEachRowBand(rows int, fn func(startRow, endRow int)) {
	numCPU := runtime.NumCPU()
	if numCPU > rows {
		numCPU = rows
	}
	if numCPU <= 1 {
		fn(0, rows)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (rows + numCPU - 1) / numCPU

	for i := 0; i < numCPU; i++ {
		startRow := i * rowsPerWorker
		endRow := (i + 1) * rowsPerWorker
		if endRow > rows {
			endRow = rows
		}

		// Skip if this worker has no rows to process
		if startRow >= rows {
			continue
		}

		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			fn(startRow, endRow)
		}(startRow, endRow)
	}

	wg.Wait()
}
