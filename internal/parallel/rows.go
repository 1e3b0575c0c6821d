package parallel

import (
	"sync"
	"sync/atomic"
)

// Progress tracks completed rows out of a fixed total and fans updates
// out to observers. Observers may be called from worker goroutines and
// out of strict row order, but the reported count is a high-water mark:
// it never regresses and never exceeds the total.
type Progress struct {
	total     int
	done      atomic.Int64
	observers []func(done, total int)

	mu       sync.Mutex
	reported int
}

// NewProgress creates a progress tracker for total rows.
// A nil or empty observer list is valid; counting still happens so that
// Done can be polled.
func NewProgress(total int, observers ...func(done, total int)) *Progress {
	return &Progress{total: total, observers: observers}
}

// Add records n more completed rows and notifies observers if the count
// advanced past the last reported value.
func (p *Progress) Add(n int) {
	if p == nil || n <= 0 {
		return
	}
	done := int(p.done.Add(int64(n)))
	if done > p.total {
		done = p.total
	}
	if len(p.observers) == 0 {
		return
	}

	// The lock is held through notification so concurrent adds cannot
	// deliver counts out of order.
	p.mu.Lock()
	defer p.mu.Unlock()
	if done <= p.reported {
		return
	}
	p.reported = done
	for _, fn := range p.observers {
		fn(done, p.total)
	}
}

// Done returns the number of completed rows recorded so far.
func (p *Progress) Done() int {
	if p == nil {
		return 0
	}
	if d := int(p.done.Load()); d < p.total {
		return d
	}
	return p.total
}

// Total returns the total row count.
func (p *Progress) Total() int {
	if p == nil {
		return 0
	}
	return p.total
}

// ForEachRow partitions [0, total) into contiguous chunks, runs fn over
// each chunk on the pool, and waits for completion. fn must be safe to
// call concurrently for disjoint ranges.
//
// cancelled, when non-nil, is checked before each chunk runs; chunks
// that observe cancellation are skipped. ForEachRow reports whether all
// rows actually ran. progress, when non-nil, is advanced per chunk.
//
// With a single worker the chunks run sequentially on the pool in row
// order, so single- and multi-worker runs produce identical pixels for
// any fn free of cross-row state.
func ForEachRow(pool *Pool, total int, cancelled func() bool, fn func(start, end int), progress *Progress) bool {
	if total <= 0 {
		return true
	}

	chunk := chunkSize(total, pool.Workers())
	var skipped atomic.Bool

	work := make([]func(), 0, (total+chunk-1)/chunk)
	for start := 0; start < total; start += chunk {
		start := start
		end := start + chunk
		if end > total {
			end = total
		}
		work = append(work, func() {
			if cancelled != nil && cancelled() {
				skipped.Store(true)
				return
			}
			fn(start, end)
			progress.Add(end - start)
		})
	}

	pool.ExecuteAll(work)
	return !skipped.Load()
}

// chunkSize picks a row-chunk size that gives each worker several chunks
// for load balancing without drowning the queue in tiny items.
func chunkSize(total, workers int) int {
	chunk := total / (workers * 4)
	if chunk < 1 {
		chunk = 1
	}
	if chunk > 64 {
		chunk = 64
	}
	return chunk
}
