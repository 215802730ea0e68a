// Package worker generalizes the annotator's parallel-work-item pool
// (runtime.NumCPU workers draining a channel, out-of-order results
// reassembled by sequence number) from variants to regions.
package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rgmatch/rgmatch/internal/region"
)

// WorkItem holds one region ready to be matched, tagged with its input
// sequence number so results can be reassembled in order.
type WorkItem struct {
	Seq int
	Rgn *region.Region
}

// WorkResult holds the match output for a single region.
type WorkResult struct {
	Seq   int
	Rgn   *region.Region
	Cands []region.Candidate
	Err   error
}

// MatchFunc runs the full windowed match-and-collapse pipeline for one
// region; *match.Driver satisfies this signature.
type MatchFunc func(*region.Region) []region.Candidate

// Pool runs a MatchFunc over a stream of regions using a fixed number of
// goroutines. Results arrive on the returned channel in arrival order, not
// sequence order; use OrderedCollect to consume them in input order.
type Pool struct {
	match   MatchFunc
	workers int
}

// NewPool returns a Pool with workers goroutines. If workers <= 0,
// runtime.NumCPU() is used.
func NewPool(match MatchFunc, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{match: match, workers: workers}
}

// Run annotates work items from items until either the channel is closed or
// ctx is cancelled, whichever comes first. The returned channel is closed
// once every worker has exited.
func (p *Pool) Run(ctx context.Context, items <-chan WorkItem) <-chan WorkResult {
	results := make(chan WorkResult, 2*p.workers)

	var wg sync.WaitGroup
	wg.Add(p.workers)

	for range p.workers {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case item, ok := <-items:
					if !ok {
						return
					}
					cands := p.match(item.Rgn)
					select {
					case results <- WorkResult{Seq: item.Seq, Rgn: item.Rgn, Cands: cands}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order, the
// order regions were read from the input, buffering out-of-order arrivals
// in a pending map. Blocks until results is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	return OrderedCollectWithProgress(results, 0, nil, fn)
}

// OrderedCollectWithProgress is like OrderedCollect but periodically calls
// progress with the number of regions processed so far. If interval is 0 or
// progress is nil, no progress reporting happens.
func OrderedCollectWithProgress(results <-chan WorkResult, interval time.Duration, progress func(int), fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	var ticker *time.Ticker
	var tickC <-chan time.Time
	if interval > 0 && progress != nil {
		ticker = time.NewTicker(interval)
		tickC = ticker.C
		defer ticker.Stop()
	}

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}

		if tickC != nil {
			select {
			case <-tickC:
				progress(nextSeq)
			default:
			}
		}
	}

	return nil
}

// Feed writes regions to a fresh WorkItem channel tagged with sequence
// numbers, closing the channel once regions is exhausted or ctx is done.
func Feed(ctx context.Context, regions []*region.Region) <-chan WorkItem {
	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, rgn := range regions {
			select {
			case <-ctx.Done():
				return
			case items <- WorkItem{Seq: i, Rgn: rgn}:
			}
		}
	}()
	return items
}
