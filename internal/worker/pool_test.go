package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgmatch/rgmatch/internal/region"
)

func regions(n int) []*region.Region {
	out := make([]*region.Region, n)
	for i := range out {
		out[i] = &region.Region{Chrom: "chr1", Start: int64(i) + 1, End: int64(i) + 10}
	}
	return out
}

func TestPool_OrderedCollect_ReassemblesInSequenceOrder(t *testing.T) {
	rgns := regions(50)
	match := func(r *region.Region) []region.Candidate {
		// Deliberately slower for early regions to force out-of-order
		// arrival on the results channel.
		if r.Start < 5 {
			time.Sleep(2 * time.Millisecond)
		}
		return []region.Candidate{{GeneID: "G"}}
	}

	pool := NewPool(match, 8)
	ctx := context.Background()
	results := pool.Run(ctx, Feed(ctx, rgns))

	var got []int64
	err := OrderedCollect(results, func(r WorkResult) error {
		got = append(got, r.Rgn.Start)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, len(rgns))
	for i, start := range got {
		assert.Equal(t, rgns[i].Start, start, "result %d out of order", i)
	}
}

func TestPool_OrderedCollect_PropagatesCallbackError(t *testing.T) {
	rgns := regions(10)
	match := func(r *region.Region) []region.Candidate { return nil }
	pool := NewPool(match, 4)
	ctx := context.Background()
	results := pool.Run(ctx, Feed(ctx, rgns))

	wantErr := errors.New("boom")
	var calls int32
	err := OrderedCollect(results, func(r WorkResult) error {
		atomic.AddInt32(&calls, 1)
		if r.Seq == 3 {
			return wantErr
		}
		return nil
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestPool_Run_RespectsCancellation(t *testing.T) {
	rgns := regions(1000)
	match := func(r *region.Region) []region.Candidate {
		time.Sleep(time.Millisecond)
		return nil
	}
	pool := NewPool(match, 4)
	ctx, cancel := context.WithCancel(context.Background())
	results := pool.Run(ctx, Feed(ctx, rgns))

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	count := 0
	for range results {
		count++
	}
	assert.Less(t, count, len(rgns), "expected cancellation to cut the run short")
}

func TestOrderedCollectWithProgress_ReportsProgress(t *testing.T) {
	rgns := regions(20)
	match := func(r *region.Region) []region.Candidate { return nil }
	pool := NewPool(match, 4)
	ctx := context.Background()
	results := pool.Run(ctx, Feed(ctx, rgns))

	var progressCalls int32
	err := OrderedCollectWithProgress(results, time.Millisecond, func(n int) {
		atomic.AddInt32(&progressCalls, 1)
	}, func(r WorkResult) error {
		time.Sleep(200 * time.Microsecond)
		return nil
	})
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&progressCalls), int32(0), "expected progress to be reported at least once")
}

func TestNewPool_DefaultsWorkersWhenNonPositive(t *testing.T) {
	p := NewPool(func(*region.Region) []region.Candidate { return nil }, 0)
	assert.Greater(t, p.workers, 0)
}

func TestFeed_TagsSequenceNumbers(t *testing.T) {
	rgns := regions(5)
	ctx := context.Background()
	items := Feed(ctx, rgns)

	var seqs []int
	for item := range items {
		seqs = append(seqs, item.Seq)
	}
	for i, s := range seqs {
		assert.Equal(t, i, s, "seqs[%d]", i)
	}
}
