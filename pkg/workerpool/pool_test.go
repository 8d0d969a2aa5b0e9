package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/depgate/depgate/pkg/testutil"
)

func TestMap_PreservesOrder(t *testing.T) {
	p := New(4)
	defer p.Close()

	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	got := Map(p, items, func(n int) int {
		if n%7 == 0 {
			time.Sleep(time.Millisecond)
		}
		return n * n
	})

	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestMap_Empty(t *testing.T) {
	p := New(2)
	defer p.Close()

	assert.Empty(t, Map(p, []string(nil), func(s string) int { return len(s) }))
}

func TestMap_ClosedPoolYieldsZeroValues(t *testing.T) {
	p := New(2)
	p.Close()

	got := Map(p, []int{1, 2, 3}, func(n int) int { return n })
	assert.Equal(t, []int{0, 0, 0}, got)
}

func TestPool_BoundsWorkers(t *testing.T) {
	p := New(3)

	var inFlight, peak int32
	for i := 0; i < 30; i++ {
		p.Submit(func() {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		})
	}
	p.Close()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Equal(t, 3, p.Cap())
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()
	p.Close()

	assert.False(t, p.Submit(func() { t.Error("task ran after Close") }))
}

func TestNew_DefaultsWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()

	assert.Positive(t, p.Cap())
}

func TestPool_CloseStopsWorkers(t *testing.T) {
	tracker := testutil.TrackGoroutines()

	p := New(8)
	Map(p, []int{1, 2, 3}, func(n int) int { return n })
	p.Close()

	tracker.CheckLeaks(t, 1)
}

func TestMap_ConcurrentCallers(t *testing.T) {
	p := New(4)
	defer p.Close()

	testutil.RunConcurrently(8, func(i int) {
		got := Map(p, []int{i, i + 1}, func(n int) int { return n * 2 })
		assert.Equal(t, []int{2 * i, 2 * (i + 1)}, got)
	})
}
