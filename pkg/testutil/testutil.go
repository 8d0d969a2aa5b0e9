// Package testutil provides shared test helpers: fault injection and
// goroutine leak detection.
package testutil

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// ErrFault is the error returned by the fault injection helpers.
var ErrFault = errors.New("injected fault")

// FailingWriter is an io.Writer that fails once Limit bytes were written.
// A zero Limit fails every write.
type FailingWriter struct {
	written int
	Limit   int
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.Limit {
		remaining := w.Limit - w.written
		if remaining > 0 {
			w.written += remaining
			return remaining, ErrFault
		}
		return 0, ErrFault
	}
	w.written += len(p)
	return len(p), nil
}

// FailingReader is an io.Reader whose every Read fails.
type FailingReader struct{}

func (FailingReader) Read([]byte) (int, error) { return 0, ErrFault }

// GoroutineTracker compares goroutine counts before and after a test.
type GoroutineTracker struct {
	before int
}

// TrackGoroutines snapshots the goroutine count. Call CheckLeaks after.
func TrackGoroutines() *GoroutineTracker {
	runtime.Gosched()
	return &GoroutineTracker{before: runtime.NumGoroutine()}
}

// CheckLeaks waits up to two seconds for goroutines to drain and fails the
// test if more than tolerance extra goroutines remain.
func (g *GoroutineTracker) CheckLeaks(t *testing.T, tolerance int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runtime.Gosched()
		if runtime.NumGoroutine() <= g.before+tolerance {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	if after := runtime.NumGoroutine(); after > g.before+tolerance {
		t.Errorf("goroutine leak: before=%d after=%d tolerance=%d", g.before, after, tolerance)
	}
}

// RunConcurrently starts fn count times at once and waits for all of them.
func RunConcurrently(count int, fn func(i int)) {
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(count)
	for i := range count {
		go func() {
			defer wg.Done()
			<-start
			fn(i)
		}()
	}
	close(start)
	wg.Wait()
}
