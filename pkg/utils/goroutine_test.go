package utils

import (
	"fmt"
	"testing"
	"time"
)

type recordingT struct {
	failed bool
	logs   []string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Logf(format string, args ...interface{}) {
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.failed = true
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

// TestGoroutineLeakDetector tests the leak detector itself
func TestGoroutineLeakDetector(t *testing.T) {
	t.Run("NoLeak", func(t *testing.T) {
		detector := NewGoroutineLeakDetector(t)
		detector.Start()

		ch := make(chan struct{})
		go func() {
			ch <- struct{}{}
		}()
		<-ch

		detector.Check()
	})

	t.Run("DetectsLeak", func(t *testing.T) {
		rec := &recordingT{}
		detector := NewGoroutineLeakDetector(rec).SetStabilizeDelay(20 * time.Millisecond)
		detector.Start()

		stop := make(chan struct{})
		defer close(stop)
		go func() {
			<-stop
		}()

		detector.Check()

		if !rec.failed {
			t.Error("Expected leak detector to fail but it didn't")
		}
	})

	t.Run("IgnoresMatchingStacks", func(t *testing.T) {
		rec := &recordingT{}
		detector := NewGoroutineLeakDetector(rec).
			SetStabilizeDelay(20 * time.Millisecond).
			Ignore("utils.parkUntil")
		detector.Start()

		stop := make(chan struct{})
		defer close(stop)
		go parkUntil(stop)

		detector.Check()

		if rec.failed {
			t.Errorf("Expected ignored goroutine to be skipped: %v", rec.logs)
		}
	})
}

func parkUntil(stop <-chan struct{}) {
	<-stop
}
