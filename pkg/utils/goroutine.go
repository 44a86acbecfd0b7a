// Package utils holds test helpers shared across packages.
package utils

import (
	"bytes"
	"runtime"
	"strings"
	"time"
)

// TB is the subset of testing.TB used by the leak detector
type TB interface {
	Helper()
	Logf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// defaultIgnored matches goroutines of pooled HTTP keep-alive connections
var defaultIgnored = []string{
	"net/http.(*persistConn).readLoop",
	"net/http.(*persistConn).writeLoop",
}

// GoroutineLeakDetector compares goroutine counts before and after a test,
// ignoring goroutines whose stacks match known long-lived functions.
type GoroutineLeakDetector struct {
	t              TB
	initialCount   int
	allowedGrowth  int
	checkInterval  time.Duration
	stabilizeDelay time.Duration
	ignored        []string
}

// NewGoroutineLeakDetector creates a new goroutine leak detector
func NewGoroutineLeakDetector(t TB) *GoroutineLeakDetector {
	return &GoroutineLeakDetector{
		t:              t,
		checkInterval:  50 * time.Millisecond,
		stabilizeDelay: 100 * time.Millisecond,
		ignored:        append([]string(nil), defaultIgnored...),
	}
}

// Start records the initial goroutine count
func (d *GoroutineLeakDetector) Start() {
	time.Sleep(d.stabilizeDelay)
	d.initialCount = d.count()
	d.t.Logf("Starting goroutine count: %d", d.initialCount)
}

// Check reports an error when the goroutine count grew beyond the allowed
// threshold. The lowest of several samples is used so goroutines still
// winding down are not counted.
func (d *GoroutineLeakDetector) Check() {
	d.t.Helper()

	finalCount := -1
	deadline := time.Now().Add(d.stabilizeDelay + 3*d.checkInterval)
	for {
		if c := d.count(); finalCount < 0 || c < finalCount {
			finalCount = c
		}
		if finalCount-d.initialCount <= d.allowedGrowth || time.Now().After(deadline) {
			break
		}
		time.Sleep(d.checkInterval)
	}

	leaked := finalCount - d.initialCount
	if leaked > d.allowedGrowth {
		d.t.Errorf("Goroutine leak detected: started with %d, ended with %d (leaked: %d, allowed: %d)",
			d.initialCount, finalCount, leaked, d.allowedGrowth)
		d.t.Logf("Current goroutine stack traces:\n%s", stacks())
		return
	}
	d.t.Logf("No goroutine leak: started with %d, ended with %d", d.initialCount, finalCount)
}

// SetAllowedGrowth sets the number of goroutines allowed to grow
func (d *GoroutineLeakDetector) SetAllowedGrowth(n int) *GoroutineLeakDetector {
	d.allowedGrowth = n
	return d
}

// SetStabilizeDelay sets the delay to allow goroutines to stabilize
func (d *GoroutineLeakDetector) SetStabilizeDelay(delay time.Duration) *GoroutineLeakDetector {
	d.stabilizeDelay = delay
	return d
}

// Ignore skips goroutines whose stack contains any of the given function names
func (d *GoroutineLeakDetector) Ignore(functions ...string) *GoroutineLeakDetector {
	d.ignored = append(d.ignored, functions...)
	return d
}

func (d *GoroutineLeakDetector) count() int {
	n := 0
	for _, g := range strings.Split(stacks(), "\n\n") {
		if strings.TrimSpace(g) == "" || d.isIgnored(g) {
			continue
		}
		n++
	}
	return n
}

func (d *GoroutineLeakDetector) isIgnored(stack string) bool {
	for _, fn := range d.ignored {
		if strings.Contains(stack, fn) {
			return true
		}
	}
	return false
}

func stacks() string {
	buf := make([]byte, 1<<16)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(bytes.TrimSpace(buf[:n]))
		}
		buf = make([]byte, 2*len(buf))
	}
}
