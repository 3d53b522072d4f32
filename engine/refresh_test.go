package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCoordinatorSingleFlight(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})
	var cycles int32

	c := NewCoordinator(time.Millisecond, func() {
		atomic.AddInt32(&cycles, 1)
		started <- struct{}{}
		<-proceed
	})

	c.Request()
	<-started // first cycle running

	// Two more requests while in flight must collapse to one pending re-run.
	c.Request()
	c.Request()

	proceed <- struct{}{} // finish cycle 1
	<-started             // cycle 2 started
	proceed <- struct{}{} // finish cycle 2

	select {
	case <-started:
		t.Fatal("a third cycle ran; pending requests must collapse to one")
	case <-time.After(50 * time.Millisecond):
	}
	if n := atomic.LoadInt32(&cycles); n != 2 {
		t.Fatalf("cycles = %d, want exactly 2", n)
	}
}

func TestCoordinatorRequestAfterCompletionRunsAgain(t *testing.T) {
	done := make(chan struct{}, 4)
	c := NewCoordinator(time.Millisecond, func() {
		done <- struct{}{}
	})

	c.Request()
	<-done
	// Let the run loop release the running flag before requesting again.
	time.Sleep(10 * time.Millisecond)
	c.Request()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second request never ran")
	}
}

func TestCoordinatorDebounceCollapsesBursts(t *testing.T) {
	var cycles int32
	done := make(chan struct{}, 8)
	c := NewCoordinator(30*time.Millisecond, func() {
		atomic.AddInt32(&cycles, 1)
		done <- struct{}{}
	})

	for i := 0; i < 5; i++ {
		c.Notify()
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced reload never fired")
	}
	time.Sleep(60 * time.Millisecond)
	if n := atomic.LoadInt32(&cycles); n != 1 {
		t.Fatalf("cycles = %d, want 1 for a burst of notices", n)
	}
}

func TestCoordinatorStopCancelsPendingTimer(t *testing.T) {
	var cycles int32
	c := NewCoordinator(20*time.Millisecond, func() {
		atomic.AddInt32(&cycles, 1)
	})
	c.Notify()
	c.Stop()
	time.Sleep(60 * time.Millisecond)
	if n := atomic.LoadInt32(&cycles); n != 0 {
		t.Fatalf("cycles = %d, want 0 after Stop", n)
	}
}
