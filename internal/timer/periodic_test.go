package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPeriodicTicksRepeatedly(t *testing.T) {
	var count int32
	p := New(10*time.Millisecond, false, func() { atomic.AddInt32(&count, 1) })
	p.Start()
	time.Sleep(55 * time.Millisecond)
	p.Stop()

	got := atomic.LoadInt32(&count)
	if got < 3 {
		t.Fatalf("count = %d, want at least 3 ticks in 55ms at 10ms interval", got)
	}
}

func TestPeriodicImmediateFiresRightAway(t *testing.T) {
	fired := make(chan struct{}, 1)
	p := New(time.Hour, true, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	p.Start()
	defer p.Stop()

	select {
	case <-fired:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("immediate tick did not fire")
	}
}

func TestPeriodicZeroIntervalDisabled(t *testing.T) {
	var count int32
	p := New(0, true, func() { atomic.AddInt32(&count, 1) })
	p.Start()
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	if atomic.LoadInt32(&count) != 0 {
		t.Fatalf("count = %d, want 0 for a zero interval ticker", count)
	}
}

func TestPeriodicStopWaitsForInFlightTick(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := New(5*time.Millisecond, true, func() {
		close(started)
		<-release
	})
	p.Start()
	<-started

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before in-flight tick released")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
}
