package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCountdownFiresExactlyOnce(t *testing.T) {
	var fired int32
	cd := NewCountdownWithInterval(time.Now().Add(30*time.Millisecond), 5*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	cd.Start()
	cd.Start() // 重复启动无效

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("onExpire fired %d times, want 1", got)
	}
}

func TestCountdownStopPreventsFire(t *testing.T) {
	var fired int32
	cd := NewCountdownWithInterval(time.Now().Add(40*time.Millisecond), 5*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	cd.Start()
	cd.Stop()
	cd.Stop() // 幂等

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("onExpire fired %d times after Stop, want 0", got)
	}
}

func TestCountdownRemaining(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cd := NewCountdown(deadline, func() {})

	if got := cd.Remaining(deadline.Add(-time.Minute)); got != time.Minute {
		t.Errorf("Remaining = %v, want 1m", got)
	}
	if got := cd.Remaining(deadline.Add(time.Second)); got != 0 {
		t.Errorf("Remaining after deadline = %v, want 0", got)
	}
}
