package viewport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	clock := NewManualClock(100)
	got := make(chan int64, 2)
	for i := 0; i < 2; i++ {
		go func() {
			ts, err := clock.Frame(context.Background())
			if err != nil {
				t.Error(err)
			}
			got <- ts
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for clock.AwaitFrame(ctx) {
		clock.mu.Lock()
		n := len(clock.waiters)
		clock.mu.Unlock()
		if n == 2 {
			break
		}
	}
	if n := clock.Advance(50); n != 2 {
		t.Fatalf("Advance() released %d callers, want 2", n)
	}
	for i := 0; i < 2; i++ {
		if ts := <-got; ts != 150 {
			t.Errorf("Frame() = %d, want 150", ts)
		}
	}
	if clock.Now() != 150 {
		t.Errorf("Now() = %d, want 150", clock.Now())
	}
}

func TestManualClockCancel(t *testing.T) {
	clock := NewManualClock(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := clock.Frame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Frame() error = %v, want context.Canceled", err)
	}
	if n := clock.Advance(time.Millisecond); n != 0 {
		t.Errorf("Advance() released %d callers, want 0", n)
	}
}

func TestTickerClock(t *testing.T) {
	clock := NewTickerClock(0)
	if clock.Interval() != time.Second/DefaultFrameRate {
		t.Errorf("Interval() = %v, want %v", clock.Interval(), time.Second/DefaultFrameRate)
	}

	fast := NewTickerClock(1000)
	a, err := fast.Frame(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := fast.Frame(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if b <= a {
		t.Errorf("timestamps not increasing: %d then %d", a, b)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fast.Frame(ctx); err == nil {
		t.Error("Frame() on a cancelled context succeeded")
	}
}
