package clock

import (
	"context"
	"testing"
	"time"
)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	c := NewFake()
	var got []string
	c.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })
	c.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	c.AfterFunc(50*time.Millisecond, func() { got = append(got, "late") })

	c.Advance(30 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fired = %v, want [a b]", got)
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}
}

func TestFakeStop(t *testing.T) {
	c := NewFake()
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("Stop() = false on live timer")
	}
	if timer.Stop() {
		t.Fatal("second Stop() = true")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestFakeChainedTimers(t *testing.T) {
	c := NewFake()
	count := 0
	var step func()
	step = func() {
		count++
		if count < 5 {
			c.AfterFunc(10*time.Millisecond, step)
		}
	}
	c.AfterFunc(10*time.Millisecond, step)
	c.Advance(100 * time.Millisecond)
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestFakeSleepHonorsContext(t *testing.T) {
	c := NewFake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Second); err == nil {
		t.Fatal("Sleep() on cancelled ctx returned nil")
	}
	if err := c.Sleep(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error: %v", err)
	}
	if s := c.Slept(); len(s) != 1 || s[0] != 50*time.Millisecond {
		t.Fatalf("Slept() = %v", s)
	}
}
