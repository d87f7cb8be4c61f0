package globe

import (
	"context"
	"testing"
	"time"
)

func TestIntervalTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := IntervalTicks{Interval: time.Millisecond}.Ticks(ctx)

	var last uint64
	for i := 0; i < 3; i++ {
		select {
		case n := <-ch:
			if n <= last {
				t.Fatalf("tick %d after %d, want increasing", n, last)
			}
			last = n
		case <-time.After(time.Second):
			t.Fatal("no tick within 1s")
		}
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
