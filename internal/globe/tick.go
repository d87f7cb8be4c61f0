package globe

import (
	"context"
	"time"
)

// DefaultTickInterval is the animation cadence used when none is configured.
const DefaultTickInterval = 50 * time.Millisecond

// TickSource emits a monotonically increasing counter until ctx is done.
type TickSource interface {
	Ticks(ctx context.Context) <-chan uint64
}

// IntervalTicks emits 1, 2, 3... at a fixed interval.
type IntervalTicks struct {
	Interval time.Duration
}

// Ticks starts the timer. The channel is closed when ctx is done. A slow
// consumer skips ticks rather than queueing them.
func (s IntervalTicks) Ticks(ctx context.Context) <-chan uint64 {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	ch := make(chan uint64, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var n uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n++
				select {
				case ch <- n:
				default:
				}
			}
		}
	}()
	return ch
}

// ManualTicks is a TickSource driven by sends on the channel itself.
type ManualTicks chan uint64

func (m ManualTicks) Ticks(context.Context) <-chan uint64 { return m }
