package globe

import (
	"math"
	"testing"

	"github.com/joeblew999/plat-globe/internal/service"
)

func TestRadius(t *testing.T) {
	v := service.Volcano{ID: 1, VMag: 5, Pulsing: true}

	tests := []struct {
		tick uint64
		want float64
	}{
		{0, 0.5},
		{60, 0.5 * (1 + 0.3*math.Sin(0.5))},
	}
	for _, tt := range tests {
		if got := Radius(v, tt.tick); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Radius(tick=%d) = %v, want %v", tt.tick, got, tt.want)
		}
	}
	if got := Radius(v, 60); math.Abs(got-0.572) > 0.001 {
		t.Errorf("Radius(tick=60) = %v, want ≈0.572", got)
	}
}

func TestRadius_NotPulsingIgnoresTick(t *testing.T) {
	v := service.Volcano{ID: 1, VMag: 6.658, Pulsing: false}
	want := BaseRadius(v)
	for _, tick := range []uint64{0, 1, 60, 188, 377, 1 << 40} {
		if got := Radius(v, tick); got != want {
			t.Errorf("Radius(tick=%d) = %v, want %v", tick, got, want)
		}
	}
}

func TestRadius_BoundedAndPeriodic(t *testing.T) {
	v := service.Volcano{ID: 1, VMag: 4, Pulsing: true}
	base := BaseRadius(v)
	lo, hi := 0.7*base, 1.3*base

	period := uint64(math.Round(PulsePeriodTicks))
	// Integer ticks can only approximate the period; the drift stays tiny.
	tolerance := base * PulseAmplitude * math.Abs(float64(period)-PulsePeriodTicks) / PulseTickDivisor

	for tick := uint64(0); tick < 3*period; tick++ {
		r := Radius(v, tick)
		if r < lo-1e-12 || r > hi+1e-12 {
			t.Fatalf("Radius(tick=%d) = %v outside [%v, %v]", tick, r, lo, hi)
		}
		if d := math.Abs(Radius(v, tick+period) - r); d > tolerance+1e-12 {
			t.Fatalf("Radius(tick=%d) drifts %v over one period", tick, d)
		}
	}
}
