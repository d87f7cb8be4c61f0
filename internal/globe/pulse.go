package globe

import (
	"math"

	"github.com/joeblew999/plat-globe/internal/service"
)

const (
	// RadiusScale converts volcano magnitude to rendered radius.
	RadiusScale = 0.1

	// PulseAmplitude bounds the oscillation to [0.7, 1.3] of the base radius.
	PulseAmplitude = 0.3

	// PulseTickDivisor stretches the sine over ticks.
	PulseTickDivisor = 120.0

	// PulsePeriodTicks is the oscillation period, 2π·120 ticks.
	PulsePeriodTicks = 2 * math.Pi * PulseTickDivisor
)

// BaseRadius is the fixed radius of a volcano that is not pulsing.
func BaseRadius(v service.Volcano) float64 {
	return v.VMag * RadiusScale
}

// Radius computes the rendered radius of v at tick.
func Radius(v service.Volcano, tick uint64) float64 {
	base := BaseRadius(v)
	if !v.Pulsing {
		return base
	}
	return base * (1 + PulseAmplitude*math.Sin(float64(tick)/PulseTickDivisor))
}
