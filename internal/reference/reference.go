// Package reference computes an ephemeris-based speed for the observed
// spacecraft. The estimate pipeline measures speed from photographs; this
// package propagates a TLE with SGP4 over the same window so operators can
// judge the estimate (and the calibration of the correction factor) against
// an independent source.
package reference

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// ErrEmptyWindow marks a sampling window with no usable instants.
var ErrEmptyWindow = errors.New("empty sampling window")

// MeanSpeedKmPerSec propagates the TLE from start to end at the given step
// and returns the mean inertial speed in km/s over the window.
func MeanSpeedKmPerSec(tle1, tle2 string, start, end time.Time, step time.Duration) (float64, error) {
	if tle1 == "" || tle2 == "" {
		return 0, errors.New("both TLE lines are required")
	}
	if step <= 0 {
		return 0, fmt.Errorf("non-positive step %v", step)
	}
	if !end.After(start) {
		return 0, fmt.Errorf("%w: end %v not after start %v", ErrEmptyWindow, end, start)
	}

	sat := satellite.TLEToSat(tle1, tle2, satellite.GravityWGS72)

	sum := 0.0
	count := 0
	for t := start; !t.After(end); t = t.Add(step) {
		sum += speedAt(sat, t.UTC())
		count++
	}
	if count == 0 {
		return 0, ErrEmptyWindow
	}
	return sum / float64(count), nil
}

// speedAt returns the magnitude of the SGP4 inertial velocity at t.
// go-satellite works in kilometres and km/s.
func speedAt(sat satellite.Satellite, t time.Time) float64 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	_, vel := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	return math.Sqrt(vel.X*vel.X + vel.Y*vel.Y + vel.Z*vel.Z)
}
