package model

import "time"

// PositionFix is one decoded (latitude, longitude, timestamp) observation
// from a single image. A missing or undecodable observation is represented
// as a nil *PositionFix, never as sentinel coordinate values.
type PositionFix struct {
	// Latitude in decimal degrees, positive north.
	Latitude float64
	// Longitude in decimal degrees, positive east.
	Longitude float64
	// Timestamp is the absolute capture time of the observation.
	Timestamp time.Time
}

// FixPair holds two temporally consecutive valid fixes. A pair is only
// meaningful when Later.Timestamp > Earlier.Timestamp; pairs violating that
// are rejected during sampling rather than silently measured.
type FixPair struct {
	Earlier PositionFix
	Later   PositionFix
}

// ElapsedSeconds returns the time between the two fixes in seconds. It can
// be zero or negative for an invalid pair; callers are expected to check.
func (p FixPair) ElapsedSeconds() float64 {
	return p.Later.Timestamp.Sub(p.Earlier.Timestamp).Seconds()
}

// SpeedSample is the speed derived from one fix pair.
type SpeedSample struct {
	// DistanceKm is the great-circle distance between the two fixes.
	DistanceKm float64
	// ElapsedSeconds is the positive time between the two fixes.
	ElapsedSeconds float64
	// SpeedKmPerSec is DistanceKm / ElapsedSeconds.
	SpeedKmPerSec float64
}

// SpeedEstimate is the final aggregate of one estimation run.
//
// SampleCount 0 means the run produced no usable fix pairs; the average is
// then 0 and must not be treated as a measurement. Callers check SampleCount
// before trusting AverageSpeedKmPerSec.
type SpeedEstimate struct {
	AverageSpeedKmPerSec float64 `json:"average_speed_km_per_sec"`
	SampleCount          int     `json:"sample_count"`
}

// Meaningful reports whether the estimate is backed by at least n samples.
func (e SpeedEstimate) Meaningful(n int) bool {
	if n < 1 {
		n = 1
	}
	return e.SampleCount >= n
}
