package core

import (
	"fmt"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// DefaultCorrectionFactor compensates for the systematic bias of measuring
// orbital motion as spherical ground-track distance. The value comes from
// calibration against reference ephemerides, not from first principles, so
// it is configurable everywhere it is used.
const DefaultCorrectionFactor = 1.05

// SpeedEstimator derives per-pair speed samples and aggregates them into a
// single corrected average. It holds no per-run state and is safe to reuse
// across runs.
type SpeedEstimator struct {
	geo        Geodesic
	correction float64
}

// NewSpeedEstimator builds an estimator over the given geodesic. A
// correction factor ≤ 0 falls back to DefaultCorrectionFactor; pass 1.0 for
// an uncorrected average.
func NewSpeedEstimator(geo Geodesic, correction float64) *SpeedEstimator {
	if correction <= 0 {
		correction = DefaultCorrectionFactor
	}
	return &SpeedEstimator{geo: geo, correction: correction}
}

// SampleSpeed computes the speed over one fix pair: great-circle distance
// divided by elapsed time. It fails with ErrDegenerateInterval when the
// pair's elapsed time is not positive, and propagates coordinate validation
// failures from the geodesic.
func (e *SpeedEstimator) SampleSpeed(pair model.FixPair) (model.SpeedSample, error) {
	elapsed := pair.ElapsedSeconds()
	if elapsed <= 0 {
		return model.SpeedSample{}, fmt.Errorf("%w: %.3fs between fixes", ErrDegenerateInterval, elapsed)
	}

	dist, err := e.geo.DistanceKm(
		pair.Earlier.Latitude, pair.Earlier.Longitude,
		pair.Later.Latitude, pair.Later.Longitude,
	)
	if err != nil {
		return model.SpeedSample{}, err
	}

	return model.SpeedSample{
		DistanceKm:     dist,
		ElapsedSeconds: elapsed,
		SpeedKmPerSec:  dist / elapsed,
	}, nil
}

// Aggregate reduces the samples to one estimate: the arithmetic mean of the
// per-pair speeds multiplied by the correction factor. An empty sample set
// is not an error; it yields a zero estimate with SampleCount 0, which
// callers must check before treating the average as a measurement.
func (e *SpeedEstimator) Aggregate(samples []model.SpeedSample) model.SpeedEstimate {
	if len(samples) == 0 {
		return model.SpeedEstimate{}
	}

	sum := 0.0
	for _, s := range samples {
		sum += s.SpeedKmPerSec
	}
	mean := sum / float64(len(samples))

	return model.SpeedEstimate{
		AverageSpeedKmPerSec: mean * e.correction,
		SampleCount:          len(samples),
	}
}
