package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

func fixAt(lat, lon float64, t time.Time) model.PositionFix {
	return model.PositionFix{Latitude: lat, Longitude: lon, Timestamp: t}
}

func TestSampleSpeed_KnownDistanceAndInterval(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.0)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// One degree of longitude at the equator over 10 seconds.
	sample, err := est.SampleSpeed(model.FixPair{
		Earlier: fixAt(0, 0, t0),
		Later:   fixAt(0, 1, t0.Add(10*time.Second)),
	})
	if err != nil {
		t.Fatalf("SampleSpeed: %v", err)
	}

	if math.Abs(sample.DistanceKm-111.19) > 0.01 {
		t.Errorf("DistanceKm = %v, want ~111.19", sample.DistanceKm)
	}
	if sample.ElapsedSeconds != 10 {
		t.Errorf("ElapsedSeconds = %v, want 10", sample.ElapsedSeconds)
	}
	if math.Abs(sample.SpeedKmPerSec-11.119) > 0.001 {
		t.Errorf("SpeedKmPerSec = %v, want ~11.119", sample.SpeedKmPerSec)
	}
}

func TestSampleSpeed_SpeedEqualsDistanceOverTime(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.0)
	t0 := time.Now().UTC()

	sample, err := est.SampleSpeed(model.FixPair{
		Earlier: fixAt(10, 20, t0),
		Later:   fixAt(10.5, 20.5, t0.Add(5*time.Second)),
	})
	if err != nil {
		t.Fatalf("SampleSpeed: %v", err)
	}
	if want := sample.DistanceKm / sample.ElapsedSeconds; sample.SpeedKmPerSec != want {
		t.Errorf("SpeedKmPerSec = %v, want %v", sample.SpeedKmPerSec, want)
	}
}

func TestSampleSpeed_DegenerateInterval(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.0)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Same timestamp.
	_, err := est.SampleSpeed(model.FixPair{
		Earlier: fixAt(0, 0, t0),
		Later:   fixAt(0, 1, t0),
	})
	if !errors.Is(err, ErrDegenerateInterval) {
		t.Errorf("zero interval error = %v, want ErrDegenerateInterval", err)
	}

	// Reversed timestamps.
	_, err = est.SampleSpeed(model.FixPair{
		Earlier: fixAt(0, 0, t0.Add(time.Minute)),
		Later:   fixAt(0, 1, t0),
	})
	if !errors.Is(err, ErrDegenerateInterval) {
		t.Errorf("negative interval error = %v, want ErrDegenerateInterval", err)
	}
}

func TestSampleSpeed_PropagatesInvalidCoordinate(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.0)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := est.SampleSpeed(model.FixPair{
		Earlier: fixAt(95, 0, t0),
		Later:   fixAt(0, 1, t0.Add(time.Second)),
	})
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("error = %v, want ErrInvalidCoordinate", err)
	}
}

func TestAggregate_MeanWithUnitCorrection(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.0)

	samples := []model.SpeedSample{
		{SpeedKmPerSec: 1.0},
		{SpeedKmPerSec: 2.0},
		{SpeedKmPerSec: 3.0},
	}
	got := est.Aggregate(samples)

	if got.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", got.SampleCount)
	}
	if math.Abs(got.AverageSpeedKmPerSec-2.0) > 1e-12 {
		t.Errorf("AverageSpeedKmPerSec = %v, want 2.0", got.AverageSpeedKmPerSec)
	}
}

func TestAggregate_AppliesCorrectionFactor(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.05)

	got := est.Aggregate([]model.SpeedSample{{SpeedKmPerSec: 7.6}})
	if math.Abs(got.AverageSpeedKmPerSec-7.98) > 1e-9 {
		t.Errorf("corrected average = %v, want 7.98", got.AverageSpeedKmPerSec)
	}
}

func TestAggregate_EmptySamplesYieldZeroEstimate(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 1.05)

	got := est.Aggregate(nil)
	if got.SampleCount != 0 || got.AverageSpeedKmPerSec != 0 {
		t.Errorf("empty aggregate = %+v, want zero estimate", got)
	}
	if got.Meaningful(1) {
		t.Error("zero estimate reported as meaningful")
	}
}

func TestNewSpeedEstimator_DefaultsCorrection(t *testing.T) {
	est := NewSpeedEstimator(NewGeodesic(EarthRadiusKm), 0)
	got := est.Aggregate([]model.SpeedSample{{SpeedKmPerSec: 1.0}})
	if math.Abs(got.AverageSpeedKmPerSec-DefaultCorrectionFactor) > 1e-12 {
		t.Errorf("default-corrected average = %v, want %v", got.AverageSpeedKmPerSec, DefaultCorrectionFactor)
	}
}
