package reference

import (
	"errors"
	"testing"
	"time"
)

// ISS TLE from early October 2021; propagation times stay near the epoch.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestMeanSpeed_ISSOrbitVelocity(t *testing.T) {
	start := time.Date(2021, 10, 2, 14, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)

	speed, err := MeanSpeedKmPerSec(issTLE1, issTLE2, start, end, 30*time.Second)
	if err != nil {
		t.Fatalf("MeanSpeedKmPerSec: %v", err)
	}

	// LEO at ~420 km altitude moves at roughly 7.66 km/s.
	if speed < 7.4 || speed > 7.9 {
		t.Errorf("mean ISS speed = %v km/s, want within [7.4, 7.9]", speed)
	}
}

func TestMeanSpeed_RejectsInvertedWindow(t *testing.T) {
	start := time.Date(2021, 10, 2, 14, 0, 0, 0, time.UTC)

	_, err := MeanSpeedKmPerSec(issTLE1, issTLE2, start, start, 30*time.Second)
	if !errors.Is(err, ErrEmptyWindow) {
		t.Errorf("error = %v, want ErrEmptyWindow", err)
	}
}

func TestMeanSpeed_RejectsMissingTLE(t *testing.T) {
	start := time.Date(2021, 10, 2, 14, 0, 0, 0, time.UTC)

	if _, err := MeanSpeedKmPerSec("", issTLE2, start, start.Add(time.Minute), time.Second); err == nil {
		t.Error("expected error for missing TLE line")
	}
}

func TestMeanSpeed_RejectsNonPositiveStep(t *testing.T) {
	start := time.Date(2021, 10, 2, 14, 0, 0, 0, time.UTC)

	if _, err := MeanSpeedKmPerSec(issTLE1, issTLE2, start, start.Add(time.Minute), 0); err == nil {
		t.Error("expected error for zero step")
	}
}
