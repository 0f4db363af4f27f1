package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

func TestResultRoundTrip(t *testing.T) {
	estimate := model.SpeedEstimate{AverageSpeedKmPerSec: 11.119492664455873, SampleCount: 1}

	decoded, err := DecodeResult(EncodeResult(estimate))
	if err != nil {
		t.Fatalf("DecodeResult: %v", err)
	}
	// The artifact carries three decimals; the round trip recovers the
	// value at that display precision.
	if math.Abs(decoded-estimate.AverageSpeedKmPerSec) > 0.0005 {
		t.Errorf("round trip = %v, want %v within display precision", decoded, estimate.AverageSpeedKmPerSec)
	}
}

func TestEncodeResultFormat(t *testing.T) {
	got := EncodeResult(model.SpeedEstimate{AverageSpeedKmPerSec: 7.66, SampleCount: 41})
	if got != "7.660 km/s\n" {
		t.Errorf("EncodeResult = %q, want %q", got, "7.660 km/s\n")
	}
}

func TestDecodeResultRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "km/s", "fast km/s", "7,66 km/s"} {
		if _, err := DecodeResult(s); err == nil {
			t.Errorf("DecodeResult(%q) succeeded, want error", s)
		}
	}
}

func TestWriteAndReadResultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	estimate := model.SpeedEstimate{AverageSpeedKmPerSec: 7.664, SampleCount: 41}

	if err := WriteResult(path, estimate); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	got, err := ReadResult(path)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if got != 7.664 {
		t.Errorf("ReadResult = %v, want 7.664", got)
	}
}

func TestHistoryRecordAndRecent(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	first := model.SpeedEstimate{AverageSpeedKmPerSec: 7.60, SampleCount: 40}
	second := model.SpeedEstimate{AverageSpeedKmPerSec: 7.71, SampleCount: 41}

	if err := h.Record(ctx, "run-1", first, 1.05, "exif"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := h.Record(ctx, "run-2", second, 1.05, "nmea"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}

	// Newest first.
	if runs[0].RunID != "run-2" || runs[1].RunID != "run-1" {
		t.Errorf("order = [%s, %s], want [run-2, run-1]", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].AverageSpeedKmPerSec != 7.71 || runs[0].SampleCount != 41 {
		t.Errorf("runs[0] = %+v, want speed 7.71 with 41 samples", runs[0])
	}
	if runs[0].Source != "nmea" || runs[1].Source != "exif" {
		t.Errorf("sources = [%s, %s], want [nmea, exif]", runs[0].Source, runs[1].Source)
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := h.Record(ctx, "run", model.SpeedEstimate{SampleCount: i}, 1.0, "exif"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := h.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("len(runs) = %d, want 3", len(runs))
	}
}
