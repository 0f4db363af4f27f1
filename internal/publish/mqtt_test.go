package publish

import (
	"encoding/json"
	"testing"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

func TestMessagePayloadShape(t *testing.T) {
	msg := Message{
		RunID:                "abc123",
		AverageSpeedKmPerSec: 7.664,
		SampleCount:          41,
		Source:               "exif",
		ProducedAt:           "2024-03-01T12:08:00Z",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"run_id", "average_speed_km_per_sec", "sample_count", "source", "produced_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("payload missing %q: %s", key, data)
		}
	}
	if decoded["average_speed_km_per_sec"] != 7.664 {
		t.Errorf("speed = %v, want 7.664", decoded["average_speed_km_per_sec"])
	}
}

func TestEstimateJSONMatchesPayloadFields(t *testing.T) {
	// The model's own JSON tags line up with the published message so
	// consumers can decode either shape.
	data, err := json.Marshal(model.SpeedEstimate{AverageSpeedKmPerSec: 7.6, SampleCount: 4})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Average float64 `json:"average_speed_km_per_sec"`
		Count   int     `json:"sample_count"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Average != 7.6 || decoded.Count != 4 {
		t.Errorf("decoded = %+v, want {7.6 4}", decoded)
	}
}
