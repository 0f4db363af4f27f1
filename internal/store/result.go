// Package store persists estimation results: the single-line text artifact
// the experiment downlinks, and an optional SQLite run history for ground
// analysis.
package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// resultPrecision is the number of decimal places in the text artifact.
// Reading a written artifact recovers the speed at exactly this precision.
const resultPrecision = 3

// EncodeResult renders the estimate as the downlinked one-line artifact,
// e.g. "7.664 km/s".
func EncodeResult(estimate model.SpeedEstimate) string {
	return strconv.FormatFloat(estimate.AverageSpeedKmPerSec, 'f', resultPrecision, 64) + " km/s\n"
}

// DecodeResult parses a text artifact back into the speed it recorded.
func DecodeResult(s string) (float64, error) {
	line := strings.TrimSpace(s)
	line = strings.TrimSuffix(line, "km/s")
	line = strings.TrimSpace(line)

	speed, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed result artifact %q: %w", strings.TrimSpace(s), err)
	}
	return speed, nil
}

// WriteResult writes the artifact to path, replacing any previous run's
// result.
func WriteResult(path string, estimate model.SpeedEstimate) error {
	if err := os.WriteFile(path, []byte(EncodeResult(estimate)), 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}

// ReadResult reads the artifact back from path.
func ReadResult(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read result %s: %w", path, err)
	}
	return DecodeResult(string(data))
}
