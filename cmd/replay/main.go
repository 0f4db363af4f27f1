// replay estimates ground-track speed from an existing image directory or a
// recorded NMEA log, without touching a camera. It is the ground-side tool
// for re-running flight data and for checking the correction factor against
// an SGP4 reference.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/groundtrack-estimator/internal/config"
	"github.com/signalsfoundry/groundtrack-estimator/internal/exifsrc"
	"github.com/signalsfoundry/groundtrack-estimator/internal/logging"
	"github.com/signalsfoundry/groundtrack-estimator/internal/nmeasrc"
	"github.com/signalsfoundry/groundtrack-estimator/internal/reference"
	"github.com/signalsfoundry/groundtrack-estimator/internal/run"
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

type exifSource struct {
	decoder *exifsrc.Decoder
	dir     string
}

func (s exifSource) Fixes(ctx context.Context) ([]*model.PositionFix, error) {
	return s.decoder.FixSequence(ctx, s.dir)
}

func (s exifSource) Name() string { return "exif" }

type nmeaSource struct {
	path string
}

func (s nmeaSource) Fixes(ctx context.Context) ([]*model.PositionFix, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return nmeasrc.ReadFixes(f)
}

func (s nmeaSource) Name() string { return "nmea" }

func main() {
	_ = godotenv.Load()

	imageDir := flag.String("images", "", "image directory to replay")
	nmeaLog := flag.String("nmea", "", "NMEA log file to replay instead of images")
	flag.Parse()

	log := logging.NewFromEnv()
	cfg := config.Load()
	ctx := context.Background()

	if (*imageDir == "") == (*nmeaLog == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -images or -nmea is required")
		os.Exit(2)
	}

	var source run.FixSource
	if *imageDir != "" {
		source = exifSource{decoder: exifsrc.NewDecoder(log), dir: *imageDir}
	} else {
		source = nmeaSource{path: *nmeaLog}
	}

	// Replays want the fix window for the reference comparison, so load
	// the sequence once and feed the runner a pre-loaded source.
	fixes, err := source.Fixes(ctx)
	if err != nil {
		log.Error(ctx, "failed to load fix sequence", logging.String("error", err.Error()))
		os.Exit(1)
	}

	runner := run.NewRunner(cfg, nil, log)
	estimate, err := runner.Execute(ctx, preloaded{fixes: fixes, name: source.Name()})
	if err != nil {
		log.Error(ctx, "estimation failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if !estimate.Meaningful(cfg.MinSampleCount) {
		fmt.Printf("no meaningful estimate: %d samples (minimum %d)\n", estimate.SampleCount, cfg.MinSampleCount)
		return
	}

	fmt.Printf("average speed: %.3f km/s (%d samples)\n", estimate.AverageSpeedKmPerSec, estimate.SampleCount)

	if cfg.ReferenceTLE1 != "" && cfg.ReferenceTLE2 != "" {
		if start, end, ok := fixWindow(fixes); ok {
			refSpeed, err := reference.MeanSpeedKmPerSec(cfg.ReferenceTLE1, cfg.ReferenceTLE2, start, end, 30*time.Second)
			if err != nil {
				log.Warn(ctx, "reference comparison unavailable", logging.String("error", err.Error()))
				return
			}
			fmt.Printf("sgp4 reference: %.3f km/s (ratio %.4f)\n", refSpeed, estimate.AverageSpeedKmPerSec/refSpeed)
		}
	}
}

// preloaded serves an already-loaded fix sequence as a FixSource.
type preloaded struct {
	fixes []*model.PositionFix
	name  string
}

func (p preloaded) Fixes(ctx context.Context) ([]*model.PositionFix, error) { return p.fixes, nil }
func (p preloaded) Name() string                                            { return p.name }

// fixWindow returns the first and last valid fix timestamps.
func fixWindow(fixes []*model.PositionFix) (time.Time, time.Time, bool) {
	var start, end time.Time
	seen := false
	for _, fix := range fixes {
		if fix == nil {
			continue
		}
		if !seen {
			start = fix.Timestamp
			seen = true
		}
		end = fix.Timestamp
	}
	if !seen || !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
