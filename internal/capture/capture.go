// Package capture runs the interval photography loop. It owns everything
// the estimation core must never see: the camera, image files, storage
// quotas, and pruning.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalsfoundry/groundtrack-estimator/internal/logging"
)

// Camera produces one image file per Capture call. The flight unit wraps
// the onboard camera stack; tests and ground rigs substitute fakes.
type Camera interface {
	Capture(ctx context.Context, path string) error
}

// Clock abstracts time for the capture loop so tests can drive it without
// sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall-clock Clock used in flight.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now().UTC() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Limits bound one capture session. The session ends when any limit trips.
type Limits struct {
	// Interval between consecutive captures.
	Interval time.Duration
	// MaxImages caps the number of captured frames.
	MaxImages int
	// MaxStorageBytes caps the cumulative size of captured frames.
	MaxStorageBytes int64
	// MaxDuration caps the wall-clock length of the session.
	MaxDuration time.Duration
}

// Controller drives a capture session and owns the resulting files.
type Controller struct {
	camera Camera
	clock  Clock
	log    logging.Logger

	dir    string
	limits Limits
}

// NewController builds a capture controller writing into dir. A nil clock
// gets the system clock; a nil logger is replaced with a noop one.
func NewController(camera Camera, clock Clock, log logging.Logger, dir string, limits Limits) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &Controller{camera: camera, clock: clock, log: log, dir: dir, limits: limits}
}

// Run captures images at the configured interval until a limit trips or the
// context is cancelled, returning the captured file paths in capture order.
// Paths captured before an error or cancellation are still returned so the
// run can be estimated from what exists.
func (c *Controller) Run(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", c.dir, err)
	}

	var (
		paths      []string
		totalBytes int64
	)
	start := c.clock.Now()

	for {
		select {
		case <-ctx.Done():
			c.log.Info(ctx, "capture stopped: cancelled", logging.Int("images", len(paths)))
			return paths, nil
		default:
		}

		if c.limits.MaxImages > 0 && len(paths) >= c.limits.MaxImages {
			c.log.Info(ctx, "capture stopped: image limit", logging.Int("images", len(paths)))
			return paths, nil
		}
		if c.limits.MaxStorageBytes > 0 && totalBytes >= c.limits.MaxStorageBytes {
			c.log.Info(ctx, "capture stopped: storage limit", logging.Any("bytes", totalBytes))
			return paths, nil
		}

		now := c.clock.Now()
		if c.limits.MaxDuration > 0 && now.Sub(start) > c.limits.MaxDuration {
			c.log.Info(ctx, "capture stopped: duration limit", logging.Any("elapsed", now.Sub(start)))
			return paths, nil
		}

		path := filepath.Join(c.dir, fmt.Sprintf("image_%s.jpg", now.Format("20060102_150405")))
		if err := c.camera.Capture(ctx, path); err != nil {
			return paths, fmt.Errorf("capture %s: %w", path, err)
		}
		paths = append(paths, path)

		if info, err := os.Stat(path); err == nil {
			totalBytes += info.Size()
		}
		c.log.Debug(ctx, "image captured", logging.String("path", path))

		select {
		case <-ctx.Done():
			c.log.Info(ctx, "capture stopped: cancelled", logging.Int("images", len(paths)))
			return paths, nil
		case <-c.clock.After(c.limits.Interval):
		}
	}
}

// Prune deletes the oldest files past retain, returning the survivors in
// their original order. With retain <= 0 nothing is deleted.
func (c *Controller) Prune(ctx context.Context, paths []string, retain int) ([]string, error) {
	if retain <= 0 || len(paths) <= retain {
		return paths, nil
	}

	victims := paths[:len(paths)-retain]
	for _, p := range victims {
		if err := os.Remove(p); err != nil {
			return paths, fmt.Errorf("prune %s: %w", p, err)
		}
		c.log.Debug(ctx, "pruned image", logging.String("path", p))
	}
	return paths[len(paths)-retain:], nil
}
