package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/groundtrack-estimator/core"
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// RunCollector bundles Prometheus metrics for the estimation pipeline and
// implements core.RunRecorder so the fix processor can drive it directly.
type RunCollector struct {
	gatherer prometheus.Gatherer

	RunsTotal   prometheus.Counter
	RunDuration prometheus.Histogram

	FixesTotal   *prometheus.CounterVec
	PairsSkipped prometheus.Counter

	LastSampleCount prometheus.Gauge
	LastSpeedKmPerS prometheus.Gauge
}

// NewRunCollector registers pipeline metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "groundtrack_runs_total",
		Help: "Total number of completed estimation runs.",
	}), "groundtrack_runs_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "groundtrack_run_duration_seconds",
		Help:    "Wall-clock duration of one estimation run in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
	}), "groundtrack_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	fixes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groundtrack_fixes_total",
		Help: "Position fixes consumed per run, labeled by decode outcome.",
	}, []string{"outcome"})
	fixes, err = registerCounterVec(reg, fixes, "groundtrack_fixes_total")
	if err != nil {
		return nil, err
	}

	skipped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "groundtrack_pairs_skipped_total",
		Help: "Fix pairs rejected for degenerate intervals or bad coordinates.",
	}), "groundtrack_pairs_skipped_total")
	if err != nil {
		return nil, err
	}

	sampleCount, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "groundtrack_last_sample_count",
		Help: "Speed samples behind the most recent estimate.",
	}), "groundtrack_last_sample_count")
	if err != nil {
		return nil, err
	}

	lastSpeed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "groundtrack_last_speed_km_per_sec",
		Help: "Most recent corrected average ground-track speed (km/s).",
	}), "groundtrack_last_speed_km_per_sec")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:        gatherer,
		RunsTotal:       runs,
		RunDuration:     duration,
		FixesTotal:      fixes,
		PairsSkipped:    skipped,
		LastSampleCount: sampleCount,
		LastSpeedKmPerS: lastSpeed,
	}, nil
}

// RecordRun satisfies core.RunRecorder so the fix processor can report each
// completed run without knowing about Prometheus.
func (c *RunCollector) RecordRun(stats core.RunStats, estimate model.SpeedEstimate) {
	if c == nil {
		return
	}
	if c.RunsTotal != nil {
		c.RunsTotal.Inc()
	}
	if c.FixesTotal != nil {
		valid := stats.TotalFixes - stats.MissingFixes
		if valid > 0 {
			c.FixesTotal.WithLabelValues("decoded").Add(float64(valid))
		}
		if stats.MissingFixes > 0 {
			c.FixesTotal.WithLabelValues("missing").Add(float64(stats.MissingFixes))
		}
	}
	if c.PairsSkipped != nil && stats.SkippedPairs > 0 {
		c.PairsSkipped.Add(float64(stats.SkippedPairs))
	}
	if c.LastSampleCount != nil {
		c.LastSampleCount.Set(float64(estimate.SampleCount))
	}
	if c.LastSpeedKmPerS != nil {
		c.LastSpeedKmPerS.Set(estimate.AverageSpeedKmPerSec)
	}
}

// ObserveRunDuration records the wall-clock duration of one run.
func (c *RunCollector) ObserveRunDuration(d time.Duration) {
	if c == nil || c.RunDuration == nil {
		return
	}
	c.RunDuration.Observe(d.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
