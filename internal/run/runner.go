// Package run orchestrates one estimation run end to end: obtain a fix
// sequence, process it, and hand the estimate to the configured sinks. The
// core stays pure; all I/O lives here or further out.
package run

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/groundtrack-estimator/core"
	"github.com/signalsfoundry/groundtrack-estimator/internal/config"
	"github.com/signalsfoundry/groundtrack-estimator/internal/logging"
	"github.com/signalsfoundry/groundtrack-estimator/internal/observability"
	"github.com/signalsfoundry/groundtrack-estimator/internal/store"
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// FixSource supplies the ordered fix sequence for one run. The EXIF decoder
// and the NMEA log reader both satisfy it through small adapters in the
// binaries.
type FixSource interface {
	Fixes(ctx context.Context) ([]*model.PositionFix, error)
	// Name labels the source in logs, history rows, and published messages.
	Name() string
}

// EstimatePublisher pushes a finished estimate to an external consumer.
type EstimatePublisher interface {
	Publish(ctx context.Context, runID, source string, estimate model.SpeedEstimate) error
}

// Runner wires the pipeline for repeated runs. All fields are set at
// construction; Runner itself holds no per-run state.
type Runner struct {
	cfg       config.Config
	processor *core.FixSequenceProcessor
	log       logging.Logger
	tracer    trace.Tracer

	collector *observability.RunCollector
	history   *store.History
	publisher EstimatePublisher
}

// Option customises a Runner.
type Option func(*Runner)

// WithHistory records every run in the given history store.
func WithHistory(h *store.History) Option {
	return func(r *Runner) { r.history = h }
}

// WithPublisher publishes every meaningful estimate.
func WithPublisher(p EstimatePublisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// NewRunner assembles the pipeline from configuration. The collector may be
// nil when metrics are not wanted.
func NewRunner(cfg config.Config, collector *observability.RunCollector, log logging.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logging.Noop()
	}

	estimator := core.NewSpeedEstimator(core.NewGeodesic(cfg.GeodesicRadiusKm()), cfg.CorrectionFactor)

	var procOpts []core.ProcessorOption
	if collector != nil {
		procOpts = append(procOpts, core.WithRunRecorder(collector))
	}

	r := &Runner{
		cfg:       cfg,
		processor: core.NewFixSequenceProcessor(estimator, procOpts...),
		log:       log,
		tracer:    observability.Tracer("groundtrack/run"),
		collector: collector,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute performs one run from the given source and returns the estimate.
// A run that yields no samples is not an error; the zero estimate is
// returned, logged, and skipped by the persistence sinks.
func (r *Runner) Execute(ctx context.Context, source FixSource) (model.SpeedEstimate, error) {
	ctx, log := logging.WithRunLogger(ctx, r.log)
	runID := logging.RunIDFromContext(ctx)

	ctx, span := r.tracer.Start(ctx, "estimation_run",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("source", source.Name()),
		),
	)
	defer span.End()

	started := time.Now()

	fixes, err := source.Fixes(ctx)
	if err != nil {
		return model.SpeedEstimate{}, fmt.Errorf("fix source %s: %w", source.Name(), err)
	}
	log.Info(ctx, "fix sequence loaded",
		logging.String("source", source.Name()),
		logging.Int("fixes", len(fixes)),
	)

	estimate := r.processor.Process(fixes)
	if r.collector != nil {
		r.collector.ObserveRunDuration(time.Since(started))
	}
	span.SetAttributes(
		attribute.Int("sample_count", estimate.SampleCount),
		attribute.Float64("average_speed_km_per_sec", estimate.AverageSpeedKmPerSec),
	)

	if !estimate.Meaningful(r.cfg.MinSampleCount) {
		log.Warn(ctx, "estimate below minimum sample count; not persisting",
			logging.Int("sample_count", estimate.SampleCount),
			logging.Int("min_sample_count", r.cfg.MinSampleCount),
		)
		return estimate, nil
	}

	log.Info(ctx, "estimate computed",
		logging.Float64("average_speed_km_per_sec", estimate.AverageSpeedKmPerSec),
		logging.Int("sample_count", estimate.SampleCount),
	)

	if err := store.WriteResult(r.cfg.ResultPath, estimate); err != nil {
		return estimate, err
	}

	if r.history != nil {
		if err := r.history.Record(ctx, runID, estimate, r.cfg.CorrectionFactor, source.Name()); err != nil {
			// History is best effort; the artifact already exists.
			log.Warn(ctx, "failed to record run history", logging.String("error", err.Error()))
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, runID, source.Name(), estimate); err != nil {
			log.Warn(ctx, "failed to publish estimate", logging.String("error", err.Error()))
		}
	}

	return estimate, nil
}
