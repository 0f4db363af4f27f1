package core

import (
	"github.com/signalsfoundry/groundtrack-estimator/model"
)

// RunStats summarises one Process call for observability sinks.
type RunStats struct {
	// TotalFixes is the length of the input sequence, missing entries
	// included.
	TotalFixes int
	// MissingFixes counts nil entries (images whose metadata could not
	// be decoded).
	MissingFixes int
	// SkippedPairs counts pairs rejected for a degenerate or invalid
	// interval rather than sampled.
	SkippedPairs int
	// Samples counts the speed samples that made it into the aggregate.
	Samples int
}

// RunRecorder receives the stats of a completed run. The observability
// collector implements it; a nil recorder is allowed and ignored.
type RunRecorder interface {
	RecordRun(stats RunStats, estimate model.SpeedEstimate)
}

// ProcessorOption customises a FixSequenceProcessor.
type ProcessorOption func(*FixSequenceProcessor)

// WithRunRecorder wires a recorder that is invoked once per Process call.
func WithRunRecorder(r RunRecorder) ProcessorOption {
	return func(p *FixSequenceProcessor) { p.recorder = r }
}

// FixSequenceProcessor walks an ordered fix sequence, pairs consecutive
// valid fixes, and aggregates per-pair speeds into one estimate. It holds
// no state between Process calls, so one processor can serve any number of
// runs, concurrently if the sequences are disjoint.
type FixSequenceProcessor struct {
	estimator *SpeedEstimator
	recorder  RunRecorder
}

// NewFixSequenceProcessor builds a processor around the given estimator.
func NewFixSequenceProcessor(estimator *SpeedEstimator, opts ...ProcessorOption) *FixSequenceProcessor {
	p := &FixSequenceProcessor{estimator: estimator}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process consumes the fixes in the given order and returns the aggregated
// estimate. Missing (nil) fixes are skipped entirely: pairing resumes from
// the last valid fix across any gap, so one undecodable image in the middle
// of a run costs no pair. A pair whose interval is degenerate (out-of-order
// or duplicate timestamps) is skipped and the run continues; only the
// offending pair is lost.
//
// The input is taken to be in capture order. Process never re-sorts by
// timestamp; supplying a chronological sequence is the caller's contract.
func (p *FixSequenceProcessor) Process(fixes []*model.PositionFix) model.SpeedEstimate {
	stats := RunStats{TotalFixes: len(fixes)}

	// The only state the walk carries is whether a previous valid fix
	// has been seen yet.
	var prev *model.PositionFix
	var samples []model.SpeedSample

	for _, fix := range fixes {
		if fix == nil {
			stats.MissingFixes++
			continue
		}

		if prev != nil {
			sample, err := p.estimator.SampleSpeed(model.FixPair{Earlier: *prev, Later: *fix})
			if err != nil {
				// Degenerate intervals and bad coordinates cost only
				// the offending pair, never the run.
				stats.SkippedPairs++
			} else {
				samples = append(samples, sample)
			}
		}
		prev = fix
	}

	stats.Samples = len(samples)
	estimate := p.estimator.Aggregate(samples)

	if p.recorder != nil {
		p.recorder.RecordRun(stats, estimate)
	}
	return estimate
}
