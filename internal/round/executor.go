/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package round runs one stress-test round: a sequential sweep across power
// levels, each driving the emission tool for a bounded sampling window and
// recording how many packets it actually sent.
package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/probelab/stressfleet/internal/emitter"
	"github.com/probelab/stressfleet/internal/identity"
	"github.com/probelab/stressfleet/internal/models"
	"github.com/probelab/stressfleet/internal/sink"
	"github.com/probelab/stressfleet/internal/telemetry"
)

// ErrInvalidSpec indicates a round spec that cannot be executed.
var ErrInvalidSpec = errors.New("invalid round spec")

// Spec describes one round. MaxPower bounds the geometric rate sweep:
// intervals are 1, 1/2, 1/4, ..., 1/2^(MaxPower-1) seconds.
type Spec struct {
	EmitterCount    int
	Round           int
	MaxPower        int
	DurationSeconds int
}

// Validate rejects specs the executor cannot run.
func (s Spec) Validate() error {
	if s.MaxPower < 1 {
		return fmt.Errorf("%w: max power %d", ErrInvalidSpec, s.MaxPower)
	}
	if s.DurationSeconds < 1 {
		return fmt.Errorf("%w: duration %d", ErrInvalidSpec, s.DurationSeconds)
	}
	return nil
}

// EstimatedDuration is the worst-case wall clock for one round: every sweep
// step costs the sampling window plus two flush waits and teardown.
func (s Spec) EstimatedDuration() time.Duration {
	return time.Duration(s.MaxPower*(s.DurationSeconds+3)) * time.Second
}

// Executor runs rounds. The sweep is strictly sequential; no two emission
// runs ever overlap on a node because the tool binds exclusively to one
// session and interface. Cancellation is cooperative and checked once per
// power level; an in-flight sampling window is not interruptible.
type Executor struct {
	counter   emitter.Counter
	results   sink.Sink
	iface     string
	burstSize int
	metrics   *telemetry.Metrics
	logger    zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewExecutor creates a round executor emitting on iface with the fixed
// per-attempt packet count burstSize.
func NewExecutor(counter emitter.Counter, results sink.Sink, iface string, burstSize int, metrics *telemetry.Metrics, logger zerolog.Logger) *Executor {
	return &Executor{
		counter:   counter,
		results:   results,
		iface:     iface,
		burstSize: burstSize,
		metrics:   metrics,
		logger:    logger.With().Str("component", "round_executor").Logger(),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Run executes one round for the resolved identity, appending one result
// row per completed interval in increasing power order. A launch failure
// aborts the remaining sweep; a capture failure records the sentinel count
// and continues with the next power level.
func (e *Executor) Run(ctx context.Context, id identity.Identity, spec Spec, batchID string) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	logger := e.logger.With().
		Str("batch_id", batchID).
		Int("emitter_count", spec.EmitterCount).
		Int("round", spec.Round).
		Logger()

	tracer := otel.Tracer("stressfleet/round")
	ctx, span := tracer.Start(ctx, "round")
	span.SetAttributes(
		attribute.Int("emitter_count", spec.EmitterCount),
		attribute.Int("round", spec.Round),
		attribute.Int("max_power", spec.MaxPower),
		attribute.String("emitter_code", id.ShortCode),
	)
	defer span.End()

	e.metrics.RoundsStarted.Inc()
	roundStart := e.now()

	logger.Info().
		Int("max_power", spec.MaxPower).
		Int("duration_seconds", spec.DurationSeconds).
		Str("emitter_code", id.ShortCode).
		Msg("round started")

	for power := 0; power < spec.MaxPower; power++ {
		// Cancellation is only observed here, never mid-window.
		if err := ctx.Err(); err != nil {
			e.metrics.RoundsFailed.Inc()
			return fmt.Errorf("round cancelled before power %d: %w", power, err)
		}

		interval := 1.0 / float64(uint64(1)<<uint(power))
		params := emitter.Params{
			Interface: e.iface,
			Count:     e.burstSize,
			Interval:  interval,
			Tag:       emitter.FormatTag(spec.EmitterCount, spec.Round, id.ShortCode, power),
		}

		if err := e.counter.Launch(ctx, params); err != nil {
			e.metrics.RoundsFailed.Inc()
			logger.Error().Err(err).Int("power", power).Msg("launch failed, aborting sweep")
			return fmt.Errorf("power %d: %w", power, err)
		}

		startMs := e.now().UnixMilli()
		e.sleep(time.Duration(spec.DurationSeconds+1) * time.Second)

		packets, err := e.counter.Halt(ctx)
		if err != nil {
			packets = models.PacketsUnknown
			e.metrics.CaptureFailures.Inc()
			logger.Warn().Err(err).Int("power", power).Msg("capture failed, recording sentinel")
		} else {
			e.metrics.PacketsSent.Add(float64(packets))
		}
		endMs := e.now().UnixMilli()

		result := models.IntervalResult{
			BatchID:         batchID,
			EmitterCount:    spec.EmitterCount,
			Round:           spec.Round,
			IntervalSeconds: interval,
			EmitterCode:     id.ShortCode,
			PacketsSent:     packets,
			StartEpochMs:    startMs,
			EndEpochMs:      endMs,
		}
		if err := e.results.Append(result); err != nil {
			e.metrics.RoundsFailed.Inc()
			return fmt.Errorf("append result at power %d: %w", power, err)
		}
		e.metrics.IntervalsCompleted.Inc()

		logger.Info().
			Float64("interval", interval).
			Int("packets_sent", packets).
			Msg("interval complete")
	}

	e.metrics.RoundDuration.Observe(e.now().Sub(roundStart).Seconds())
	logger.Info().Msg("round complete")
	return nil
}
