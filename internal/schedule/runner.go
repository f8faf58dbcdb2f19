/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/probelab/stressfleet/internal/identity"
	"github.com/probelab/stressfleet/internal/round"
	"github.com/probelab/stressfleet/internal/telemetry"
)

// roundRunner is the slice of the round executor the runner needs.
type roundRunner interface {
	Run(ctx context.Context, id identity.Identity, spec round.Spec, batchID string) error
}

// Runner executes a planned timetable. The first round failure aborts the
// entire remaining schedule: a desynchronized node produces records that
// cannot be aligned with the rest of the fleet, so continuing is worthless.
type Runner struct {
	exec    roundRunner
	id      identity.Identity
	metrics *telemetry.Metrics
	logger  zerolog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRunner creates a schedule runner for the resolved identity.
func NewRunner(exec roundRunner, id identity.Identity, metrics *telemetry.Metrics, logger zerolog.Logger) *Runner {
	return &Runner{
		exec:    exec,
		id:      id,
		metrics: metrics,
		logger:  logger.With().Str("component", "schedule_runner").Logger(),
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Execute waits for each entry's start time and runs its round. A round
// that finishes after its successor's start time is logged as an overrun
// and counted, but never skipped or re-planned: the node stays on the
// shared timetable as closely as it can.
func (r *Runner) Execute(ctx context.Context, entries []Entry, maxPower, durationSeconds int) error {
	batchID := uuid.NewString()
	logger := r.logger.With().Str("batch_id", batchID).Logger()

	logger.Info().
		Int("entries", len(entries)).
		Int("max_power", maxPower).
		Int("duration_seconds", durationSeconds).
		Msg("schedule starting")

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("schedule cancelled before entry %d: %w", i, err)
		}

		startAt := time.Unix(entry.StartEpoch, 0)
		if delay := startAt.Sub(r.now()); delay > 0 {
			logger.Info().
				Int("emitter_count", entry.EmitterCount).
				Int("round", entry.Round).
				Dur("delay", delay).
				Msg("waiting for round slot")
			r.sleep(delay)
		} else if delay < 0 {
			logger.Warn().
				Int("emitter_count", entry.EmitterCount).
				Int("round", entry.Round).
				Dur("late_by", -delay).
				Msg("round slot already passed, starting immediately")
		}

		spec := round.Spec{
			EmitterCount:    entry.EmitterCount,
			Round:           entry.Round,
			MaxPower:        maxPower,
			DurationSeconds: durationSeconds,
		}
		if err := r.exec.Run(ctx, r.id, spec, batchID); err != nil {
			return fmt.Errorf("emitter count %d round %d: %w", entry.EmitterCount, entry.Round, err)
		}

		if i+1 < len(entries) {
			next := time.Unix(entries[i+1].StartEpoch, 0)
			if overrun := r.now().Sub(next); overrun > 0 {
				r.metrics.ScheduleOverruns.Inc()
				logger.Error().
					Int("emitter_count", entry.EmitterCount).
					Int("round", entry.Round).
					Dur("overrun", overrun).
					Msg("round overran its slot")
			}
		}
	}

	logger.Info().Msg("schedule complete")
	return nil
}
