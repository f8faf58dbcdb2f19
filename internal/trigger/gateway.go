/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package trigger turns remote command messages into round executions.
// One message runs at most one round; rounds never run concurrently
// because the gateway consumes its channel strictly sequentially.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/probelab/stressfleet/internal/identity"
	"github.com/probelab/stressfleet/internal/round"
	"github.com/probelab/stressfleet/internal/telemetry"
)

// StopSentinel terminates the listening loop cleanly.
const StopSentinel = "exit"

// ErrMalformedCommand indicates a trigger message that does not decode to
// round parameters. The gateway loop treats this as fatal rather than
// retrying: a fleet sending garbage triggers needs an operator, not a
// node quietly skipping rounds.
var ErrMalformedCommand = errors.New("malformed trigger command")

// ParseCommand decodes "<numEmitters>-<round>-<maxPower>-<duration>" into a
// round spec.
func ParseCommand(msg string) (round.Spec, error) {
	fields := strings.Split(msg, "-")
	if len(fields) != 4 {
		return round.Spec{}, fmt.Errorf("%w: %q has %d fields, want 4", ErrMalformedCommand, msg, len(fields))
	}

	values := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return round.Spec{}, fmt.Errorf("%w: %q field %d: %v", ErrMalformedCommand, msg, i, err)
		}
		values[i] = n
	}

	return round.Spec{
		EmitterCount:    values[0],
		Round:           values[1],
		MaxPower:        values[2],
		DurationSeconds: values[3],
	}, nil
}

// roundRunner is the slice of the round executor the gateway needs.
type roundRunner interface {
	Run(ctx context.Context, id identity.Identity, spec round.Spec, batchID string) error
}

// Gateway runs one round per accepted trigger message.
type Gateway struct {
	exec    roundRunner
	id      identity.Identity
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

// NewGateway creates a trigger gateway for the resolved identity.
func NewGateway(exec roundRunner, id identity.Identity, metrics *telemetry.Metrics, logger zerolog.Logger) *Gateway {
	return &Gateway{
		exec:    exec,
		id:      id,
		metrics: metrics,
		logger:  logger.With().Str("component", "trigger_gateway").Logger(),
	}
}

// Listen consumes messages until the stop sentinel, a malformed command, a
// round failure, or context cancellation. Returns nil only on the sentinel
// or a closed channel.
func (g *Gateway) Listen(ctx context.Context, msgs <-chan string) error {
	g.logger.Info().Msg("listening for trigger commands")

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("trigger loop cancelled: %w", ctx.Err())
		case msg, ok := <-msgs:
			if !ok {
				g.logger.Info().Msg("trigger channel closed")
				return nil
			}
			if msg == StopSentinel {
				g.logger.Info().Msg("stop sentinel received")
				return nil
			}

			spec, err := ParseCommand(msg)
			if err != nil {
				g.logger.Error().Err(err).Str("message", msg).Msg("rejecting trigger")
				return err
			}

			batchID := uuid.NewString()
			g.metrics.TriggersReceived.Inc()
			g.logger.Info().
				Str("batch_id", batchID).
				Int("emitter_count", spec.EmitterCount).
				Int("round", spec.Round).
				Int("max_power", spec.MaxPower).
				Int("duration_seconds", spec.DurationSeconds).
				Msg("trigger accepted, round starting")

			if err := g.exec.Run(ctx, g.id, spec, batchID); err != nil {
				g.logger.Error().Err(err).Str("batch_id", batchID).Msg("round failed, terminating listener")
				return fmt.Errorf("triggered round: %w", err)
			}

			g.logger.Info().Str("batch_id", batchID).Msg("round finished")
		}
	}
}
