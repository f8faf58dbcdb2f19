/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule computes and executes the self-scheduled timetable:
// every node derives the same absolute round start times from shared CLI
// parameters, keeping independently-running nodes aligned without any
// coordination channel.
package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidPlan indicates schedule parameters that cannot produce a
// timetable.
var ErrInvalidPlan = errors.New("invalid schedule parameters")

// Entry is one planned round: all rounds for an emitter count are
// contiguous, and consecutive entries are spaced by exactly the estimated
// time per round.
type Entry struct {
	EmitterCount int
	Round        int
	StartEpoch   int64 // seconds
}

// Plan generates (endEmitters-startEmitters+1) x numRounds entries in
// row-major order: all rounds of startEmitters first, then startEmitters+1,
// and so on. Pure function; the caller must ensure estTimePerRound exceeds
// the executor's worst-case round duration or rounds will overrun their
// slot and desynchronize from other nodes.
func Plan(startEpoch, estTimePerRound int64, startEmitters, endEmitters, numRounds int) ([]Entry, error) {
	if startEmitters < 1 {
		return nil, fmt.Errorf("%w: start emitters %d", ErrInvalidPlan, startEmitters)
	}
	if endEmitters < startEmitters {
		return nil, fmt.Errorf("%w: end emitters %d < start emitters %d", ErrInvalidPlan, endEmitters, startEmitters)
	}
	if numRounds < 1 {
		return nil, fmt.Errorf("%w: num rounds %d", ErrInvalidPlan, numRounds)
	}
	if estTimePerRound < 1 {
		return nil, fmt.Errorf("%w: est time per round %d", ErrInvalidPlan, estTimePerRound)
	}

	entries := make([]Entry, 0, (endEmitters-startEmitters+1)*numRounds)
	start := startEpoch
	for emitters := startEmitters; emitters <= endEmitters; emitters++ {
		for rd := 1; rd <= numRounds; rd++ {
			entries = append(entries, Entry{
				EmitterCount: emitters,
				Round:        rd,
				StartEpoch:   start,
			})
			start += estTimePerRound
		}
	}
	return entries, nil
}
