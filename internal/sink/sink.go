/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package sink persists interval results. Sinks are append-only: a row is
// written and flushed before the sweep moves on, and is never updated.
package sink

import "github.com/probelab/stressfleet/internal/models"

// Sink receives one row per completed interval, in sweep order.
type Sink interface {
	Append(models.IntervalResult) error
	Close() error
}

// MultiSink fans every row out to all targets; the first error wins.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Append(r models.IntervalResult) error {
	for _, s := range m.sinks {
		if err := s.Append(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
