/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package emitter drives the external probe-request emission tool and
// reports how many packets it actually sent. The round executor only sees
// the Counter capability; the tmux scraping mechanics stay behind it.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrLaunch indicates the emission tool could not be started. Launch
	// failures abort the remaining sweep for the round.
	ErrLaunch = errors.New("emission tool launch failed")

	// ErrCaptureParse indicates the tool's output was captured but carried
	// no recognizable sent-packet count. Recoverable per interval.
	ErrCaptureParse = errors.New("sent-packet count not found in captured output")
)

// Params describes one emission run.
type Params struct {
	Interface string  // wireless interface the tool binds to
	Count     int     // packets per send attempt
	Interval  float64 // seconds between send attempts, 1/2^power
	Tag       string  // per-packet identity tag
}

// Counter launches the emission tool and later halts it, returning the
// number of packets the tool reports having sent. Implementations must
// tear their execution context down unconditionally in Halt, even when
// output capture fails, so no session leaks across interval steps.
type Counter interface {
	Launch(ctx context.Context, p Params) error
	Halt(ctx context.Context) (int, error)
}

// FormatTag builds the colon-delimited identity tag carried by every
// crafted packet: <emitterCount><round>:<emitterCode>:<power two-digit>.
func FormatTag(emitterCount, round int, emitterCode string, power int) string {
	return fmt.Sprintf("%d%d:%s:%02d", emitterCount, round, emitterCode, power)
}

var sentPacketsRe = regexp.MustCompile(`Sent\s(\d+)\spackets`)

// ParseSentCount extracts the sent-packet count from the tool's output.
func ParseSentCount(output string) (int, error) {
	m := sentPacketsRe.FindStringSubmatch(output)
	if m == nil {
		return 0, ErrCaptureParse
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCaptureParse, err)
	}
	return n, nil
}
