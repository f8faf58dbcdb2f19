/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package emitter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// commandRunner executes a command and returns its combined output.
// Injectable so tests can fake the tmux binary.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

// TmuxCounter hosts the emission tool in a named detached tmux session so
// its rendered output can be captured after an interrupt.
type TmuxCounter struct {
	toolPath        string
	session         string
	teardownTimeout time.Duration
	logger          zerolog.Logger

	run   commandRunner
	sleep func(time.Duration)
}

// NewTmuxCounter creates a tmux-backed counter. teardownTimeout bounds each
// teardown command so a hung tool cannot stall the schedule.
func NewTmuxCounter(toolPath, session string, teardownTimeout time.Duration, logger zerolog.Logger) *TmuxCounter {
	return &TmuxCounter{
		toolPath:        toolPath,
		session:         session,
		teardownTimeout: teardownTimeout,
		logger:          logger.With().Str("component", "emitter").Str("session", session).Logger(),
		run:             runCommand,
		sleep:           time.Sleep,
	}
}

// Launch starts the emission tool detached in the named session. The tool
// emits continuously at p.Interval until halted.
func (t *TmuxCounter) Launch(ctx context.Context, p Params) error {
	invocation := fmt.Sprintf("%s -i %s -c %d --interval %s --mac %s",
		t.toolPath, p.Interface, p.Count, strconv.FormatFloat(p.Interval, 'g', -1, 64), p.Tag)

	if out, err := t.run(ctx, "tmux", "new-session", "-d", "-s", t.session, invocation); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrLaunch, err, out)
	}

	t.logger.Debug().
		Float64("interval", p.Interval).
		Str("tag", p.Tag).
		Msg("emission tool launched")
	return nil
}

// Halt interrupts the tool, captures its pane text, tears the session down
// unconditionally, and parses the sent-packet count. The two 1-second
// waits give the tool time to flush its summary before capture and before
// teardown.
func (t *TmuxCounter) Halt(ctx context.Context) (int, error) {
	if _, err := t.run(ctx, "tmux", "send-keys", "-t", t.session, "C-c", "Enter"); err != nil {
		t.logger.Warn().Err(err).Msg("interrupt failed")
	}
	t.sleep(time.Second)

	captured, captureErr := t.run(ctx, "tmux", "capture-pane", "-p", "-t", t.session)
	t.sleep(time.Second)

	t.teardown()

	if captureErr != nil {
		return 0, fmt.Errorf("%w: capture failed: %v", ErrCaptureParse, captureErr)
	}
	return ParseSentCount(captured)
}

// teardown destroys the session under a hard timeout, escalating to a
// server kill when the session refuses to die.
func (t *TmuxCounter) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), t.teardownTimeout)
	defer cancel()

	if _, err := t.run(ctx, "tmux", "kill-session", "-t", t.session); err != nil {
		t.logger.Warn().Err(err).Msg("kill-session failed, escalating to kill-server")
		if _, err := t.run(ctx, "tmux", "kill-server"); err != nil {
			t.logger.Error().Err(err).Msg("kill-server failed")
		}
	}
}
