package emitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestFormatTag(t *testing.T) {
	got := FormatTag(3, 2, "06", 4)
	if got != "32:06:04" {
		t.Fatalf("unexpected tag: %q", got)
	}
}

func TestParseSentCount(t *testing.T) {
	out := "emit.sh starting on wlan1\n...\nSent 1274 packets\n$"
	n, err := ParseSentCount(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n != 1274 {
		t.Fatalf("expected 1274, got %d", n)
	}
}

func TestParseSentCountMiss(t *testing.T) {
	_, err := ParseSentCount("tool crashed before summary")
	if !errors.Is(err, ErrCaptureParse) {
		t.Fatalf("expected ErrCaptureParse, got %v", err)
	}
}

// fakeTmux records tmux invocations and scripts their results.
type fakeTmux struct {
	calls    []string
	captured string
	fail     map[string]error // keyed by subcommand, e.g. "new-session"
}

func (f *fakeTmux) run(_ context.Context, name string, args ...string) (string, error) {
	if name != "tmux" {
		return "", fmt.Errorf("unexpected binary %s", name)
	}
	sub := args[0]
	f.calls = append(f.calls, sub)
	if err := f.fail[sub]; err != nil {
		return "", err
	}
	if sub == "capture-pane" {
		return f.captured, nil
	}
	return "", nil
}

func newTestCounter(f *fakeTmux) *TmuxCounter {
	c := NewTmuxCounter("/opt/emit/emit.sh", "emit", 5*time.Second, zerolog.Nop())
	c.run = f.run
	c.sleep = func(time.Duration) {}
	return c
}

func TestTmuxCounterLaunchFailure(t *testing.T) {
	f := &fakeTmux{fail: map[string]error{"new-session": errors.New("no server")}}
	c := newTestCounter(f)

	err := c.Launch(context.Background(), Params{Interface: "wlan1", Count: 10, Interval: 0.5, Tag: "21:06:01"})
	if !errors.Is(err, ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", err)
	}
}

func TestTmuxCounterHaltParsesCount(t *testing.T) {
	f := &fakeTmux{captured: "emitting...\nSent 512 packets\n"}
	c := newTestCounter(f)

	if err := c.Launch(context.Background(), Params{Interface: "wlan1", Count: 10, Interval: 1, Tag: "21:06:00"}); err != nil {
		t.Fatalf("launch: %v", err)
	}
	n, err := c.Halt(context.Background())
	if err != nil {
		t.Fatalf("halt: %v", err)
	}
	if n != 512 {
		t.Fatalf("expected 512, got %d", n)
	}

	want := []string{"new-session", "send-keys", "capture-pane", "kill-session"}
	if strings.Join(f.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected tmux call sequence: %v", f.calls)
	}
}

func TestTmuxCounterHaltTearsDownOnCaptureFailure(t *testing.T) {
	f := &fakeTmux{fail: map[string]error{"capture-pane": errors.New("pane gone")}}
	c := newTestCounter(f)

	_, err := c.Halt(context.Background())
	if !errors.Is(err, ErrCaptureParse) {
		t.Fatalf("expected ErrCaptureParse, got %v", err)
	}

	// Session must be destroyed even though capture failed.
	found := false
	for _, call := range f.calls {
		if call == "kill-session" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected kill-session in %v", f.calls)
	}
}

func TestTmuxCounterTeardownEscalates(t *testing.T) {
	f := &fakeTmux{
		captured: "Sent 1 packets",
		fail:     map[string]error{"kill-session": errors.New("session stuck")},
	}
	c := newTestCounter(f)

	if _, err := c.Halt(context.Background()); err != nil {
		t.Fatalf("halt: %v", err)
	}

	last := f.calls[len(f.calls)-1]
	if last != "kill-server" {
		t.Fatalf("expected kill-server escalation, got %v", f.calls)
	}
}
