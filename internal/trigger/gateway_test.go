package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/probelab/stressfleet/internal/identity"
	"github.com/probelab/stressfleet/internal/round"
	"github.com/probelab/stressfleet/internal/telemetry"
)

func TestParseCommand(t *testing.T) {
	spec, err := ParseCommand("3-2-4-10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := round.Spec{EmitterCount: 3, Round: 2, MaxPower: 4, DurationSeconds: 10}
	if spec != want {
		t.Fatalf("expected %+v, got %+v", want, spec)
	}
}

func TestParseCommandMalformed(t *testing.T) {
	cases := []string{
		"2-1-abc",     // three fields
		"2-1-abc-5",   // non-numeric field
		"",            // empty
		"2-1-3-5-9",   // too many fields
		"exit-1-2-3x", // trailing garbage
	}
	for _, msg := range cases {
		if _, err := ParseCommand(msg); !errors.Is(err, ErrMalformedCommand) {
			t.Errorf("%q: expected ErrMalformedCommand, got %v", msg, err)
		}
	}
}

// fakeRound counts executions.
type fakeRound struct {
	specs []round.Spec
	err   error
}

func (f *fakeRound) Run(_ context.Context, _ identity.Identity, spec round.Spec, batchID string) error {
	if batchID == "" {
		return errors.New("missing batch id")
	}
	if f.err != nil {
		return f.err
	}
	f.specs = append(f.specs, spec)
	return nil
}

func newTestGateway(exec roundRunner) *Gateway {
	return NewGateway(exec, identity.Identity{ShortCode: "06"}, telemetry.NewMetrics(), zerolog.Nop())
}

func feed(msgs ...string) <-chan string {
	ch := make(chan string, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	return ch
}

func TestListenRunsOneRoundPerMessage(t *testing.T) {
	exec := &fakeRound{}
	g := newTestGateway(exec)

	err := g.Listen(context.Background(), feed("2-1-3-5", "2-2-3-5", StopSentinel))
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if len(exec.specs) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(exec.specs))
	}
	if exec.specs[1].Round != 2 {
		t.Fatalf("unexpected second spec: %+v", exec.specs[1])
	}
}

func TestListenStopsOnSentinelBeforeLaterMessages(t *testing.T) {
	exec := &fakeRound{}
	g := newTestGateway(exec)

	if err := g.Listen(context.Background(), feed(StopSentinel, "2-1-3-5")); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if len(exec.specs) != 0 {
		t.Fatalf("expected no rounds after sentinel, got %d", len(exec.specs))
	}
}

func TestListenMalformedMessageIsFatalAndRunsNothing(t *testing.T) {
	exec := &fakeRound{}
	g := newTestGateway(exec)

	err := g.Listen(context.Background(), feed("2-1-abc"))
	if !errors.Is(err, ErrMalformedCommand) {
		t.Fatalf("expected ErrMalformedCommand, got %v", err)
	}
	if len(exec.specs) != 0 {
		t.Fatalf("malformed trigger must not execute a round, got %d", len(exec.specs))
	}
}

func TestListenRoundFailureTerminatesListener(t *testing.T) {
	exec := &fakeRound{err: errors.New("sweep aborted")}
	g := newTestGateway(exec)

	if err := g.Listen(context.Background(), feed("2-1-3-5", "2-2-3-5")); err == nil {
		t.Fatal("expected listener to terminate on round failure")
	}
}

func TestListenHonorsCancellation(t *testing.T) {
	g := newTestGateway(&fakeRound{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msgs := make(chan string)
	if err := g.Listen(ctx, msgs); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
