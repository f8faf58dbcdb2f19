package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/probelab/stressfleet/internal/models"
)

func TestCSVSinkWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")

	s, err := OpenCSV(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Append(models.IntervalResult{
		EmitterCount: 2, Round: 1, IntervalSeconds: 1,
		EmitterCode: "06", PacketsSent: 120,
		StartEpochMs: 1000, EndEpochMs: 7000,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen: the existing header must not be repeated.
	s, err = OpenCSV(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := s.Append(models.IntervalResult{
		EmitterCount: 2, Round: 1, IntervalSeconds: 0.5,
		EmitterCode: "06", PacketsSent: 260,
		StartEpochMs: 8000, EndEpochMs: 14000,
	}); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	s.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), data)
	}
	if lines[0] != "num_sensors,round,interval,emitter_id,emit_count,start,end" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2,1,1,06,120,1000,7000" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if lines[2] != "2,1,0.5,06,260,8000,14000" {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
}

func TestCSVSinkRendersUnknownCountEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")

	s, err := OpenCSV(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Append(models.IntervalResult{
		EmitterCount: 3, Round: 2, IntervalSeconds: 0.25,
		EmitterCode: "29", PacketsSent: models.PacketsUnknown,
		StartEpochMs: 1, EndEpochMs: 2,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[1] != "3,2,0.25,29,,1,2" {
		t.Fatalf("expected empty emit_count field, got %q", lines[1])
	}
}

func TestMultiSinkStopsOnFirstError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	csvSink, err := OpenCSV(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	failing := &failingSink{}
	m := NewMultiSink(failing, csvSink)

	if err := m.Append(models.IntervalResult{}); err == nil {
		t.Fatal("expected multi sink append to fail")
	}
	m.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the header after failed fan-out, got %q", data)
	}
}

type failingSink struct{}

func (f *failingSink) Append(models.IntervalResult) error { return os.ErrPermission }
func (f *failingSink) Close() error                       { return nil }
