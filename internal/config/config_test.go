package config

import "testing"

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("STRESSFLEET_EMIT_TOOL", "/opt/emit/emit.sh")
	t.Setenv("STRESSFLEET_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.EmitToolPath != "/opt/emit/emit.sh" {
		t.Fatalf("unexpected emit tool path: %q", cfg.EmitToolPath)
	}
	if cfg.EmitInterface != "wlan1" {
		t.Fatalf("unexpected default emit interface: %q", cfg.EmitInterface)
	}
	if cfg.PacketsPerBurst != 10 {
		t.Fatalf("unexpected default packets per burst: %d", cfg.PacketsPerBurst)
	}
}

func TestLoadRequiresEmitTool(t *testing.T) {
	t.Setenv("STRESSFLEET_EMIT_TOOL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail without emit tool path")
	}
}

func TestLoadRejectsNonPositiveBurst(t *testing.T) {
	t.Setenv("STRESSFLEET_EMIT_TOOL", "/opt/emit/emit.sh")
	t.Setenv("STRESSFLEET_PACKETS_PER_BURST", "-3")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail with negative burst size")
	}
}

func TestLoadParsesTracingSettings(t *testing.T) {
	t.Setenv("STRESSFLEET_EMIT_TOOL", "/opt/emit/emit.sh")
	t.Setenv("STRESSFLEET_TRACING_ENABLED", "true")
	t.Setenv("STRESSFLEET_TRACING_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.TracingEnabled {
		t.Fatal("expected tracing to be enabled")
	}
	if cfg.TracingSampleRate != 0.25 {
		t.Fatalf("unexpected sample rate: %v", cfg.TracingSampleRate)
	}
}
