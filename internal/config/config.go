/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string

	// Trigger channel (remote-triggered mode)
	NATSURL     string
	NATSSubject string

	// Emission tool invocation
	EmitToolPath    string // path to the emit tool (black box, invoked via CLI)
	EmitInterface   string // wireless interface the tool binds to
	PacketsPerBurst int    // fixed send count per attempt
	SessionName     string // tmux session hosting the tool
	TeardownTimeout int    // hard bound on session teardown, seconds

	// Identity resolution
	IdentityInterface string // interface whose MAC selects the emitter code
	EmitterMapPath    string // optional YAML override of the built-in emitter map
	SysfsRoot         string // override for tests; default /sys/class/net

	// Result sinks
	CSVPath    string
	ResultsDSN string // sqlite DSN for the results mirror; empty disables it

	// Status server
	StatusBind string // empty disables the status/metrics HTTP server

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("STRESSFLEET_ENV", "development"),

		NATSURL:     getEnv("STRESSFLEET_NATS_URL", "nats://localhost:4222"),
		NATSSubject: getEnv("STRESSFLEET_NATS_SUBJECT", "stressfleet.experiment"),

		EmitToolPath:    getEnv("STRESSFLEET_EMIT_TOOL", ""),
		EmitInterface:   getEnv("STRESSFLEET_EMIT_INTERFACE", "wlan1"),
		PacketsPerBurst: getEnvInt("STRESSFLEET_PACKETS_PER_BURST", 10),
		SessionName:     getEnv("STRESSFLEET_SESSION_NAME", "emit"),
		TeardownTimeout: getEnvInt("STRESSFLEET_TEARDOWN_TIMEOUT_SECONDS", 5),

		IdentityInterface: getEnv("STRESSFLEET_IDENTITY_INTERFACE", "eth0"),
		EmitterMapPath:    getEnv("STRESSFLEET_EMITTER_MAP", ""),
		SysfsRoot:         getEnv("STRESSFLEET_SYSFS_ROOT", "/sys/class/net"),

		CSVPath:    getEnv("STRESSFLEET_CSV_PATH", "stress_test_summary.csv"),
		ResultsDSN: getEnv("STRESSFLEET_RESULTS_DSN", ""),

		StatusBind: getEnv("STRESSFLEET_STATUS_BIND", "127.0.0.1:9100"),

		TracingEnabled:    getEnvBool("STRESSFLEET_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("STRESSFLEET_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("STRESSFLEET_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.EmitToolPath == "" {
		return nil, fmt.Errorf("STRESSFLEET_EMIT_TOOL must be provided")
	}

	if cfg.PacketsPerBurst <= 0 {
		return nil, fmt.Errorf("STRESSFLEET_PACKETS_PER_BURST must be positive, got %d", cfg.PacketsPerBurst)
	}

	if cfg.TeardownTimeout <= 0 {
		return nil, fmt.Errorf("STRESSFLEET_TEARDOWN_TIMEOUT_SECONDS must be positive, got %d", cfg.TeardownTimeout)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
