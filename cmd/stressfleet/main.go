/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/probelab/stressfleet/internal/config"
	"github.com/probelab/stressfleet/internal/emitter"
	"github.com/probelab/stressfleet/internal/identity"
	"github.com/probelab/stressfleet/internal/logbuffer"
	"github.com/probelab/stressfleet/internal/logging"
	"github.com/probelab/stressfleet/internal/round"
	"github.com/probelab/stressfleet/internal/server"
	"github.com/probelab/stressfleet/internal/sink"
	"github.com/probelab/stressfleet/internal/telemetry"
)

const version = "0.2.0"

var (
	logger    zerolog.Logger
	cfg       *config.Config
	logBuffer *logbuffer.Buffer
)

var rootCmd = &cobra.Command{
	Use:   "stressfleet",
	Short: "StressFleet - distributed probe-request emitter stress testing",
	Long:  "StressFleet coordinates a fleet of wireless probe-request emitters through synchronized stress-test rounds, recording per-interval emission counts.",
}

func init() {
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it).
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logBuffer = logbuffer.New(5000)
	logger = logging.SetupWithWriter(cfg.Environment, logBuffer)
	return nil
}

// node bundles everything both run modes share: resolved identity, result
// sinks, the round executor, and the optional status server.
type node struct {
	identity identity.Identity
	executor *round.Executor
	metrics  *telemetry.Metrics
	store    *sink.StoreSink
	results  sink.Sink
	tracer   *telemetry.TracerProvider
	status   *server.Server
}

func buildNode(ctx context.Context, mode string) (*node, error) {
	var table map[string]string
	if cfg.EmitterMapPath != "" {
		var err error
		table, err = identity.LoadMap(cfg.EmitterMapPath)
		if err != nil {
			return nil, err
		}
	}

	resolver := identity.NewResolver(cfg.SysfsRoot, table, logger)
	id, err := resolver.Resolve(cfg.IdentityInterface)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("mac", id.HardwareMAC).
		Str("emitter_code", id.ShortCode).
		Msg("emitter identity resolved")

	metrics := telemetry.NewMetrics()

	tracer, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "stressfleet",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize tracer: %w", err)
	}

	csvSink, err := sink.OpenCSV(cfg.CSVPath, logger)
	if err != nil {
		return nil, err
	}

	sinks := []sink.Sink{csvSink}
	var store *sink.StoreSink
	if cfg.ResultsDSN != "" {
		store, err = sink.OpenStore(cfg.ResultsDSN, logger)
		if err != nil {
			csvSink.Close()
			return nil, err
		}
		sinks = append(sinks, store)
	}
	results := sink.NewMultiSink(sinks...)

	counter := emitter.NewTmuxCounter(
		cfg.EmitToolPath,
		cfg.SessionName,
		time.Duration(cfg.TeardownTimeout)*time.Second,
		logger,
	)
	executor := round.NewExecutor(counter, results, cfg.EmitInterface, cfg.PacketsPerBurst, metrics, logger)

	n := &node{
		identity: id,
		executor: executor,
		metrics:  metrics,
		store:    store,
		results:  results,
		tracer:   tracer,
	}

	if cfg.StatusBind != "" {
		n.status = server.New(cfg.StatusBind, server.Status{
			Mode:        mode,
			EmitterCode: id.ShortCode,
			HardwareMAC: id.HardwareMAC,
			StartedAt:   time.Now(),
		}, metrics, logBuffer, store, logger)
		n.status.Start()
	}

	return n, nil
}

func (n *node) close() {
	if n.status != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.status.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("status server shutdown failed")
		}
		cancel()
	}
	if err := n.results.Close(); err != nil {
		logger.Error().Err(err).Msg("closing result sinks failed")
	}
	if err := n.tracer.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("tracer shutdown failed")
	}
}
