/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/stressfleet/internal/round"
	"github.com/probelab/stressfleet/internal/schedule"
)

var scheduleFlags struct {
	startTime       int64
	duration        int
	maxPower        int
	startEmitters   int
	endEmitters     int
	numRounds       int
	estTimePerRound int64
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run all rounds unattended on a computed timetable",
	Long:  "Computes an absolute timetable of round start times from the given parameters and executes every round. Exits on the first round failure.",
	RunE:  runSchedule,
}

func init() {
	f := scheduleCmd.Flags()
	f.Int64Var(&scheduleFlags.startTime, "start-time", 0, "epoch seconds of the first round")
	f.IntVar(&scheduleFlags.duration, "duration", 0, "sampling window per interval, seconds")
	f.IntVar(&scheduleFlags.maxPower, "max-power", 0, "number of power levels per round")
	f.IntVar(&scheduleFlags.startEmitters, "start-emitters", 0, "first emitter count of the sweep")
	f.IntVar(&scheduleFlags.endEmitters, "end-emitters", 0, "last emitter count of the sweep")
	f.IntVar(&scheduleFlags.numRounds, "num-rounds", 0, "rounds per emitter count")
	f.Int64Var(&scheduleFlags.estTimePerRound, "est-time-per-round", 0, "slot length per round, seconds")

	for _, name := range []string{"start-time", "duration", "max-power", "start-emitters", "end-emitters", "num-rounds", "est-time-per-round"} {
		_ = scheduleCmd.MarkFlagRequired(name)
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries, err := schedule.Plan(
		scheduleFlags.startTime,
		scheduleFlags.estTimePerRound,
		scheduleFlags.startEmitters,
		scheduleFlags.endEmitters,
		scheduleFlags.numRounds,
	)
	if err != nil {
		return err
	}

	spec := round.Spec{MaxPower: scheduleFlags.maxPower, DurationSeconds: scheduleFlags.duration}
	if worst := spec.EstimatedDuration(); worst > time.Duration(scheduleFlags.estTimePerRound)*time.Second {
		logger.Warn().
			Dur("worst_case_round", worst).
			Int64("est_time_per_round", scheduleFlags.estTimePerRound).
			Msg("slot length is shorter than the worst-case round, expect overruns")
	}

	n, err := buildNode(ctx, "schedule")
	if err != nil {
		return err
	}
	defer n.close()

	runner := schedule.NewRunner(n.executor, n.identity, n.metrics, logger)
	return runner.Execute(ctx, entries, scheduleFlags.maxPower, scheduleFlags.duration)
}
