/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/stressfleet/internal/schedule"
)

var planFlags struct {
	startTime       int64
	startEmitters   int
	endEmitters     int
	numRounds       int
	estTimePerRound int64
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the timetable a schedule run would execute",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.Int64Var(&planFlags.startTime, "start-time", 0, "epoch seconds of the first round")
	f.IntVar(&planFlags.startEmitters, "start-emitters", 0, "first emitter count of the sweep")
	f.IntVar(&planFlags.endEmitters, "end-emitters", 0, "last emitter count of the sweep")
	f.IntVar(&planFlags.numRounds, "num-rounds", 0, "rounds per emitter count")
	f.Int64Var(&planFlags.estTimePerRound, "est-time-per-round", 0, "slot length per round, seconds")

	for _, name := range []string{"start-time", "start-emitters", "end-emitters", "num-rounds", "est-time-per-round"} {
		_ = planCmd.MarkFlagRequired(name)
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	entries, err := schedule.Plan(
		planFlags.startTime,
		planFlags.estTimePerRound,
		planFlags.startEmitters,
		planFlags.endEmitters,
		planFlags.numRounds,
	)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("emitters=%d round=%d start=%d (%s)\n",
			e.EmitterCount, e.Round, e.StartEpoch,
			time.Unix(e.StartEpoch, 0).Format(time.RFC3339))
	}
	fmt.Printf("%d rounds total\n", len(entries))
	return nil
}
