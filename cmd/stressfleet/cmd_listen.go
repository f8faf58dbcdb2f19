/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/probelab/stressfleet/internal/trigger"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Wait for remote trigger commands and run one round per trigger",
	Long:  "Subscribes to the trigger subject and executes one stress-test round per command message until the exit sentinel arrives.",
	RunE:  runListen,
}

func runListen(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := buildNode(ctx, "listen")
	if err != nil {
		return err
	}
	defer n.close()

	source, err := trigger.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	gateway := trigger.NewGateway(n.executor, n.identity, n.metrics, logger)

	logger.Info().Msg("stress test ready, listening for commands")
	return gateway.Listen(ctx, source.Messages(ctx))
}
