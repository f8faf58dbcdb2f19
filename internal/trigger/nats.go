/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSSource subscribes to the trigger subject and feeds message payloads
// to the gateway. Buffered so a trigger arriving while a round is running
// is held, not dropped; it still runs strictly after the current round.
type NATSSource struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	inbox  chan *nats.Msg
	logger zerolog.Logger
}

// ConnectNATS establishes the trigger subscription.
func ConnectNATS(url, subject string, logger zerolog.Logger) (*NATSSource, error) {
	conn, err := nats.Connect(url,
		nats.Name("stressfleet-listener"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	inbox := make(chan *nats.Msg, 64)
	sub, err := conn.ChanSubscribe(subject, inbox)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	logger.Info().Str("url", url).Str("subject", subject).Msg("trigger subscription established")

	return &NATSSource{
		conn:   conn,
		sub:    sub,
		inbox:  inbox,
		logger: logger.With().Str("component", "nats_source").Logger(),
	}, nil
}

// Messages adapts the subscription to the gateway's string channel. The
// returned channel closes when ctx is cancelled or the connection drops.
func (s *NATSSource) Messages(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-s.inbox:
				if !ok {
					return
				}
				select {
				case out <- string(msg.Data):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close drains the subscription and releases the connection.
func (s *NATSSource) Close() {
	if err := s.sub.Unsubscribe(); err != nil {
		s.logger.Warn().Err(err).Msg("unsubscribe failed")
	}
	s.conn.Close()
}
