/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/probelab/stressfleet/internal/models"
)

var csvHeader = []string{"num_sensors", "round", "interval", "emitter_id", "emit_count", "start", "end"}

// CSVSink appends interval results to a tabular file. The header is written
// exactly once, when the file is created empty; every Append flushes and
// syncs before returning so a crash right after a row loses nothing.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
	logger zerolog.Logger
}

// OpenCSV opens (or creates) the append target.
func OpenCSV(path string, logger zerolog.Logger) (*CSVSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv sink: %w", err)
	}

	s := &CSVSink{
		file:   file,
		writer: csv.NewWriter(file),
		logger: logger.With().Str("component", "csv_sink").Str("path", path).Logger(),
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat csv sink: %w", err)
	}
	if info.Size() == 0 {
		if err := s.writeRow(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	return s, nil
}

// Append writes one result row and makes it durable before returning.
func (s *CSVSink) Append(r models.IntervalResult) error {
	emitCount := ""
	if r.PacketsSent != models.PacketsUnknown {
		emitCount = strconv.Itoa(r.PacketsSent)
	}

	row := []string{
		strconv.Itoa(r.EmitterCount),
		strconv.Itoa(r.Round),
		strconv.FormatFloat(r.IntervalSeconds, 'g', -1, 64),
		r.EmitterCode,
		emitCount,
		strconv.FormatInt(r.StartEpochMs, 10),
		strconv.FormatInt(r.EndEpochMs, 10),
	}
	return s.writeRow(row)
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush csv row: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync csv sink: %w", err)
	}
	return nil
}

// Close releases the file handle.
func (s *CSVSink) Close() error {
	s.writer.Flush()
	return s.file.Close()
}
