/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

// PacketsUnknown is recorded when the emission tool's output could not be
// parsed for a sent-packet count. The interval still completed; only the
// measurement is missing.
const PacketsUnknown = -1

// IntervalResult is one row of the stress-test time series: the outcome of
// a single rate step within a round. Rows are append-only; they are never
// updated or deleted once written.
type IntervalResult struct {
	ID              uint    `gorm:"primaryKey;autoIncrement"`
	BatchID         string  `gorm:"type:varchar(36);index"`
	EmitterCount    int     `gorm:"index"`
	Round           int     `gorm:"index"`
	IntervalSeconds float64 // emission interval for this step, 1/2^power
	EmitterCode     string  `gorm:"type:varchar(8)"`
	PacketsSent     int     // PacketsUnknown when capture parsing failed
	StartEpochMs    int64
	EndEpochMs      int64
}
