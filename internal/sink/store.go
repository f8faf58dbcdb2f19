/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package sink

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/probelab/stressfleet/internal/models"
)

// StoreSink mirrors every interval result into a sqlite database so results
// from many nodes can be merged and queried after a test campaign.
type StoreSink struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// OpenStore opens the sqlite results store and migrates its schema.
func OpenStore(dsn string, logger zerolog.Logger) (*StoreSink, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open results store: %w", err)
	}

	if err := db.AutoMigrate(&models.IntervalResult{}); err != nil {
		return nil, fmt.Errorf("migrate results store: %w", err)
	}

	return &StoreSink{
		db:     db,
		logger: logger.With().Str("component", "store_sink").Logger(),
	}, nil
}

// Append inserts one result row.
func (s *StoreSink) Append(r models.IntervalResult) error {
	r.ID = 0
	if err := s.db.Create(&r).Error; err != nil {
		return fmt.Errorf("insert interval result: %w", err)
	}
	return nil
}

// Recent returns the newest rows, newest first, for the status API.
func (s *StoreSink) Recent(limit int) ([]models.IntervalResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.IntervalResult
	if err := s.db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query recent results: %w", err)
	}
	return rows, nil
}

// Close releases database resources.
func (s *StoreSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
