// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries consumed by
// the analytics aggregator. Each function is context-aware and safe to call
// from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// QueueStats is a snapshot of queue-level counters.
type QueueStats struct {
	Active   int64
	Critical int64
	Delayed  int64
}

// QueueStatsNow computes the live counters over non-terminal tickets:
// total active, critical (urgent flag or score at/above the critical
// threshold), and currently delayed.
func QueueStatsNow(ctx context.Context, db *gorm.DB) (QueueStats, error) {
	var s QueueStats
	base := db.WithContext(ctx).Model(&domain.Ticket{}).
		Where("status NOT IN ?", terminalStatuses)

	if err := base.Session(&gorm.Session{}).Count(&s.Active).Error; err != nil {
		return s, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("urgent = ? OR urgency_score >= ?", true, domain.CriticalScore).
		Count(&s.Critical).Error; err != nil {
		return s, err
	}
	err := base.Session(&gorm.Session{}).
		Where("status = ?", domain.StatusDelayed).
		Count(&s.Delayed).Error
	return s, err
}
