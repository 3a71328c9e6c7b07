// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ClinicRecord model. Records are written once at discharge and never
// mutated afterwards, so the surface is insert plus reads.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// CreateRecord inserts a clinic record, assigning a UUID and creation time.
// The db handle may be a transaction (discharge writes the record and
// removes the ticket atomically).
func CreateRecord(db *gorm.DB, r *domain.ClinicRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Date == "" {
		r.Date = r.CreatedAt.Format("2006-01-02")
	}
	return db.Create(r).Error
}

// ListRecordsByPatient returns a patient's records, most recent first.
func ListRecordsByPatient(ctx context.Context, db *gorm.DB, patientID string) ([]domain.ClinicRecord, error) {
	var out []domain.ClinicRecord
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// PatientSummary is a per-patient rollup over clinic records, used by the
// clinic's all-patients view.
type PatientSummary struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
	RecordCount int64  `json:"record_count"`
	LastVisit   string `json:"last_visit"`
}

// ListPatientSummaries returns one row per patient that has at least one
// clinic record, ordered by most recent visit.
func ListPatientSummaries(ctx context.Context, db *gorm.DB) ([]PatientSummary, error) {
	var out []PatientSummary
	err := db.WithContext(ctx).
		Model(&domain.ClinicRecord{}).
		Select("patient_id, patient_name, COUNT(*) AS record_count, MAX(date) AS last_visit").
		Group("patient_id, patient_name").
		Order("last_visit DESC").
		Scan(&out).Error
	return out, err
}

// CountRecordsSince returns the number of records created at or after the
// given instant. The analytics efficiency metric treats each record as one
// completed visit in the trailing window.
func CountRecordsSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ClinicRecord{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}
