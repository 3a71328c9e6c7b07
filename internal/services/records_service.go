// Package services – RecordsService
//
// Clinic records are the immutable post-visit history: one row per
// completed visit, written at discharge or through the records endpoint,
// never edited. This service also hosts the prescription explainer, which
// rewrites clinical shorthand into plain language for the patient.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"
	"github.com/lyflify/go-triage-backend/internal/triage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordDraft is the input to Create.
type RecordDraft struct {
	PatientID   string   `json:"patient_id"`
	PatientName string   `json:"patient_name"`
	Diagnosis   string   `json:"diagnosis"`
	Medications []string `json:"medications"`
	Notes       string   `json:"notes"`
	DoctorName  string   `json:"doctor_name"`
	Date        string   `json:"date"`
}

// RecordsService owns the clinic record history.
type RecordsService struct {
	DB *gorm.DB

	// SeedDemo enables the demo behavior where a patient with no history
	// gets a small seeded record set on first read. Off in production.
	SeedDemo bool
}

// NewRecordsService constructs a RecordsService.
func NewRecordsService(db *gorm.DB) *RecordsService {
	return &RecordsService{DB: db}
}

// Create writes a new clinic record.
func (s *RecordsService) Create(ctx context.Context, d RecordDraft) (*domain.ClinicRecord, error) {
	tr := otel.Tracer("services/RecordsService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("patient.id", d.PatientID)),
	)
	defer span.End()

	if strings.TrimSpace(d.PatientID) == "" || strings.TrimSpace(d.Diagnosis) == "" {
		return nil, ErrValidation
	}
	if d.PatientName == "" {
		d.PatientName = "Patient"
	}

	r := &domain.ClinicRecord{
		PatientID:   d.PatientID,
		PatientName: d.PatientName,
		Diagnosis:   d.Diagnosis,
		Medications: d.Medications,
		Notes:       d.Notes,
		DoctorName:  d.DoctorName,
		Date:        d.Date,
	}
	if err := repo.CreateRecord(s.DB.WithContext(ctx), r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListByPatient returns a patient's visit history, most recent first. In
// demo mode a patient with no history gets a seeded record so the UI has
// something to show.
func (s *RecordsService) ListByPatient(ctx context.Context, patientID string) ([]domain.ClinicRecord, error) {
	tr := otel.Tracer("services/RecordsService")
	ctx, span := tr.Start(ctx, "ListByPatient",
		trace.WithAttributes(attribute.String("patient.id", patientID)),
	)
	defer span.End()

	if patientID == "" {
		return nil, ErrValidation
	}
	recs, err := repo.ListRecordsByPatient(ctx, s.DB, patientID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 && s.SeedDemo {
		if err := s.seedFor(ctx, patientID); err != nil {
			return nil, err
		}
		return repo.ListRecordsByPatient(ctx, s.DB, patientID)
	}
	return recs, nil
}

// AllPatients returns one summary row per patient with recorded history.
func (s *RecordsService) AllPatients(ctx context.Context) ([]repo.PatientSummary, error) {
	return repo.ListPatientSummaries(ctx, s.DB)
}

// Explain rewrites a record's prescription into plain language.
func (s *RecordsService) Explain(ctx context.Context, recordID string) (string, error) {
	var r domain.ClinicRecord
	err := s.DB.WithContext(ctx).Where("id = ?", recordID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRecordNotFound
	}
	if err != nil {
		return "", err
	}
	return triage.ExplainPrescription(r.Diagnosis, r.Medications, r.Notes), nil
}

// ExplainDraft explains an ad-hoc prescription without a stored record.
func (s *RecordsService) ExplainDraft(diagnosis string, medications []string, notes string) string {
	return triage.ExplainPrescription(diagnosis, medications, notes)
}

// seedFor writes the demo starter history for a new patient.
func (s *RecordsService) seedFor(ctx context.Context, patientID string) error {
	seed := &domain.ClinicRecord{
		PatientID:   patientID,
		PatientName: "Demo Patient",
		Diagnosis:   "Seasonal allergic rhinitis",
		Medications: []string{"Cetirizine 10mg od", "Saline nasal spray prn"},
		Notes:       "Avoid known triggers. Return if symptoms persist beyond two weeks.",
		DoctorName:  "Dr. Ndlovu",
	}
	return repo.CreateRecord(s.DB.WithContext(ctx), seed)
}
