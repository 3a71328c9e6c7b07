// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for triage chat
// sessions and their append-only turn log.
//
// Turn ordering is load-bearing: the conversation manager reconstructs the
// history it sends to the classifier from ListTurns, which always returns
// turns in insertion order (seq ascending). Nothing here reorders or drops
// turns.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// ActiveSessionForPatient returns the patient's most recent non-closed
// session, or ErrNotFound.
func ActiveSessionForPatient(ctx context.Context, db *gorm.DB, patientID string) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("patient_id = ? AND state <> ?", patientID, domain.SessionClosed).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession starts a new session in the greeting state.
func CreateSession(ctx context.Context, db *gorm.DB, patientID, patientName string) (*domain.Session, error) {
	s := &domain.Session{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		PatientName: patientName,
		State:       domain.SessionGreeting,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// AppendTurn appends a turn to the session log. Seq is assigned as
// max(seq)+1 within the session; callers should append inside a transaction
// when writing a patient/assistant pair.
func AppendTurn(db *gorm.DB, sessionID, role, content string) (*domain.Turn, error) {
	var last struct{ Seq int }
	err := db.Model(&domain.Turn{}).
		Select("COALESCE(MAX(seq), 0) AS seq").
		Where("session_id = ?", sessionID).
		Scan(&last).Error
	if err != nil {
		return nil, err
	}
	t := &domain.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Seq:       last.Seq + 1,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListTurns returns the full turn log in insertion order.
func ListTurns(ctx context.Context, db *gorm.DB, sessionID string) ([]domain.Turn, error) {
	var out []domain.Turn
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// UpdateSessionState moves the session to a new conversation state.
func UpdateSessionState(ctx context.Context, db *gorm.DB, id string, state domain.SessionState) error {
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFinalAssessment records the latest emitted assessment on the session.
// A newer assessment overwrites the previous one; earlier chat turns are
// untouched.
func SetFinalAssessment(ctx context.Context, db *gorm.DB, id string, score int, color domain.ColorCode, category string) error {
	res := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":          domain.SessionReady,
			"final_score":    score,
			"final_color":    color,
			"final_category": category,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CloseSessionsForPatient marks every open session for the patient closed.
// Called when a booking is created so the chat stops offering assessments.
func CloseSessionsForPatient(ctx context.Context, db *gorm.DB, patientID string) error {
	err := db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("patient_id = ? AND state <> ?", patientID, domain.SessionClosed).
		Update("state", domain.SessionClosed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
