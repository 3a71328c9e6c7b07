// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Ticket
// model, the authoritative record of the live clinic queue.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. State-machine guards are expressed as
// conditional UPDATEs whose RowsAffected result lets the service layer
// distinguish a lost race from a missing row.
//
// Error semantics:
//   - When a ticket is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// queueOrder is the canonical queue sort: emergencies first, then by
// descending urgency, then by arrival. Applied on every read so the queue
// is never served from a stale ordering.
const queueOrder = "urgent DESC, urgency_score DESC, created_at ASC"

// terminalStatuses are the states a ticket never leaves.
var terminalStatuses = []domain.TicketStatus{
	domain.StatusCancelled,
	domain.StatusCompleted,
}

// TicketFilter narrows ListTickets. Zero value means "all tickets".
type TicketFilter struct {
	PatientID  string
	DoctorID   string
	Status     domain.TicketStatus
	ActiveOnly bool
}

// CreateTicket inserts a ticket, assigning a UUID and UTC creation time.
func CreateTicket(ctx context.Context, db *gorm.DB, t *domain.Ticket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(t).Error
}

// ListTickets returns tickets matching the filter in canonical queue order.
func ListTickets(ctx context.Context, db *gorm.DB, f TicketFilter) ([]domain.Ticket, error) {
	q := db.WithContext(ctx).Model(&domain.Ticket{})
	if f.PatientID != "" {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ActiveOnly {
		q = q.Where("status NOT IN ?", terminalStatuses)
	}
	var out []domain.Ticket
	err := q.Order(queueOrder).Find(&out).Error
	return out, err
}

// GetTicket fetches a single ticket by ID, or ErrNotFound.
func GetTicket(ctx context.Context, db *gorm.DB, id string) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ActiveTicketForPatient returns the patient's current non-terminal ticket,
// or ErrNotFound when the patient has no open visit.
func ActiveTicketForPatient(ctx context.Context, db *gorm.DB, patientID string) (*domain.Ticket, error) {
	var t domain.Ticket
	err := db.WithContext(ctx).
		Where("patient_id = ? AND status NOT IN ?", patientID, terminalStatuses).
		Order("created_at ASC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountActive returns the number of non-terminal tickets in the queue.
func CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("status NOT IN ?", terminalStatuses).
		Count(&n).Error
	return n, err
}

// UpdateTicketGuarded applies updates to the ticket only when its current
// status is one of the allowed source states. It returns the number of rows
// affected: 0 means the guard failed (missing row or a transition race);
// the caller re-fetches to tell the two apart.
func UpdateTicketGuarded(ctx context.Context, db *gorm.DB, id string, from []domain.TicketStatus, updates map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// DeleteTicketGuarded hard-deletes the ticket only when it is in the given
// source status. RowsAffected semantics match UpdateTicketGuarded.
func DeleteTicketGuarded(ctx context.Context, db *gorm.DB, id string, from domain.TicketStatus) (int64, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND status = ?", id, from).
		Delete(&domain.Ticket{})
	return res.RowsAffected, res.Error
}

// ListActiveTickets is shorthand for the non-terminal queue in canonical order.
func ListActiveTickets(ctx context.Context, db *gorm.DB) ([]domain.Ticket, error) {
	return ListTickets(ctx, db, TicketFilter{ActiveOnly: true})
}
