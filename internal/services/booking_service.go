// Package services – BookingService
//
// This file implements the ticket state machine. Every lifecycle action
// (approve, assign, start consult, discharge, cancel, delay, delete,
// vitals) is a guarded transition: the update applies only when the ticket
// is in a permitted source state, expressed as a conditional UPDATE so a
// lost race surfaces as a rejected transition instead of a silent
// overwrite. Emergency tickets bypass approval friction: assignment is
// permitted straight from Pending Approval or Emergency En Route.
//
// Discharge is the one compound transition: it writes the immutable clinic
// record and removes the ticket in a single transaction.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Action is a ticket lifecycle operation requested through the booking API.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionAssign       Action = "assign"
	ActionStartConsult Action = "start_consult"
	ActionDischarge    Action = "discharge"
	ActionCancel       Action = "cancel"
	ActionDelay        Action = "delay"
	ActionDelete       Action = "delete"
	ActionVitals       Action = "vitals"
)

// ActionPayload carries the per-action parameters of UpdateStatus.
type ActionPayload struct {
	DoctorID    string
	DoctorName  string
	Minutes     int
	VitalsNote  string
	Diagnosis   string
	Medications []string
	Notes       string
}

// BookingService governs ticket lifecycle transitions. Safe for concurrent
// use; mutations on the same ticket serialize through the queue's
// per-ticket locks.
type BookingService struct {
	DB    *gorm.DB
	Queue *QueueService

	// Roster is the injected on-duty doctor registry. When non-empty,
	// assignments must name a rostered doctor; an empty roster disables the
	// check (demo mode).
	Roster []domain.Doctor
}

// NewBookingService constructs a BookingService sharing the queue's locks.
func NewBookingService(db *gorm.DB, q *QueueService, roster []domain.Doctor) *BookingService {
	return &BookingService{DB: db, Queue: q, Roster: roster}
}

// Create books a ticket from a triage assessment. It closes any open chat
// session for the patient so the conversation stops offering assessments.
func (s *BookingService) Create(ctx context.Context, draft TicketDraft, force bool) (*domain.Ticket, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("patient.id", draft.PatientID)),
	)
	defer span.End()

	t, err := s.Queue.Enqueue(ctx, draft, force)
	if err != nil {
		return nil, err
	}
	// Best effort: the booking stands even if session cleanup fails.
	_ = repo.CloseSessionsForPatient(ctx, s.DB, draft.PatientID)
	return t, nil
}

// UpdateStatus applies one lifecycle action to the ticket. For delete and
// discharge the returned ticket is nil (the ticket no longer exists). It
// fails with ErrTicketNotFound for unknown ids, ErrInvalidTransition when
// the current status does not permit the action, and ErrValidation for
// malformed payloads.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, action Action, p ActionPayload) (*domain.Ticket, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("ticket.id", id),
			attribute.String("ticket.action", string(action)),
		),
	)
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, ErrValidation
	}

	unlock := s.Queue.locks.acquire(id)
	defer unlock()

	switch action {
	case ActionApprove:
		return s.transition(ctx, id,
			[]domain.TicketStatus{domain.StatusPendingApproval},
			map[string]any{"status": domain.StatusConfirmed})

	case ActionAssign:
		doctor, err := s.resolveDoctor(p)
		if err != nil {
			return nil, err
		}
		// Emergency bypass: assignment allowed without prior approval.
		return s.transition(ctx, id,
			[]domain.TicketStatus{
				domain.StatusPendingApproval,
				domain.StatusConfirmed,
				domain.StatusEmergencyEnRoute,
			},
			map[string]any{
				"status":      domain.StatusWaitingForDoctor,
				"doctor_id":   doctor.ID,
				"doctor_name": doctor.Name,
			})

	case ActionStartConsult:
		return s.transition(ctx, id,
			[]domain.TicketStatus{domain.StatusWaitingForDoctor},
			map[string]any{"status": domain.StatusInReview})

	case ActionCancel:
		return s.transition(ctx, id, nonTerminal(),
			map[string]any{"status": domain.StatusCancelled, "urgent": false})

	case ActionDelay:
		return s.delayOne(ctx, id, p.Minutes)

	case ActionVitals:
		if strings.TrimSpace(p.VitalsNote) == "" {
			return nil, ErrValidation
		}
		return s.transition(ctx, id, nonTerminal(),
			map[string]any{"vitals_note": p.VitalsNote})

	case ActionDelete:
		rows, err := repo.DeleteTicketGuarded(ctx, s.DB, id, domain.StatusCancelled)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, s.guardFailure(ctx, id)
		}
		s.Queue.observeDepth(ctx)
		return nil, nil

	case ActionDischarge:
		return nil, s.discharge(ctx, id, p)

	default:
		return nil, ErrUnknownAction
	}
}

// transition runs one guarded update and maps a failed guard to the right
// typed error.
func (s *BookingService) transition(ctx context.Context, id string, from []domain.TicketStatus, updates map[string]any) (*domain.Ticket, error) {
	rows, err := repo.UpdateTicketGuarded(ctx, s.DB, id, from, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.guardFailure(ctx, id)
	}
	s.Queue.observeDepth(ctx)
	return s.Queue.Get(ctx, id)
}

// guardFailure distinguishes "row gone" from "status did not permit it".
func (s *BookingService) guardFailure(ctx context.Context, id string) error {
	if _, err := repo.GetTicket(ctx, s.DB, id); err != nil {
		return ErrTicketNotFound
	}
	return ErrInvalidTransition
}

// delayOne shifts a single ticket's slot; status stays unchanged. The
// shift is additive across calls.
func (s *BookingService) delayOne(ctx context.Context, id string, minutes int) (*domain.Ticket, error) {
	if minutes <= 0 {
		minutes = s.Queue.DelayStep
	}
	t, err := s.Queue.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	shifted, ok := shiftSlot(t.CheckInTime, minutes)
	if !ok {
		return nil, ErrValidation
	}
	return s.transition(ctx, id, nonTerminal(), map[string]any{"check_in_time": shifted})
}

// discharge closes out a consultation: it creates the immutable clinic
// record and removes the ticket atomically. Only permitted from In Review.
func (s *BookingService) discharge(ctx context.Context, id string, p ActionPayload) error {
	if strings.TrimSpace(p.Diagnosis) == "" {
		return ErrValidation
	}
	t, err := s.Queue.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.Status != domain.StatusInReview {
		return ErrInvalidTransition
	}

	doctorName := ""
	if t.DoctorName != nil {
		doctorName = *t.DoctorName
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := &domain.ClinicRecord{
			PatientID:   t.PatientID,
			PatientName: t.PatientName,
			Diagnosis:   p.Diagnosis,
			Medications: p.Medications,
			Notes:       p.Notes,
			DoctorName:  doctorName,
			Date:        time.Now().UTC().Format("2006-01-02"),
		}
		if err := repo.CreateRecord(tx, rec); err != nil {
			return err
		}
		// Re-check the source state inside the transaction so a concurrent
		// cancel cannot slip between the read above and the delete.
		res := tx.Where("id = ? AND status = ?", id, domain.StatusInReview).Delete(&domain.Ticket{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Queue.observeDepth(ctx)
	return nil
}

// resolveDoctor validates the assignment payload against the duty roster.
func (s *BookingService) resolveDoctor(p ActionPayload) (domain.Doctor, error) {
	if strings.TrimSpace(p.DoctorID) == "" {
		return domain.Doctor{}, ErrValidation
	}
	if len(s.Roster) == 0 {
		return domain.Doctor{ID: p.DoctorID, Name: p.DoctorName}, nil
	}
	for _, d := range s.Roster {
		if d.ID == p.DoctorID {
			return d, nil
		}
	}
	return domain.Doctor{}, ErrUnknownDoctor
}
