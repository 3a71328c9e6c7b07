// Package services – QueueService
//
// This file implements the QueueService, the authoritative owner of the
// live patient queue. It admits new tickets (with a duplicate-visit guard),
// serves the canonically sorted queue to any number of polling readers, and
// implements the clinic-wide delay simulation. All mutating operations on a
// single ticket are serialized through per-ticket locks; reads never block
// behind writers and always reflect the latest committed state.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// ticket and patient identifiers.
package services

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const slotLayout = "15:04"

// TicketDraft is the classifier-shaped input to Enqueue. The queue assigns
// identity, status, and slot time; the draft carries what the assessment
// decided.
type TicketDraft struct {
	PatientID         string
	PatientName       string
	Symptoms          string
	Score             int
	Category          string
	EmergencyOverride bool
}

// QueueService owns the authoritative ordered collection of active
// tickets. Safe for concurrent use.
type QueueService struct {
	DB *gorm.DB

	// DelayStep is the default shift, in minutes, applied by delay actions
	// when the caller does not specify one.
	DelayStep int

	// Now is the clock; overridable in tests.
	Now func() time.Time

	locks *ticketLocks
}

// NewQueueService constructs a QueueService with production defaults.
func NewQueueService(db *gorm.DB) *QueueService {
	return &QueueService{
		DB:        db,
		DelayStep: 15,
		Now:       time.Now,
		locks:     newTicketLocks(),
	}
}

// Enqueue admits a new ticket to the queue. A red assessment takes the
// emergency path: slot is now, status Emergency En Route, urgent set.
// Everything else enters Pending Approval with a routine wait slot derived
// from the current queue length (15 minutes per person, rounded to 5,
// minimum 15). Fails with ErrDuplicateActiveVisit when the patient already
// has an open ticket, unless force is set (demo/test tooling only).
func (s *QueueService) Enqueue(ctx context.Context, draft TicketDraft, force bool) (*domain.Ticket, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Enqueue",
		trace.WithAttributes(attribute.String("patient.id", draft.PatientID)),
	)
	defer span.End()

	if draft.PatientID == "" || draft.Symptoms == "" || draft.Score < 0 || draft.Score > 10 {
		return nil, ErrValidation
	}
	if draft.PatientName == "" {
		draft.PatientName = "Patient"
	}
	if draft.Category == "" {
		draft.Category = "Routine"
	}

	// Serialize admissions per patient so two concurrent bookings cannot
	// both pass the duplicate check.
	unlock := s.locks.acquire("patient:" + draft.PatientID)
	defer unlock()

	if !force {
		if _, err := repo.ActiveTicketForPatient(ctx, s.DB, draft.PatientID); err == nil {
			return nil, ErrDuplicateActiveVisit
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}

	now := s.Now()
	color := domain.ColorForScore(draft.Score, draft.EmergencyOverride)

	t := &domain.Ticket{
		PatientID:    draft.PatientID,
		PatientName:  draft.PatientName,
		SymptomsText: draft.Symptoms,
		UrgencyScore: draft.Score,
		ColorCode:    color,
		Category:     draft.Category,
		CreatedAt:    now.UTC(),
	}
	if color == domain.ColorRed {
		t.Status = domain.StatusEmergencyEnRoute
		t.Urgent = true
		t.CheckInTime = now.Format(slotLayout)
	} else {
		active, err := repo.CountActive(ctx, s.DB)
		if err != nil {
			return nil, err
		}
		t.Status = domain.StatusPendingApproval
		t.CheckInTime = now.Add(routineWait(int(active))).Format(slotLayout)
	}

	if err := repo.CreateTicket(ctx, s.DB, t); err != nil {
		return nil, err
	}
	s.observeDepth(ctx)
	return t, nil
}

// List returns tickets matching the filter in canonical queue order:
// emergencies first, then descending urgency, then arrival time. The read
// reflects the latest committed state on every call.
func (s *QueueService) List(ctx context.Context, f repo.TicketFilter) ([]domain.Ticket, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	return repo.ListTickets(ctx, s.DB, f)
}

// Get fetches one ticket by ID.
func (s *QueueService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	t, err := repo.GetTicket(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// ApplyGlobalDelay shifts the slot time of every non-terminal ticket with a
// parseable slot forward by the given minutes and marks it Delayed. The
// shift is additive: calling it twice with 15 yields a cumulative 30-minute
// shift. Returns the number of tickets shifted.
func (s *QueueService) ApplyGlobalDelay(ctx context.Context, minutes int) (int, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "ApplyGlobalDelay",
		trace.WithAttributes(attribute.Int("delay.minutes", minutes)),
	)
	defer span.End()

	if minutes <= 0 {
		minutes = s.DelayStep
	}

	tickets, err := repo.ListActiveTickets(ctx, s.DB)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range tickets {
		t := &tickets[i]
		shifted, ok := shiftSlot(t.CheckInTime, minutes)
		if !ok {
			continue
		}
		unlock := s.locks.acquire(t.ID)
		rows, err := repo.UpdateTicketGuarded(ctx, s.DB, t.ID, nonTerminal(), map[string]any{
			"check_in_time": shifted,
			"status":        domain.StatusDelayed,
		})
		unlock()
		if err != nil {
			return count, err
		}
		if rows > 0 {
			count++
		}
	}
	return count, nil
}

// observeDepth refreshes the queue gauges; failures are ignored, the
// gauges are best effort.
func (s *QueueService) observeDepth(ctx context.Context) {
	if stats, err := repo.QueueStatsNow(ctx, s.DB); err == nil {
		queueDepth.Set(float64(stats.Active))
		queueCritical.Set(float64(stats.Critical))
		queueDelayed.Set(float64(stats.Delayed))
	}
}

// nonTerminal returns the set of statuses a ticket can still leave.
func nonTerminal() []domain.TicketStatus {
	return []domain.TicketStatus{
		domain.StatusPendingApproval,
		domain.StatusConfirmed,
		domain.StatusWaitingForDoctor,
		domain.StatusInReview,
		domain.StatusDelayed,
		domain.StatusEmergencyEnRoute,
	}
}

// routineWait computes the routine booking wait from the queue length:
// 15 minutes per person ahead, rounded to the nearest 5, minimum 15.
func routineWait(queueLen int) time.Duration {
	m := queueLen * 15
	m = 5 * int(math.Round(float64(m)/5))
	if m < 15 {
		m = 15
	}
	return time.Duration(m) * time.Minute
}

// shiftSlot adds minutes to an "HH:MM" display slot. Returns false when the
// slot is not parseable (e.g. a pending "--:--" placeholder).
func shiftSlot(slot string, minutes int) (string, bool) {
	t, err := time.Parse(slotLayout, slot)
	if err != nil {
		return "", false
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format(slotLayout), true
}
