// Package services – NavigatorService
//
// The navigator is the patient-facing and clinic-facing read side: where am
// I in the queue, what should I do while I wait, and how is the clinic
// doing overall. Everything here is derived from committed queue state;
// the navigator never mutates a ticket except through the crisis delay,
// which it delegates to the queue service.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/analytics"
	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"
	"github.com/lyflify/go-triage-backend/internal/triage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PatientStatus is the navigator's answer to "where am I".
type PatientStatus struct {
	HasActiveVisit bool             `json:"has_active_visit"`
	TicketID       string           `json:"ticket_id,omitempty"`
	Status         string           `json:"status,omitempty"`
	ColorCode      domain.ColorCode `json:"color_code,omitempty"`
	QueuePosition  int              `json:"queue_position,omitempty"`
	EstimatedTime  string           `json:"estimated_time,omitempty"`
	DoctorName     string           `json:"doctor_name,omitempty"`
	Advice         string           `json:"advice"`
}

// NavigatorService serves patient status, the analytics dashboard, and the
// operational insight feed.
type NavigatorService struct {
	DB    *gorm.DB
	Queue *QueueService

	// Window is the trailing period over which completed visits count
	// toward the efficiency metric.
	Window time.Duration

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewNavigatorService constructs a NavigatorService with production defaults.
func NewNavigatorService(db *gorm.DB, q *QueueService) *NavigatorService {
	return &NavigatorService{DB: db, Queue: q, Window: 24 * time.Hour, Now: time.Now}
}

// Status reports the patient's place in the queue. Patients without an open
// ticket get a friendly pointer back to triage rather than an error.
func (s *NavigatorService) Status(ctx context.Context, patientID string) (PatientStatus, error) {
	tr := otel.Tracer("services/NavigatorService")
	ctx, span := tr.Start(ctx, "Status",
		trace.WithAttributes(attribute.String("patient.id", patientID)),
	)
	defer span.End()

	if patientID == "" {
		return PatientStatus{}, ErrValidation
	}

	t, err := repo.ActiveTicketForPatient(ctx, s.DB, patientID)
	if errors.Is(err, repo.ErrNotFound) {
		return PatientStatus{
			Advice: "You don't have an active visit right now. Start a chat with the triage assistant if you're feeling unwell.",
		}, nil
	}
	if err != nil {
		return PatientStatus{}, err
	}

	pos, err := s.queuePosition(ctx, t)
	if err != nil {
		return PatientStatus{}, err
	}

	st := PatientStatus{
		HasActiveVisit: true,
		TicketID:       t.ID,
		Status:         string(t.Status),
		ColorCode:      t.ColorCode,
		QueuePosition:  pos,
		EstimatedTime:  t.CheckInTime,
		Advice:         adviceFor(t, pos),
	}
	if t.DoctorName != nil {
		st.DoctorName = *t.DoctorName
	}
	return st, nil
}

// Analytics builds the dashboard report from the live queue snapshot and
// the trailing completed-visit count.
func (s *NavigatorService) Analytics(ctx context.Context) (analytics.Report, error) {
	tr := otel.Tracer("services/NavigatorService")
	ctx, span := tr.Start(ctx, "Analytics")
	defer span.End()

	tickets, err := repo.ListActiveTickets(ctx, s.DB)
	if err != nil {
		return analytics.Report{}, err
	}
	completed, err := repo.CountRecordsSince(ctx, s.DB, s.Now().Add(-s.Window))
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Aggregate(tickets, int(completed)), nil
}

// Insights returns the deterministic operational insight feed derived from
// the current analytics report.
func (s *NavigatorService) Insights(ctx context.Context) ([]string, error) {
	r, err := s.Analytics(ctx)
	if err != nil {
		return nil, err
	}
	return triage.Insights(triage.InsightInput{
		ActiveQueue:    r.ActiveQueue,
		CriticalCases:  r.CriticalCases,
		AvgWaitMinutes: r.AvgWaitMinutes,
		EfficiencyPct:  r.EfficiencyPct,
		DelayedCount:   r.DelayedCount,
		BusiestHour:    r.BusiestHour,
		TopCategory:    r.TopCategory,
	}), nil
}

// GlobalDelay applies the clinic-wide crisis delay. Returns the number of
// tickets shifted.
func (s *NavigatorService) GlobalDelay(ctx context.Context, minutes int) (int, error) {
	return s.Queue.ApplyGlobalDelay(ctx, minutes)
}

// queuePosition counts how many active tickets sort ahead of t in canonical
// queue order, plus one. Emergencies are always position 1 territory.
func (s *NavigatorService) queuePosition(ctx context.Context, t *domain.Ticket) (int, error) {
	tickets, err := repo.ListActiveTickets(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	for i := range tickets {
		if tickets[i].ID == t.ID {
			return i + 1, nil
		}
	}
	// Ticket left the queue between the two reads; report front of queue.
	return 1, nil
}

// adviceFor picks the waiting-room guidance for the ticket's band and
// lifecycle stage.
func adviceFor(t *domain.Ticket, pos int) string {
	switch {
	case t.ColorCode == domain.ColorRed:
		return "The emergency team has been alerted and is expecting you. Go straight to the front desk; do not wait in the queue."
	case t.Status == domain.StatusInReview:
		return "The doctor is reviewing your case now. Stay close to the consultation rooms."
	case t.Status == domain.StatusWaitingForDoctor:
		return "You've been assigned a doctor. Please remain in the waiting area; you'll be called shortly."
	case t.Status == domain.StatusDelayed:
		return fmt.Sprintf("The clinic is running behind schedule. Your new slot is %s. Thank you for your patience; grab a seat and some water.", t.CheckInTime)
	case t.ColorCode == domain.ColorOrange:
		return fmt.Sprintf("A nurse will check your vitals soon. You are number %d in the queue; please stay in the waiting area.", pos)
	default:
		return fmt.Sprintf("You are number %d in the queue with an estimated slot at %s. Feel free to wait outside, just be back ten minutes early.", pos, t.CheckInTime)
	}
}
