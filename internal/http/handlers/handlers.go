// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the service contracts the handlers program against and
// the shared Handlers aggregate. Handlers are transport-thin: they validate
// input, call application services, and translate results (including typed
// service errors) into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lyflify/go-triage-backend/internal/analytics"
	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"
	"github.com/lyflify/go-triage-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// TriageService drives triage conversations for the patient chat.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TriageService interface {
	// Assess processes one patient message and returns the assistant reply.
	Assess(ctx context.Context, req services.AssessRequest) (services.AssessReply, error)
	// History returns the persisted turn log for the patient's open session.
	History(ctx context.Context, patientID string) ([]domain.Turn, error)
}

// BookingService governs ticket creation and lifecycle transitions.
type BookingService interface {
	// Create books a ticket from a triage assessment.
	Create(ctx context.Context, draft services.TicketDraft, force bool) (*domain.Ticket, error)
	// UpdateStatus applies one lifecycle action to a ticket.
	UpdateStatus(ctx context.Context, id string, action services.Action, p services.ActionPayload) (*domain.Ticket, error)
}

// QueueService serves the canonically ordered live queue.
type QueueService interface {
	// List returns tickets matching the filter in canonical queue order.
	List(ctx context.Context, f repo.TicketFilter) ([]domain.Ticket, error)
	// Get fetches one ticket by ID.
	Get(ctx context.Context, id string) (*domain.Ticket, error)
}

// NavigatorService serves patient status, analytics, and insights.
type NavigatorService interface {
	// Status reports the patient's place in the queue.
	Status(ctx context.Context, patientID string) (services.PatientStatus, error)
	// Analytics builds the dashboard report.
	Analytics(ctx context.Context) (analytics.Report, error)
	// Insights returns the operational insight feed.
	Insights(ctx context.Context) ([]string, error)
	// GlobalDelay shifts every active ticket's slot; returns the count.
	GlobalDelay(ctx context.Context, minutes int) (int, error)
}

// RecordsService owns the immutable clinic record history.
type RecordsService interface {
	// Create writes a new clinic record.
	Create(ctx context.Context, d services.RecordDraft) (*domain.ClinicRecord, error)
	// ListByPatient returns a patient's visit history, most recent first.
	ListByPatient(ctx context.Context, patientID string) ([]domain.ClinicRecord, error)
	// AllPatients returns one summary row per patient with history.
	AllPatients(ctx context.Context) ([]repo.PatientSummary, error)
	// ExplainDraft rewrites a prescription into plain language.
	ExplainDraft(diagnosis string, medications []string, notes string) string
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for triage, booking, queue, navigator,
// and records. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	triageSvc  TriageService
	bookingSvc BookingService
	queueSvc   QueueService
	navSvc     NavigatorService
	recordsSvc RecordsService

	// IdempotencyTTL bounds how long a booking replay record stays
	// servable. Zero means the 24h default.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(triageSvc TriageService, bookingSvc BookingService, queueSvc QueueService, navSvc NavigatorService, recordsSvc RecordsService) *Handlers {
	return &Handlers{
		triageSvc:  triageSvc,
		bookingSvc: bookingSvc,
		queueSvc:   queueSvc,
		navSvc:     navSvc,
		recordsSvc: recordsSvc,
	}
}

// idemTTL returns the configured replay-record lifetime.
func (h *Handlers) idemTTL() time.Duration {
	if h.IdempotencyTTL > 0 {
		return h.IdempotencyTTL
	}
	return 24 * time.Hour
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// svcFail translates a typed service error into the matching HTTP response.
// Unrecognized errors become 500 internal_error.
func svcFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrTicketNotFound), errors.Is(err, services.ErrRecordNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrDuplicateActiveVisit):
		fail(c, http.StatusConflict, ErrCodeDuplicateVisit, err.Error())
	case errors.Is(err, services.ErrUnknownAction):
		fail(c, http.StatusBadRequest, ErrCodeUnknownAction, err.Error())
	case errors.Is(err, services.ErrUnknownDoctor):
		fail(c, http.StatusUnprocessableEntity, ErrCodeUnknownDoctor, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
