// Booking HTTP handlers.
//
// This file exposes the ticket lifecycle endpoints:
//   - POST /booking/create        (book a ticket from a triage assessment)
//   - POST /booking/update/{id}   (apply one lifecycle action)
//
// The update endpoint is action-dispatched rather than RESTful per-field:
// the clinic dashboard drives the whole state machine through one route,
// which keeps the permitted-transition logic in exactly one place (the
// booking service).
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/http/middleware"
	"github.com/lyflify/go-triage-backend/internal/repo"
	"github.com/lyflify/go-triage-backend/internal/services"
)

// CreateBookingBody is the JSON payload for booking a ticket.
type CreateBookingBody struct {
	PatientID   string `json:"patient_id" example:"patient-7"`
	PatientName string `json:"patient_name" example:"Thandi M"`
	// Symptoms is the free-text complaint carried onto the ticket.
	Symptoms string `json:"symptoms" binding:"required" example:"persistent cough for a week"`
	// TriageScore is the urgency rating from the assessment, 0-10.
	TriageScore int    `json:"triage_score" binding:"min=0,max=10" example:"6"`
	Category    string `json:"category" example:"Respiratory"`
	// Emergency forces the red path regardless of score.
	Emergency bool `json:"emergency"`
	// Force bypasses the duplicate-visit guard (demo tooling only).
	Force bool `json:"force"`
}

// UpdateBookingBody is the JSON payload for a lifecycle action.
type UpdateBookingBody struct {
	// Action is one of: approve, assign, start_consult, discharge, cancel,
	// delay, delete, vitals.
	Action string `json:"action" binding:"required" example:"approve"`

	DoctorID   string `json:"doctor_id,omitempty" example:"doc-1"`
	DoctorName string `json:"doctor_name,omitempty" example:"Dr. Ndlovu"`
	// Minutes is the delay shift; 0 uses the configured default.
	Minutes    int    `json:"minutes,omitempty" example:"15"`
	VitalsNote string `json:"vitals_note,omitempty" example:"BP 150/95, temp 38.2"`

	// Discharge fields.
	Diagnosis   string   `json:"diagnosis,omitempty" example:"Acute bronchitis"`
	Medications []string `json:"medications,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// CreateBooking godoc
// @ID          createBooking
// @Summary     Book a clinic visit
// @Description Creates a queue ticket from a triage assessment. Red assessments take the emergency path (slot now, Emergency En Route); everything else enters Pending Approval with a routine wait slot. A patient can hold only one active ticket at a time.
// @Tags        Booking
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(patient-7)
// @Param       Idempotency-Key  header  string  false "Dedupes retried creates"
// @Param       body             body    handlers.CreateBookingBody  true  "Booking payload"
//
// @Success     201  {object}  domain.Ticket
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Patient already has an active visit"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /booking/create [post]
func (h *Handlers) CreateBooking(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pid := strings.TrimSpace(body.PatientID)
	if pid == "" {
		pid = userID(c)
	}

	// Retried create with a known key: serve the original ticket instead of
	// tripping the duplicate-visit guard against it.
	idemKey, hasKey := middleware.GetIdempotencyKey(c)
	svc, direct := h.bookingSvc.(*services.BookingService)
	if hasKey && direct && middleware.IsReplay(c) {
		if t := h.replayTicket(c, svc, idemKey); t != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusCreated, t)
			return
		}
	}

	t, err := h.bookingSvc.Create(c.Request.Context(), services.TicketDraft{
		PatientID:         pid,
		PatientName:       strings.TrimSpace(body.PatientName),
		Symptoms:          strings.TrimSpace(body.Symptoms),
		Score:             body.TriageScore,
		Category:          strings.TrimSpace(body.Category),
		EmergencyOverride: body.Emergency,
	}, body.Force)
	if err != nil {
		svcFail(c, err)
		return
	}

	// Best effort: a failed write only costs the retry its dedup.
	if hasKey && direct {
		_, _ = repo.CreateIdempotency(c.Request.Context(), svc.DB,
			userID(c), idemScope(c), idemKey, t.ID, http.StatusCreated, h.idemTTL())
	}
	ok(c, http.StatusCreated, t)
}

// UpdateBooking godoc
// @ID          updateBooking
// @Summary     Apply a lifecycle action to a ticket
// @Description Dispatches one state-machine action (approve, assign, start_consult, discharge, cancel, delay, delete, vitals). Actions not permitted from the ticket's current status return 409 invalid_transition; the ticket is left unchanged.
// @Tags        Booking
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(clinic-1)
// @Param       Idempotency-Key  header  string  false "Dedupes retried actions"
// @Param       id               path    string  true  "Ticket ID (UUID)"  format(uuid)
// @Param       body             body    handlers.UpdateBookingBody  true  "Action payload"
//
// @Success     200  {object}  domain.Ticket
// @Success     204  {string}  string  "No Content (delete, discharge)"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Ticket not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Invalid transition"
// @Failure     422  {object}  handlers.ErrorResponse  "Doctor not on duty roster"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /booking/update/{id} [post]
func (h *Handlers) UpdateBooking(c *gin.Context) {
	id := c.Param("id")

	var body UpdateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Action) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action required")
		return
	}

	// Retried action with a known key: repeat the original outcome rather
	// than re-running the transition (which would now be a conflict).
	idemKey, hasKey := middleware.GetIdempotencyKey(c)
	svc, direct := h.bookingSvc.(*services.BookingService)
	if hasKey && direct && middleware.IsReplay(c) {
		rec, err := repo.GetIdempotency(c.Request.Context(), svc.DB,
			userID(c), idemScope(c), idemKey, time.Now().UTC())
		if err == nil {
			if rec.Status == http.StatusNoContent {
				c.Header("Idempotency-Replayed", "true")
				noContent(c)
				return
			}
			if t, terr := repo.GetTicket(c.Request.Context(), svc.DB, rec.TicketID); terr == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, t)
				return
			}
		}
	}

	t, err := h.bookingSvc.UpdateStatus(c.Request.Context(), id,
		services.Action(strings.ToLower(strings.TrimSpace(body.Action))),
		services.ActionPayload{
			DoctorID:    strings.TrimSpace(body.DoctorID),
			DoctorName:  strings.TrimSpace(body.DoctorName),
			Minutes:     body.Minutes,
			VitalsNote:  strings.TrimSpace(body.VitalsNote),
			Diagnosis:   strings.TrimSpace(body.Diagnosis),
			Medications: body.Medications,
			Notes:       strings.TrimSpace(body.Notes),
		})
	if err != nil {
		svcFail(c, err)
		return
	}
	if t == nil {
		// delete and discharge leave nothing to return
		if hasKey && direct {
			_, _ = repo.CreateIdempotency(c.Request.Context(), svc.DB,
				userID(c), idemScope(c), idemKey, id, http.StatusNoContent, h.idemTTL())
		}
		noContent(c)
		return
	}
	if hasKey && direct {
		_, _ = repo.CreateIdempotency(c.Request.Context(), svc.DB,
			userID(c), idemScope(c), idemKey, t.ID, http.StatusOK, h.idemTTL())
	}
	ok(c, http.StatusOK, t)
}

// replayTicket resolves a replayed create to its original ticket. Nil means
// the replay record or the ticket itself is gone; the caller falls through
// to normal processing.
func (h *Handlers) replayTicket(c *gin.Context, svc *services.BookingService, key string) *domain.Ticket {
	ctx := c.Request.Context()
	rec, err := repo.GetIdempotency(ctx, svc.DB, userID(c), idemScope(c), key, time.Now().UTC())
	if err != nil {
		return nil
	}
	t, err := repo.GetTicket(ctx, svc.DB, rec.TicketID)
	if err != nil {
		return nil
	}
	return t
}

// idemScope keys replay records by route pattern, matching the validator
// middleware's lookup scope.
func idemScope(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
