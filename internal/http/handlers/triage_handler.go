// Triage HTTP handlers.
//
// This file exposes the patient-facing triage conversation endpoints:
//   - POST /triage/assess    (one chat turn: message in, reply/assessment out)
//   - GET  /triage/history   (persisted turn log for the open session)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lyflify/go-triage-backend/internal/services"
)

// AssessBody is the JSON payload for one triage chat turn.
type AssessBody struct {
	// PatientID overrides the authenticated identity (clinic kiosks assess
	// on behalf of walk-ins). Defaults to the caller's identity.
	PatientID string `json:"patient_id" example:"patient-7"`
	// PatientName is used in greetings and on the eventual ticket.
	PatientName string `json:"patient_name" example:"Thandi M"`
	// Message is the patient's utterance for this turn.
	Message string `json:"message" binding:"required" example:"I have a persistent cough"`
	// History optionally carries prior turns for stateless clients.
	History []services.ChatMessage `json:"chat_history,omitempty"`
}

// Assess godoc
// @ID          triageAssess
// @Summary     Send one triage chat message
// @Description Appends a patient message to the triage conversation and returns the assistant reply. When enough information has been gathered (or an emergency is detected) the reply carries a final urgency assessment and the booking prompt.
// @Tags        Triage
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(patient-7)
// @Param       body       body    handlers.AssessBody  true  "Chat turn payload"
//
// @Success     200  {object}  services.AssessReply
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /triage/assess [post]
func (h *Handlers) Assess(c *gin.Context) {
	var body AssessBody
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message required")
		return
	}

	pid := strings.TrimSpace(body.PatientID)
	if pid == "" {
		pid = userID(c)
	}

	reply, err := h.triageSvc.Assess(c.Request.Context(), services.AssessRequest{
		PatientID:   pid,
		PatientName: strings.TrimSpace(body.PatientName),
		Message:     body.Message,
		History:     body.History,
	})
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, reply)
}

// TriageHistory godoc
// @ID          triageHistory
// @Summary     Get the open triage conversation
// @Description Returns the persisted turn log of the patient's open triage session, in order. Empty when no conversation is in progress.
// @Tags        Triage
// @Produce     json
//
// @Param       X-User-ID   header  string  false "User ID (demo header)"  example(patient-7)
// @Param       patient_id  query   string  false "Patient override (clinic staff)"
//
// @Success     200  {object}  map[string]any
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /triage/history [get]
func (h *Handlers) TriageHistory(c *gin.Context) {
	pid := strings.TrimSpace(c.Query("patient_id"))
	if pid == "" {
		pid = userID(c)
	}

	turns, err := h.triageSvc.History(c.Request.Context(), pid)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"patient_id": pid, "turns": turns})
}
