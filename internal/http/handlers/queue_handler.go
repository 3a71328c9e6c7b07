// Queue HTTP handlers.
//
// This file exposes the clinic dashboard's read side of the live queue:
//   - GET /queue          (canonically ordered active tickets)
//   - GET /queue/{id}     (one ticket)
//
// The queue is poll-based: every GET reflects the latest committed state,
// so two dashboards refreshing concurrently always see the same order.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"
)

// ListQueue godoc
// @ID          listQueue
// @Summary     List the live queue
// @Description Returns tickets in canonical queue order: emergencies first, then descending urgency, then arrival time. Filters are optional; by default only active (non-terminal) tickets are returned.
// @Tags        Queue
// @Produce     json
//
// @Param       X-User-ID   header  string  false "User ID (demo header)"  example(clinic-1)
// @Param       patient_id  query   string  false "Only this patient's tickets"
// @Param       doctor_id   query   string  false "Only tickets assigned to this doctor"
// @Param       status      query   string  false "Only tickets in this status"  example(Pending Approval)
// @Param       all         query   bool    false "Include terminal tickets"
//
// @Success     200  {object}  map[string]any
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queue [get]
func (h *Handlers) ListQueue(c *gin.Context) {
	f := repo.TicketFilter{
		PatientID:  strings.TrimSpace(c.Query("patient_id")),
		DoctorID:   strings.TrimSpace(c.Query("doctor_id")),
		ActiveOnly: c.Query("all") == "",
	}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		f.Status = domain.TicketStatus(s)
		f.ActiveOnly = false
	}

	tickets, err := h.queueSvc.List(c.Request.Context(), f)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"tickets": tickets, "count": len(tickets)})
}

// GetTicket godoc
// @ID          getTicket
// @Summary     Get one ticket
// @Tags        Queue
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(clinic-1)
// @Param       id         path    string  true  "Ticket ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Ticket
// @Failure     404  {object}  handlers.ErrorResponse  "Ticket not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queue/{id} [get]
func (h *Handlers) GetTicket(c *gin.Context) {
	t, err := h.queueSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}
