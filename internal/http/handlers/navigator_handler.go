// Navigator HTTP handlers.
//
// This file exposes the patient navigator and clinic analytics endpoints:
//   - GET  /navigator/status      (where am I in the queue)
//   - GET  /navigator/analytics   (dashboard report)
//   - GET  /navigator/insights    (narrative insight feed)
//   - POST /navigator/delay       (clinic-wide crisis delay)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lyflify/go-triage-backend/internal/utils"
)

// PatientStatus godoc
// @ID          navigatorStatus
// @Summary     Get the patient's queue status
// @Description Reports the patient's active ticket, queue position, estimated slot, and waiting-room advice. Patients without an active visit get a pointer back to triage rather than an error.
// @Tags        Navigator
// @Produce     json
//
// @Param       X-User-ID   header  string  false "User ID (demo header)"  example(patient-7)
// @Param       patient_id  query   string  false "Patient override (clinic staff)"
//
// @Success     200  {object}  services.PatientStatus
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /navigator/status [get]
func (h *Handlers) PatientStatus(c *gin.Context) {
	pid := strings.TrimSpace(c.Query("patient_id"))
	if pid == "" {
		pid = userID(c)
	}

	st, err := h.navSvc.Status(c.Request.Context(), pid)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// Analytics godoc
// @ID          navigatorAnalytics
// @Summary     Get the clinic dashboard report
// @Description Returns the metric cards, hourly traffic, and diagnosis breakdown computed from the live queue and the trailing completed-visit window.
// @Tags        Navigator
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(clinic-1)
//
// @Success     200  {object}  analytics.Report
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /navigator/analytics [get]
func (h *Handlers) Analytics(c *gin.Context) {
	r, err := h.navSvc.Analytics(c.Request.Context())
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// Insights godoc
// @ID          navigatorInsights
// @Summary     Get the operational insight feed
// @Description Returns deterministic narrative insights derived from the current analytics report.
// @Tags        Navigator
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(clinic-1)
//
// @Success     200  {object}  map[string]any
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /navigator/insights [get]
func (h *Handlers) Insights(c *gin.Context) {
	insights, err := h.navSvc.Insights(c.Request.Context())
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"insights": insights})
}

// GlobalDelay godoc
// @ID          navigatorDelay
// @Summary     Apply a clinic-wide delay
// @Description Shifts the slot time of every active ticket forward and marks them Delayed. The shift is additive across calls. Minutes defaults to the configured delay step when omitted or non-positive.
// @Tags        Navigator
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(clinic-1)
// @Param       minutes    query   int     false "Delay shift in minutes"  default(15)
//
// @Success     200  {object}  map[string]any
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /navigator/delay [post]
func (h *Handlers) GlobalDelay(c *gin.Context) {
	minutes := utils.AtoiDefault(c.Query("minutes"), 0)

	n, err := h.navSvc.GlobalDelay(c.Request.Context(), minutes)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"delayed": n, "minutes": minutes})
}
