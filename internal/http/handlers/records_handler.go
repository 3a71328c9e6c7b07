// Records HTTP handlers.
//
// This file exposes the clinic record history and the prescription
// explainer:
//   - POST /records/create
//   - GET  /records/patient     (one patient's history)
//   - GET  /records/patients    (per-patient rollup for the clinic view)
//   - POST /records/explain     (plain-language prescription)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lyflify/go-triage-backend/internal/services"
)

// CreateRecordBody is the JSON payload for writing a clinic record directly
// (outside the discharge flow).
type CreateRecordBody struct {
	PatientID   string   `json:"patient_id" example:"patient-7"`
	PatientName string   `json:"patient_name" example:"Thandi M"`
	Diagnosis   string   `json:"diagnosis" binding:"required" example:"Acute bronchitis"`
	Medications []string `json:"medications"`
	Notes       string   `json:"notes"`
	DoctorName  string   `json:"doctor_name" example:"Dr. Ndlovu"`
	Date        string   `json:"date" example:"2026-03-02"`
}

// ExplainBody is the JSON payload for the prescription explainer.
type ExplainBody struct {
	Diagnosis   string   `json:"diagnosis" binding:"required" example:"Acute bronchitis"`
	Medications []string `json:"medications"`
	Notes       string   `json:"notes"`
}

// CreateRecord godoc
// @ID          createRecord
// @Summary     Write a clinic record
// @Description Appends an immutable visit record to the patient's history. Records written here sit alongside those created automatically at discharge.
// @Tags        Records
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(clinic-1)
// @Param       body       body    handlers.CreateRecordBody  true  "Record payload"
//
// @Success     201  {object}  domain.ClinicRecord
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /records/create [post]
func (h *Handlers) CreateRecord(c *gin.Context) {
	var body CreateRecordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	pid := strings.TrimSpace(body.PatientID)
	if pid == "" {
		pid = userID(c)
	}

	r, err := h.recordsSvc.Create(c.Request.Context(), services.RecordDraft{
		PatientID:   pid,
		PatientName: strings.TrimSpace(body.PatientName),
		Diagnosis:   strings.TrimSpace(body.Diagnosis),
		Medications: body.Medications,
		Notes:       strings.TrimSpace(body.Notes),
		DoctorName:  strings.TrimSpace(body.DoctorName),
		Date:        strings.TrimSpace(body.Date),
	})
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// PatientRecords godoc
// @ID          patientRecords
// @Summary     Get a patient's visit history
// @Tags        Records
// @Produce     json
//
// @Param       X-User-ID   header  string  false "User ID (demo header)"  example(patient-7)
// @Param       patient_id  query   string  false "Patient override (clinic staff)"
//
// @Success     200  {object}  map[string]any
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /records/patient [get]
func (h *Handlers) PatientRecords(c *gin.Context) {
	pid := strings.TrimSpace(c.Query("patient_id"))
	if pid == "" {
		pid = userID(c)
	}

	recs, err := h.recordsSvc.ListByPatient(c.Request.Context(), pid)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"patient_id": pid, "records": recs})
}

// AllPatients godoc
// @ID          allPatients
// @Summary     List all patients with recorded history
// @Description Returns one rollup row per patient (record count, last visit), ordered by most recent visit.
// @Tags        Records
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(clinic-1)
//
// @Success     200  {object}  map[string]any
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /records/patients [get]
func (h *Handlers) AllPatients(c *gin.Context) {
	patients, err := h.recordsSvc.AllPatients(c.Request.Context())
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"patients": patients})
}

// ExplainPrescription godoc
// @ID          explainPrescription
// @Summary     Explain a prescription in plain language
// @Description Rewrites clinical shorthand (od, bd, tds, prn, ...) into a warm plain-language explanation the patient can take home.
// @Tags        Records
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(patient-7)
// @Param       body       body    handlers.ExplainBody  true  "Prescription payload"
//
// @Success     200  {object}  map[string]any
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /records/explain [post]
func (h *Handlers) ExplainPrescription(c *gin.Context) {
	var body ExplainBody
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Diagnosis) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "diagnosis required")
		return
	}

	explanation := h.recordsSvc.ExplainDraft(body.Diagnosis, body.Medications, body.Notes)
	ok(c, http.StatusOK, gin.H{"explanation": explanation})
}
