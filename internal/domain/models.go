// Package domain defines the persistence models for the clinic triage
// backend: patient tickets, post-visit clinic records, and triage chat
// sessions. These types are mapped with GORM and form the core data layer
// of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// TicketStatus is the lifecycle state of a patient ticket. The values are
// the display strings consumed by the clinic dashboard.
type TicketStatus string

const (
	StatusPendingApproval  TicketStatus = "Pending Approval"
	StatusConfirmed        TicketStatus = "Confirmed"
	StatusWaitingForDoctor TicketStatus = "Waiting for Doctor"
	StatusInReview         TicketStatus = "In Review"
	StatusDelayed          TicketStatus = "Delayed"
	StatusEmergencyEnRoute TicketStatus = "Emergency En Route"
	StatusCancelled        TicketStatus = "Cancelled"
	StatusCompleted        TicketStatus = "Completed"
)

// Terminal reports whether the status ends the ticket lifecycle. Terminal
// tickets never transition again.
func (s TicketStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// ColorCode is the triage bucket derived from an urgency score.
type ColorCode string

const (
	ColorRed    ColorCode = "red"
	ColorOrange ColorCode = "orange"
	ColorGreen  ColorCode = "green"
)

// CriticalScore is the urgency score at and above which a case is red.
// The clinic convention here is >= 9; the keyword engine emits 9 or 10 for
// red-flag symptoms.
const CriticalScore = 9

// ColorForScore derives the triage color from an urgency score and an
// explicit emergency override. It is the single source of truth for the
// score/color invariant: a ticket's ColorCode must always equal
// ColorForScore(UrgencyScore, override).
func ColorForScore(score int, emergencyOverride bool) ColorCode {
	if emergencyOverride || score >= CriticalScore {
		return ColorRed
	}
	if score >= 6 {
		return ColorOrange
	}
	return ColorGreen
}

// Ticket is a single active patient visit tracked through the queue.
//
// Ownership rules:
//   - the queue/booking services are the only writers of Status, DoctorID,
//     DoctorName, Urgent, and CheckInTime
//   - the classifier output (UrgencyScore, ColorCode, Category) is set at
//     creation and changes only through an explicit re-assessment
type Ticket struct {
	ID           string       `json:"id"            gorm:"type:char(36);primaryKey"`
	PatientID    string       `json:"patient_id"    gorm:"type:varchar(64);not null;index:idx_patient_tickets"`
	PatientName  string       `json:"patient_name"  gorm:"type:varchar(255);not null"`
	SymptomsText string       `json:"symptoms"      gorm:"type:text;not null"`
	UrgencyScore int          `json:"urgency_score" gorm:"not null;check:urgency_score BETWEEN 0 AND 10"`
	ColorCode    ColorCode    `json:"color_code"    gorm:"type:varchar(8);not null"`
	Category     string       `json:"category"      gorm:"type:varchar(64);not null"`
	Status       TicketStatus `json:"status"        gorm:"type:varchar(32);not null;index"`
	Urgent       bool         `json:"urgent"        gorm:"not null;index"`
	DoctorID     *string      `json:"doctor_id,omitempty"   gorm:"type:varchar(64)"`
	DoctorName   *string      `json:"doctor_name,omitempty" gorm:"type:varchar(255)"`
	VitalsNote   string       `json:"vitals_note,omitempty" gorm:"type:text"`
	// CheckInTime is the display slot ("HH:MM"); shifted by delay actions.
	CheckInTime string    `json:"check_in_time" gorm:"type:varchar(8);not null"`
	CreatedAt   time.Time `json:"created_at"    gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "tickets" }

// Active reports whether the ticket still occupies a queue slot.
func (t *Ticket) Active() bool { return !t.Status.Terminal() }

// ClinicRecord is the immutable post-visit entry created when a patient is
// discharged (or when the clinic files a record directly). It outlives the
// ticket that produced it.
type ClinicRecord struct {
	ID          string   `json:"id"           gorm:"type:char(36);primaryKey"`
	PatientID   string   `json:"patient_id"   gorm:"type:varchar(64);not null;index:idx_patient_records"`
	PatientName string   `json:"patient_name" gorm:"type:varchar(255);not null"`
	Diagnosis   string   `json:"diagnosis"    gorm:"type:text;not null"`
	Medications []string `json:"medications"  gorm:"serializer:json;type:text"`
	Notes       string   `json:"notes"        gorm:"type:text"`
	DoctorName  string   `json:"doctor_name"  gorm:"type:varchar(255)"`
	Date        string   `json:"date"         gorm:"type:varchar(16);not null"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ClinicRecord.
func (ClinicRecord) TableName() string { return "clinic_records" }

// SessionState is the conversation-manager state of a triage chat.
type SessionState string

const (
	SessionGreeting  SessionState = "greeting"
	SessionGathering SessionState = "gathering"
	SessionReady     SessionState = "ready"
	SessionClosed    SessionState = "closed"
)

// Session is one triage conversation with a patient. A session accumulates
// turns append-only; once enough information is gathered the final
// assessment columns are filled in. A booking created from the session
// closes it, but session and ticket remain separate rows.
type Session struct {
	ID          string       `json:"id"           gorm:"type:char(36);primaryKey"`
	PatientID   string       `json:"patient_id"   gorm:"type:varchar(64);not null;index:idx_patient_sessions"`
	PatientName string       `json:"patient_name" gorm:"type:varchar(255)"`
	State       SessionState `json:"state"        gorm:"type:varchar(16);not null"`

	// Final assessment snapshot; nil score means no assessment yet. A newer
	// assessment overwrites these for booking purposes without retracting
	// earlier chat turns.
	FinalScore    *int      `json:"final_score,omitempty"`
	FinalColor    ColorCode `json:"final_color,omitempty"    gorm:"type:varchar(8)"`
	FinalCategory string    `json:"final_category,omitempty" gorm:"type:varchar(64)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "triage_sessions" }

// Turn author roles.
const (
	RolePatient   = "patient"
	RoleAssistant = "assistant"
)

// Turn is a single utterance within a triage session, authored by either
// the "patient" or the "assistant". Turns are never reordered or dropped.
type Turn struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	SessionID string    `json:"session_id" gorm:"type:char(36);not null;index:idx_session_turns,priority:1"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('patient','assistant')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	Seq       int       `json:"seq"        gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_session_turns,priority:2"`

	Session Session `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Turn.
func (Turn) TableName() string { return "triage_turns" }

// Doctor is an on-duty clinician available for assignment. The roster is
// injected configuration, not state owned by this service.
type Doctor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
