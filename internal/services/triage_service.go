// Package services – TriageService
//
// This file implements the triage conversation manager. It owns the chat
// sessions: each patient message is appended to a persistent turn log, the
// accumulated symptom description is run through the classifier, and the
// manager decides whether to ask a clarifying question or emit a final
// assessment. Red-flag input short-circuits straight to an emergency
// assessment regardless of how little else has been said.
//
// The manager is deliberately defensive about the classifier: a timed-out
// assessment degrades to a neutral "try again" reply instead of an error,
// so the conversation never dead-ends on the patient.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
	"github.com/lyflify/go-triage-backend/internal/repo"
	"github.com/lyflify/go-triage-backend/internal/triage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChatMessage is one prior turn supplied by the client alongside the new
// message. Role is "patient" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssessRequest is one patient turn in a triage conversation.
type AssessRequest struct {
	PatientID   string        `json:"patient_id"`
	PatientName string        `json:"patient_name"`
	Message     string        `json:"message"`
	History     []ChatMessage `json:"chat_history,omitempty"`
}

// AssessReply is the conversation manager's response to one patient turn.
// Score, Color and Category are set only when ShowBooking is true.
type AssessReply struct {
	ReplyMessage      string           `json:"reply_message"`
	ShowBooking       bool             `json:"show_booking"`
	Score             *int             `json:"triage_score,omitempty"`
	Color             domain.ColorCode `json:"color_code,omitempty"`
	Category          string           `json:"category,omitempty"`
	RecommendedAction string           `json:"recommended_action,omitempty"`
}

// TriageService drives triage conversations. Safe for concurrent use; turns
// for one patient serialize through per-session locks.
type TriageService struct {
	DB       *gorm.DB
	Assessor triage.Assessor

	// Coverage reports which triage aspects a symptom text already covers.
	// Defaults to the classifier's own coverage when the assessor is a
	// *triage.Classifier; injectable for tests.
	Coverage func(string) triage.Coverage

	locks *ticketLocks
}

// NewTriageService constructs a TriageService around the given assessor.
func NewTriageService(db *gorm.DB, assessor triage.Assessor) *TriageService {
	s := &TriageService{
		DB:       db,
		Assessor: assessor,
		locks:    newTicketLocks(),
	}
	if c, ok := assessor.(*triage.Classifier); ok {
		s.Coverage = c.Coverage
	} else if g, ok := assessor.(triage.Guard); ok {
		if c, ok := g.Inner.(*triage.Classifier); ok {
			s.Coverage = c.Coverage
		}
	}
	if s.Coverage == nil {
		s.Coverage = func(string) triage.Coverage {
			return triage.Coverage{Symptom: true, Severity: true}
		}
	}
	return s
}

// Assess processes one patient message: it persists the turn, classifies the
// accumulated symptom description, and returns either a clarifying question
// or a final assessment with the booking prompt.
func (s *TriageService) Assess(ctx context.Context, req AssessRequest) (AssessReply, error) {
	tr := otel.Tracer("services/TriageService")
	ctx, span := tr.Start(ctx, "Assess",
		trace.WithAttributes(attribute.String("patient.id", req.PatientID)),
	)
	defer span.End()

	if strings.TrimSpace(req.PatientID) == "" || strings.TrimSpace(req.Message) == "" {
		return AssessReply{}, ErrValidation
	}
	req.PatientName = displayName(req.PatientName)

	unlock := s.locks.acquire("session:" + req.PatientID)
	defer unlock()

	sess, err := s.sessionFor(ctx, req)
	if err != nil {
		return AssessReply{}, err
	}
	if _, err := repo.AppendTurn(s.DB.WithContext(ctx), sess.ID, domain.RolePatient, req.Message); err != nil {
		return AssessReply{}, err
	}

	reply, err := s.respond(ctx, sess, req)
	if err != nil {
		return AssessReply{}, err
	}

	if _, err := repo.AppendTurn(s.DB.WithContext(ctx), sess.ID, domain.RoleAssistant, reply.ReplyMessage); err != nil {
		return AssessReply{}, err
	}
	return reply, nil
}

// History returns the persisted turn log for the patient's open session, in
// order. An empty slice means no conversation is in progress.
func (s *TriageService) History(ctx context.Context, patientID string) ([]domain.Turn, error) {
	sess, err := repo.ActiveSessionForPatient(ctx, s.DB, patientID)
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return []domain.Turn{}, nil
	}
	if err != nil {
		return nil, err
	}
	return repo.ListTurns(ctx, s.DB, sess.ID)
}

// sessionFor fetches the patient's open session or starts a new one.
func (s *TriageService) sessionFor(ctx context.Context, req AssessRequest) (*domain.Session, error) {
	sess, err := repo.ActiveSessionForPatient(ctx, s.DB, req.PatientID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repo.ErrNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return repo.CreateSession(ctx, s.DB, req.PatientID, req.PatientName)
}

// nameCaser title-cases patient names for greetings without downcasing
// existing capitals ("thandi m" becomes "Thandi M", "McDonald" stays).
var nameCaser = cases.Title(language.English, cases.NoLower)

// displayName normalizes the patient name used in greetings and on sessions.
func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Patient"
	}
	return nameCaser.String(name)
}

// respond decides what to say back for the turn just appended.
func (s *TriageService) respond(ctx context.Context, sess *domain.Session, req AssessRequest) (AssessReply, error) {
	msg := strings.TrimSpace(req.Message)

	// Once an emergency has been flagged, reassurance attempts get a firm
	// restatement, not a downgrade. Score stands until a clinician sees them.
	if sess.State == domain.SessionReady && sess.FinalColor == domain.ColorRed && isDoubt(msg) {
		return s.finalReply(sess,
			"I understand this is frightening, but your symptoms are not something to wait on. "+
				"Please stay where you are; help is on the way. Try to stay calm and keep breathing slowly."), nil
	}

	symptoms := s.symptomText(ctx, sess, req)

	// A bare greeting before any symptoms: welcome, don't classify.
	if isGreeting(msg) && strings.TrimSpace(symptoms) == "" {
		if sess.State == domain.SessionGreeting {
			if err := repo.UpdateSessionState(ctx, s.DB, sess.ID, domain.SessionGathering); err != nil {
				return AssessReply{}, err
			}
		}
		return AssessReply{
			ReplyMessage: fmt.Sprintf("Sawubona %s! I'm the LyfLify triage assistant. What brings you in today? "+
				"Please describe your symptoms in your own words.", req.PatientName),
		}, nil
	}

	a, err := s.Assessor.Assess(ctx, symptoms)
	if err != nil {
		if errors.Is(err, triage.ErrTimeout) {
			// Degraded mode: the fallback assessment exists but we do not
			// book on it. Invite the patient to resend.
			return AssessReply{
				ReplyMessage: "I'm having trouble connecting right now. Please tell me your symptoms again, " +
					"and if this is an emergency go to the front desk immediately.",
			}, nil
		}
		return AssessReply{}, err
	}

	if a.Urgent() {
		return s.emitFinal(ctx, sess, a,
			"This sounds like a medical emergency. I have flagged you as critical and the clinical team "+
				"has been alerted. Please stay calm, stay where you are, and press the booking button so "+
				"we can bring you straight through.")
	}

	cov := s.Coverage(symptoms)
	if a.Confident && cov.Sufficient() {
		var lead string
		if a.Color == domain.ColorOrange {
			lead = "Thank you, that gives me a clear picture. You should be seen today. "
		} else {
			lead = "Thanks, I have what I need. This looks routine, nothing alarming in what you've described. "
		}
		return s.emitFinal(ctx, sess, a,
			lead+"I've prepared your triage assessment; tap the booking button to reserve your spot in the queue.")
	}

	if sess.State == domain.SessionGreeting {
		if err := repo.UpdateSessionState(ctx, s.DB, sess.ID, domain.SessionGathering); err != nil {
			return AssessReply{}, err
		}
	}
	return AssessReply{ReplyMessage: clarifyQuestion(cov)}, nil
}

// emitFinal records the assessment on the session and returns the booking
// reply.
func (s *TriageService) emitFinal(ctx context.Context, sess *domain.Session, a triage.Assessment, reply string) (AssessReply, error) {
	if err := repo.SetFinalAssessment(ctx, s.DB, sess.ID, a.Score, a.Color, a.Category); err != nil {
		return AssessReply{}, err
	}
	assessments.WithLabelValues(string(a.Color)).Inc()
	sess.State = domain.SessionReady
	sess.FinalScore = &a.Score
	sess.FinalColor = a.Color
	sess.FinalCategory = a.Category

	score := a.Score
	return AssessReply{
		ReplyMessage:      reply,
		ShowBooking:       true,
		Score:             &score,
		Color:             a.Color,
		Category:          a.Category,
		RecommendedAction: a.RecommendedAction,
	}, nil
}

// finalReply re-presents the session's stored assessment with a new message.
func (s *TriageService) finalReply(sess *domain.Session, msg string) AssessReply {
	r := AssessReply{
		ReplyMessage: msg,
		ShowBooking:  true,
		Color:        sess.FinalColor,
		Category:     sess.FinalCategory,
	}
	if sess.FinalScore != nil {
		v := *sess.FinalScore
		r.Score = &v
	}
	return r
}

// symptomText reconstructs the accumulated symptom description from the
// persisted patient turns, skipping bare greetings. Falls back to
// client-supplied history plus the current message when the log is empty
// (stateless clients).
func (s *TriageService) symptomText(ctx context.Context, sess *domain.Session, req AssessRequest) string {
	var parts []string
	turns, err := repo.ListTurns(ctx, s.DB, sess.ID)
	if err == nil && len(turns) > 0 {
		for _, t := range turns {
			if t.Role == domain.RolePatient && !isGreeting(t.Content) {
				parts = append(parts, t.Content)
			}
		}
	} else {
		for _, m := range req.History {
			if m.Role == domain.RolePatient && !isGreeting(m.Content) {
				parts = append(parts, m.Content)
			}
		}
		if !isGreeting(req.Message) {
			parts = append(parts, req.Message)
		}
	}
	return strings.Join(parts, ". ")
}

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hiya": {}, "howzit": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"sawubona": {}, "molo": {}, "dumela": {},
}

// isGreeting reports whether the message is a bare greeting with no clinical
// content.
func isGreeting(msg string) bool {
	m := strings.ToLower(strings.TrimSpace(msg))
	m = strings.Trim(m, "!.,? ")
	_, ok := greetings[m]
	return ok
}

// isDoubt recognizes attempts to talk the assistant out of an emergency
// rating.
func isDoubt(msg string) bool {
	m := strings.ToLower(msg)
	for _, p := range []string{
		"are you sure", "probably nothing", "it's nothing", "its nothing",
		"overreacting", "not that bad", "i'm fine", "im fine", "calm down",
		"no need", "don't worry", "dont worry",
	} {
		if strings.Contains(m, p) {
			return true
		}
	}
	return false
}

// clarifyQuestion picks the next deterministic clarifying question from the
// coverage gaps, in fixed priority order: symptom, then duration, then
// severity.
func clarifyQuestion(cov triage.Coverage) string {
	switch {
	case !cov.Symptom:
		return "I want to make sure I understand. Can you describe the main symptom that's bothering you? " +
			"For example, where it hurts or what feels wrong."
	case !cov.Duration:
		return "Thank you. How long has this been going on? A few hours, days, or longer?"
	default:
		return "And how bad is it right now? Would you call it mild, moderate, or severe?"
	}
}
