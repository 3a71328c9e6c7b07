package repo

import (
	"context"
	"testing"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := ActiveSessionForPatient(ctx, db, "p1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s, err := CreateSession(ctx, db, "p1", "Thabo")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.State != domain.SessionGreeting {
		t.Fatalf("new session state = %q; want greeting", s.State)
	}

	got, err := ActiveSessionForPatient(ctx, db, "p1")
	if err != nil || got.ID != s.ID {
		t.Fatalf("ActiveSessionForPatient: got %v err %v", got, err)
	}

	if err := SetFinalAssessment(ctx, db, s.ID, 7, domain.ColorOrange, "Infection"); err != nil {
		t.Fatalf("SetFinalAssessment: %v", err)
	}
	got, _ = ActiveSessionForPatient(ctx, db, "p1")
	if got.State != domain.SessionReady || got.FinalScore == nil || *got.FinalScore != 7 {
		t.Fatalf("assessment not recorded: %+v", got)
	}

	if err := CloseSessionsForPatient(ctx, db, "p1"); err != nil {
		t.Fatalf("CloseSessionsForPatient: %v", err)
	}
	if _, err := ActiveSessionForPatient(ctx, db, "p1"); err != ErrNotFound {
		t.Fatalf("session should be closed, got %v", err)
	}
}

func TestAppendTurn_PreservesOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, db, "p2", "Gogo")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	contents := []string{"hello", "I have a headache", "how long has it hurt?", "since this morning"}
	roles := []string{"patient", "patient", "assistant", "patient"}
	for i := range contents {
		if _, err := AppendTurn(db, s.ID, roles[i], contents[i]); err != nil {
			t.Fatalf("AppendTurn(%d): %v", i, err)
		}
	}

	turns, err := ListTurns(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("ListTurns: %v", err)
	}
	if len(turns) != len(contents) {
		t.Fatalf("len = %d; want %d", len(turns), len(contents))
	}
	for i, turn := range turns {
		if turn.Content != contents[i] || turn.Role != roles[i] {
			t.Errorf("turn %d = %s/%q; want %s/%q", i, turn.Role, turn.Content, roles[i], contents[i])
		}
		if turn.Seq != i+1 {
			t.Errorf("turn %d seq = %d; want %d", i, turn.Seq, i+1)
		}
	}
}

func TestRecordsAndSummaries(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, r := range []*domain.ClinicRecord{
		{PatientID: "p1", PatientName: "Thabo", Diagnosis: "Flu", Medications: []string{"Rest"}, Date: "2026-02-01"},
		{PatientID: "p1", PatientName: "Thabo", Diagnosis: "Tonsillitis", Medications: []string{"Amoxicillin 500mg TDS"}, Date: "2026-03-01"},
		{PatientID: "p2", PatientName: "Sarah", Diagnosis: "Sprain", Date: "2026-02-15"},
	} {
		if err := CreateRecord(db, r); err != nil {
			t.Fatalf("CreateRecord: %v", err)
		}
	}

	recs, err := ListRecordsByPatient(ctx, db, "p1")
	if err != nil {
		t.Fatalf("ListRecordsByPatient: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d; want 2", len(recs))
	}
	if len(recs[1].Medications) == 0 && len(recs[0].Medications) == 0 {
		t.Error("medications did not round-trip through the JSON serializer")
	}

	sums, err := ListPatientSummaries(ctx, db)
	if err != nil {
		t.Fatalf("ListPatientSummaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries len = %d; want 2", len(sums))
	}
	if sums[0].PatientID != "p1" || sums[0].RecordCount != 2 {
		t.Errorf("first summary = %+v; want p1 with 2 records", sums[0])
	}
}
