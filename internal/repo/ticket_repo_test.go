package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mkTicket(patientID string, score int, status domain.TicketStatus, urgent bool, createdAt time.Time) *domain.Ticket {
	return &domain.Ticket{
		PatientID:    patientID,
		PatientName:  "Patient " + patientID,
		SymptomsText: "test symptoms",
		UrgencyScore: score,
		ColorCode:    domain.ColorForScore(score, urgent),
		Category:     "Routine",
		Status:       status,
		Urgent:       urgent,
		CheckInTime:  "09:00",
		CreatedAt:    createdAt,
	}
}

func TestListTickets_CanonicalOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// Insert out of order on purpose.
	routineOld := mkTicket("p1", 3, domain.StatusPendingApproval, false, base)
	routineNew := mkTicket("p2", 3, domain.StatusPendingApproval, false, base.Add(time.Minute))
	moderate := mkTicket("p3", 7, domain.StatusConfirmed, false, base.Add(2*time.Minute))
	emergency := mkTicket("p4", 10, domain.StatusEmergencyEnRoute, true, base.Add(3*time.Minute))
	for _, tk := range []*domain.Ticket{routineNew, moderate, routineOld, emergency} {
		if err := CreateTicket(ctx, db, tk); err != nil {
			t.Fatalf("CreateTicket: %v", err)
		}
	}

	got, err := ListTickets(ctx, db, TicketFilter{})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	wantOrder := []string{emergency.ID, moderate.ID, routineOld.ID, routineNew.ID}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d; want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: got %s want %s", i, got[i].ID, id)
		}
	}
	// Adjacent-pair invariant.
	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		if a.Urgent == b.Urgent && a.UrgencyScore == b.UrgencyScore && a.CreatedAt.After(b.CreatedAt) {
			t.Errorf("tie-break violated between %s and %s", a.ID, b.ID)
		}
	}
}

func TestActiveTicketForPatient(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	cancelled := mkTicket("p9", 4, domain.StatusCancelled, false, now.Add(-time.Hour))
	open := mkTicket("p9", 4, domain.StatusConfirmed, false, now)
	for _, tk := range []*domain.Ticket{cancelled, open} {
		if err := CreateTicket(ctx, db, tk); err != nil {
			t.Fatalf("CreateTicket: %v", err)
		}
	}

	got, err := ActiveTicketForPatient(ctx, db, "p9")
	if err != nil {
		t.Fatalf("ActiveTicketForPatient: %v", err)
	}
	if got.ID != open.ID {
		t.Fatalf("got %s; want the open ticket %s", got.ID, open.ID)
	}

	if _, err := ActiveTicketForPatient(ctx, db, "nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTicketGuarded_RowsAffected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tk := mkTicket("p5", 3, domain.StatusPendingApproval, false, time.Now().UTC())
	if err := CreateTicket(ctx, db, tk); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// Allowed transition.
	rows, err := UpdateTicketGuarded(ctx, db, tk.ID,
		[]domain.TicketStatus{domain.StatusPendingApproval},
		map[string]any{"status": domain.StatusConfirmed})
	if err != nil || rows != 1 {
		t.Fatalf("approve: rows=%d err=%v; want 1, nil", rows, err)
	}

	// Guard now fails: source state no longer matches.
	rows, err = UpdateTicketGuarded(ctx, db, tk.ID,
		[]domain.TicketStatus{domain.StatusPendingApproval},
		map[string]any{"status": domain.StatusConfirmed})
	if err != nil || rows != 0 {
		t.Fatalf("second approve: rows=%d err=%v; want 0, nil", rows, err)
	}

	// Status unchanged by the failed guard.
	cur, err := GetTicket(ctx, db, tk.ID)
	if err != nil {
		t.Fatalf("GetTicket: %v", err)
	}
	if cur.Status != domain.StatusConfirmed {
		t.Fatalf("status = %q; want Confirmed", cur.Status)
	}
}

func TestDeleteTicketGuarded_OnlyFromCancelled(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tk := mkTicket("p6", 3, domain.StatusConfirmed, false, time.Now().UTC())
	if err := CreateTicket(ctx, db, tk); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	rows, err := DeleteTicketGuarded(ctx, db, tk.ID, domain.StatusCancelled)
	if err != nil || rows != 0 {
		t.Fatalf("delete from Confirmed: rows=%d err=%v; want 0, nil", rows, err)
	}

	if _, err := UpdateTicketGuarded(ctx, db, tk.ID,
		[]domain.TicketStatus{domain.StatusConfirmed},
		map[string]any{"status": domain.StatusCancelled, "urgent": false}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	rows, err = DeleteTicketGuarded(ctx, db, tk.ID, domain.StatusCancelled)
	if err != nil || rows != 1 {
		t.Fatalf("delete from Cancelled: rows=%d err=%v; want 1, nil", rows, err)
	}

	if _, err := GetTicket(ctx, db, tk.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestQueueStatsNow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, tk := range []*domain.Ticket{
		mkTicket("a", 10, domain.StatusEmergencyEnRoute, true, now),
		mkTicket("b", 7, domain.StatusDelayed, false, now),
		mkTicket("c", 2, domain.StatusPendingApproval, false, now),
		mkTicket("d", 2, domain.StatusCancelled, false, now),
	} {
		if err := CreateTicket(ctx, db, tk); err != nil {
			t.Fatalf("CreateTicket: %v", err)
		}
	}

	s, err := QueueStatsNow(ctx, db)
	if err != nil {
		t.Fatalf("QueueStatsNow: %v", err)
	}
	if s.Active != 3 {
		t.Errorf("Active = %d; want 3", s.Active)
	}
	if s.Critical != 1 {
		t.Errorf("Critical = %d; want 1", s.Critical)
	}
	if s.Delayed != 1 {
		t.Errorf("Delayed = %d; want 1", s.Delayed)
	}
}
