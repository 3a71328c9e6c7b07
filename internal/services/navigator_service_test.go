package services

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newNavigator(t *testing.T) (*QueueService, *BookingService, *NavigatorService) {
	t.Helper()
	q, b := newServices(t)
	n := NewNavigatorService(q.DB, q)
	n.Now = q.Now
	return q, b, n
}

func TestStatusWithoutActiveVisit(t *testing.T) {
	ctx := context.Background()
	_, _, n := newNavigator(t)

	st, err := n.Status(ctx, "p-ghost")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.HasActiveVisit {
		t.Error("expected no active visit")
	}
	if !strings.Contains(st.Advice, "triage assistant") {
		t.Errorf("advice = %q, want pointer back to triage", st.Advice)
	}
}

func TestStatusReportsQueuePosition(t *testing.T) {
	ctx := context.Background()
	_, b, n := newNavigator(t)

	if _, err := b.Create(ctx, draft("p-1", 5), false); err != nil {
		t.Fatalf("Create p-1: %v", err)
	}
	second, err := b.Create(ctx, draft("p-2", 4), false)
	if err != nil {
		t.Fatalf("Create p-2: %v", err)
	}

	st, err := n.Status(ctx, "p-2")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.HasActiveVisit || st.TicketID != second.ID {
		t.Fatalf("status = %+v", st)
	}
	if st.QueuePosition != 2 {
		t.Errorf("position = %d, want 2", st.QueuePosition)
	}
	if st.EstimatedTime == "" {
		t.Error("missing estimated slot")
	}
}

func TestStatusEmergencyAdvice(t *testing.T) {
	ctx := context.Background()
	_, b, n := newNavigator(t)

	d := draft("p-red", 9)
	if _, err := b.Create(ctx, d, false); err != nil {
		t.Fatalf("Create: %v", err)
	}

	st, err := n.Status(ctx, "p-red")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !strings.Contains(st.Advice, "front desk") {
		t.Errorf("advice = %q, want emergency routing", st.Advice)
	}
}

func TestStatusRequiresPatientID(t *testing.T) {
	_, _, n := newNavigator(t)
	if _, err := n.Status(context.Background(), ""); err != ErrValidation {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAnalyticsCountsQueueAndCompletedWindow(t *testing.T) {
	ctx := context.Background()
	_, b, n := newNavigator(t)

	if _, err := b.Create(ctx, draft("p-1", 6), false); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// One completed visit inside the window.
	recs := NewRecordsService(n.DB)
	if _, err := recs.Create(ctx, RecordDraft{PatientID: "p-done", Diagnosis: "Tension headache"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	r, err := n.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if r.ActiveQueue != 1 {
		t.Errorf("ActiveQueue = %d, want 1", r.ActiveQueue)
	}
	if r.EfficiencyPct != 50 {
		t.Errorf("EfficiencyPct = %d, want 50 (1 done / 1 active)", r.EfficiencyPct)
	}
}

func TestInsightsNonEmpty(t *testing.T) {
	_, _, n := newNavigator(t)

	insights, err := n.Insights(context.Background())
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(insights) == 0 {
		t.Fatal("expected at least one insight line")
	}
}

func TestGlobalDelayDelegatesToQueue(t *testing.T) {
	ctx := context.Background()
	_, b, n := newNavigator(t)

	if _, err := b.Create(ctx, draft("p-1", 5), false); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := b.Create(ctx, draft("p-2", 3), false); err != nil {
		t.Fatalf("Create: %v", err)
	}

	shifted, err := n.GlobalDelay(ctx, 20)
	if err != nil {
		t.Fatalf("GlobalDelay: %v", err)
	}
	if shifted != 2 {
		t.Errorf("shifted = %d, want 2", shifted)
	}
}

func TestAnalyticsWindowExcludesOldRecords(t *testing.T) {
	ctx := context.Background()
	_, _, n := newNavigator(t)
	n.Window = time.Hour

	// Written now, but the navigator clock sits in the past relative to the
	// record's CreatedAt; only the window math matters here.
	recs := NewRecordsService(n.DB)
	if _, err := recs.Create(ctx, RecordDraft{PatientID: "p-old", Diagnosis: "Sprained ankle"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	n.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	r, err := n.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if r.EfficiencyPct != 100 {
		t.Errorf("EfficiencyPct = %d, want 100 with no completions in window", r.EfficiencyPct)
	}
}
