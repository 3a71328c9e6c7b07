package domain

import "testing"

func TestTicketStatus_Terminal(t *testing.T) {
	cases := map[TicketStatus]bool{
		StatusPendingApproval:  false,
		StatusConfirmed:        false,
		StatusWaitingForDoctor: false,
		StatusInReview:         false,
		StatusDelayed:          false,
		StatusEmergencyEnRoute: false,
		StatusCancelled:        true,
		StatusCompleted:        true,
	}
	for st, want := range cases {
		if got := st.Terminal(); got != want {
			t.Errorf("%q.Terminal() = %v; want %v", st, got, want)
		}
	}
}

func TestColorForScore(t *testing.T) {
	cases := []struct {
		score    int
		override bool
		want     ColorCode
	}{
		{0, false, ColorGreen},
		{3, false, ColorGreen},
		{5, false, ColorGreen},
		{6, false, ColorOrange},
		{8, false, ColorOrange},
		{9, false, ColorRed},
		{10, false, ColorRed},
		{2, true, ColorRed}, // explicit emergency override wins
	}
	for _, tc := range cases {
		if got := ColorForScore(tc.score, tc.override); got != tc.want {
			t.Errorf("ColorForScore(%d, %v) = %q; want %q", tc.score, tc.override, got, tc.want)
		}
	}
}

func TestColorForScore_Deterministic(t *testing.T) {
	for score := 0; score <= 10; score++ {
		first := ColorForScore(score, false)
		for i := 0; i < 5; i++ {
			if got := ColorForScore(score, false); got != first {
				t.Fatalf("ColorForScore(%d) not stable: %q vs %q", score, got, first)
			}
		}
	}
}

func TestTicket_Active(t *testing.T) {
	tk := &Ticket{Status: StatusWaitingForDoctor}
	if !tk.Active() {
		t.Fatal("waiting ticket should be active")
	}
	tk.Status = StatusCancelled
	if tk.Active() {
		t.Fatal("cancelled ticket should not be active")
	}
}
