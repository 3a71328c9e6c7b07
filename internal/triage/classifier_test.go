package triage

import (
	"context"
	"strings"
	"testing"

	"github.com/lyflify/go-triage-backend/internal/domain"
)

func TestAssess_RedFlagsForceCritical(t *testing.T) {
	c := NewClassifier()
	cases := []string{
		"I have crushing chest pain and can't breathe",
		"my father collapsed and is unconscious",
		"she is coughing up blood",
		"his face is drooping and his speech is slurred speech",
		"I think I am having a heart attack",
		"I cannot breathe properly",
	}
	for _, text := range cases {
		a, err := c.Assess(context.Background(), text)
		if err != nil {
			t.Fatalf("Assess(%q): %v", text, err)
		}
		if a.Score < 9 {
			t.Errorf("Assess(%q).Score = %d; want >= 9", text, a.Score)
		}
		if a.Color != domain.ColorRed {
			t.Errorf("Assess(%q).Color = %q; want red", text, a.Color)
		}
		if !a.Urgent() {
			t.Errorf("Assess(%q) should be urgent", text)
		}
		if len(a.RedFlags) == 0 {
			t.Errorf("Assess(%q) should report red flags", text)
		}
	}
}

func TestAssess_CurlyApostropheMatchesRedFlag(t *testing.T) {
	c := NewClassifier()
	// Mobile keyboards send U+2019 rather than the ASCII apostrophe the
	// rule phrases are written with; both spellings must score the same.
	curly, _ := c.Assess(context.Background(), "I can’t breathe")
	ascii, _ := c.Assess(context.Background(), "I can't breathe")
	if curly.Color != domain.ColorRed || curly.Score < domain.CriticalScore {
		t.Fatalf("curly apostrophe input scored %+v; want red >= %d", curly, domain.CriticalScore)
	}
	if curly.Score != ascii.Score || curly.Color != ascii.Color || curly.Category != ascii.Category {
		t.Fatalf("curly %+v and ascii %+v diverge", curly, ascii)
	}
}

func TestAssess_CrushingChestPainScoresTen(t *testing.T) {
	c := NewClassifier()
	a, _ := c.Assess(context.Background(), "I have crushing chest pain and can't breathe")
	if a.Score != 10 {
		t.Fatalf("Score = %d; want 10 for combined cardiac + respiratory flags", a.Score)
	}
	if a.Category != "Cardiac" {
		t.Fatalf("Category = %q; want Cardiac", a.Category)
	}
}

func TestAssess_MildComplaintsAreGreen(t *testing.T) {
	c := NewClassifier()
	cases := []string{
		"mild headache since this morning",
		"I have a slight cold",
		"just need a repeat prescription",
	}
	for _, text := range cases {
		a, _ := c.Assess(context.Background(), text)
		if a.Color != domain.ColorGreen {
			t.Errorf("Assess(%q).Color = %q; want green", text, a.Color)
		}
		if a.Score > 3 {
			t.Errorf("Assess(%q).Score = %d; want <= 3", text, a.Score)
		}
		if a.Urgent() {
			t.Errorf("Assess(%q) should not be urgent", text)
		}
	}
}

func TestAssess_ModerateSymptomsAreOrange(t *testing.T) {
	c := NewClassifier()
	cases := []string{
		"I have had a fever and vomiting since yesterday",
		"feeling very dizzy and dehydrated",
		"persistent cough for two weeks",
	}
	for _, text := range cases {
		a, _ := c.Assess(context.Background(), text)
		if a.Color != domain.ColorOrange {
			t.Errorf("Assess(%q).Color = %q; want orange", text, a.Color)
		}
		if a.Score < 6 || a.Score > 8 {
			t.Errorf("Assess(%q).Score = %d; want in [6,8]", text, a.Score)
		}
	}
}

func TestAssess_SevereLanguagePromotesMinorComplaint(t *testing.T) {
	c := NewClassifier()
	a, _ := c.Assess(context.Background(), "severe pain in my back")
	if a.Color != domain.ColorOrange {
		t.Fatalf("Color = %q; want orange for severe language", a.Color)
	}
}

func TestAssess_EmptyInputIsLowConfidenceGreen(t *testing.T) {
	c := NewClassifier()
	for _, text := range []string{"", "   ", "\t\n"} {
		a, err := c.Assess(context.Background(), text)
		if err != nil {
			t.Fatalf("Assess(%q) returned error: %v", text, err)
		}
		if a.Confident {
			t.Errorf("Assess(%q) should not be confident", text)
		}
		if a.Color != domain.ColorGreen {
			t.Errorf("Assess(%q).Color = %q; want green", text, a.Color)
		}
		if a.Score >= domain.CriticalScore {
			t.Errorf("Assess(%q) fabricated a high score %d from absent input", text, a.Score)
		}
	}
}

func TestAssess_Deterministic(t *testing.T) {
	c := NewClassifier()
	texts := []string{
		"I have crushing chest pain and can't breathe",
		"mild headache since this morning",
		"fever and vomiting",
		"hello there",
	}
	for _, text := range texts {
		first, _ := c.Assess(context.Background(), text)
		for i := 0; i < 10; i++ {
			got, _ := c.Assess(context.Background(), text)
			if got.Score != first.Score || got.Color != first.Color || got.Category != first.Category {
				t.Fatalf("Assess(%q) not deterministic: %+v vs %+v", text, got, first)
			}
		}
	}
}

func TestAssess_ActionNeverContradictsBand(t *testing.T) {
	c := NewClassifier()
	texts := []string{
		"crushing chest pain", "fever and vomiting", "mild headache", "",
	}
	for _, text := range texts {
		a, _ := c.Assess(context.Background(), text)
		lower := strings.ToLower(a.RecommendedAction)
		switch a.Color {
		case domain.ColorRed:
			if strings.Contains(lower, "general practitioner") {
				t.Errorf("red assessment carries routine action: %q", a.RecommendedAction)
			}
		case domain.ColorGreen:
			if strings.Contains(lower, "immediately") || strings.Contains(lower, "resus") {
				t.Errorf("green assessment carries emergency action: %q", a.RecommendedAction)
			}
		}
	}
}

func TestCoverage(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		text string
		want Coverage
	}{
		{"", Coverage{}},
		{"headache", Coverage{Symptom: true}},
		{"mild headache since this morning", Coverage{Symptom: true, Duration: true, Severity: true}},
		{"fever for two days", Coverage{Symptom: true, Duration: true}},
		{"hello", Coverage{}},
	}
	for _, tc := range cases {
		if got := c.Coverage(tc.text); got != tc.want {
			t.Errorf("Coverage(%q) = %+v; want %+v", tc.text, got, tc.want)
		}
	}
}

func TestCoverage_Sufficient(t *testing.T) {
	if (Coverage{Symptom: true}).Sufficient() {
		t.Fatal("symptom alone should not be sufficient")
	}
	if !(Coverage{Symptom: true, Duration: true}).Sufficient() {
		t.Fatal("symptom + duration should be sufficient")
	}
	if !(Coverage{Symptom: true, Severity: true}).Sufficient() {
		t.Fatal("symptom + severity should be sufficient")
	}
}

func TestWithRedFlags_ExtendsRules(t *testing.T) {
	c := NewClassifier(WithRedFlags("Obstetric", "waters broke"))
	a, _ := c.Assess(context.Background(), "my waters broke")
	if a.Color != domain.ColorRed || a.Category != "Obstetric" {
		t.Fatalf("custom red flag not applied: %+v", a)
	}
}
