package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "clinic.db" {
		t.Errorf("DBPath = %q, want clinic.db", cfg.DBPath)
	}
	if cfg.ClassifierTimeout != 2*time.Second {
		t.Errorf("ClassifierTimeout = %v, want 2s", cfg.ClassifierTimeout)
	}
	if cfg.DelayStep != 15 {
		t.Errorf("DelayStep = %d, want 15", cfg.DelayStep)
	}
	if cfg.AnalyticsWindow != 24*time.Hour {
		t.Errorf("AnalyticsWindow = %v, want 24h", cfg.AnalyticsWindow)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q, want /api/v1", cfg.APIBasePath)
	}
	if len(cfg.Doctors) != 0 {
		t.Errorf("Doctors = %v, want empty default", cfg.Doctors)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Errorf("JWTSecret default should be empty (demo mode), got %q", cfg.Auth.JWTSecret)
	}
}

func TestLoadOverridesAndRoster(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/triage.db")
	t.Setenv("CLASSIFIER_TIMEOUT", "500ms")
	t.Setenv("DELAY_STEP_MINUTES", "20")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("DOCTORS_ROSTER", "doc-1:Dr. Ndlovu, doc-2:Dr. Petersen, doc-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != "/tmp/triage.db" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.ClassifierTimeout != 500*time.Millisecond {
		t.Errorf("ClassifierTimeout = %v, want 500ms", cfg.ClassifierTimeout)
	}
	if cfg.DelayStep != 20 || !cfg.SeedDemo {
		t.Errorf("DelayStep = %d SeedDemo = %v", cfg.DelayStep, cfg.SeedDemo)
	}
	if len(cfg.Doctors) != 3 {
		t.Fatalf("Doctors = %v, want 3 entries", cfg.Doctors)
	}
	if cfg.Doctors[0].ID != "doc-1" || cfg.Doctors[0].Name != "Dr. Ndlovu" {
		t.Errorf("Doctors[0] = %+v", cfg.Doctors[0])
	}
	// bare id reuses the id as display name
	if cfg.Doctors[2].ID != "doc-3" || cfg.Doctors[2].Name != "doc-3" {
		t.Errorf("Doctors[2] = %+v", cfg.Doctors[2])
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"LOG_LEVEL", "verbose"},
		{"RATE_BURST", "0"},
		{"DELAY_STEP_MINUTES", "0"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted, want validation error", tc.key, tc.value)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api/v1":  "/api/v1",
		"/api/v1": "/api/v1",
		"/api/":   "/api",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
