package settings

import (
	"context"
	"errors"
	"testing"
	"time"
)

func validSettings() BreedingSettings {
	return Defaults("farm-1")
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Validate(validSettings()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidate_FieldRanges(t *testing.T) {
	cases := []struct {
		name   string
		field  string
		mutate func(*BreedingSettings)
	}{
		{"breeding age low", "minimum_breeding_age_months", func(s *BreedingSettings) { s.MinimumBreedingAgeMonths = 11 }},
		{"breeding age high", "minimum_breeding_age_months", func(s *BreedingSettings) { s.MinimumBreedingAgeMonths = 25 }},
		{"gestation low", "default_gestation_days", func(s *BreedingSettings) { s.DefaultGestationDays = 259 }},
		{"gestation high", "default_gestation_days", func(s *BreedingSettings) { s.DefaultGestationDays = 301 }},
		{"dryoff low", "days_pregnant_at_dryoff", func(s *BreedingSettings) { s.DaysPregnantAtDryoff = 179 }},
		{"dryoff high", "days_pregnant_at_dryoff", func(s *BreedingSettings) { s.DaysPregnantAtDryoff = 251 }},
		{"postpartum low", "postpartum_delay_days", func(s *BreedingSettings) { s.PostpartumDelayDays = 29 }},
		{"postpartum high", "postpartum_delay_days", func(s *BreedingSettings) { s.PostpartumDelayDays = 121 }},
		{"heat cycle low", "heat_cycle_days", func(s *BreedingSettings) { s.HeatCycleDays = 14 }},
		{"heat cycle high", "heat_cycle_days", func(s *BreedingSettings) { s.HeatCycleDays = 36 }},
		{"pregnancy check low", "pregnancy_check_days", func(s *BreedingSettings) { s.PregnancyCheckDays = 29 }},
		{"missed heat low", "missed_heat_alert_days", func(s *BreedingSettings) { s.MissedHeatAlertDays = 19 }},
		{"heat retry high", "heat_retry_days", func(s *BreedingSettings) { s.HeatRetryDays = 36 }},
		{"diagnosis high", "diagnosis_interval_days", func(s *BreedingSettings) { s.DiagnosisIntervalDays = 91 }},
		{"negative cost", "cost_per_ai", func(s *BreedingSettings) { s.CostPerAI = -1 }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := validSettings()
			c.mutate(&s)

			err := Validate(s)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != c.field {
				t.Fatalf("expected field %q, got %q (%v)", c.field, verr.Field, err)
			}
		})
	}
}

func TestValidate_DryPeriodInvariant(t *testing.T) {
	// 230 de secado sobre 260 de gestación deja 30 días secos: OK.
	s := validSettings()
	s.DefaultGestationDays = 260
	s.DaysPregnantAtDryoff = 230
	if err := Validate(s); err != nil {
		t.Fatalf("30-day dry period must validate: %v", err)
	}

	// 240 deja 20 días: muy corto.
	s.DaysPregnantAtDryoff = 240
	var verr *ValidationError
	if err := Validate(s); !errors.As(err, &verr) || verr.Field != "days_pregnant_at_dryoff" {
		t.Fatalf("expected dry period error, got %v", err)
	}

	// 180 sobre 300 deja 120: muy largo.
	s.DefaultGestationDays = 300
	s.DaysPregnantAtDryoff = 180
	if err := Validate(s); !errors.As(err, &verr) || verr.Field != "days_pregnant_at_dryoff" {
		t.Fatalf("expected dry period error, got %v", err)
	}
}

func TestValidate_AlertTypes(t *testing.T) {
	s := validSettings()

	s.AlertTypes = nil
	if err := Validate(s); err == nil {
		t.Fatal("expected error for empty alert types")
	}

	s.AlertTypes = []AlertType{AlertApp, "pigeon"}
	if err := Validate(s); err == nil {
		t.Fatal("expected error for unknown alert type")
	}

	s.AlertTypes = []AlertType{AlertSMS, AlertSMS}
	if err := Validate(s); err == nil {
		t.Fatal("expected error for duplicate alert type")
	}

	s.AlertTypes = []AlertType{AlertApp, AlertSMS, AlertWhatsApp}
	if err := Validate(s); err != nil {
		t.Fatalf("all channels must validate: %v", err)
	}
}

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byFarm map[string]BreedingSettings
}

func newTestRepo() *testRepo {
	return &testRepo{byFarm: map[string]BreedingSettings{}}
}

func (r *testRepo) GetByFarm(ctx context.Context, farmID string) (BreedingSettings, error) {
	s, ok := r.byFarm[farmID]
	if !ok {
		return BreedingSettings{}, errRepoNotFound
	}
	return s, nil
}

func (r *testRepo) Upsert(ctx context.Context, s BreedingSettings) error {
	r.byFarm[s.FarmID] = s
	return nil
}

func TestService_Get_FallsBackToDefaults(t *testing.T) {
	svc := NewService(newTestRepo())

	got, err := svc.Get(context.Background(), "farm-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MinimumBreedingAgeMonths != 15 || got.DefaultGestationDays != 280 {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got.FarmID != "farm-1" {
		t.Fatalf("expected farm id set, got %q", got.FarmID)
	}
}

func TestService_Upsert_PersistsAndStamps(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	in := validSettings()
	in.MinimumBreedingAgeMonths = 18

	saved, err := svc.Upsert(context.Background(), "farm-1", in)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !saved.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at stamped, got %s", saved.UpdatedAt)
	}

	got, err := svc.Get(context.Background(), "farm-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MinimumBreedingAgeMonths != 18 {
		t.Fatalf("expected saved value, got %+v", got)
	}
}

func TestService_Upsert_RejectsOutOfRange(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validSettings()
	in.HeatCycleDays = 5

	_, err := svc.Upsert(context.Background(), "farm-1", in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
