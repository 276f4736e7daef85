package settings

import "fmt"

// ValidationError nombra el campo inválido. Los rangos se rechazan acá,
// en el write boundary: el motor nunca ve settings fuera de rango.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type intRange struct {
	field string
	value int
	min   int
	max   int
}

// Validate aplica los rangos por campo y los invariantes cruzados
// (dry-off antes del parto, periodo seco de 30 a 90 días).
func Validate(s BreedingSettings) error {
	checks := []intRange{
		{"minimum_breeding_age_months", s.MinimumBreedingAgeMonths, 12, 24},
		{"default_gestation_days", s.DefaultGestationDays, 260, 300},
		{"days_pregnant_at_dryoff", s.DaysPregnantAtDryoff, 180, 250},
		{"postpartum_delay_days", s.PostpartumDelayDays, 30, 120},
		{"heat_cycle_days", s.HeatCycleDays, 15, 35},
		{"pregnancy_check_days", s.PregnancyCheckDays, 30, 90},
		{"missed_heat_alert_days", s.MissedHeatAlertDays, 20, 60},
		{"heat_retry_days", s.HeatRetryDays, 15, 35},
		{"diagnosis_interval_days", s.DiagnosisIntervalDays, 30, 90},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return invalidf(c.field, "must be between %d and %d, got %d", c.min, c.max, c.value)
		}
	}

	if s.CostPerAI < 0 {
		return invalidf("cost_per_ai", "must not be negative, got %v", s.CostPerAI)
	}

	// Invariante cruzado: el secado ocurre antes del parto y deja
	// un periodo seco de entre 30 y 90 días.
	if s.DaysPregnantAtDryoff >= s.DefaultGestationDays {
		return invalidf("days_pregnant_at_dryoff", "must be before gestation end (%d)", s.DefaultGestationDays)
	}
	dryPeriod := s.DefaultGestationDays - s.DaysPregnantAtDryoff
	if dryPeriod < 30 || dryPeriod > 90 {
		return invalidf("days_pregnant_at_dryoff", "dry period must be 30-90 days, got %d", dryPeriod)
	}

	if len(s.AlertTypes) == 0 {
		return invalidf("alert_types", "at least one alert channel is required")
	}
	seen := map[AlertType]bool{}
	for _, a := range s.AlertTypes {
		if !a.Valid() {
			return invalidf("alert_types", "unknown alert type %q", string(a))
		}
		if seen[a] {
			return invalidf("alert_types", "duplicate alert type %q", string(a))
		}
		seen[a] = true
	}

	return nil
}
