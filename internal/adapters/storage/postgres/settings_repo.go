package postgres

import (
	"context"
	"database/sql"
	"strings"

	"dairy-herd-service/internal/domain/settings"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) GetByFarm(ctx context.Context, farmID string) (settings.BreedingSettings, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return settings.BreedingSettings{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			farm_id,
			minimum_breeding_age_months, default_gestation_days,
			days_pregnant_at_dryoff, postpartum_delay_days,
			heat_cycle_days, pregnancy_check_days,
			missed_heat_alert_days, heat_retry_days, diagnosis_interval_days,
			cost_per_ai,
			alert_types,
			updated_at
		FROM breeding_settings
		WHERE farm_id = $1
	`, farmID)

	var s settings.BreedingSettings
	var alertTypes string
	if err := row.Scan(
		&s.FarmID,
		&s.MinimumBreedingAgeMonths,
		&s.DefaultGestationDays,
		&s.DaysPregnantAtDryoff,
		&s.PostpartumDelayDays,
		&s.HeatCycleDays,
		&s.PregnancyCheckDays,
		&s.MissedHeatAlertDays,
		&s.HeatRetryDays,
		&s.DiagnosisIntervalDays,
		&s.CostPerAI,
		&alertTypes,
		&s.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return settings.BreedingSettings{}, ErrNotFound
		}
		return settings.BreedingSettings{}, err
	}

	s.AlertTypes = splitAlertTypes(alertTypes)
	return s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s settings.BreedingSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO breeding_settings (
			farm_id,
			minimum_breeding_age_months, default_gestation_days,
			days_pregnant_at_dryoff, postpartum_delay_days,
			heat_cycle_days, pregnancy_check_days,
			missed_heat_alert_days, heat_retry_days, diagnosis_interval_days,
			cost_per_ai,
			alert_types,
			updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (farm_id) DO UPDATE SET
			minimum_breeding_age_months = EXCLUDED.minimum_breeding_age_months,
			default_gestation_days = EXCLUDED.default_gestation_days,
			days_pregnant_at_dryoff = EXCLUDED.days_pregnant_at_dryoff,
			postpartum_delay_days = EXCLUDED.postpartum_delay_days,
			heat_cycle_days = EXCLUDED.heat_cycle_days,
			pregnancy_check_days = EXCLUDED.pregnancy_check_days,
			missed_heat_alert_days = EXCLUDED.missed_heat_alert_days,
			heat_retry_days = EXCLUDED.heat_retry_days,
			diagnosis_interval_days = EXCLUDED.diagnosis_interval_days,
			cost_per_ai = EXCLUDED.cost_per_ai,
			alert_types = EXCLUDED.alert_types,
			updated_at = EXCLUDED.updated_at
	`,
		s.FarmID,
		s.MinimumBreedingAgeMonths,
		s.DefaultGestationDays,
		s.DaysPregnantAtDryoff,
		s.PostpartumDelayDays,
		s.HeatCycleDays,
		s.PregnancyCheckDays,
		s.MissedHeatAlertDays,
		s.HeatRetryDays,
		s.DiagnosisIntervalDays,
		s.CostPerAI,
		joinAlertTypes(s.AlertTypes),
		s.UpdatedAt,
	)
	return err
}

// alert_types se guarda como CSV (app,sms,whatsapp); la validación del
// dominio garantiza valores conocidos sin comas.
func joinAlertTypes(ts []settings.AlertType) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}

func splitAlertTypes(raw string) []settings.AlertType {
	out := make([]settings.AlertType, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, settings.AlertType(p))
		}
	}
	return out
}
