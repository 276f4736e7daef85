package sqlite

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
		WHERE farm_id = ?
	`, farmID)

	var s settings.BreedingSettings
	var alertTypes, updatedAt string
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
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return settings.BreedingSettings{}, ErrNotFound
		}
		return settings.BreedingSettings{}, err
	}

	for _, p := range strings.Split(alertTypes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			s.AlertTypes = append(s.AlertTypes, settings.AlertType(p))
		}
	}

	var err error
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return settings.BreedingSettings{}, err
	}
	return s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s settings.BreedingSettings) error {
	alertTypes := make([]string, 0, len(s.AlertTypes))
	for _, t := range s.AlertTypes {
		alertTypes = append(alertTypes, string(t))
	}

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
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (farm_id) DO UPDATE SET
			minimum_breeding_age_months = excluded.minimum_breeding_age_months,
			default_gestation_days = excluded.default_gestation_days,
			days_pregnant_at_dryoff = excluded.days_pregnant_at_dryoff,
			postpartum_delay_days = excluded.postpartum_delay_days,
			heat_cycle_days = excluded.heat_cycle_days,
			pregnancy_check_days = excluded.pregnancy_check_days,
			missed_heat_alert_days = excluded.missed_heat_alert_days,
			heat_retry_days = excluded.heat_retry_days,
			diagnosis_interval_days = excluded.diagnosis_interval_days,
			cost_per_ai = excluded.cost_per_ai,
			alert_types = excluded.alert_types,
			updated_at = excluded.updated_at
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
		strings.Join(alertTypes, ","),
		fmtTime(s.UpdatedAt),
	)
	return err
}
