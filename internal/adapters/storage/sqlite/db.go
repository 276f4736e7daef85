package sqlite

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite" // driver sqlite puro Go, sin cgo
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre (o crea) el archivo sqlite y bootstrapea el esquema.
// Pensado para despliegues de una sola granja sin Postgres.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "dairyherd.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// El driver es single-writer; serializamos desde el pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS animals (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	tag_number TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	breed TEXT NOT NULL DEFAULT '',
	gender TEXT NOT NULL,
	birth_date TEXT NOT NULL,
	production_status TEXT NOT NULL,
	health_status TEXT NOT NULL,
	service_date TEXT,
	expected_calving_date TEXT,
	dry_off_date TEXT,
	last_calving_date TEXT,
	last_milking_date TEXT,
	days_in_milk INTEGER NOT NULL DEFAULT 0,
	current_daily_production REAL NOT NULL DEFAULT 0,
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_animals_farm ON animals(farm_id);

CREATE TABLE IF NOT EXISTS animal_categories (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	name TEXT NOT NULL,
	min_age_days INTEGER NOT NULL,
	max_age_days INTEGER,
	gender TEXT,
	production_status TEXT NOT NULL,
	is_lactating INTEGER NOT NULL DEFAULT 0,
	is_pregnant INTEGER NOT NULL DEFAULT 0,
	is_breeding_male INTEGER NOT NULL DEFAULT 0,
	is_growth_phase INTEGER NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_farm ON animal_categories(farm_id);

CREATE TABLE IF NOT EXISTS breeding_settings (
	farm_id TEXT PRIMARY KEY,
	minimum_breeding_age_months INTEGER NOT NULL,
	default_gestation_days INTEGER NOT NULL,
	days_pregnant_at_dryoff INTEGER NOT NULL,
	postpartum_delay_days INTEGER NOT NULL,
	heat_cycle_days INTEGER NOT NULL,
	pregnancy_check_days INTEGER NOT NULL,
	missed_heat_alert_days INTEGER NOT NULL,
	heat_retry_days INTEGER NOT NULL,
	diagnosis_interval_days INTEGER NOT NULL,
	cost_per_ai REAL NOT NULL DEFAULT 0,
	alert_types TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS farm_memberships (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	inviter_user_id TEXT NOT NULL,
	member_user_id TEXT NOT NULL,
	scopes TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	revoked_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_memberships_farm ON farm_memberships(farm_id);
CREATE INDEX IF NOT EXISTS idx_memberships_member ON farm_memberships(member_user_id);

CREATE TABLE IF NOT EXISTS breeding_events (
	id TEXT PRIMARY KEY,
	farm_id TEXT NOT NULL,
	animal_id TEXT NOT NULL,
	type TEXT NOT NULL,
	event_date TEXT NOT NULL,
	recorded_at TEXT NOT NULL,
	sire_tag TEXT NOT NULL DEFAULT '',
	result TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	details TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_animal ON breeding_events(farm_id, animal_id);
`

// Tiempos como TEXT RFC3339: comparables lexicográficamente, legibles en la CLI.
const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
