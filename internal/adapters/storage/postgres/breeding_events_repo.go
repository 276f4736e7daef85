package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"dairy-herd-service/internal/domain/breeding"
)

type BreedingEventsRepo struct {
	db *sql.DB
}

func NewBreedingEventsRepo(db *sql.DB) *BreedingEventsRepo {
	return &BreedingEventsRepo{db: db}
}

func (r *BreedingEventsRepo) Create(ctx context.Context, e breeding.BreedingEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO breeding_events (
			id, farm_id, animal_id,
			type, event_date, recorded_at,
			sire_tag, result, notes,
			details
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		e.ID,
		e.FarmID,
		e.AnimalID,
		string(e.Type),
		e.EventDate,
		e.RecordedAt,
		e.SireTag,
		string(e.Result),
		e.Notes,
		toNullJSON(e.Details),
	)
	return err
}

func (r *BreedingEventsRepo) GetByID(ctx context.Context, farmID, id string) (breeding.BreedingEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return breeding.BreedingEvent{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id, animal_id,
			type, event_date, recorded_at,
			sire_tag, result, notes,
			details
		FROM breeding_events
		WHERE farm_id = $1 AND id = $2
	`, farmID, id)

	e, err := scanBreedingEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return breeding.BreedingEvent{}, ErrNotFound
		}
		return breeding.BreedingEvent{}, err
	}
	return e, nil
}

func (r *BreedingEventsRepo) ListByAnimal(ctx context.Context, farmID, animalID string, filter breeding.ListFilter) ([]breeding.BreedingEvent, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, farm_id, animal_id,
			type, event_date, recorded_at,
			sire_tag, result, notes,
			details
		FROM breeding_events
		WHERE farm_id = $1 AND animal_id = $2
	`)

	args := []any{farmID, animalID}
	argN := 3

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(t))
			argN++
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND event_date >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND event_date <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY event_date DESC, recorded_at DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]breeding.BreedingEvent, 0)
	for rows.Next() {
		e, err := scanBreedingEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *BreedingEventsRepo) LatestByType(ctx context.Context, farmID, animalID string, t breeding.EventType) (breeding.BreedingEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id, animal_id,
			type, event_date, recorded_at,
			sire_tag, result, notes,
			details
		FROM breeding_events
		WHERE farm_id = $1 AND animal_id = $2 AND type = $3
		ORDER BY event_date DESC, recorded_at DESC
		LIMIT 1
	`, farmID, animalID, string(t))

	e, err := scanBreedingEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return breeding.BreedingEvent{}, ErrNotFound
		}
		return breeding.BreedingEvent{}, err
	}
	return e, nil
}

func scanBreedingEvent(row rowScanner) (breeding.BreedingEvent, error) {
	var e breeding.BreedingEvent
	var typ, result string
	var details []byte

	if err := row.Scan(
		&e.ID,
		&e.FarmID,
		&e.AnimalID,
		&typ,
		&e.EventDate,
		&e.RecordedAt,
		&e.SireTag,
		&result,
		&e.Notes,
		&details,
	); err != nil {
		return breeding.BreedingEvent{}, err
	}

	e.Type = breeding.EventType(typ)
	e.Result = breeding.EventResult(result)
	if len(details) > 0 {
		e.Details = json.RawMessage(details)
	}

	return e, nil
}

// details es JSONB nullable.
func toNullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
