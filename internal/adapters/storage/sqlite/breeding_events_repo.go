package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"dairy-herd-service/internal/domain/breeding"
)

type BreedingEventsRepo struct {
	db *sql.DB
}

func NewBreedingEventsRepo(db *sql.DB) *BreedingEventsRepo {
	return &BreedingEventsRepo{db: db}
}

const eventColumns = `
	id, farm_id, animal_id,
	type, event_date, recorded_at,
	sire_tag, result, notes,
	details
`

func (r *BreedingEventsRepo) Create(ctx context.Context, e breeding.BreedingEvent) error {
	var details any
	if len(e.Details) > 0 {
		details = string(e.Details)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO breeding_events (`+eventColumns+`
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		e.ID,
		e.FarmID,
		e.AnimalID,
		string(e.Type),
		fmtTime(e.EventDate),
		fmtTime(e.RecordedAt),
		e.SireTag,
		string(e.Result),
		e.Notes,
		details,
	)
	return err
}

func (r *BreedingEventsRepo) GetByID(ctx context.Context, farmID, id string) (breeding.BreedingEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return breeding.BreedingEvent{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM breeding_events
		WHERE farm_id = ? AND id = ?
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
		SELECT ` + eventColumns + `
		FROM breeding_events
		WHERE farm_id = ? AND animal_id = ?
	`)

	args := []any{farmID, animalID}

	if len(filter.Types) > 0 {
		placeholders := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			placeholders = append(placeholders, "?")
			args = append(args, string(t))
		}
		sb.WriteString(" AND type IN (" + strings.Join(placeholders, ",") + ")")
	}

	// Fechas RFC3339 en UTC comparan bien como texto.
	if filter.From != nil {
		sb.WriteString(" AND event_date >= ?")
		args = append(args, fmtTime(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(" AND event_date <= ?")
		args = append(args, fmtTime(*filter.To))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY event_date DESC, recorded_at DESC")
	sb.WriteString(" LIMIT ?")
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
		SELECT `+eventColumns+`
		FROM breeding_events
		WHERE farm_id = ? AND animal_id = ? AND type = ?
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
	var typ, result, eventDate, recordedAt string
	var details sql.NullString

	if err := row.Scan(
		&e.ID,
		&e.FarmID,
		&e.AnimalID,
		&typ,
		&eventDate,
		&recordedAt,
		&e.SireTag,
		&result,
		&e.Notes,
		&details,
	); err != nil {
		return breeding.BreedingEvent{}, err
	}

	e.Type = breeding.EventType(typ)
	e.Result = breeding.EventResult(result)
	if details.Valid && details.String != "" {
		e.Details = json.RawMessage(details.String)
	}

	var err error
	if e.EventDate, err = parseTime(eventDate); err != nil {
		return breeding.BreedingEvent{}, err
	}
	if e.RecordedAt, err = parseTime(recordedAt); err != nil {
		return breeding.BreedingEvent{}, err
	}

	return e, nil
}
