package postgres

import (
	"context"
	"database/sql"
	"strings"

	"dairy-herd-service/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, farm_id,
	tag_number, name, breed, gender, birth_date,
	production_status, health_status,
	service_date, expected_calving_date, dry_off_date,
	last_calving_date, last_milking_date,
	days_in_milk, current_daily_production,
	notes,
	created_at, updated_at
`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		a.ID,
		a.FarmID,
		a.TagNumber,
		a.Name,
		a.Breed,
		string(a.Gender),
		a.BirthDate,
		string(a.ProductionStatus),
		string(a.HealthStatus),
		toNullDate(a.ServiceDate),
		toNullDate(a.ExpectedCalvingDate),
		toNullDate(a.DryOffDate),
		toNullDate(a.LastCalvingDate),
		toNullDate(a.LastMilkingDate),
		a.DaysInMilk,
		a.CurrentDailyProduction,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) GetByID(ctx context.Context, farmID, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE farm_id = $1 AND id = $2
	`, farmID, id)

	a, err := scanAnimal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) ListByFarm(ctx context.Context, farmID string) ([]animals.Animal, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE farm_id = $1
		ORDER BY created_at ASC
	`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, animalUpdateSQL+`
		WHERE farm_id = $1 AND id = $2
	`, animalUpdateArgs(a)...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWithStatus es el update con compare-and-swap: solo aplica si
// production_status no cambió desde que el caller leyó el animal.
func (r *AnimalsRepo) UpdateWithStatus(ctx context.Context, a animals.Animal, expectedStatus animals.ProductionStatus) error {
	args := append(animalUpdateArgs(a), string(expectedStatus))
	res, err := r.db.ExecContext(ctx, animalUpdateSQL+`
		WHERE farm_id = $1 AND id = $2 AND production_status = $19
	`, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguimos "no existe" de "perdió la carrera".
		var exists bool
		if err := r.db.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM animals WHERE farm_id = $1 AND id = $2)
		`, a.FarmID, a.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return animals.ErrStaleStatus
	}
	return nil
}

const animalUpdateSQL = `
	UPDATE animals
	SET
		tag_number = $3,
		name = $4,
		breed = $5,
		gender = $6,
		birth_date = $7,
		production_status = $8,
		health_status = $9,
		service_date = $10,
		expected_calving_date = $11,
		dry_off_date = $12,
		last_calving_date = $13,
		last_milking_date = $14,
		days_in_milk = $15,
		current_daily_production = $16,
		notes = $17,
		updated_at = $18
`

func animalUpdateArgs(a animals.Animal) []any {
	return []any{
		a.FarmID,
		a.ID,
		a.TagNumber,
		a.Name,
		a.Breed,
		string(a.Gender),
		a.BirthDate,
		string(a.ProductionStatus),
		string(a.HealthStatus),
		toNullDate(a.ServiceDate),
		toNullDate(a.ExpectedCalvingDate),
		toNullDate(a.DryOffDate),
		toNullDate(a.LastCalvingDate),
		toNullDate(a.LastMilkingDate),
		a.DaysInMilk,
		a.CurrentDailyProduction,
		a.Notes,
		a.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var gender, prodStatus, healthStatus string
	var serviceDate, expectedCalving, dryOff, lastCalving, lastMilking sql.NullTime

	if err := row.Scan(
		&a.ID,
		&a.FarmID,
		&a.TagNumber,
		&a.Name,
		&a.Breed,
		&gender,
		&a.BirthDate,
		&prodStatus,
		&healthStatus,
		&serviceDate,
		&expectedCalving,
		&dryOff,
		&lastCalving,
		&lastMilking,
		&a.DaysInMilk,
		&a.CurrentDailyProduction,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Gender = animals.Gender(gender)
	a.ProductionStatus = animals.ProductionStatus(prodStatus)
	a.HealthStatus = animals.HealthStatus(healthStatus)
	a.ServiceDate = fromNullDate(serviceDate)
	a.ExpectedCalvingDate = fromNullDate(expectedCalving)
	a.DryOffDate = fromNullDate(dryOff)
	a.LastCalvingDate = fromNullDate(lastCalving)
	a.LastMilkingDate = fromNullDate(lastMilking)

	return a, nil
}
