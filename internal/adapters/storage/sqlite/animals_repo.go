package sqlite

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
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		a.ID,
		a.FarmID,
		a.TagNumber,
		a.Name,
		a.Breed,
		string(a.Gender),
		fmtTime(a.BirthDate),
		string(a.ProductionStatus),
		string(a.HealthStatus),
		fmtTimePtr(a.ServiceDate),
		fmtTimePtr(a.ExpectedCalvingDate),
		fmtTimePtr(a.DryOffDate),
		fmtTimePtr(a.LastCalvingDate),
		fmtTimePtr(a.LastMilkingDate),
		a.DaysInMilk,
		a.CurrentDailyProduction,
		a.Notes,
		fmtTime(a.CreatedAt),
		fmtTime(a.UpdatedAt),
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
		WHERE farm_id = ? AND id = ?
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
		WHERE farm_id = ?
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
		WHERE farm_id = ? AND id = ?
	`, append(animalUpdateArgs(a), a.FarmID, a.ID)...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) UpdateWithStatus(ctx context.Context, a animals.Animal, expectedStatus animals.ProductionStatus) error {
	res, err := r.db.ExecContext(ctx, animalUpdateSQL+`
		WHERE farm_id = ? AND id = ? AND production_status = ?
	`, append(animalUpdateArgs(a), a.FarmID, a.ID, string(expectedStatus))...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM animals WHERE farm_id = ? AND id = ?)
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
		tag_number = ?,
		name = ?,
		breed = ?,
		gender = ?,
		birth_date = ?,
		production_status = ?,
		health_status = ?,
		service_date = ?,
		expected_calving_date = ?,
		dry_off_date = ?,
		last_calving_date = ?,
		last_milking_date = ?,
		days_in_milk = ?,
		current_daily_production = ?,
		notes = ?,
		updated_at = ?
`

func animalUpdateArgs(a animals.Animal) []any {
	return []any{
		a.TagNumber,
		a.Name,
		a.Breed,
		string(a.Gender),
		fmtTime(a.BirthDate),
		string(a.ProductionStatus),
		string(a.HealthStatus),
		fmtTimePtr(a.ServiceDate),
		fmtTimePtr(a.ExpectedCalvingDate),
		fmtTimePtr(a.DryOffDate),
		fmtTimePtr(a.LastCalvingDate),
		fmtTimePtr(a.LastMilkingDate),
		a.DaysInMilk,
		a.CurrentDailyProduction,
		a.Notes,
		fmtTime(a.UpdatedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var gender, prodStatus, healthStatus string
	var birthDate, createdAt, updatedAt string
	var serviceDate, expectedCalving, dryOff, lastCalving, lastMilking sql.NullString

	if err := row.Scan(
		&a.ID,
		&a.FarmID,
		&a.TagNumber,
		&a.Name,
		&a.Breed,
		&gender,
		&birthDate,
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
		&createdAt,
		&updatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Gender = animals.Gender(gender)
	a.ProductionStatus = animals.ProductionStatus(prodStatus)
	a.HealthStatus = animals.HealthStatus(healthStatus)

	var err error
	if a.BirthDate, err = parseTime(birthDate); err != nil {
		return animals.Animal{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return animals.Animal{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return animals.Animal{}, err
	}
	if a.ServiceDate, err = parseTimePtr(serviceDate); err != nil {
		return animals.Animal{}, err
	}
	if a.ExpectedCalvingDate, err = parseTimePtr(expectedCalving); err != nil {
		return animals.Animal{}, err
	}
	if a.DryOffDate, err = parseTimePtr(dryOff); err != nil {
		return animals.Animal{}, err
	}
	if a.LastCalvingDate, err = parseTimePtr(lastCalving); err != nil {
		return animals.Animal{}, err
	}
	if a.LastMilkingDate, err = parseTimePtr(lastMilking); err != nil {
		return animals.Animal{}, err
	}

	return a, nil
}
