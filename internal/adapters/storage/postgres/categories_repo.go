package postgres

import (
	"context"
	"database/sql"
	"strings"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/categories"
)

type CategoriesRepo struct {
	db *sql.DB
}

func NewCategoriesRepo(db *sql.DB) *CategoriesRepo {
	return &CategoriesRepo{db: db}
}

func (r *CategoriesRepo) Create(ctx context.Context, c categories.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animal_categories (
			id, farm_id,
			name, min_age_days, max_age_days, gender,
			production_status,
			is_lactating, is_pregnant, is_breeding_male, is_growth_phase,
			sort_order,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		c.ID,
		c.FarmID,
		c.Name,
		c.MinAgeDays,
		toNullInt(c.MaxAgeDays),
		toNullGender(c.Gender),
		string(c.ProductionStatus),
		c.Characteristics.Lactating,
		c.Characteristics.Pregnant,
		c.Characteristics.BreedingMale,
		c.Characteristics.GrowthPhase,
		c.SortOrder,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CategoriesRepo) GetByID(ctx context.Context, farmID, id string) (categories.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return categories.Category{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, farm_id,
			name, min_age_days, max_age_days, gender,
			production_status,
			is_lactating, is_pregnant, is_breeding_male, is_growth_phase,
			sort_order,
			created_at, updated_at
		FROM animal_categories
		WHERE farm_id = $1 AND id = $2
	`, farmID, id)

	c, err := scanCategory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return categories.Category{}, ErrNotFound
		}
		return categories.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) ListByFarm(ctx context.Context, farmID string) ([]categories.Category, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, farm_id,
			name, min_age_days, max_age_days, gender,
			production_status,
			is_lactating, is_pregnant, is_breeding_male, is_growth_phase,
			sort_order,
			created_at, updated_at
		FROM animal_categories
		WHERE farm_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]categories.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriesRepo) Update(ctx context.Context, c categories.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animal_categories
		SET
			name = $3,
			min_age_days = $4,
			max_age_days = $5,
			gender = $6,
			production_status = $7,
			is_lactating = $8,
			is_pregnant = $9,
			is_breeding_male = $10,
			is_growth_phase = $11,
			sort_order = $12,
			updated_at = $13
		WHERE farm_id = $1 AND id = $2
	`,
		c.FarmID,
		c.ID,
		c.Name,
		c.MinAgeDays,
		toNullInt(c.MaxAgeDays),
		toNullGender(c.Gender),
		string(c.ProductionStatus),
		c.Characteristics.Lactating,
		c.Characteristics.Pregnant,
		c.Characteristics.BreedingMale,
		c.Characteristics.GrowthPhase,
		c.SortOrder,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, farmID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM animal_categories
		WHERE farm_id = $1 AND id = $2
	`, farmID, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (categories.Category, error) {
	var c categories.Category
	var maxAge sql.NullInt64
	var gender sql.NullString
	var prodStatus string

	if err := row.Scan(
		&c.ID,
		&c.FarmID,
		&c.Name,
		&c.MinAgeDays,
		&maxAge,
		&gender,
		&prodStatus,
		&c.Characteristics.Lactating,
		&c.Characteristics.Pregnant,
		&c.Characteristics.BreedingMale,
		&c.Characteristics.GrowthPhase,
		&c.SortOrder,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return categories.Category{}, err
	}

	c.ProductionStatus = animals.ProductionStatus(prodStatus)
	if maxAge.Valid {
		v := int(maxAge.Int64)
		c.MaxAgeDays = &v
	}
	if gender.Valid {
		g := animals.Gender(gender.String)
		c.Gender = &g
	}

	return c, nil
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func toNullGender(g *animals.Gender) sql.NullString {
	if g == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: string(*g), Valid: true}
}
