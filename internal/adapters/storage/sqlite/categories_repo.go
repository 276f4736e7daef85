package sqlite

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

const categoryColumns = `
	id, farm_id,
	name, min_age_days, max_age_days, gender,
	production_status,
	is_lactating, is_pregnant, is_breeding_male, is_growth_phase,
	sort_order,
	created_at, updated_at
`

func (r *CategoriesRepo) Create(ctx context.Context, c categories.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animal_categories (`+categoryColumns+`
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		c.ID,
		c.FarmID,
		c.Name,
		c.MinAgeDays,
		nullableInt(c.MaxAgeDays),
		nullableGender(c.Gender),
		string(c.ProductionStatus),
		c.Characteristics.Lactating,
		c.Characteristics.Pregnant,
		c.Characteristics.BreedingMale,
		c.Characteristics.GrowthPhase,
		c.SortOrder,
		fmtTime(c.CreatedAt),
		fmtTime(c.UpdatedAt),
	)
	return err
}

func (r *CategoriesRepo) GetByID(ctx context.Context, farmID, id string) (categories.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return categories.Category{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM animal_categories
		WHERE farm_id = ? AND id = ?
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
		SELECT `+categoryColumns+`
		FROM animal_categories
		WHERE farm_id = ?
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
			name = ?,
			min_age_days = ?,
			max_age_days = ?,
			gender = ?,
			production_status = ?,
			is_lactating = ?,
			is_pregnant = ?,
			is_breeding_male = ?,
			is_growth_phase = ?,
			sort_order = ?,
			updated_at = ?
		WHERE farm_id = ? AND id = ?
	`,
		c.Name,
		c.MinAgeDays,
		nullableInt(c.MaxAgeDays),
		nullableGender(c.Gender),
		string(c.ProductionStatus),
		c.Characteristics.Lactating,
		c.Characteristics.Pregnant,
		c.Characteristics.BreedingMale,
		c.Characteristics.GrowthPhase,
		c.SortOrder,
		fmtTime(c.UpdatedAt),
		c.FarmID,
		c.ID,
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
		WHERE farm_id = ? AND id = ?
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
	var prodStatus, createdAt, updatedAt string

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
		&createdAt,
		&updatedAt,
	); err != nil {
		return categories.Category{}, err
	}

	c.ProductionStatus = animals.ProductionStatus(prodStatus)
	if maxAge.Valid {
		v := int(maxAge.Int64)
		c.MaxAgeDays = &v
	}
	if gender.Valid && gender.String != "" {
		g := animals.Gender(gender.String)
		c.Gender = &g
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return categories.Category{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return categories.Category{}, err
	}

	return c, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableGender(g *animals.Gender) any {
	if g == nil {
		return nil
	}
	return string(*g)
}
