package categories

import (
	"context"
	"errors"
	"strings"
	"time"

	"dairy-herd-service/internal/domain/animals"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name             string
	MinAgeDays       int
	MaxAgeDays       *int
	Gender           *string
	ProductionStatus string
	Characteristics  Characteristics
	SortOrder        int
}

func (s *Service) Create(ctx context.Context, farmID string, in CreateInput) (Category, error) {
	if strings.TrimSpace(farmID) == "" {
		return Category{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Category{}, ErrInvalidInput
	}
	if in.MinAgeDays < 0 {
		return Category{}, ErrInvalidInput
	}
	if in.MaxAgeDays != nil && *in.MaxAgeDays < in.MinAgeDays {
		return Category{}, ErrInvalidInput
	}

	status := animals.ProductionStatus(strings.TrimSpace(in.ProductionStatus))
	if !status.Valid() {
		return Category{}, ErrInvalidInput
	}

	var gender *animals.Gender
	if in.Gender != nil && strings.TrimSpace(*in.Gender) != "" {
		g := animals.Gender(strings.TrimSpace(*in.Gender))
		if !g.Valid() {
			return Category{}, ErrInvalidInput
		}
		gender = &g
	}

	now := s.now()
	c := Category{
		ID:               uuid.NewString(),
		FarmID:           farmID,
		Name:             strings.TrimSpace(in.Name),
		MinAgeDays:       in.MinAgeDays,
		MaxAgeDays:       in.MaxAgeDays,
		Gender:           gender,
		ProductionStatus: status,
		Characteristics:  in.Characteristics,
		SortOrder:        in.SortOrder,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Nota: no validamos solape de rangos entre categorías.
	// El clasificador resuelve con first-match por sort_order.
	if err := s.repo.Create(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) ListByFarm(ctx context.Context, farmID string) ([]Category, error) {
	return s.repo.ListByFarm(ctx, farmID)
}

type UpdateInput struct {
	Name            *string
	MinAgeDays      *int
	MaxAgeDays      *int
	ClearMaxAge     bool
	Gender          *string
	ClearGender     bool
	Status          *string
	Characteristics *Characteristics
	SortOrder       *int
}

func (s *Service) Update(ctx context.Context, farmID, id string, in UpdateInput) (Category, error) {
	c, err := s.repo.GetByID(ctx, farmID, id)
	if err != nil {
		return Category{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Category{}, ErrInvalidInput
		}
		c.Name = v
	}
	if in.MinAgeDays != nil {
		if *in.MinAgeDays < 0 {
			return Category{}, ErrInvalidInput
		}
		c.MinAgeDays = *in.MinAgeDays
	}
	if in.ClearMaxAge {
		c.MaxAgeDays = nil
	} else if in.MaxAgeDays != nil {
		c.MaxAgeDays = in.MaxAgeDays
	}
	if c.MaxAgeDays != nil && *c.MaxAgeDays < c.MinAgeDays {
		return Category{}, ErrInvalidInput
	}
	if in.ClearGender {
		c.Gender = nil
	} else if in.Gender != nil {
		g := animals.Gender(strings.TrimSpace(*in.Gender))
		if !g.Valid() {
			return Category{}, ErrInvalidInput
		}
		c.Gender = &g
	}
	if in.Status != nil {
		st := animals.ProductionStatus(strings.TrimSpace(*in.Status))
		if !st.Valid() {
			return Category{}, ErrInvalidInput
		}
		c.ProductionStatus = st
	}
	if in.Characteristics != nil {
		c.Characteristics = *in.Characteristics
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, farmID, id string) error {
	if strings.TrimSpace(farmID) == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, farmID, id)
}
