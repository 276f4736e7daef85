package settings

import (
	"context"
	"errors"
	"strings"
	"time"
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

// Get devuelve los settings guardados, o los defaults si la granja
// todavía no configuró nada (nunca es error).
func (s *Service) Get(ctx context.Context, farmID string) (BreedingSettings, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return BreedingSettings{}, ErrInvalidInput
	}

	stored, err := s.repo.GetByFarm(ctx, farmID)
	if err != nil {
		return Defaults(farmID), nil
	}
	return stored, nil
}

// Upsert valida rangos e invariantes cruzados antes de persistir.
// Un error de rango sale como *ValidationError con el campo nombrado.
func (s *Service) Upsert(ctx context.Context, farmID string, in BreedingSettings) (BreedingSettings, error) {
	farmID = strings.TrimSpace(farmID)
	if farmID == "" {
		return BreedingSettings{}, ErrInvalidInput
	}

	in.FarmID = farmID
	if err := Validate(in); err != nil {
		return BreedingSettings{}, err
	}

	in.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, in); err != nil {
		return BreedingSettings{}, err
	}
	return in, nil
}
