package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrStaleStatus  = errors.New("production status changed concurrently")
)

// StatusClassifier resuelve el production_status inicial de un animal nuevo
// a partir de su edad y sexo (lo implementa el módulo breeding con las
// categorías de la granja). Se inyecta como port para no crear ciclo de imports.
type StatusClassifier interface {
	InitialStatus(ctx context.Context, farmID string, birthDate time.Time, gender Gender) (ProductionStatus, error)
}

type Service struct {
	repo       Repository
	classifier StatusClassifier
	now        func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// SetClassifier se llama en el wiring del router, después de construir breeding.
func (s *Service) SetClassifier(c StatusClassifier) {
	s.classifier = c
}

type CreateInput struct {
	TagNumber string
	Name      string
	Breed     string
	Gender    string
	BirthDate time.Time

	// Opcional: si viene vacío se clasifica por edad/sexo.
	ProductionStatus string
	HealthStatus     string

	Notes string
}

func (s *Service) Create(ctx context.Context, farmID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(farmID) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.TagNumber) == "" {
		return Animal{}, ErrInvalidInput
	}

	gender := Gender(strings.TrimSpace(in.Gender))
	if !gender.Valid() {
		return Animal{}, ErrInvalidInput
	}
	if in.BirthDate.IsZero() {
		return Animal{}, ErrInvalidInput
	}

	status := ProductionStatus(strings.TrimSpace(in.ProductionStatus))
	if status == "" {
		if s.classifier == nil {
			return Animal{}, ErrInvalidInput
		}
		resolved, err := s.classifier.InitialStatus(ctx, farmID, in.BirthDate, gender)
		if err != nil {
			return Animal{}, err
		}
		status = resolved
	}
	if !status.Valid() {
		return Animal{}, ErrInvalidInput
	}

	health := HealthStatus(strings.TrimSpace(in.HealthStatus))
	if health == "" {
		health = HealthHealthy
	}
	if !health.Valid() {
		return Animal{}, ErrInvalidInput
	}

	now := s.now()
	a := Animal{
		ID:               uuid.NewString(),
		FarmID:           farmID,
		TagNumber:        strings.TrimSpace(in.TagNumber),
		Name:             strings.TrimSpace(in.Name),
		Breed:            strings.TrimSpace(in.Breed),
		Gender:           gender,
		BirthDate:        in.BirthDate,
		ProductionStatus: status,
		HealthStatus:     health,
		Notes:            strings.TrimSpace(in.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, farmID, id string) (Animal, error) {
	if strings.TrimSpace(farmID) == "" || strings.TrimSpace(id) == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, farmID, id)
}

func (s *Service) ListByFarm(ctx context.Context, farmID string) ([]Animal, error) {
	return s.repo.ListByFarm(ctx, farmID)
}

// PatchDate distingue "campo no enviado" de "enviado como null" en un PATCH.
type PatchDate struct {
	Present bool
	Value   *time.Time
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	TagNumber    *string
	Name         *string
	Breed        *string
	Gender       *string
	BirthDate    PatchDate
	HealthStatus *string
	Notes        *string
}

func (s *Service) UpdateProfile(ctx context.Context, farmID, id string, in UpdateProfileInput) (Animal, error) {
	a, err := s.repo.GetByID(ctx, farmID, id)
	if err != nil {
		return Animal{}, err
	}

	if in.TagNumber != nil {
		v := strings.TrimSpace(*in.TagNumber)
		if v == "" {
			return Animal{}, ErrInvalidInput
		}
		a.TagNumber = v
	}
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Gender != nil {
		g := Gender(strings.TrimSpace(*in.Gender))
		if !g.Valid() {
			return Animal{}, ErrInvalidInput
		}
		a.Gender = g
	}
	if in.BirthDate.Present {
		// birth_date es obligatorio: null explícito se rechaza.
		if in.BirthDate.Value == nil {
			return Animal{}, ErrInvalidInput
		}
		a.BirthDate = *in.BirthDate.Value
	}
	if in.HealthStatus != nil {
		h := HealthStatus(strings.TrimSpace(*in.HealthStatus))
		if !h.Valid() {
			return Animal{}, ErrInvalidInput
		}
		a.HealthStatus = h
	}
	if in.Notes != nil {
		a.Notes = strings.TrimSpace(*in.Notes)
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// ApplyTransition carga el animal, exige que siga en fromStatus, aplica la
// mutación y persiste con compare-and-swap sobre production_status.
// Dos transiciones simultáneas sobre el mismo animal: una gana, la otra
// recibe ErrStaleStatus.
func (s *Service) ApplyTransition(ctx context.Context, farmID, id string, fromStatus ProductionStatus, mutate func(*Animal)) (Animal, error) {
	a, err := s.repo.GetByID(ctx, farmID, id)
	if err != nil {
		return Animal{}, err
	}
	if a.ProductionStatus != fromStatus {
		return Animal{}, ErrStaleStatus
	}

	mutate(&a)
	a.UpdatedAt = s.now()

	if err := s.repo.UpdateWithStatus(ctx, a, fromStatus); err != nil {
		return Animal{}, err
	}
	return a, nil
}
