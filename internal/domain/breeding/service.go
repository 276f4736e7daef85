package breeding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/breeding/details"
	"dairy-herd-service/internal/domain/categories"
	"dairy-herd-service/internal/domain/settings"

	"github.com/google/uuid"
)

// NotEligibleError: se intentó registrar un servicio con la evaluación en contra.
// Lleva la evaluación completa para que el handler la devuelva tal cual.
type NotEligibleError struct {
	Eligibility Eligibility
}

func (e *NotEligibleError) Error() string {
	if len(e.Eligibility.Blockers) > 0 {
		return "animal is not eligible for breeding: " + e.Eligibility.Blockers[0]
	}
	return "animal is not eligible for breeding"
}

// Service orquesta el motor (clasificador, evaluador, planner) contra los
// registros de la granja. Toda la matemática de reglas vive en las funciones
// puras de este package; acá solo se cargan inputs y se aplican transiciones.
type Service struct {
	events     EventRepository
	animals    *animals.Service
	categories *categories.Service
	settings   *settings.Service
	now        func() time.Time
}

func NewService(events EventRepository, animalsSvc *animals.Service, categoriesSvc *categories.Service, settingsSvc *settings.Service) *Service {
	return &Service{
		events:     events,
		animals:    animalsSvc,
		categories: categoriesSvc,
		settings:   settingsSvc,
		now:        time.Now,
	}
}

// InitialStatus implementa animals.StatusClassifier: clasifica un animal nuevo
// contra las categorías de la granja (o el fallback si no hay).
func (s *Service) InitialStatus(ctx context.Context, farmID string, birthDate time.Time, gender animals.Gender) (animals.ProductionStatus, error) {
	cats, err := s.categories.ListByFarm(ctx, farmID)
	if err != nil {
		return "", err
	}
	c, err := Classify(birthDate, gender, cats, s.now())
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

// ClassifyAnimal corre el clasificador para un animal existente (para UI).
func (s *Service) ClassifyAnimal(ctx context.Context, farmID, animalID string) (Classification, error) {
	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return Classification{}, err
	}
	cats, err := s.categories.ListByFarm(ctx, farmID)
	if err != nil {
		return Classification{}, err
	}
	return Classify(a.BirthDate, a.Gender, cats, s.now())
}

// EvaluateAnimal carga animal + settings + historial y corre el evaluador.
func (s *Service) EvaluateAnimal(ctx context.Context, farmID, animalID string) (Eligibility, error) {
	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return Eligibility{}, err
	}

	cfg, err := s.settings.Get(ctx, farmID)
	if err != nil {
		return Eligibility{}, err
	}

	lastCalving := s.latestEventDate(ctx, farmID, animalID, EventTypeCalving)
	if lastCalving == nil {
		lastCalving = a.LastCalvingDate
	}
	lastBreeding := s.latestEventDate(ctx, farmID, animalID, EventTypeService)

	return Evaluate(a, cfg, lastCalving, lastBreeding, s.now()), nil
}

// DryOffStatusFor corre la regla de visibilidad del secado para el animal.
func (s *Service) DryOffStatusFor(ctx context.Context, farmID, animalID string) (DryOffStatus, error) {
	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return DryOffStatus{}, err
	}
	cfg, err := s.settings.Get(ctx, farmID)
	if err != nil {
		return DryOffStatus{}, err
	}
	return EvaluateDryOff(a, cfg, s.now()), nil
}

// ScheduleFor deriva las fechas hacia adelante del animal (parto esperado,
// secado, próximo celo, chequeo de preñez).
func (s *Service) ScheduleFor(ctx context.Context, farmID, animalID string) (Schedule, error) {
	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return Schedule{}, err
	}
	cfg, err := s.settings.Get(ctx, farmID)
	if err != nil {
		return Schedule{}, err
	}

	out := Schedule{}

	if a.ServiceDate != nil {
		sd := DateOnly(*a.ServiceDate)
		out.ServiceDate = &sd
		out.DaysPregnant = DaysBetween(sd, s.now())

		calving := ExpectedCalvingDate(sd, cfg.DefaultGestationDays)
		out.ExpectedCalvingDate = &calving

		dryOff := ExpectedDryOffDate(sd, cfg.DaysPregnantAtDryoff)
		out.ExpectedDryOffDate = &dryOff

		check := AddDays(sd, cfg.PregnancyCheckDays)
		out.PregnancyCheckDate = &check
	}

	if lastHeat := s.latestEventDate(ctx, farmID, animalID, EventTypeHeat); lastHeat != nil {
		next := NextExpectedHeatDate(*lastHeat, cfg.HeatCycleDays)
		out.NextHeatDate = &next
	}

	return out, nil
}

type RecordEventInput struct {
	Type      EventType
	EventDate time.Time
	SireTag   string
	Result    EventResult
	Notes     string
	Details   json.RawMessage
}

// RecordEvent registra un evento reproductivo y aplica la transición de
// estado que corresponda. SERVICE pasa primero por el gate de elegibilidad.
// La transición se persiste con CAS: dos comandos simultáneos sobre el mismo
// animal no se double-aplican (uno recibe ErrStaleStatus).
func (s *Service) RecordEvent(ctx context.Context, farmID, animalID string, in RecordEventInput) (BreedingEvent, error) {
	if strings.TrimSpace(farmID) == "" || strings.TrimSpace(animalID) == "" {
		return BreedingEvent{}, ErrInvalidInput
	}
	if !in.Type.Valid() {
		return BreedingEvent{}, validationErr("type", "unknown event type")
	}
	if in.EventDate.IsZero() {
		return BreedingEvent{}, validationErr("event_date", "is required")
	}
	if _, err := details.Decode(string(in.Type), in.Details); err != nil {
		return BreedingEvent{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch in.Type {
	case EventTypeService:
		if err := s.applyService(ctx, farmID, animalID, in.EventDate); err != nil {
			return BreedingEvent{}, err
		}
	case EventTypeCalving:
		if err := s.applyCalving(ctx, farmID, animalID, in.EventDate); err != nil {
			return BreedingEvent{}, err
		}
	case EventTypeDryOff:
		d := in.EventDate
		if _, err := s.applyDryOff(ctx, farmID, animalID, &d); err != nil {
			return BreedingEvent{}, err
		}
	}

	e := BreedingEvent{
		ID:         uuid.NewString(),
		FarmID:     farmID,
		AnimalID:   animalID,
		Type:       in.Type,
		EventDate:  DateOnly(in.EventDate),
		RecordedAt: s.now(),
		SireTag:    strings.TrimSpace(in.SireTag),
		Result:     in.Result,
		Notes:      strings.TrimSpace(in.Notes),
		Details:    in.Details,
	}

	if err := s.events.Create(ctx, e); err != nil {
		return BreedingEvent{}, err
	}
	return e, nil
}

// DryOff es el comando directo lactating -> dry (botón de secado).
func (s *Service) DryOff(ctx context.Context, farmID, animalID string, dryOffDate *time.Time) (animals.Animal, error) {
	a, err := s.applyDryOff(ctx, farmID, animalID, dryOffDate)
	if err != nil {
		return animals.Animal{}, err
	}

	effective := s.now()
	if dryOffDate != nil {
		effective = *dryOffDate
	}
	e := BreedingEvent{
		ID:         uuid.NewString(),
		FarmID:     farmID,
		AnimalID:   animalID,
		Type:       EventTypeDryOff,
		EventDate:  DateOnly(effective),
		RecordedAt: s.now(),
	}
	if err := s.events.Create(ctx, e); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

func (s *Service) ListEvents(ctx context.Context, farmID, animalID string, filter ListFilter) ([]BreedingEvent, error) {
	return s.events.ListByAnimal(ctx, farmID, animalID, filter)
}

func (s *Service) applyService(ctx context.Context, farmID, animalID string, serviceDate time.Time) error {
	elig, err := s.EvaluateAnimal(ctx, farmID, animalID)
	if err != nil {
		return err
	}
	if !elig.CanBreed {
		return &NotEligibleError{Eligibility: elig}
	}

	cfg, err := s.settings.Get(ctx, farmID)
	if err != nil {
		return err
	}

	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return err
	}

	_, err = s.animals.ApplyTransition(ctx, farmID, animalID, a.ProductionStatus, func(a *animals.Animal) {
		sd := DateOnly(serviceDate)
		a.ServiceDate = &sd
		calving := ExpectedCalvingDate(sd, cfg.DefaultGestationDays)
		a.ExpectedCalvingDate = &calving
		a.ProductionStatus = animals.StatusServed
	})
	return err
}

func (s *Service) applyCalving(ctx context.Context, farmID, animalID string, calvingDate time.Time) error {
	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return err
	}
	if a.ProductionStatus != animals.StatusServed {
		return &InvalidTransitionError{From: a.ProductionStatus, To: animals.StatusLactating}
	}

	_, err = s.animals.ApplyTransition(ctx, farmID, animalID, animals.StatusServed, func(a *animals.Animal) {
		cd := DateOnly(calvingDate)
		a.LastCalvingDate = &cd
		a.ServiceDate = nil
		a.ExpectedCalvingDate = nil
		a.DryOffDate = nil
		a.DaysInMilk = 0
		a.ProductionStatus = animals.StatusLactating
	})
	return err
}

func (s *Service) applyDryOff(ctx context.Context, farmID, animalID string, dryOffDate *time.Time) (animals.Animal, error) {
	a, err := s.animals.GetByID(ctx, farmID, animalID)
	if err != nil {
		return animals.Animal{}, err
	}

	plan, err := PlanDryOff(a, dryOffDate, s.now())
	if err != nil {
		return animals.Animal{}, err
	}

	return s.animals.ApplyTransition(ctx, farmID, animalID, plan.FromStatus, plan.Apply)
}

// latestEventDate tolera historial vacío: nil significa "sin dato".
func (s *Service) latestEventDate(ctx context.Context, farmID, animalID string, t EventType) *time.Time {
	e, err := s.events.LatestByType(ctx, farmID, animalID, t)
	if err != nil {
		return nil
	}
	d := DateOnly(e.EventDate)
	return &d
}
