package breeding

import (
	"time"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/settings"
)

// dryOffEarlyWindowDays: el botón de secado aparece este número de días
// antes de cumplirse days_pregnant_at_dryoff.
const dryOffEarlyWindowDays = 2

// ExpectedCalvingDate es la fecha de servicio más la gestación configurada.
func ExpectedCalvingDate(serviceDate time.Time, gestationDays int) time.Time {
	return AddDays(serviceDate, gestationDays)
}

// ExpectedDryOffDate es la fecha de servicio más los días de preñez al secado.
func ExpectedDryOffDate(serviceDate time.Time, daysPregnantAtDryoff int) time.Time {
	return AddDays(serviceDate, daysPregnantAtDryoff)
}

// NextExpectedHeatDate proyecta el próximo celo desde el último observado.
func NextExpectedHeatDate(lastHeatDate time.Time, cycleIntervalDays int) time.Time {
	return AddDays(lastHeatDate, cycleIntervalDays)
}

// DryOffStatus es el resultado de la regla de visibilidad del secado.
// ShouldDryOff=false no es un error: es "todavía no toca".
type DryOffStatus struct {
	ShowDryOffButton bool
	ShouldDryOff     bool

	DaysPregnant         int
	DaysUntilDryOffAlert int
	ButtonStartsInDays   int

	ExpectedDryOffDate *time.Time

	Reason string
}

// EvaluateDryOff aplica la regla de visibilidad: el botón aparece 2 días
// antes del umbral; al llegar al umbral el secado es accionable/urgente.
// Solo tiene sentido con status served y service_date presente.
func EvaluateDryOff(a animals.Animal, cfg settings.BreedingSettings, today time.Time) DryOffStatus {
	if a.ProductionStatus != animals.StatusServed || a.ServiceDate == nil {
		return DryOffStatus{
			Reason: "animal is not served or has no service date recorded",
		}
	}

	daysPregnant := DaysBetween(*a.ServiceDate, today)
	threshold := cfg.DaysPregnantAtDryoff
	alertAt := threshold - dryOffEarlyWindowDays

	expected := ExpectedDryOffDate(*a.ServiceDate, threshold)

	st := DryOffStatus{
		ShowDryOffButton:     daysPregnant >= alertAt,
		ShouldDryOff:         daysPregnant >= threshold,
		DaysPregnant:         daysPregnant,
		DaysUntilDryOffAlert: clampDays(alertAt - daysPregnant),
		ButtonStartsInDays:   clampDays(alertAt - daysPregnant),
		ExpectedDryOffDate:   &expected,
	}

	switch {
	case st.ShouldDryOff:
		st.Reason = "pregnancy reached dry-off threshold"
	case st.ShowDryOffButton:
		st.Reason = "dry-off window opens in the next days"
	default:
		st.Reason = "not yet due for dry-off"
	}

	return st
}

// TransitionPlan son los updates de campos que el caller debe aplicar como
// un único write atómico (CAS sobre production_status en el repo).
type TransitionPlan struct {
	FromStatus animals.ProductionStatus
	ToStatus   animals.ProductionStatus

	DryOffDate      time.Time
	LastMilkingDate time.Time

	// Al secar se corta la lactancia: contadores a cero, servicio limpio.
	ResetDaysInMilk          bool
	ResetCurrentProduction   bool
	ClearServiceDate         bool
	ClearExpectedCalvingDate bool
}

// PlanDryOff valida y arma la transición lactating -> dry.
// Un animal que ya está dry (o en cualquier otro estado) se rechaza con
// InvalidTransitionError: secar dos veces no es idempotente, es un error.
func PlanDryOff(a animals.Animal, dryOffDate *time.Time, today time.Time) (TransitionPlan, error) {
	if a.ProductionStatus != animals.StatusLactating {
		return TransitionPlan{}, &InvalidTransitionError{
			From: a.ProductionStatus,
			To:   animals.StatusDry,
		}
	}

	effective := DateOnly(today)
	if dryOffDate != nil {
		effective = DateOnly(*dryOffDate)
	}

	return TransitionPlan{
		FromStatus:               animals.StatusLactating,
		ToStatus:                 animals.StatusDry,
		DryOffDate:               effective,
		LastMilkingDate:          DateOnly(today),
		ResetDaysInMilk:          true,
		ResetCurrentProduction:   true,
		ClearServiceDate:         true,
		ClearExpectedCalvingDate: true,
	}, nil
}

// Apply vuelca el plan sobre el registro. El caller persiste con CAS.
func (p TransitionPlan) Apply(a *animals.Animal) {
	a.ProductionStatus = p.ToStatus
	d := p.DryOffDate
	a.DryOffDate = &d
	m := p.LastMilkingDate
	a.LastMilkingDate = &m

	if p.ResetDaysInMilk {
		a.DaysInMilk = 0
	}
	if p.ResetCurrentProduction {
		a.CurrentDailyProduction = 0
	}
	if p.ClearServiceDate {
		a.ServiceDate = nil
	}
	if p.ClearExpectedCalvingDate {
		a.ExpectedCalvingDate = nil
	}
}
