package breeding

import (
	"encoding/json"
	"time"
)

// BreedingEvent es una entrada del historial reproductivo de un animal.
// Details lleva el payload tipado según Type (ver package details).
type BreedingEvent struct {
	ID       string
	FarmID   string
	AnimalID string

	Type EventType

	EventDate  time.Time
	RecordedAt time.Time

	SireTag string
	Result  EventResult
	Notes   string

	Details json.RawMessage
}

// Schedule son las fechas derivadas hacia adelante para un animal servido,
// calculadas on-demand (nunca persistidas).
type Schedule struct {
	ServiceDate         *time.Time
	ExpectedCalvingDate *time.Time
	ExpectedDryOffDate  *time.Time
	NextHeatDate        *time.Time
	PregnancyCheckDate  *time.Time

	DaysPregnant int
}
