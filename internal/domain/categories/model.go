package categories

import (
	"time"

	"dairy-herd-service/internal/domain/animals"
)

// Category es una categoría de edad definida por la granja.
// El match se hace recorriendo en sort_order: la primera categoría cuyo rango
// [MinAgeDays, MaxAgeDays] contiene la edad (y cuyo filtro de sexo aplica) gana.
// Rangos solapados se toleran: gana la primera (ver clasificador en breeding).
type Category struct {
	ID     string
	FarmID string

	Name string

	MinAgeDays int
	MaxAgeDays *int // nil = sin tope

	Gender *animals.Gender // nil = cualquier sexo

	ProductionStatus animals.ProductionStatus

	Characteristics Characteristics

	SortOrder int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Characteristics son flags descriptivos de la categoría, usados por la UI
// y por reportes; el motor de breeding no decide sobre ellos.
type Characteristics struct {
	Lactating    bool
	Pregnant     bool
	BreedingMale bool
	GrowthPhase  bool
}

// Matches indica si la categoría aplica para una edad (en días) y sexo dados.
func (c Category) Matches(ageDays int, gender animals.Gender) bool {
	if ageDays < c.MinAgeDays {
		return false
	}
	if c.MaxAgeDays != nil && ageDays > *c.MaxAgeDays {
		return false
	}
	if c.Gender != nil && *c.Gender != gender {
		return false
	}
	return true
}
