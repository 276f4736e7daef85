package breeding

import (
	"time"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/categories"
)

// Classification es el resultado de clasificar por edad: el status productivo
// y, si hubo match contra una categoría de la granja, cuál fue (para UI).
type Classification struct {
	Status       animals.ProductionStatus
	CategoryID   string
	CategoryName string
	AgeDays      int
}

// Classify resuelve el production_status a partir de la fecha de nacimiento,
// el sexo y la tabla de categorías de la granja (ya ordenada por sort_order).
// Con rangos solapados gana la primera que matchea; con lista vacía o sin
// match aplica el fallback hard-coded por bandas de edad/sexo.
// Función pura: hoy se pasa como parámetro.
func Classify(birthDate time.Time, gender animals.Gender, cats []categories.Category, today time.Time) (Classification, error) {
	if birthDate.IsZero() {
		return Classification{}, validationErr("birth_date", "is required")
	}
	if !gender.Valid() {
		return Classification{}, validationErr("gender", "must be male or female")
	}

	ageDays := AgeInDays(birthDate, today)

	for _, c := range cats {
		if c.Matches(ageDays, gender) {
			return Classification{
				Status:       c.ProductionStatus,
				CategoryID:   c.ID,
				CategoryName: c.Name,
				AgeDays:      ageDays,
			}, nil
		}
	}

	return Classification{
		Status:  fallbackStatus(ageDays, gender),
		AgeDays: ageDays,
	}, nil
}

// fallbackStatus cubre granjas sin categorías configuradas.
// Solo infiere etapas deducibles por edad: served/lactating/dry dependen de
// historial reproductivo y nunca salen de acá.
func fallbackStatus(ageDays int, gender animals.Gender) animals.ProductionStatus {
	if ageDays < 365 {
		return animals.StatusCalf
	}
	if gender == animals.GenderMale {
		return animals.StatusBull
	}
	return animals.StatusHeifer
}
