package breeding

import (
	"fmt"
	"time"

	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/settings"
)

// Eligibility es el veredicto de si un animal puede servirse y por qué.
// Se construye fresco en cada evaluación, nunca se persiste.
type Eligibility struct {
	CanBreed bool

	// Blockers: la primera razón bloqueante corta la evaluación.
	Blockers        []string
	Reasons         []string
	Recommendations []string

	// NextBreedingDate solo se llena cuando el bloqueo es el descanso postparto.
	NextBreedingDate *time.Time
}

func blocked(e Eligibility, msg string) Eligibility {
	e.CanBreed = false
	e.Blockers = append(e.Blockers, msg)
	return e
}

// Evaluate corre la cadena de reglas en orden fijo con short-circuit:
// cada regla o agrega un blocker y retorna, o suma reasons/recommendations
// y sigue. El orden es parte del contrato (reproducibilidad de resultados).
// Función pura sobre sus inputs; today define el día calendario de referencia.
func Evaluate(a animals.Animal, cfg settings.BreedingSettings, lastCalvingDate, lastBreedingDate *time.Time, today time.Time) Eligibility {
	out := Eligibility{CanBreed: true}

	// 1. Sexo: los machos no se sirven, nunca.
	if a.Gender == animals.GenderMale {
		return blocked(out, "male animals cannot be bred")
	}

	// 2. Edad mínima.
	ageDays := AgeInDays(a.BirthDate, today)
	ageMonths := ageDays / 30
	if ageMonths < cfg.MinimumBreedingAgeMonths {
		remaining := clampDays(cfg.MinimumBreedingAgeMonths*30 - ageDays)
		return blocked(out, fmt.Sprintf(
			"animal is below minimum breeding age of %d months: %d days remaining",
			cfg.MinimumBreedingAgeMonths, remaining))
	}

	// 3. Solo heifer, dry o lactating se pueden servir.
	switch a.ProductionStatus {
	case animals.StatusHeifer, animals.StatusDry, animals.StatusLactating:
	default:
		return blocked(out, fmt.Sprintf(
			"production status %q is not breedable", string(a.ProductionStatus)))
	}

	// 4. Descanso postparto (solo si hay fecha de último parto).
	if lastCalvingDate != nil {
		daysSinceCalving := DaysBetween(*lastCalvingDate, today)
		if daysSinceCalving < cfg.PostpartumDelayDays {
			remaining := clampDays(cfg.PostpartumDelayDays - daysSinceCalving)
			next := AddDays(*lastCalvingDate, cfg.PostpartumDelayDays)
			out = blocked(out, fmt.Sprintf(
				"postpartum recovery in progress: %d days remaining", remaining))
			out.NextBreedingDate = &next
			return out
		}
		out.Reasons = append(out.Reasons, fmt.Sprintf(
			"%d days since last calving, postpartum recovery complete", daysSinceCalving))
	}

	// 5. Estado sanitario.
	if a.HealthStatus == animals.HealthSick || a.HealthStatus == animals.HealthQuarantined {
		return blocked(out, fmt.Sprintf(
			"health status %q prevents breeding", string(a.HealthStatus)))
	}

	// 6. Preñez en curso.
	if a.ProductionStatus == animals.StatusServed && a.ExpectedCalvingDate != nil {
		return blocked(out, "animal is currently pregnant")
	}

	// 7. Servicio reciente: informativo, no bloquea.
	if lastBreedingDate != nil {
		daysSinceBreeding := DaysBetween(*lastBreedingDate, today)
		if daysSinceBreeding < cfg.HeatCycleDays {
			out.Recommendations = append(out.Recommendations, fmt.Sprintf(
				"bred %d days ago, confirm before re-breeding (heat cycle is %d days)",
				daysSinceBreeding, cfg.HeatCycleDays))
		}
	}

	// 8. Recomendación por status.
	switch a.ProductionStatus {
	case animals.StatusHeifer:
		out.Recommendations = append(out.Recommendations,
			"first service: prefer a proven easy-calving sire")
	case animals.StatusDry:
		out.Recommendations = append(out.Recommendations,
			"dry cow, ready for breeding")
	case animals.StatusLactating:
		out.Recommendations = append(out.Recommendations,
			"lactating cow, breeding will take on the next heat cycle")
	}

	// 9. Recién llegada a la edad mínima: vigilar celos.
	if ageMonths-cfg.MinimumBreedingAgeMonths < 3 {
		out.Recommendations = append(out.Recommendations,
			"recently reached breeding age: monitor heat cycles carefully")
	}

	// 10. Resumen final (solo si no hubo short-circuit).
	out.Reasons = append(out.Reasons,
		fmt.Sprintf("age %d months meets minimum of %d", ageMonths, cfg.MinimumBreedingAgeMonths),
		fmt.Sprintf("production status %q allows breeding", string(a.ProductionStatus)),
		fmt.Sprintf("health status %q allows breeding", string(a.HealthStatus)),
	)

	return out
}

// clampDays evita mostrar cuentas regresivas negativas.
func clampDays(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
