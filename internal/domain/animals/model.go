package animals

import "time"

// Animal representa un animal del hato, siempre dentro del scope de una granja.
// Las fechas reproductivas (service/calving/dry-off) las mantiene el módulo breeding
// a través de comandos de transición; aquí solo viven como columnas del registro.
type Animal struct {
	ID     string
	FarmID string

	TagNumber string
	Name      string
	Breed     string

	Gender    Gender
	BirthDate time.Time

	ProductionStatus ProductionStatus
	HealthStatus     HealthStatus

	// Reproducción: service_date se setea al servir (status served) y se limpia
	// al parir o secar. dry_off_date solo existe tras lactating -> dry.
	ServiceDate         *time.Time
	ExpectedCalvingDate *time.Time
	DryOffDate          *time.Time
	LastCalvingDate     *time.Time

	LastMilkingDate        *time.Time
	DaysInMilk             int
	CurrentDailyProduction float64

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
