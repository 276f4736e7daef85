package details

// CalfOutcome indica cómo terminó el parto para la cría.
type CalfOutcome string

const (
	OutcomeAlive      CalfOutcome = "alive"
	OutcomeStillbirth CalfOutcome = "stillbirth"
)

// Calving modela el detalle de un evento CALVING.
type Calving struct {
	CalfGender       string      `json:"calf_gender,omitempty"` // male, female
	CalfTag          string      `json:"calf_tag,omitempty"`
	BirthWeightKg    float64     `json:"birth_weight_kg,omitempty"`
	Outcome          CalfOutcome `json:"outcome,omitempty"`
	AssistedDelivery bool        `json:"assisted_delivery,omitempty"`
	Complications    string      `json:"complications,omitempty"`
}
