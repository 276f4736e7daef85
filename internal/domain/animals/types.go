package animals

// Gender define el sexo del animal.
// @Enum male, female
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ProductionStatus es la etapa productiva del animal dentro del hato.
// @Enum calf, heifer, served, lactating, dry, bull
type ProductionStatus string

const (
	StatusCalf      ProductionStatus = "calf"
	StatusHeifer    ProductionStatus = "heifer"
	StatusServed    ProductionStatus = "served"
	StatusLactating ProductionStatus = "lactating"
	StatusDry       ProductionStatus = "dry"
	StatusBull      ProductionStatus = "bull"
)

func (s ProductionStatus) Valid() bool {
	switch s {
	case StatusCalf, StatusHeifer, StatusServed, StatusLactating, StatusDry, StatusBull:
		return true
	}
	return false
}

// HealthStatus es el estado sanitario registrado del animal.
// @Enum healthy, sick, quarantined, requires_attention
type HealthStatus string

const (
	HealthHealthy           HealthStatus = "healthy"
	HealthSick              HealthStatus = "sick"
	HealthQuarantined       HealthStatus = "quarantined"
	HealthRequiresAttention HealthStatus = "requires_attention"
)

func (h HealthStatus) Valid() bool {
	switch h {
	case HealthHealthy, HealthSick, HealthQuarantined, HealthRequiresAttention:
		return true
	}
	return false
}
