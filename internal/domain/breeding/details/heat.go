package details

// HeatIntensity es la intensidad observada del celo.
type HeatIntensity string

const (
	IntensityWeak     HeatIntensity = "weak"
	IntensityStandard HeatIntensity = "standard"
	IntensityStrong   HeatIntensity = "strong"
)

// Heat modela el detalle de un evento HEAT observado.
type Heat struct {
	Intensity  HeatIntensity `json:"intensity,omitempty"`
	Signs      []string      `json:"signs,omitempty"` // mounting, mucus, restlessness...
	ObservedBy string        `json:"observed_by,omitempty"`
}
