package details

// Method define cómo se realizó el servicio.
type Method string

const (
	MethodAI      Method = "artificial_insemination"
	MethodNatural Method = "natural"
)

// Insemination modela el detalle de un evento SERVICE.
type Insemination struct {
	Method     Method  `json:"method"`
	SireTag    string  `json:"sire_tag,omitempty"`
	Technician string  `json:"technician,omitempty"`
	StrawID    string  `json:"straw_id,omitempty"`
	Cost       float64 `json:"cost,omitempty"`
}
