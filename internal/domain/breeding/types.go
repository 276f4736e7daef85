package breeding

// EventType clasifica los eventos reproductivos registrados por animal.
type EventType string

const (
	EventTypeService        EventType = "SERVICE"
	EventTypeCalving        EventType = "CALVING"
	EventTypeHeat           EventType = "HEAT"
	EventTypeDryOff         EventType = "DRY_OFF"
	EventTypePregnancyCheck EventType = "PREGNANCY_CHECK"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeService, EventTypeCalving, EventTypeHeat, EventTypeDryOff, EventTypePregnancyCheck:
		return true
	}
	return false
}

// EventResult es el desenlace registrado (aplica a PREGNANCY_CHECK sobre todo).
type EventResult string

const (
	ResultPending  EventResult = "pending"
	ResultPregnant EventResult = "pregnant"
	ResultOpen     EventResult = "open"
)
