package details

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownShape = errors.New("details do not match event type")

// Decode valida que el payload de details corresponda al tipo de evento.
// raw vacío siempre es válido (los details son opcionales).
// Devuelve el struct decodificado (o nil si no había payload).
func Decode(eventType string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var target any
	switch eventType {
	case "SERVICE":
		target = &Insemination{}
	case "CALVING":
		target = &Calving{}
	case "HEAT":
		target = &Heat{}
	default:
		// DRY_OFF y PREGNANCY_CHECK no llevan payload tipado.
		return nil, fmt.Errorf("%w: event type %s takes no details", ErrUnknownShape, eventType)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownShape, err)
	}
	return target, nil
}
