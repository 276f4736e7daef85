package breeding

import (
	"errors"
	"fmt"

	"dairy-herd-service/internal/domain/animals"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ValidationError marca un input requerido ausente o malformado
// (fecha de nacimiento, sexo, fechas de historial).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError marca un comando de transición de estado emitido
// contra un animal que no está en el estado de origen requerido.
// No confundir con resultados normales del motor (canBreed=false,
// shouldDryOff=false): esos no son errores.
type InvalidTransitionError struct {
	From animals.ProductionStatus
	To   animals.ProductionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}
