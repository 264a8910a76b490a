package catalog

import "fmt"

// NotFoundError is returned when a product lookup misses.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("producto no encontrado: %s", e.ProductID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// ValidationError is returned when product data breaks a catalog rule.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// DuplicateNameError is returned when another product already uses the name.
type DuplicateNameError struct {
	Nombre string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("ya existe un producto con el nombre: %s", e.Nombre)
}

func (e *DuplicateNameError) Is(target error) bool {
	_, ok := target.(*DuplicateNameError)
	return ok
}

// IncompleteRecordError is returned when an operation needs precio and stock
// but the record still misses one of them.
type IncompleteRecordError struct {
	ProductID string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("producto %s tiene datos incompletos (precio o stock ausente), requiere backfill", e.ProductID)
}

func (e *IncompleteRecordError) Is(target error) bool {
	_, ok := target.(*IncompleteRecordError)
	return ok
}
