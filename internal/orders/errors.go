package orders

import "fmt"

// ValidationError is returned when the request shape or values break an order rule.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NotFoundError is returned when no order matches the given ID.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pedido no encontrado: %s", e.OrderID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// InsufficientStockError carries the product name and the exact shortfall.
type InsufficientStockError struct {
	ProductoID string
	Nombre     string
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto '%s'. Disponible: %d, solicitado: %d",
		e.Nombre, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// InvalidTransitionError is returned when the status machine rejects a move.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición de estado no permitida: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	_, ok := target.(*InvalidTransitionError)
	return ok
}

// NotCancellableError is returned when cancellation is requested past the
// point of no return.
type NotCancellableError struct {
	Estado Status
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("el pedido no se puede cancelar en estado %s", e.Estado)
}

func (e *NotCancellableError) Is(target error) bool {
	_, ok := target.(*NotCancellableError)
	return ok
}

// ForbiddenError is returned when the actor lacks the required role or does
// not own the order.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string {
	if e.Msg == "" {
		return "no tienes permisos para acceder a este recurso"
	}
	return e.Msg
}

func (e *ForbiddenError) Is(target error) bool {
	_, ok := target.(*ForbiddenError)
	return ok
}
