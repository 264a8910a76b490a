package orders

import "time"

// LineItem is one product entry in an order. NombreProducto and PrecioUnitario
// are snapshots taken when stock is reserved; later catalog edits never touch
// an existing order.
type LineItem struct {
	ProductoID     string  `json:"productoId"`
	NombreProducto string  `json:"nombreProducto"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario"`
}

func (i LineItem) Subtotal() float64 {
	return float64(i.Cantidad) * i.PrecioUnitario
}

// Order is a customer's purchase request. Orders are never deleted; state
// only moves through the status machine.
type Order struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"usuarioId"`
	Items              []LineItem `json:"productos"`
	Total              float64    `json:"total"`
	Estado             Status     `json:"estado"`
	Fecha              time.Time  `json:"fecha"`
	FechaActualizacion time.Time  `json:"fechaActualizacion"`
	DireccionEnvio     string     `json:"direccionEnvio,omitempty"`
	Notas              string     `json:"notas,omitempty"`
	NumeroSeguimiento  string     `json:"numeroSeguimiento,omitempty"`
	MotivoCancelacion  string     `json:"motivoCancelacion,omitempty"`
	FechaEntrega       *time.Time `json:"fechaEntrega,omitempty"`
}

// ItemInput is the client-supplied shape of an order line. Price is absent on
// purpose: pricing is resolved against the catalog at reservation time, never
// trusted from the request.
type ItemInput struct {
	ProductoID string `json:"productoId"`
	Cantidad   int    `json:"cantidad"`
}
