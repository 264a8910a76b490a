package catalog

import "time"

// Product is a catalog entry. Precio and Stock are pointers because legacy
// records can miss either field; such a product is "incomplete" and stays out
// of sale until an admin backfills it explicitly.
type Product struct {
	ID                 string    `json:"id"`
	Nombre             string    `json:"nombre"`
	Descripcion        string    `json:"descripcion"`
	Precio             *float64  `json:"precio"`
	Stock              *int      `json:"stock"`
	Categoria          string    `json:"categoria,omitempty"`
	Activo             bool      `json:"activo"`
	FechaCreacion      time.Time `json:"fechaCreacion"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
}

// Complete reports whether both precio and stock are present.
func (p Product) Complete() bool { return p.Precio != nil && p.Stock != nil }

// Available reports whether the product can be sold at all.
func (p Product) Available() bool {
	return p.Activo && p.Complete() && *p.Stock > 0
}

func (p Product) HasStock(qty int) bool {
	return p.Stock != nil && *p.Stock >= qty
}

func Precio(v float64) *float64 { return &v }
func Stock(v int) *int          { return &v }
