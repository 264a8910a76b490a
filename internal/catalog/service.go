package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	minPrecio = 0.01
	maxPrecio = 999999.99
	minStock  = 0
	maxStock  = 999999

	maxNombreLen      = 100
	maxDescripcionLen = 500
)

// Service implements catalog administration on top of a Store.
type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// List returns every complete product. Incomplete legacy records are logged
// and left out instead of being silently zero-filled.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	all, err := s.Store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if !p.Complete() {
			slog.WarnContext(ctx, "producto con datos incompletos excluido del listado",
				"producto_id", p.ID, "nombre", p.Nombre)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ListIncomplete returns the legacy records that still need a backfill.
func (s *Service) ListIncomplete(ctx context.Context) ([]Product, error) {
	all, err := s.Store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []Product
	for _, p := range all {
		if !p.Complete() {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListAvailable returns products that are active and in stock.
func (s *Service) ListAvailable(ctx context.Context) ([]Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, &ValidationError{Msg: "el ID del producto es requerido"}
	}
	return s.Store.FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := s.validate(p); err != nil {
		return Product{}, err
	}
	if err := s.checkDuplicate(ctx, p.Nombre, ""); err != nil {
		return Product{}, err
	}

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Activo = true
	p.FechaCreacion = now
	p.FechaActualizacion = now

	if err := s.Store.Save(ctx, p); err != nil {
		return Product{}, err
	}
	slog.InfoContext(ctx, "producto creado", "producto_id", p.ID, "nombre", p.Nombre)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, p Product) (Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.validate(p); err != nil {
		return Product{}, err
	}
	if err := s.checkDuplicate(ctx, p.Nombre, id); err != nil {
		return Product{}, err
	}

	p.ID = existing.ID
	p.FechaCreacion = existing.FechaCreacion
	p.FechaActualizacion = time.Now().UTC()

	if err := s.Store.Save(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "producto eliminado", "producto_id", id, "nombre", p.Nombre)
	return nil
}

// UpdateStock replaces the stock counter with an absolute value.
func (s *Service) UpdateStock(ctx context.Context, id string, stock int) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if stock < minStock || stock > maxStock {
		return Product{}, &ValidationError{Msg: fmt.Sprintf("el stock debe estar entre %d y %d", minStock, maxStock)}
	}
	if !p.Complete() {
		return Product{}, &IncompleteRecordError{ProductID: id}
	}
	p.Stock = Stock(stock)
	p.FechaActualizacion = time.Now().UTC()
	if err := s.Store.Save(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Backfill fills the missing precio/stock of a legacy record. It is the only
// path that turns an incomplete product back into a sellable one.
func (s *Service) Backfill(ctx context.Context, id string, precio float64, stock int) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if p.Complete() {
		return Product{}, &ValidationError{Msg: "el producto no tiene datos pendientes de backfill"}
	}
	if precio < minPrecio || precio > maxPrecio {
		return Product{}, &ValidationError{Msg: fmt.Sprintf("el precio debe estar entre %.2f y %.2f", minPrecio, maxPrecio)}
	}
	if stock < minStock || stock > maxStock {
		return Product{}, &ValidationError{Msg: fmt.Sprintf("el stock debe estar entre %d y %d", minStock, maxStock)}
	}
	p.Precio = Precio(precio)
	p.Stock = Stock(stock)
	p.FechaActualizacion = time.Now().UTC()
	if err := s.Store.Save(ctx, p); err != nil {
		return Product{}, err
	}
	slog.InfoContext(ctx, "producto backfilled", "producto_id", id, "precio", precio, "stock", stock)
	return p, nil
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Nombre) == "" {
		return &ValidationError{Msg: "el nombre del producto es obligatorio"}
	}
	if len(p.Nombre) > maxNombreLen {
		return &ValidationError{Msg: fmt.Sprintf("el nombre del producto no puede exceder %d caracteres", maxNombreLen)}
	}
	if strings.TrimSpace(p.Descripcion) == "" {
		return &ValidationError{Msg: "la descripción del producto es obligatoria"}
	}
	if len(p.Descripcion) > maxDescripcionLen {
		return &ValidationError{Msg: fmt.Sprintf("la descripción no puede exceder %d caracteres", maxDescripcionLen)}
	}
	if p.Precio == nil || *p.Precio < minPrecio || *p.Precio > maxPrecio {
		return &ValidationError{Msg: fmt.Sprintf("el precio debe estar entre %.2f y %.2f", minPrecio, maxPrecio)}
	}
	if p.Stock == nil || *p.Stock < minStock || *p.Stock > maxStock {
		return &ValidationError{Msg: fmt.Sprintf("el stock debe estar entre %d y %d", minStock, maxStock)}
	}
	return nil
}

func (s *Service) checkDuplicate(ctx context.Context, nombre, excludeID string) error {
	existing, err := s.Store.FindByNombre(ctx, nombre)
	if err != nil {
		if errors.Is(err, &NotFoundError{}) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return &DuplicateNameError{Nombre: nombre}
	}
	return nil
}
