package orders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tiendaonline/backend/internal/catalog"
)

// Ledger keeps product stock consistent with order line items. Policy:
// validate every item (and snapshot precio/nombre) before decrementing any,
// so a rejected order leaves the whole catalog untouched.
type Ledger struct {
	Products catalog.Store
}

func NewLedger(products catalog.Store) *Ledger {
	return &Ledger{Products: products}
}

// ReserveAndDecrement resolves each input against the catalog and, once every
// item passed validation, persists the stock decrements. The returned line
// items carry the price and name snapshots captured during validation.
func (l *Ledger) ReserveAndDecrement(ctx context.Context, inputs []ItemInput) ([]LineItem, error) {
	items := make([]LineItem, 0, len(inputs))

	for _, in := range inputs {
		p, err := l.Products.FindByID(ctx, in.ProductoID)
		if err != nil {
			return nil, err
		}
		if !p.Activo {
			return nil, &ValidationError{Msg: "el producto '" + p.Nombre + "' no está disponible para la venta"}
		}
		if !p.Complete() {
			return nil, &catalog.IncompleteRecordError{ProductID: p.ID}
		}
		if !p.HasStock(in.Cantidad) {
			return nil, &InsufficientStockError{
				ProductoID: p.ID,
				Nombre:     p.Nombre,
				Available:  *p.Stock,
				Requested:  in.Cantidad,
			}
		}
		items = append(items, LineItem{
			ProductoID:     p.ID,
			NombreProducto: p.Nombre,
			Cantidad:       in.Cantidad,
			PrecioUnitario: *p.Precio,
		})
	}

	for idx, it := range items {
		if err := l.decrement(ctx, it.ProductoID, it.Cantidad); err != nil {
			// A concurrent order won the stock between validation and this
			// write. Undo what this order already took before reporting.
			l.rollback(ctx, items[:idx])
			return nil, err
		}
	}
	return items, nil
}

// Restore puts the quantities of a cancelled order back into stock. A product
// deleted since the order was placed is tolerated: the cancellation must not
// fail because of it.
func (l *Ledger) Restore(ctx context.Context, items []LineItem) {
	for _, it := range items {
		applied, err := l.increment(ctx, it.ProductoID, it.Cantidad)
		if err != nil {
			slog.ErrorContext(ctx, "error restaurando stock",
				"producto_id", it.ProductoID, "error", err)
			continue
		}
		if !applied {
			slog.WarnContext(ctx, "producto eliminado, stock no restaurado",
				"producto_id", it.ProductoID, "cantidad", it.Cantidad)
		}
	}
}

// increment uses the store's atomic counter update when available, so a
// restore racing a concurrent order loses neither write. Stores without the
// capability fall back to read-then-write.
func (l *Ledger) increment(ctx context.Context, productoID string, qty int) (bool, error) {
	if inc, ok := l.Products.(catalog.StockIncrementer); ok {
		return inc.IncrementStock(ctx, productoID, qty)
	}

	p, err := l.Products.FindByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, &catalog.NotFoundError{}) {
			return false, nil
		}
		return false, err
	}
	if p.Stock == nil {
		return false, nil
	}
	next := *p.Stock + qty
	p.Stock = &next
	p.FechaActualizacion = time.Now().UTC()
	if err := l.Products.Save(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// decrement uses the store's atomic floor-checked decrement when available,
// falling back to read-then-write for stores without it.
func (l *Ledger) decrement(ctx context.Context, productoID string, qty int) error {
	if dec, ok := l.Products.(catalog.StockDecrementer); ok {
		applied, err := dec.DecrementStock(ctx, productoID, qty)
		if err != nil {
			return err
		}
		if !applied {
			return l.shortfall(ctx, productoID, qty)
		}
		return nil
	}

	p, err := l.Products.FindByID(ctx, productoID)
	if err != nil {
		return err
	}
	if !p.HasStock(qty) {
		return l.shortfall(ctx, productoID, qty)
	}
	next := *p.Stock - qty
	p.Stock = &next
	p.FechaActualizacion = time.Now().UTC()
	return l.Products.Save(ctx, p)
}

func (l *Ledger) shortfall(ctx context.Context, productoID string, qty int) error {
	available := 0
	nombre := productoID
	if p, err := l.Products.FindByID(ctx, productoID); err == nil {
		nombre = p.Nombre
		if p.Stock != nil {
			available = *p.Stock
		}
	}
	return &InsufficientStockError{ProductoID: productoID, Nombre: nombre, Available: available, Requested: qty}
}

func (l *Ledger) rollback(ctx context.Context, decremented []LineItem) {
	if len(decremented) == 0 {
		return
	}
	slog.WarnContext(ctx, "revirtiendo decrementos parciales de stock", "items", len(decremented))
	l.Restore(ctx, decremented)
}
