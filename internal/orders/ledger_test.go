package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendaonline/backend/internal/catalog"
)

func seedProduct(t *testing.T, store *catalog.MemoryStore, id, nombre string, precio float64, stock int) {
	t.Helper()
	now := time.Now().UTC()
	err := store.Save(context.Background(), catalog.Product{
		ID:                 id,
		Nombre:             nombre,
		Descripcion:        "producto de prueba",
		Precio:             catalog.Precio(precio),
		Stock:              catalog.Stock(stock),
		Activo:             true,
		FechaCreacion:      now,
		FechaActualizacion: now,
	})
	require.NoError(t, err)
}

func productStock(t *testing.T, store *catalog.MemoryStore, id string) int {
	t.Helper()
	p, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p.Stock)
	return *p.Stock
}

func TestLedgerReserveAndDecrement(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(t, store, "a", "Producto A", 10.50, 5)
	ledger := NewLedger(store)

	items, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "a", Cantidad: 3}})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Producto A", items[0].NombreProducto)
	assert.Equal(t, 10.50, items[0].PrecioUnitario)
	assert.Equal(t, 3, items[0].Cantidad)
	assert.Equal(t, 2, productStock(t, store, "a"))
}

func TestLedgerProductNotFound(t *testing.T) {
	ledger := NewLedger(catalog.NewMemoryStore())

	_, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "nope", Cantidad: 1}})
	assert.ErrorIs(t, err, &catalog.NotFoundError{})
}

func TestLedgerInsufficientStock(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(t, store, "a", "Producto A", 10, 5)
	ledger := NewLedger(store)

	_, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "a", Cantidad: 10}})
	require.Error(t, err)

	var ins *InsufficientStockError
	require.True(t, errors.As(err, &ins))
	assert.Equal(t, "Producto A", ins.Nombre)
	assert.Equal(t, 5, ins.Available)
	assert.Equal(t, 10, ins.Requested)
	assert.Equal(t, 5, productStock(t, store, "a"), "el stock no debe cambiar")
}

func TestLedgerValidatesAllBeforeDecrementingAny(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(t, store, "a", "Producto A", 10, 5)
	seedProduct(t, store, "b", "Producto B", 20, 1)
	ledger := NewLedger(store)

	// b falla la validación, por lo que a tampoco debe decrementarse
	_, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{
		{ProductoID: "a", Cantidad: 2},
		{ProductoID: "b", Cantidad: 5},
	})
	assert.ErrorIs(t, err, &InsufficientStockError{})
	assert.Equal(t, 5, productStock(t, store, "a"))
	assert.Equal(t, 1, productStock(t, store, "b"))
}

func TestLedgerRejectsInactiveProduct(t *testing.T) {
	store := catalog.NewMemoryStore()
	now := time.Now().UTC()
	require.NoError(t, store.Save(context.Background(), catalog.Product{
		ID: "a", Nombre: "Inactivo", Descripcion: "x",
		Precio: catalog.Precio(10), Stock: catalog.Stock(5),
		Activo: false, FechaCreacion: now, FechaActualizacion: now,
	}))
	ledger := NewLedger(store)

	_, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "a", Cantidad: 1}})
	assert.ErrorIs(t, err, &ValidationError{})
}

func TestLedgerRejectsIncompleteRecord(t *testing.T) {
	store := catalog.NewMemoryStore()
	now := time.Now().UTC()
	require.NoError(t, store.Save(context.Background(), catalog.Product{
		ID: "legacy", Nombre: "Sin precio", Descripcion: "x",
		Stock: catalog.Stock(5), Activo: true,
		FechaCreacion: now, FechaActualizacion: now,
	}))
	ledger := NewLedger(store)

	_, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "legacy", Cantidad: 1}})
	assert.ErrorIs(t, err, &catalog.IncompleteRecordError{})
}

func TestLedgerRestore(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(t, store, "a", "Producto A", 10, 5)
	ledger := NewLedger(store)

	items, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "a", Cantidad: 3}})
	require.NoError(t, err)
	require.Equal(t, 2, productStock(t, store, "a"))

	ledger.Restore(context.Background(), items)
	assert.Equal(t, 5, productStock(t, store, "a"), "el stock vuelve exactamente a su valor previo")
}

// atomicRaceStore fires a competing atomic decrement the moment the restore
// increment arrives, mimicking an order placed while a cancellation runs.
type atomicRaceStore struct {
	*catalog.MemoryStore
	concurrent func()
}

func (s *atomicRaceStore) IncrementStock(ctx context.Context, id string, qty int) (bool, error) {
	if s.concurrent != nil {
		s.concurrent()
		s.concurrent = nil
	}
	return s.MemoryStore.IncrementStock(ctx, id, qty)
}

func TestLedgerRestoreKeepsConcurrentSale(t *testing.T) {
	mem := catalog.NewMemoryStore()
	seedProduct(t, mem, "a", "Producto A", 10, 5)
	store := &atomicRaceStore{MemoryStore: mem}
	ledger := NewLedger(store)

	items, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "a", Cantidad: 3}})
	require.NoError(t, err)
	require.Equal(t, 2, productStock(t, mem, "a"))

	// otro pedido gana 2 unidades mientras la restauración está en vuelo
	store.concurrent = func() {
		applied, err := mem.DecrementStock(context.Background(), "a", 2)
		require.NoError(t, err)
		require.True(t, applied)
	}

	ledger.Restore(context.Background(), items)
	assert.Equal(t, 3, productStock(t, mem, "a"), "ninguna de las dos escrituras se pierde")
}

// deniedDecrementStore simulates losing the stock race between validation and
// the write for one product.
type deniedDecrementStore struct {
	*catalog.MemoryStore
	deny string
}

func (s *deniedDecrementStore) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	if id == s.deny {
		return false, nil
	}
	return s.MemoryStore.DecrementStock(ctx, id, qty)
}

func TestLedgerRollsBackPartialDecrements(t *testing.T) {
	mem := catalog.NewMemoryStore()
	seedProduct(t, mem, "a", "Producto A", 10, 5)
	seedProduct(t, mem, "b", "Producto B", 20, 5)
	ledger := NewLedger(&deniedDecrementStore{MemoryStore: mem, deny: "b"})

	// ambos pasan la validación; b pierde la carrera al escribir y el
	// decremento ya aplicado a a debe revertirse
	_, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{
		{ProductoID: "a", Cantidad: 2},
		{ProductoID: "b", Cantidad: 3},
	})
	assert.ErrorIs(t, err, &InsufficientStockError{})
	assert.Equal(t, 5, productStock(t, mem, "a"))
	assert.Equal(t, 5, productStock(t, mem, "b"))
}

// plainStore hides the atomic capabilities so the read-then-write fallbacks run.
type plainStore struct{ catalog.Store }

func TestLedgerFallbackWithoutAtomicCounters(t *testing.T) {
	mem := catalog.NewMemoryStore()
	seedProduct(t, mem, "a", "Producto A", 10, 5)
	ledger := NewLedger(plainStore{mem})

	items, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{{ProductoID: "a", Cantidad: 3}})
	require.NoError(t, err)
	assert.Equal(t, 2, productStock(t, mem, "a"))

	ledger.Restore(context.Background(), items)
	assert.Equal(t, 5, productStock(t, mem, "a"))
}

func TestLedgerRestoreToleratesDeletedProduct(t *testing.T) {
	store := catalog.NewMemoryStore()
	seedProduct(t, store, "a", "Producto A", 10, 5)
	seedProduct(t, store, "b", "Producto B", 20, 5)
	ledger := NewLedger(store)

	items, err := ledger.ReserveAndDecrement(context.Background(), []ItemInput{
		{ProductoID: "a", Cantidad: 1},
		{ProductoID: "b", Cantidad: 2},
	})
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), "a"))

	// no debe fallar aunque a ya no exista; b sí se restaura
	ledger.Restore(context.Background(), items)
	assert.Equal(t, 5, productStock(t, store, "b"))
}
