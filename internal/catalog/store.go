package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type Store interface {
	FindByID(ctx context.Context, id string) (Product, error)
	FindByNombre(ctx context.Context, nombre string) (Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
}

// StockDecrementer is an optional store capability: decrement stock only if
// enough remains, in a single atomic statement. The ledger prefers it over
// read-then-write to avoid lost updates under concurrent orders.
type StockDecrementer interface {
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}

// StockIncrementer is the restore-side counterpart: add units back in one
// atomic statement. Reports false when the product no longer exists or its
// stock counter is absent.
type StockIncrementer interface {
	IncrementStock(ctx context.Context, id string, qty int) (bool, error)
}

// MemoryStore keeps products in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[string]Product)}
}

var (
	_ Store            = (*MemoryStore)(nil)
	_ StockDecrementer = (*MemoryStore)(nil)
	_ StockIncrementer = (*MemoryStore)(nil)
)

func (s *MemoryStore) FindByID(ctx context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, &NotFoundError{ProductID: id}
	}
	return clone(p), nil
}

func (s *MemoryStore) FindByNombre(ctx context.Context, nombre string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if strings.EqualFold(p.Nombre, nombre) {
			return clone(p), nil
		}
	}
	return Product{}, &NotFoundError{ProductID: nombre}
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = clone(p)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return &NotFoundError{ProductID: id}
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return false, &NotFoundError{ProductID: id}
	}
	if p.Stock == nil || *p.Stock < qty {
		return false, nil
	}
	next := *p.Stock - qty
	p.Stock = &next
	s.products[id] = p
	return true, nil
}

func (s *MemoryStore) IncrementStock(ctx context.Context, id string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Stock == nil {
		return false, nil
	}
	next := *p.Stock + qty
	p.Stock = &next
	s.products[id] = p
	return true, nil
}

// clone copies the pointer fields so callers cannot mutate stored state.
func clone(p Product) Product {
	if p.Precio != nil {
		v := *p.Precio
		p.Precio = &v
	}
	if p.Stock != nil {
		v := *p.Stock
		p.Stock = &v
	}
	return p
}
