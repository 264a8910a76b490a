package orders

import (
	"context"
	"sort"
	"sync"
)

type Store interface {
	FindByID(ctx context.Context, id string) (Order, error)
	FindByUser(ctx context.Context, userID string) ([]Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	Save(ctx context.Context, o Order) error
}

// MemoryStore keeps orders in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]Order)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) FindByID(ctx context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, &NotFoundError{OrderID: id}
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) FindByUser(ctx context.Context, userID string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sortByFecha(out)
	return out, nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, cloneOrder(o))
	}
	sortByFecha(out)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func sortByFecha(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Fecha.Equal(orders[j].Fecha) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].Fecha.After(orders[j].Fecha)
	})
}

func cloneOrder(o Order) Order {
	items := make([]LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	if o.FechaEntrega != nil {
		t := *o.FechaEntrega
		o.FechaEntrega = &t
	}
	return o
}
