package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tiendaonline/backend/internal/events"
	"github.com/tiendaonline/backend/internal/users"
)

// Service is the single entry point the HTTP handlers use for order
// workflows. Authorization is decided here from the explicit actor, not from
// any ambient request state.
type Service struct {
	Store       Store
	Ledger      *Ledger
	Publisher   events.Publisher // nil-safe: events skipped if nil
	ServiceName string

	MaxItemsPerOrder int
	MaxQtyPerItem    int
}

const (
	DefaultMaxItemsPerOrder = 50
	DefaultMaxQtyPerItem    = 100
)

func NewService(store Store, ledger *Ledger, pub events.Publisher, serviceName string) *Service {
	return &Service{
		Store:            store,
		Ledger:           ledger,
		Publisher:        pub,
		ServiceName:      serviceName,
		MaxItemsPerOrder: DefaultMaxItemsPerOrder,
		MaxQtyPerItem:    DefaultMaxQtyPerItem,
	}
}

// CreateInput is what a client may submit when placing an order.
type CreateInput struct {
	Items          []ItemInput `json:"productos"`
	DireccionEnvio string      `json:"direccionEnvio,omitempty"`
	Notas          string      `json:"notas,omitempty"`
}

// Create places a new order for the acting client: validation, stock
// reservation with price snapshots, persistence, event.
func (s *Service) Create(ctx context.Context, actor users.Actor, in CreateInput) (Order, error) {
	if !actor.IsCliente() {
		return Order{}, &ForbiddenError{Msg: "solo los clientes pueden crear pedidos"}
	}
	if err := s.validateInput(in); err != nil {
		return Order{}, err
	}

	items, err := s.Ledger.ReserveAndDecrement(ctx, in.Items)
	if err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	o := Order{
		ID:                 uuid.NewString(),
		UserID:             actor.UserID,
		Items:              items,
		Total:              total(items),
		Estado:             StatusPending,
		Fecha:              now,
		FechaActualizacion: now,
		DireccionEnvio:     strings.TrimSpace(in.DireccionEnvio),
		Notas:              strings.TrimSpace(in.Notas),
	}

	if err := s.Store.Save(ctx, o); err != nil {
		// The stock is already taken; hand it back so a failed save does not
		// leak reserved units.
		s.Ledger.Restore(ctx, items)
		return Order{}, err
	}

	slog.InfoContext(ctx, "pedido creado", "pedido_id", o.ID, "usuario_id", o.UserID,
		"items", len(o.Items), "total", o.Total)
	s.publish(ctx, events.EventOrderCreated, events.TopicOrderCreated, o.ID,
		events.OrderCreatedPayload{OrderID: o.ID, UserID: o.UserID, Items: toEventItems(items), Total: o.Total})
	return o, nil
}

// ChangeStatus moves an order through the status machine. Admin only.
func (s *Service) ChangeStatus(ctx context.Context, actor users.Actor, orderID, rawEstado string) (Order, error) {
	if !actor.IsAdmin() {
		return Order{}, &ForbiddenError{Msg: "solo un administrador puede cambiar el estado de un pedido"}
	}
	if strings.TrimSpace(orderID) == "" {
		return Order{}, &ValidationError{Msg: "el ID del pedido es requerido"}
	}

	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	nuevo, err := ParseStatus(rawEstado)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Estado, nuevo) {
		return Order{}, &InvalidTransitionError{From: o.Estado, To: nuevo}
	}

	anterior := o.Estado
	o.Estado = nuevo
	o.FechaActualizacion = time.Now().UTC()
	if nuevo == StatusDelivered && o.FechaEntrega == nil {
		t := o.FechaActualizacion
		o.FechaEntrega = &t
	}

	if err := s.Store.Save(ctx, o); err != nil {
		return Order{}, err
	}

	slog.InfoContext(ctx, "estado de pedido actualizado", "pedido_id", o.ID,
		"de", anterior, "a", nuevo)
	s.publish(ctx, events.EventOrderStatusChanged, events.TopicOrderStatusChanged, o.ID,
		events.OrderStatusChangedPayload{OrderID: o.ID, From: string(anterior), To: string(nuevo)})
	return o, nil
}

// Cancel cancels a pending or confirmed order and restores its stock.
// Admins may cancel any order, clients only their own.
func (s *Service) Cancel(ctx context.Context, actor users.Actor, orderID, motivo string) (Order, error) {
	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !actor.IsAdmin() && o.UserID != actor.UserID {
		return Order{}, &ForbiddenError{}
	}
	if !CanCancel(o.Estado) {
		return Order{}, &NotCancellableError{Estado: o.Estado}
	}

	o.Estado = StatusCancelled
	o.MotivoCancelacion = strings.TrimSpace(motivo)
	o.FechaActualizacion = time.Now().UTC()

	// Persist first: a failed save leaves the order cancellable with its stock
	// still reserved, so a retry cannot restore the same units twice.
	if err := s.Store.Save(ctx, o); err != nil {
		return Order{}, err
	}
	s.Ledger.Restore(ctx, o.Items)

	slog.InfoContext(ctx, "pedido cancelado", "pedido_id", o.ID, "motivo", o.MotivoCancelacion)
	s.publish(ctx, events.EventOrderCancelled, events.TopicOrderCancelled, o.ID,
		events.OrderCancelledPayload{OrderID: o.ID, Motivo: o.MotivoCancelacion})
	return o, nil
}

// Get returns one order. Admins see any order, clients only their own.
func (s *Service) Get(ctx context.Context, actor users.Actor, orderID string) (Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return Order{}, &ValidationError{Msg: "el ID del pedido es requerido"}
	}
	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !actor.IsAdmin() && o.UserID != actor.UserID {
		return Order{}, &ForbiddenError{}
	}
	return o, nil
}

// ListForOwner returns the acting user's orders.
func (s *Service) ListForOwner(ctx context.Context, actor users.Actor) ([]Order, error) {
	return s.Store.FindByUser(ctx, actor.UserID)
}

// ListAll returns every order. Admin only.
func (s *Service) ListAll(ctx context.Context, actor users.Actor) ([]Order, error) {
	if !actor.IsAdmin() {
		return nil, &ForbiddenError{Msg: "solo un administrador puede listar todos los pedidos"}
	}
	return s.Store.FindAll(ctx)
}

func (s *Service) validateInput(in CreateInput) error {
	if len(in.Items) == 0 {
		return &ValidationError{Msg: "el pedido debe contener al menos un producto"}
	}
	if len(in.Items) > s.MaxItemsPerOrder {
		return &ValidationError{Msg: fmt.Sprintf("el pedido no puede tener más de %d items", s.MaxItemsPerOrder)}
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductoID) == "" {
			return &ValidationError{Msg: "todo item debe tener un ID de producto válido"}
		}
		if it.Cantidad <= 0 {
			return &ValidationError{Msg: "la cantidad de cada item debe ser mayor a cero"}
		}
		if it.Cantidad > s.MaxQtyPerItem {
			return &ValidationError{Msg: fmt.Sprintf("la cantidad por item no puede exceder %d unidades", s.MaxQtyPerItem)}
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType, topic, orderID string, payload any) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(ctx, topic, events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       events.MustMarshal(payload),
	})
}

func total(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}

func toEventItems(items []LineItem) []events.OrderItem {
	out := make([]events.OrderItem, len(items))
	for i, it := range items {
		out[i] = events.OrderItem{ProductoID: it.ProductoID, Cantidad: it.Cantidad, PrecioUnitario: it.PrecioUnitario}
	}
	return out
}
