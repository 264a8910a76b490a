package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/tiendaonline/backend/internal/orders"
	"github.com/tiendaonline/backend/internal/redisx"
	"github.com/tiendaonline/backend/internal/users"
)

type OrdersHandler struct {
	Orders *orders.Service
	Redis  *redis.Client // optional read cache for single-order lookups
}

type cancelRequest struct {
	Motivo string `json:"motivo"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/pedidos", func(r chi.Router) {
		r.With(RequireRole(users.RoleAdmin)).Get("/", h.listAll)
		r.With(RequireRole(users.RoleCliente)).Get("/mios", h.listMine)
		r.With(RequireRole(users.RoleAdmin, users.RoleCliente)).Get("/{id}", h.get)
		r.With(RequireRole(users.RoleCliente)).Post("/", h.create)
		r.With(RequireRole(users.RoleAdmin)).Put("/{id}/estado", h.changeStatus)
		r.With(RequireRole(users.RoleAdmin, users.RoleCliente)).Put("/{id}/cancelar", h.cancel)
	})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	list, err := h.Orders.ListAll(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyToSlice(list))
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	list, err := h.Orders.ListForOwner(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyToSlice(list))
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	id := chi.URLParam(r, "id")

	if o, ok := h.cached(r, id); ok {
		if actor.IsAdmin() || o.UserID == actor.UserID {
			writeJSON(w, http.StatusOK, o)
			return
		}
		writeError(w, http.StatusForbidden, "ACCESS_DENIED", "no tienes permisos para acceder a este recurso")
		return
	}

	o, err := h.Orders.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cache(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	var req orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "cuerpo de la petición inválido")
		return
	}
	o, err := h.Orders.Create(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cache(r, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	o, err := h.Orders.ChangeStatus(r.Context(), actor, chi.URLParam(r, "id"), r.URL.Query().Get("estado"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cache(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFrom(r.Context())
	var req cancelRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // motivo is optional
	}
	o, err := h.Orders.Cancel(r.Context(), actor, chi.URLParam(r, "id"), req.Motivo)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.cache(r, o)
	writeJSON(w, http.StatusOK, o)
}

// cached returns the order from Redis if present. The ownership check still
// happens in the handler, the cache only skips the store read.
func (h *OrdersHandler) cached(r *http.Request, id string) (orders.Order, bool) {
	if h.Redis == nil {
		return orders.Order{}, false
	}
	v, err := h.Redis.Get(r.Context(), fmt.Sprintf(redisx.KeyOrder, id)).Result()
	if err != nil || v == "" {
		return orders.Order{}, false
	}
	var o orders.Order
	if err := json.Unmarshal([]byte(v), &o); err != nil {
		return orders.Order{}, false
	}
	return o, true
}

func (h *OrdersHandler) cache(r *http.Request, o orders.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = h.Redis.Set(r.Context(), fmt.Sprintf(redisx.KeyOrder, o.ID), b, redisx.TTLOrderCache).Err()
}

func emptyToSlice(list []orders.Order) []orders.Order {
	if list == nil {
		return []orders.Order{}
	}
	return list
}
