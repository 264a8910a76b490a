package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiendaonline/backend/internal/catalog"
	"github.com/tiendaonline/backend/internal/users"
)

type ProductsHandler struct {
	Catalog *catalog.Service
}

type productRequest struct {
	Nombre      string   `json:"nombre"`
	Descripcion string   `json:"descripcion"`
	Precio      *float64 `json:"precio"`
	Stock       *int     `json:"stock"`
	Categoria   string   `json:"categoria"`
	Activo      *bool    `json:"activo"`
}

type stockUpdateRequest struct {
	Stock int `json:"stock"`
}

type backfillRequest struct {
	Precio float64 `json:"precio"`
	Stock  int     `json:"stock"`
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Route("/api/productos", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/disponibles", h.listAvailable)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(users.RoleAdmin))
			r.Get("/incompletos", h.listIncomplete)
			r.Post("/", h.create)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
			r.Put("/{id}/stock", h.updateStock)
			r.Put("/{id}/backfill", h.backfill)
		})
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) listAvailable(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListAvailable(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) listIncomplete(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListIncomplete(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p := req.product()
	created, err := h.Catalog.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p := req.product()
	// An absent activo keeps the current flag; updates must not silently
	// reactivate a deactivated product.
	if req.Activo == nil {
		existing, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		p.Activo = existing.Activo
	}
	updated, err := h.Catalog.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	var req stockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "cuerpo de la petición inválido")
		return
	}
	p, err := h.Catalog.UpdateStock(r.Context(), chi.URLParam(r, "id"), req.Stock)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) backfill(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "cuerpo de la petición inválido")
		return
	}
	p, err := h.Catalog.Backfill(r.Context(), chi.URLParam(r, "id"), req.Precio, req.Stock)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "cuerpo de la petición inválido")
		return productRequest{}, false
	}
	return req, true
}

func (req productRequest) product() catalog.Product {
	p := catalog.Product{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Stock:       req.Stock,
		Categoria:   req.Categoria,
		Activo:      true,
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	return p
}
