package supplier

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
)

type Handler struct {
	svc *supplier.Service
}

func NewHandler(svc *supplier.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/aliases", h.list)
	r.Post("/aliases", h.learn)
	r.Delete("/aliases/{id}", h.forget)
	r.Get("/resolve", h.resolve)
}

type aliasResponse struct {
	ID        uuid.UUID `json:"id"`
	Pattern   string    `json:"pattern"`
	Canonical string    `json:"canonical"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(a *supplier.Alias) aliasResponse {
	return aliasResponse{ID: a.ID, Pattern: a.Pattern, Canonical: a.Canonical, CreatedAt: a.CreatedAt}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	aliases, err := h.svc.List(r.Context(), respond.Session(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]aliasResponse, len(aliases))
	for i, a := range aliases {
		resp[i] = toResponse(a)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	Pattern   string `json:"pattern"`
	Canonical string `json:"canonical"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	a, err := h.svc.Learn(r.Context(), respond.Session(r), req.Pattern, req.Canonical)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Forget(r.Context(), respond.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type resolveResponse struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	if !respond.Session(r).Authenticated() {
		respond.Message(w, http.StatusUnauthorized, "not signed in")
		return
	}

	in := r.URL.Query().Get("q")

	name, err := h.svc.Resolve(r.Context(), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resolveResponse{Input: in, Canonical: name})
}
