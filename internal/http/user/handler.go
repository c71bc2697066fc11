package user

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/role-templates", h.roleTemplates)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Put("/{id}/role", h.setRole)
	r.Put("/{id}/designation", h.updateDesignation)
	r.Put("/{id}/department", h.updateDepartment)
	r.Post("/{id}/reset-password", h.resetPassword)
}

type userResponse struct {
	ID                  uuid.UUID   `json:"id"`
	Email               string      `json:"email"`
	FirstName           string      `json:"first_name"`
	LastName            string      `json:"last_name"`
	FullName            string      `json:"full_name"`
	Department          string      `json:"department,omitempty"`
	Designation         string      `json:"designation,omitempty"`
	Role                access.Role `json:"role"`
	RoleLabel           string      `json:"role_label"`
	ForcePasswordChange bool        `json:"force_password_change"`
	CreatedAt           time.Time   `json:"created_at"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		FullName:            u.FullName(),
		Department:          u.Department,
		Designation:         u.Designation,
		Role:                u.Role,
		RoleLabel:           u.Role.Label(),
		ForcePasswordChange: u.ForcePasswordChange,
		CreatedAt:           u.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), respond.Session(r), r.URL.Query().Get("search"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toResponse(u)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Role        string `json:"role"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	u, err := h.svc.Create(r.Context(), respond.Session(r), user.CreateParams{
		Profile: user.Profile{
			Email:       req.Email,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Department:  req.Department,
			Designation: req.Designation,
		},
		Password: req.Password,
		Role:     access.Role(req.Role),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(u))
}

type roleTemplateResponse struct {
	Name        string      `json:"name"`
	Role        access.Role `json:"role"`
	Description string      `json:"description"`
}

func (h *Handler) roleTemplates(w http.ResponseWriter, r *http.Request) {
	if err := access.Authorize(respond.Session(r), access.ActionViewAdminPanel); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]roleTemplateResponse, len(user.RoleTemplates))
	for i, t := range user.RoleTemplates {
		resp[i] = roleTemplateResponse{Name: t.Name, Role: t.Role, Description: t.Description}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	u, err := h.svc.Get(r.Context(), respond.Session(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), respond.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req setRoleRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.svc.SetRole(r.Context(), respond.Session(r), id, access.Role(req.Role)); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type valueRequest struct {
	Value string `json:"value"`
}

func (h *Handler) updateDesignation(w http.ResponseWriter, r *http.Request) {
	h.updateField(w, r, h.svc.UpdateDesignation)
}

func (h *Handler) updateDepartment(w http.ResponseWriter, r *http.Request) {
	h.updateField(w, r, h.svc.UpdateDepartment)
}

func (h *Handler) updateField(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, sess access.Session, id uuid.UUID, value string) (*user.User, error),
) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req valueRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	u, err := fn(r.Context(), respond.Session(r), id, req.Value)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.ResetPassword(r.Context(), respond.Session(r), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
