package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/auth"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

type Handler struct {
	auth  *auth.Service
	users *user.Service
	// signInLimit wraps the sign-in route; nil means unlimited.
	signInLimit func(http.Handler) http.Handler
}

func NewHandler(authSvc *auth.Service, users *user.Service, signInLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{auth: authSvc, users: users, signInLimit: signInLimit}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signUp)

	r.Group(func(r chi.Router) {
		if h.signInLimit != nil {
			r.Use(h.signInLimit)
		}

		r.Post("/signin", h.signIn)
	})

	r.Post("/password", h.changePassword)
	r.Get("/me", h.me)
}

type profileResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Email               string          `json:"email"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	Department          string          `json:"department,omitempty"`
	Designation         string          `json:"designation,omitempty"`
	Role                access.Role     `json:"role"`
	RoleLabel           string          `json:"role_label"`
	ForcePasswordChange bool            `json:"force_password_change"`
	Permissions         []access.Action `json:"permissions"`
}

func toProfile(u *user.User) profileResponse {
	return profileResponse{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Department:          u.Department,
		Designation:         u.Designation,
		Role:                u.Role,
		RoleLabel:           u.Role.Label(),
		ForcePasswordChange: u.ForcePasswordChange,
		Permissions:         access.Permissions(u.Role),
	}
}

type signUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Department      string `json:"department"`
	Designation     string `json:"designation"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	u, err := h.auth.SignUp(r.Context(), auth.SignUpParams{
		Profile: user.Profile{
			Email:       req.Email,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Department:  req.Department,
			Designation: req.Designation,
		},
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toProfile(u))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      profileResponse `json:"user"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	res, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, signInResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toProfile(res.User),
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	err := h.auth.ChangePassword(r.Context(), respond.Session(r), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess := respond.Session(r)

	u, err := h.users.Get(r.Context(), sess, sess.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProfile(u))
}
