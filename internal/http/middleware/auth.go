package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Session, error)
}

// Authenticate resolves an "Authorization: Bearer" header to a session and
// stores it on the request context. Requests without the header pass
// through anonymously; an invalid token is rejected with 401.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respond.Message(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			sess, err := a.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(access.ContextWithSession(r.Context(), sess)))
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := access.SessionFromContext(r.Context()); !ok {
			respond.Error(w, r, access.ErrUnauthenticated)
			return
		}

		next.ServeHTTP(w, r)
	})
}
