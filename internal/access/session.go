package access

import (
	"context"

	"github.com/google/uuid"
)

// Session is the identity of the caller, passed explicitly to every service
// method that gates on role.
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// Authenticated reports whether the session belongs to a signed-in user.
func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// Can is a shorthand for Can(s.Role, action) on an authenticated session.
func (s Session) Can(action Action) bool {
	return s.Authenticated() && Can(s.Role, action)
}

type sessionContextKey struct{}

// ContextWithSession is used by the HTTP layer to carry the resolved session
// from the auth middleware to the handler.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session attached by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}

	s, ok := ctx.Value(sessionContextKey{}).(Session)

	return s, ok && s.Authenticated()
}
