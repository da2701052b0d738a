package httpx

import (
	"context"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
)

// sessionKey is the single context key under which the auth middleware parks
// the resolved portal session for downstream handlers. Unexported so no other
// package can collide with it.
type sessionKey struct{}

// SetSessionInContext returns a child context carrying the resolved session.
// A nil session leaves ctx unchanged, so handlers never find a typed nil.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the portal session the auth middleware
// resolved for this request, with a presence flag. Absent means the request
// never passed an auth guard, or the visitor is anonymous.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext is the one-value variant for call sites that treat
// anonymous and absent the same way.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}
