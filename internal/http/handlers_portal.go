package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
)

// PortalHandlers serves the portal entry points and the per-role dashboards.
// This is a JSON API; the actual pages are rendered by the frontend, which
// consumes these payloads.
type PortalHandlers struct{}

// Home is the public landing page listing the available portals.
// GET /.
func (h *PortalHandlers) Home(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name": "University Portal",
		"portals": []map[string]string{
			{"portal": "student", "login": LoginPathForRole(domainauth.RoleStudent)},
			{"portal": "staff", "login": LoginPathForRole(domainauth.RoleStaff)},
			{"portal": "admin", "login": LoginPathForRole(domainauth.RoleAdmin)},
		},
	})
}

// LoginPage returns a handler describing the login entry point for a portal.
// The reverse guard wraps these routes, so a signed-in visitor never sees them.
func (h *PortalHandlers) LoginPage(role domainauth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"portal":         string(role),
			"login_endpoint": "/api/auth/login",
			"redirect_uri":   safeRedirectPath(r.URL.Query().Get("redirect_uri")),
		})
	}
}

// Dashboard returns a handler serving the dashboard summary for a portal.
// The role guard runs first, so the session in context always holds the role.
func (h *PortalHandlers) Dashboard(role domainauth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetUserSessionFromContext(r.Context())
		if !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_required",
				Err:     errors.New("authentication required"),
			})
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"portal":     string(role),
			"user":       sessionUser(session),
			"expires_at": session.ExpiresAt,
		})
	}
}

// notFoundHandler wraps a mux so unmatched routes get a JSON 404 instead of
// the default text response.
type notFoundHandler struct {
	mux *http.ServeMux
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("resource not found"),
		})
		return
	}
	h.mux.ServeHTTP(w, r)
}
