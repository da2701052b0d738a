package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router with the portal guards.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	portalHandlers := &PortalHandlers{}

	registerAuthRoutes(mux, authHandlers, services.Auth)
	registerPortalRoutes(mux, portalHandlers, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	// Wrap with the JSON NotFound handler and browser detection middleware
	handler := &notFoundHandler{mux: mux}
	return BrowserDetection()(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, auth AuthServiceInterface) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/status", h.Status)
	mux.Handle("GET /api/auth/profile", RequireAuth(auth)(http.HandlerFunc(h.Profile)))
}

func registerPortalRoutes(mux *http.ServeMux, h *PortalHandlers, auth AuthServiceInterface) {
	mux.HandleFunc("GET /{$}", h.Home)

	// Login entry points sit behind the reverse guard: an authenticated visitor
	// with at least one role is sent to their own dashboard instead.
	guard := RedirectIfAuthenticated(auth)
	mux.Handle("GET /login", guard(h.LoginPage(domainauth.RoleStudent)))
	mux.Handle("GET /staff-login", guard(h.LoginPage(domainauth.RoleStaff)))
	mux.Handle("GET /admin-login", guard(h.LoginPage(domainauth.RoleAdmin)))

	mux.Handle("GET /student/dashboard",
		RequireRoleBrowser(auth, domainauth.RoleStudent)(h.Dashboard(domainauth.RoleStudent)))
	mux.Handle("GET /staff/dashboard",
		RequireRoleBrowser(auth, domainauth.RoleStaff)(h.Dashboard(domainauth.RoleStaff)))
	mux.Handle("GET /admin/dashboard",
		RequireRoleBrowser(auth, domainauth.RoleAdmin)(h.Dashboard(domainauth.RoleAdmin)))
}
