package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	"github.com/campuscore/portal-api/internal/domain/model"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"github.com/campuscore/portal-api/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Profile(ctx context.Context, userID string) (*model.Profile, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the JSON body for POST /api/auth/login.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// sessionUserPayload is the user object embedded in login and status responses.
type sessionUserPayload struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email"`
	Roles       []domainauth.Role `json:"roles"`
	PrimaryRole domainauth.Role   `json:"primary_role,omitempty"`
}

func sessionUser(s *domainauth.Session) sessionUserPayload {
	roles := s.Roles
	if roles == nil {
		roles = []domainauth.Role{}
	}
	return sessionUserPayload{
		ID:          s.UserID,
		DisplayName: s.DisplayName,
		Email:       s.Email,
		Roles:       roles,
		PrimaryRole: s.PrimaryRole(),
	}
}

// Login handles credential sign-in.
// POST /api/auth/login with {"identifier": ..., "password": ..., "remember_me": ...}.
// The cookie is only set once the session has been persisted server-side.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Login(r.Context(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		h.writeLoginError(w, r, err)
		return
	}

	h.setSessionCookie(w, r, result.Session)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":       sessionUser(&result.Session),
		"expires_at": result.Session.ExpiresAt,
	})
}

// writeLoginError maps pipeline failures onto the three user-facing outcomes.
// Credential and validation failures share one response so callers cannot
// distinguish an unknown identifier from a wrong password. The raw error is
// never echoed back; it may contain the attempted identifier.
func (h *AuthHandlers) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.IsInvalidCredentials(err), apperrors.IsValidation(err):
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "invalid_credentials",
			Err:     errors.New("Invalid credentials. Please check your identifier and password."),
		})
	case apperrors.IsBackendUnavailable(err), apperrors.GetCode(err) == apperrors.ErrCodeTimeout:
		h.logger().WarnContext(r.Context(), "auth backend unavailable", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "backend_unavailable",
			Err:     errors.New("The sign-in service is temporarily unavailable. Please try again."),
		})
	case apperrors.IsMalformedResponse(err):
		// A payload the backend mangled is a backend fault, not a credential
		// fault: the client sees the retryable outage response, never the 401.
		h.logger().ErrorContext(r.Context(), "auth backend returned malformed response", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "backend_unavailable",
			Err:     errors.New("The sign-in service is temporarily unavailable. Please try again."),
		})
	default:
		h.logger().ErrorContext(r.Context(), "login failed", "err", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     errors.New("something went wrong, please try again"),
		})
	}
}

// Logout invalidates the server-side session and clears the cookie.
// POST /api/auth/logout. Safe to call without a session; repeated calls succeed.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie("session_id"); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			// The cookie is still cleared so the client ends up signed out.
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	h.clearCookie(w, r, "session_id")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Status returns the current authentication status.
// GET /api/auth/status. Always 200; an invalid or expired session reports
// authenticated false and clears the stale cookie.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		h.clearCookie(w, r, "session_id")
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          sessionUser(session),
		"expires_at":    session.ExpiresAt,
	})
}

// Profile returns the directory profile for the signed-in user.
// GET /api/auth/profile, behind RequireAuth.
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	profile, err := h.Svc.Profile(r.Context(), session.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			WriteError(w, ErrorParams{
				Code:    http.StatusNotFound,
				ErrCode: "profile_not_found",
				Err:     errors.New("no profile exists for this account"),
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "profile lookup failed", "err", err, "user_id", session.UserID)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     errors.New("something went wrong, please try again"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    s.ID,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}
