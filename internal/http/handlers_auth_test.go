package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	"github.com/campuscore/portal-api/internal/domain/model"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"github.com/campuscore/portal-api/internal/service"
)

func newLoginRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_Login_Success(t *testing.T) {
	expiresAt := time.Now().Add(8 * time.Hour)
	mockSvc := &fakeAuthService{
		loginFunc: func(_ context.Context, input service.LoginInput) (*service.LoginResult, error) {
			assert.Equal(t, "22/071145217", input.Identifier)
			assert.Equal(t, "Demo@1234", input.Password)
			assert.False(t, input.RememberMe)
			return &service.LoginResult{Session: domainauth.Session{
				ID:          "new-session",
				UserID:      "user-student-1",
				DisplayName: "Ms Ubi Blessing George",
				Email:       "student@unical.demo",
				Roles:       []domainauth.Role{domainauth.RoleStudent},
				ExpiresAt:   expiresAt,
			}}, nil
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	h.Login(w, newLoginRequest(t, `{"identifier":"22/071145217","password":"Demo@1234"}`))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		User struct {
			ID          string   `json:"id"`
			DisplayName string   `json:"display_name"`
			Email       string   `json:"email"`
			Roles       []string `json:"roles"`
			PrimaryRole string   `json:"primary_role"`
		} `json:"user"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-student-1", resp.User.ID)
	assert.Equal(t, "Ms Ubi Blessing George", resp.User.DisplayName)
	assert.Equal(t, []string{"student"}, resp.User.Roles)
	assert.Equal(t, "student", resp.User.PrimaryRole)
	assert.WithinDuration(t, expiresAt, resp.ExpiresAt, time.Second)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.Equal(t, "new-session", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure, "plain HTTP request should not mark the cookie secure")
	assert.Greater(t, cookie.MaxAge, 0)
}

func TestAuthHandlers_Login_SecureCookieBehindProxy(t *testing.T) {
	mockSvc := &fakeAuthService{
		loginFunc: func(_ context.Context, _ service.LoginInput) (*service.LoginResult, error) {
			return &service.LoginResult{Session: domainauth.Session{
				ID:        "s1",
				ExpiresAt: time.Now().Add(time.Hour),
			}}, nil
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	req := newLoginRequest(t, `{"identifier":"a@b.c","password":"x"}`)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	h.Login(w, req)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestAuthHandlers_Login_InvalidCredentials(t *testing.T) {
	mockSvc := &fakeAuthService{
		loginFunc: func(_ context.Context, _ service.LoginInput) (*service.LoginResult, error) {
			return nil, apperrors.InvalidCredentials()
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	h.Login(w, newLoginRequest(t, `{"identifier":"nobody@unical.demo","password":"wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_credentials", resp["error"])
	assert.Equal(t, "Invalid credentials. Please check your identifier and password.", resp["message"])
	assert.NotContains(t, w.Body.String(), "nobody@unical.demo", "response must not echo the identifier")
	assert.Nil(t, sessionCookieFrom(t, w), "failed login must not set a cookie")
}

func TestAuthHandlers_Login_ValidationSharesCredentialResponse(t *testing.T) {
	// Missing fields look identical to a bad password from the outside.
	mockSvc := &fakeAuthService{
		loginFunc: func(_ context.Context, _ service.LoginInput) (*service.LoginResult, error) {
			return nil, apperrors.ValidationField("password", "password is required")
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	h.Login(w, newLoginRequest(t, `{"identifier":"student@unical.demo","password":""}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")
}

func TestAuthHandlers_Login_BackendUnavailable(t *testing.T) {
	mockSvc := &fakeAuthService{
		loginFunc: func(_ context.Context, _ service.LoginInput) (*service.LoginResult, error) {
			return nil, apperrors.BackendUnavailable(errors.New("auth backend unreachable"))
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	h.Login(w, newLoginRequest(t, `{"identifier":"student@unical.demo","password":"Demo@1234"}`))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "backend_unavailable")
}

func TestAuthHandlers_Login_MalformedBackendResponse(t *testing.T) {
	mockSvc := &fakeAuthService{
		loginFunc: func(_ context.Context, _ service.LoginInput) (*service.LoginResult, error) {
			return nil, apperrors.MalformedResponse(errors.New("token response missing subject"))
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	h.Login(w, newLoginRequest(t, `{"identifier":"student@unical.demo","password":"Demo@1234"}`))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "backend_unavailable")
	assert.NotContains(t, w.Body.String(), "missing subject", "backend details stay server-side")
}

func TestAuthHandlers_Login_RejectsUnknownFields(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{}}

	w := httptest.NewRecorder()
	h.Login(w, newLoginRequest(t, `{"identifier":"a","password":"b","bogus":true}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_json")
}

func TestAuthHandlers_Logout_ClearsCookie(t *testing.T) {
	var loggedOut []string
	mockSvc := &fakeAuthService{
		logoutFunc: func(_ context.Context, sessionID string) error {
			loggedOut = append(loggedOut, sessionID)
			return nil
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid-1"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sid-1"}, loggedOut)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthHandlers_Logout_NoCookieStillSucceeds(t *testing.T) {
	mockSvc := &fakeAuthService{
		logoutFunc: func(_ context.Context, _ string) error {
			t.Error("Logout should not be called without a cookie")
			return nil
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	w := httptest.NewRecorder()
	h.Logout(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}

func TestAuthHandlers_Logout_ServerFailureStillClearsCookie(t *testing.T) {
	mockSvc := &fakeAuthService{
		logoutFunc: func(_ context.Context, _ string) error {
			return assert.AnError
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid-1"})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthHandlers_Status_Unauthenticated(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{}}

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["authenticated"])
}

func TestAuthHandlers_Status_Authenticated(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{getSessionFunc: sessionWithRoles(domainauth.RoleStaff)}}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "sid"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Roles       []string `json:"roles"`
			PrimaryRole string   `json:"primary_role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, []string{"staff"}, resp.User.Roles)
	assert.Equal(t, "staff", resp.User.PrimaryRole)
}

func TestAuthHandlers_Status_InvalidSessionClearsCookie(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{getSessionFunc: noSession}}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale"})
	w := httptest.NewRecorder()
	h.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie, "stale cookie should be cleared")
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestAuthHandlers_Profile_Success(t *testing.T) {
	mockSvc := &fakeAuthService{
		profileFunc: func(_ context.Context, userID string) (*model.Profile, error) {
			assert.Equal(t, "test-user", userID)
			matric := "22/071145217"
			return &model.Profile{
				UserID:       "test-user",
				DisplayName:  "Ms Ubi Blessing George",
				Email:        "student@unical.demo",
				MatricNumber: &matric,
			}, nil
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	session := &domainauth.Session{ID: "sid", UserID: "test-user", ExpiresAt: time.Now().Add(time.Hour)}
	req = req.WithContext(SetSessionInContext(req.Context(), session))
	w := httptest.NewRecorder()
	h.Profile(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "22/071145217")
}

func TestAuthHandlers_Profile_NotFound(t *testing.T) {
	mockSvc := &fakeAuthService{
		profileFunc: func(_ context.Context, _ string) (*model.Profile, error) {
			return nil, apperrors.NotFound("profile not found")
		},
	}
	h := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	session := &domainauth.Session{ID: "sid", UserID: "test-user", ExpiresAt: time.Now().Add(time.Hour)}
	req = req.WithContext(SetSessionInContext(req.Context(), session))
	w := httptest.NewRecorder()
	h.Profile(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "profile_not_found")
}

func TestAuthHandlers_Profile_NoSession(t *testing.T) {
	h := &AuthHandlers{Svc: &fakeAuthService{}}

	w := httptest.NewRecorder()
	h.Profile(w, httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
