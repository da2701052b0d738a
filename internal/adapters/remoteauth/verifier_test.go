package remoteauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"github.com/campuscore/portal-api/internal/ports"
)

func TestNewVerifier_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errMsg string
	}{
		{
			name:   "missing token URL",
			config: Config{ClientID: "portal", SessionTTL: time.Hour},
			errMsg: "token URL is required",
		},
		{
			name:   "missing client ID",
			config: Config{TokenURL: "http://example.com/token", SessionTTL: time.Hour},
			errMsg: "client ID is required",
		},
		{
			name:   "missing session TTL",
			config: Config{TokenURL: "http://example.com/token", ClientID: "portal"},
			errMsg: "session TTL is required",
		},
		{
			name: "bad roles path",
			config: Config{
				TokenURL:   "http://example.com/token",
				ClientID:   "portal",
				SessionTTL: time.Hour,
				RolesPath:  "roles[",
			},
			errMsg: "compile roles path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestVerifier_Verify_Success(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.Form.Get("grant_type"))
		assert.Equal(t, "student@unical.demo", r.Form.Get("username"))
		assert.Equal(t, "Demo@1234", r.Form.Get("password"))

		writeTokenResponse(t, w, map[string]any{
			"access_token":  signTestToken(t, "user-abc", "student@unical.demo", time.Now().Add(time.Hour)),
			"refresh_token": "refresh-xyz",
			"token_type":    "bearer",
			"expires_in":    3600,
			"roles":         []string{"student"},
			"user": map[string]any{
				"user_metadata": map[string]any{"display_name": "Ms Ubi Blessing George"},
			},
		})
	})

	verifier := newTestVerifier(t, srv.URL)
	id, err := verifier.Verify(context.Background(), "student@unical.demo", "Demo@1234")
	require.NoError(t, err)
	assert.Equal(t, "user-abc", id.UserID)
	assert.Equal(t, "student@unical.demo", id.Email)
	assert.Equal(t, "Ms Ubi Blessing George", id.DisplayName)
	assert.Equal(t, []domainauth.Role{domainauth.RoleStudent}, id.Roles)
	assert.Equal(t, "refresh-xyz", id.RefreshToken)
	assert.NotEmpty(t, id.AccessToken)
	assert.True(t, id.ExpiresAt.After(time.Now()))
}

func TestVerifier_Verify_RolesFromClaims(t *testing.T) {
	// No roles extra in the response body; roles live in the token claims
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.MapClaims{
			"sub":   "user-abc",
			"email": "staff@unical.demo",
			"exp":   time.Now().Add(time.Hour).Unix(),
			"roles": []string{"staff", "Student"},
		}
		writeTokenResponse(t, w, map[string]any{
			"access_token": signClaims(t, claims),
			"token_type":   "bearer",
		})
	})

	verifier := newTestVerifier(t, srv.URL)
	id, err := verifier.Verify(context.Background(), "staff@unical.demo", "pw")
	require.NoError(t, err)
	assert.Equal(t, []domainauth.Role{domainauth.RoleStaff, domainauth.RoleStudent}, id.Roles)
}

func TestVerifier_Verify_UnknownRolesDropped(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeTokenResponse(t, w, map[string]any{
			"access_token": signTestToken(t, "user-abc", "u@unical.demo", time.Now().Add(time.Hour)),
			"token_type":   "bearer",
			"roles":        []string{"superuser", "student"},
		})
	})

	verifier := newTestVerifier(t, srv.URL)
	id, err := verifier.Verify(context.Background(), "u@unical.demo", "pw")
	require.NoError(t, err)
	assert.Equal(t, []domainauth.Role{domainauth.RoleStudent}, id.Roles)
}

func TestVerifier_Verify_Rejected(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	verifier := newTestVerifier(t, srv.URL)
	_, err := verifier.Verify(context.Background(), "u@unical.demo", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestVerifier_Verify_BackendDown(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	verifier := newTestVerifier(t, srv.URL)
	_, err := verifier.Verify(context.Background(), "u@unical.demo", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.IsBackendUnavailable(err))
}

func TestVerifier_Verify_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	verifier := newTestVerifier(t, srv.URL)
	_, err := verifier.Verify(context.Background(), "u@unical.demo", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.IsBackendUnavailable(err))
}

func TestVerifier_Verify_GarbageResponse(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	})

	verifier := newTestVerifier(t, srv.URL)
	_, err := verifier.Verify(context.Background(), "u@unical.demo", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedResponse(err))
}

func TestVerifier_Verify_OpaqueToken(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeTokenResponse(t, w, map[string]any{
			"access_token": "not-a-jwt",
			"token_type":   "bearer",
		})
	})

	verifier := newTestVerifier(t, srv.URL)
	_, err := verifier.Verify(context.Background(), "u@unical.demo", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedResponse(err))
}

func TestVerifier_Verify_SessionTTLCeiling(t *testing.T) {
	// Backend grants a week; configured TTL is one hour
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeTokenResponse(t, w, map[string]any{
			"access_token": signTestToken(t, "user-abc", "u@unical.demo", time.Now().Add(7*24*time.Hour)),
			"token_type":   "bearer",
			"expires_in":   7 * 24 * 3600,
		})
	})

	verifier := newTestVerifier(t, srv.URL)
	id, err := verifier.Verify(context.Background(), "u@unical.demo", "pw")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, 5*time.Second)
}

func TestVerifier_ImplementsInterface(t *testing.T) {
	srv := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {})
	var _ ports.CredentialVerifier = newTestVerifier(t, srv.URL)
}

// tokenServer starts an httptest server whose handler plays the backend token
// endpoint.
func tokenServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newTestVerifier(t *testing.T, tokenURL string) *Verifier {
	t.Helper()
	verifier, err := NewVerifier(context.Background(), Config{
		TokenURL:        tokenURL + "/token",
		ClientID:        "portal",
		RolesPath:       "roles",
		DisplayNamePath: "user.user_metadata.display_name",
		SessionTTL:      time.Hour,
	})
	require.NoError(t, err)
	return verifier
}

func writeTokenResponse(t *testing.T, w http.ResponseWriter, body map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func signTestToken(t *testing.T, sub, email string, expiresAt time.Time) string {
	t.Helper()
	return signClaims(t, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   expiresAt.Unix(),
	})
}

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
