package mockauth

import (
	"context"
	"testing"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifier_DemoAccounts(t *testing.T) {
	v, err := NewVerifier(Config{})
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), DemoStudentEmail, DemoStudentPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoStudentID, id.UserID)
	assert.Equal(t, "Ms Ubi Blessing George", id.DisplayName)
	assert.Equal(t, []domainauth.Role{domainauth.RoleStudent}, id.Roles)
	assert.NotEmpty(t, id.AccessToken)
	// No backend token lifetime exists, so the identity carries no expiry
	assert.True(t, id.ExpiresAt.IsZero())

	id, err = v.Verify(context.Background(), DemoAdminEmail, DemoAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, []domainauth.Role{domainauth.RoleAdmin}, id.Roles)
}

func TestVerifier_EmailIsCaseInsensitive(t *testing.T) {
	v, err := NewVerifier(Config{})
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), "  Staff@Unical.Demo ", DemoStaffPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoStaffID, id.UserID)
}

func TestVerifier_WrongPassword(t *testing.T) {
	v, err := NewVerifier(Config{})
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), DemoStudentEmail, "wrong-password")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestVerifier_UnknownAccount(t *testing.T) {
	v, err := NewVerifier(Config{})
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "nobody@unical.demo", "whatever")
	require.Error(t, err)
	// Lookup misses are indistinguishable from wrong passwords
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestVerifier_ExtraAccounts(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Extra@1234"), bcrypt.MinCost)
	require.NoError(t, err)

	v, err := NewVerifier(Config{
		ExtraAccounts: []string{"extra@unical.demo:" + string(hash)},
	})
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), "extra@unical.demo", "Extra@1234")
	require.NoError(t, err)
	assert.Equal(t, "extra@unical.demo", id.Email)
	assert.Empty(t, id.Roles)
}

func TestVerifier_MalformedExtraAccount(t *testing.T) {
	_, err := NewVerifier(Config{ExtraAccounts: []string{"no-separator"}})
	require.Error(t, err)

	_, err = NewVerifier(Config{ExtraAccounts: []string{"user@unical.demo:not-a-bcrypt-hash"}})
	require.Error(t, err)
}
