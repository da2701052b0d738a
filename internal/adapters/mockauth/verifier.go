package mockauth

// Package mockauth provides an in-memory CredentialVerifier for local
// development and testing. Accounts are held as email + bcrypt hash pairs;
// the demo set mirrors the seeded portal accounts.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	domainauth "github.com/campuscore/portal-api/internal/domain/auth"
	apperrors "github.com/campuscore/portal-api/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// Account describes a mock credential record.
type Account struct {
	UserID       string
	Email        string
	DisplayName  string
	PasswordHash []byte // bcrypt hash
	Roles        []domainauth.Role
}

// Config controls the mock verifier behavior.
type Config struct {
	// Accounts to serve. When empty, DemoAccounts() is used.
	Accounts []Account

	// ExtraAccounts adds accounts from config, formatted "email:bcrypt-hash".
	ExtraAccounts []string
}

// Verifier implements ports.CredentialVerifier against an in-memory account
// set. Lookup failures and password mismatches are indistinguishable to the
// caller: both yield the invalid-credentials error.
type Verifier struct {
	accounts map[string]Account // keyed by lowercase email
}

// NewVerifier constructs a mock verifier from Config.
func NewVerifier(cfg Config) (*Verifier, error) {
	accounts := cfg.Accounts
	if len(accounts) == 0 {
		accounts = DemoAccounts()
	}

	v := &Verifier{
		accounts: make(map[string]Account, len(accounts)+len(cfg.ExtraAccounts)),
	}
	for _, acct := range accounts {
		if acct.Email == "" {
			return nil, fmt.Errorf("mock auth: account %q has no email", acct.UserID)
		}
		v.accounts[strings.ToLower(acct.Email)] = acct
	}
	for _, raw := range cfg.ExtraAccounts {
		acct, err := parseExtraAccount(raw)
		if err != nil {
			return nil, err
		}
		v.accounts[strings.ToLower(acct.Email)] = acct
	}
	return v, nil
}

// Verify checks email+password against the account set. The returned identity
// carries an opaque access token and the account's configured roles, and no
// expiry: there is no backend token whose lifetime could cap the session, so
// session TTL policy stays entirely with the caller.
func (v *Verifier) Verify(_ context.Context, email, password string) (domainauth.Identity, error) {
	acct, ok := v.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		// Burn a comparison so lookup misses cost the same as mismatches
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return domainauth.Identity{}, apperrors.InvalidCredentials()
	}

	token, err := randomToken(32)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("mint access token: %w", err)
	}
	return domainauth.Identity{
		UserID:      acct.UserID,
		DisplayName: acct.DisplayName,
		Email:       acct.Email,
		AccessToken: token,
		Roles:       append([]domainauth.Role(nil), acct.Roles...),
	}, nil
}

// parseExtraAccount parses an "email:bcrypt-hash" pair. Bcrypt hashes contain
// '$' but never ':', so a single split is safe.
func parseExtraAccount(raw string) (Account, error) {
	email, hash, ok := strings.Cut(raw, ":")
	if !ok || email == "" || hash == "" {
		return Account{}, fmt.Errorf("mock auth: malformed extra account %q (want email:bcrypt-hash)", raw)
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return Account{}, fmt.Errorf("mock auth: extra account %q: %w", email, err)
	}
	return Account{
		UserID:       "mock-" + strings.ToLower(email),
		Email:        email,
		DisplayName:  email,
		PasswordHash: []byte(hash),
		Roles:        nil,
	}, nil
}

// dummyHash is compared against on account misses. Any valid bcrypt hash works.
var dummyHash = mustHash("mock-auth-timing-pad")

func mustHash(password string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
