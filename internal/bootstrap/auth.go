package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/campuscore/portal-api/config"
	"github.com/campuscore/portal-api/internal/adapters/mockauth"
	redisadapter "github.com/campuscore/portal-api/internal/adapters/redis"
	"github.com/campuscore/portal-api/internal/adapters/remoteauth"
	"github.com/campuscore/portal-api/internal/data"
	"github.com/campuscore/portal-api/internal/ports"
	"github.com/campuscore/portal-api/internal/service"
)

// AuthConfig contains the dependencies for assembling the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates the auth service for the configured verification mode.
// The session store, profile directory, and role directory are shared by both
// modes; only the credential verifier differs.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("auth service requires a database connection")
	}
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("auth service requires a redis client")
	}

	verifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Verifier:    verifier,
		Sessions:    redisadapter.NewSessionStore(cfg.RedisClient),
		Profiles:    data.NewProfileRepo(cfg.DB),
		Roles:       data.NewRoleRepo(cfg.DB),
		SessionTTL:  cfg.Auth.SessionTTL,
		RememberTTL: cfg.Auth.RememberTTL,
		Logger:      cfg.Logger,
	}), nil
}

//nolint:ireturn // the verifier implementation depends on the configured mode.
func buildVerifier(ctx context.Context, cfg AuthConfig) (ports.CredentialVerifier, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		verifier, err := mockauth.NewVerifier(mockauth.Config{
			ExtraAccounts: cfg.Auth.Mock.ExtraAccounts,
		})
		if err != nil {
			return nil, fmt.Errorf("build mock verifier: %w", err)
		}
		if cfg.Logger != nil {
			cfg.Logger.Warn("mock credential verifier enabled, do not use in production")
		}
		return verifier, nil

	case config.AuthModeRemote:
		verifier, err := remoteauth.NewVerifier(ctx, remoteauth.Config{
			TokenURL:        cfg.Auth.Remote.TokenURL,
			ClientID:        cfg.Auth.Remote.ClientID,
			ClientSecret:    cfg.Auth.Remote.ClientSecret,
			IssuerURL:       cfg.Auth.Remote.IssuerURL,
			RolesPath:       cfg.Auth.Remote.RolesPath,
			DisplayNamePath: cfg.Auth.Remote.DisplayNamePath,
			SessionTTL:      cfg.Auth.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("build remote verifier: %w", err)
		}
		return verifier, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}
