// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/authutil"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			logger.Error("admin bootstrap failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// ensureAdmin promotes the profile with email to admin, creating it when
// a password is available.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	profiles := profilestore.New(deps.LaagMongoDatabase)

	p, err := profiles.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if p.Role == models.RoleAdmin {
			return nil
		}
		if err := profiles.SetRole(ctx, p.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		logger.Info("promoted profile to admin", zap.String("email", email), zap.String("profile_id", p.ID.Hex()))
		return nil
	case !errors.Is(err, profilestore.ErrNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	if password == "" {
		logger.Warn("admin profile not found and no admin_password set; skipping", zap.String("email", email))
		return nil
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin_password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	created, err := profiles.Create(ctx, models.Profile{
		FullName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("created admin profile", zap.String("email", email), zap.String("profile_id", created.ID.Hex()))
	return nil
}
