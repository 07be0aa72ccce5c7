// Package seeder provisions the initial admin account so a fresh deployment
// is reachable before any user management tooling exists.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"atelier/internal/auth/models"
	"atelier/internal/auth/store/user"
	"atelier/internal/sentinel"
	"atelier/pkg/platform/middleware/requesttime"
)

const defaultAdminUsername = "admin"

// EnsureAdmin creates the bootstrap admin user when it does not exist yet.
// Credentials come from ADMIN_USERNAME, ADMIN_EMAIL, and ADMIN_PASSWORD;
// without a password nothing is seeded, which is the right call for
// deployments that provision users out of band.
func EnsureAdmin(ctx context.Context, users user.Store, logger *slog.Logger) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.InfoContext(ctx, "no bootstrap admin password set, skipping admin seed")
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = defaultAdminUsername
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = username + "@localhost"
	}

	if _, err := users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("check bootstrap admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	admin, err := models.NewUser(username, email, string(hash), models.RoleAdmin, requesttime.Now(ctx))
	if err != nil {
		return fmt.Errorf("build bootstrap admin: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.InfoContext(ctx, "bootstrap admin created", "username", username)
	return nil
}
