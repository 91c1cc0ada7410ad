package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/security"
)

// SeedAdmin creates the configured back-office account when it does not exist yet.
// An existing account with that email is left untouched. It reports whether a user was created.
func SeedAdmin(ctx context.Context, users *UserRepository, admin config.AdminConfig, passwords config.PasswordConfig) (bool, error) {
	if !admin.Enabled() {
		return false, nil
	}
	email := normalizeEmail(admin.Email)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !db.IsNotFound(err) {
		return false, fmt.Errorf("check admin account: %w", err)
	}
	if err := security.CheckPolicy(admin.Password); err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}
	hash, err := security.HashPassword(admin.Password, passwords)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	name := strings.TrimSpace(admin.DisplayName)
	if name == "" {
		name = "Store Admin"
	}
	user := &models.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin account: %w", err)
	}
	return true, nil
}
