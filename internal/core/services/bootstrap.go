package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
)

type BootstrapConfig struct {
	AdminName     string
	AdminPassword string
	BcryptCost    int
}

// Bootstrap makes sure the built-in roles and the configured admin account
// exist. It is safe to run on every start.
func Bootstrap(
	ctx context.Context,
	cfg BootstrapConfig,
	users ports.UserRepository,
	roles ports.RoleRepository,
	logger *zap.SugaredLogger,
) error {
	userRole, err := ensureRole(ctx, roles, domain.RoleNameUser, "Default role for registered users", permission.Defaults(), false, logger)
	if err != nil {
		return err
	}
	// admin always holds the whole catalog, including codes added since the
	// role was created.
	adminRole, err := ensureRole(ctx, roles, domain.RoleNameAdmin, "Full access", permission.Codes(), true, logger)
	if err != nil {
		return err
	}

	if cfg.AdminName == "" {
		return nil
	}
	if _, err := users.GetByName(ctx, cfg.AdminName); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := hashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:         cfg.AdminName,
		PasswordHash: hash,
		RoleIDs:      []domain.RoleID{userRole.ID, adminRole.ID},
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Infow("admin account created", "user_id", admin.ID, "name", admin.Name)
	return nil
}

// ensureRole creates the role with want when missing. An existing role keeps
// the permissions administrators gave it unless topUp is set, in which case
// any of want it lacks is granted.
func ensureRole(ctx context.Context, roles ports.RoleRepository, name, description string, want permission.Set, topUp bool, logger *zap.SugaredLogger) (*domain.Role, error) {
	role, err := roles.GetByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		role = &domain.Role{
			Name:        name,
			Description: description,
			Permissions: want.Strings(),
		}
		if err := roles.Create(ctx, role); err != nil {
			return nil, fmt.Errorf("failed to create role %q: %w", name, err)
		}
		logger.Infow("role created", "role_id", role.ID, "name", name)
		return role, nil
	}
	if err != nil {
		return nil, err
	}
	if !topUp {
		return role, nil
	}

	held := permission.FromStrings(role.Permissions)
	for _, code := range permission.Decide(held, want).Missing.Slice() {
		if err := roles.Grant(ctx, role.ID, string(code)); err != nil {
			return nil, fmt.Errorf("failed to grant %s to role %q: %w", code, name, err)
		}
		logger.Infow("permission granted", "role_id", role.ID, "code", code)
	}
	return role, nil
}
