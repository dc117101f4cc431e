package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	"mediahub/pkg/validation"
)

type RoleService struct {
	roles  ports.RoleRepository
	logger *zap.SugaredLogger
}

func NewRoleService(roles ports.RoleRepository, logger *zap.SugaredLogger) *RoleService {
	return &RoleService{roles: roles, logger: logger}
}

// Create stores a role holding the default permissions.
func (s *RoleService) Create(ctx context.Context, name, description string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateRoleName(name); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	if err := validation.ValidateStringLength(description, 0, 200, "description"); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	role := &domain.Role{
		Name:        name,
		Description: description,
		Permissions: permission.Defaults().Strings(),
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Infow("role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *RoleService) Get(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	return s.roles.GetByID(ctx, id)
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Grant(ctx context.Context, id domain.RoleID, code permission.Code) error {
	if !permission.Known(code) {
		return fmt.Errorf("permission %q is not in the catalog: %w", code, domain.ErrValidation)
	}
	if err := s.roles.Grant(ctx, id, string(code)); err != nil {
		return err
	}
	s.logger.Infow("permission granted", "role_id", id, "code", code)
	return nil
}

func (s *RoleService) Revoke(ctx context.Context, id domain.RoleID, code permission.Code) error {
	if !permission.Known(code) {
		return fmt.Errorf("permission %q is not in the catalog: %w", code, domain.ErrValidation)
	}
	if err := s.roles.Revoke(ctx, id, string(code)); err != nil {
		return err
	}
	s.logger.Infow("permission revoked", "role_id", id, "code", code)
	return nil
}

func (s *RoleService) Delete(ctx context.Context, id domain.RoleID) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("role deleted", "role_id", id)
	return nil
}
