package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
	"mediahub/pkg/validation"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type UserService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	bindings ports.BindingRepository
	access   ports.AccessService
	logger   *zap.SugaredLogger
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	bindings ports.BindingRepository,
	access ports.AccessService,
	logger *zap.SugaredLogger,
) *UserService {
	return &UserService{
		users:    users,
		roles:    roles,
		bindings: bindings,
		access:   access,
		logger:   logger,
	}
}

// Get assembles the profile: account, roles, effective permissions and bindings.
func (s *UserService) Get(ctx context.Context, id domain.UserID) (*domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roles := make([]domain.Role, 0, len(user.RoleIDs))
	for _, roleID := range user.RoleIDs {
		role, err := s.roles.GetByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}

	perms, err := s.access.EffectivePermissions(ctx, id)
	if err != nil {
		return nil, err
	}

	bindings, err := s.bindings.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	flat := make([]domain.Binding, 0, len(bindings))
	for _, b := range bindings {
		flat = append(flat, *b)
	}

	return &domain.UserProfile{
		User:        *user,
		Roles:       roles,
		Permissions: perms.Strings(),
		Bindings:    flat,
	}, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.users.List(ctx, offset, limit)
}

func (s *UserService) AssignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return err
	}
	if err := s.users.AssignRole(ctx, id, roleID); err != nil {
		return err
	}
	s.logger.Infow("role assigned", "user_id", id, "role_id", roleID)
	return nil
}

func (s *UserService) UnassignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error {
	if err := s.users.UnassignRole(ctx, id, roleID); err != nil {
		return err
	}
	s.logger.Infow("role unassigned", "user_id", id, "role_id", roleID)
	return nil
}

func (s *UserService) AdjustPoints(ctx context.Context, id domain.UserID, delta int64) (*domain.User, error) {
	if err := s.users.AddPoints(ctx, id, delta); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) AddBinding(ctx context.Context, id domain.UserID, platform domain.Platform, externalID string) (*domain.Binding, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("platform %q: %w", platform, domain.ErrValidation)
	}
	externalID = strings.TrimSpace(externalID)
	if err := validation.ValidateExternalID(externalID); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}

	binding := &domain.Binding{
		UserID:     id,
		Platform:   platform,
		ExternalID: externalID,
	}
	if err := s.bindings.Add(ctx, binding); err != nil {
		return nil, err
	}

	s.logger.Infow("binding added", "user_id", id, "platform", platform, "binding_id", binding.ID)
	return binding, nil
}

func (s *UserService) ListBindings(ctx context.Context, id domain.UserID) ([]*domain.Binding, error) {
	return s.bindings.ListByUser(ctx, id)
}

func (s *UserService) RemoveBinding(ctx context.Context, id domain.UserID, bindingID uint64) error {
	return s.bindings.Remove(ctx, id, bindingID)
}
