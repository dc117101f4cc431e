package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
)

// AccessService resolves what a user may do. Nothing is cached: a grant or
// revoke is visible on the very next call.
type AccessService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	logger *zap.SugaredLogger
}

func NewAccessService(users ports.UserRepository, roles ports.RoleRepository, logger *zap.SugaredLogger) *AccessService {
	return &AccessService{
		users:  users,
		roles:  roles,
		logger: logger,
	}
}

func (s *AccessService) EffectivePermissions(ctx context.Context, userID domain.UserID) (permission.Set, error) {
	roleIDs, err := s.users.RoleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roleIDs) == 0 {
		return permission.NewSet(), nil
	}
	codes, err := s.roles.PermissionCodes(ctx, roleIDs...)
	if err != nil {
		return nil, err
	}
	return permission.FromStrings(codes), nil
}

func (s *AccessService) Authorize(ctx context.Context, userID domain.UserID, required permission.Set) error {
	held, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return err
	}
	decision := permission.Decide(held, required)
	if !decision.Allowed {
		s.logger.Warnw("permission denied",
			"user_id", userID,
			"missing", decision.Missing.Strings(),
		)
		return fmt.Errorf("user %d: %w", userID, domain.ErrPermissionDenied)
	}
	return nil
}
