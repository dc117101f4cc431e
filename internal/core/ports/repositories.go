package ports

import (
	"context"
	"time"

	"mediahub/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	// Update persists name, password hash and points.
	Update(ctx context.Context, user *domain.User) error
	AddPoints(ctx context.Context, id domain.UserID, delta int64) error
	AssignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error
	UnassignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error
	RoleIDs(ctx context.Context, id domain.UserID) ([]domain.RoleID, error)
}

type RoleRepository interface {
	// Create stores the role together with role.Permissions.
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id domain.RoleID) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Grant(ctx context.Context, id domain.RoleID, code string) error
	Revoke(ctx context.Context, id domain.RoleID, code string) error
	// PermissionCodes returns the union of codes held by the given roles.
	PermissionCodes(ctx context.Context, ids ...domain.RoleID) ([]string, error)
	// Delete fails with domain.ErrConflict while a user still holds the role.
	Delete(ctx context.Context, id domain.RoleID) error
}

type BindingRepository interface {
	Add(ctx context.Context, binding *domain.Binding) error
	ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Binding, error)
	Remove(ctx context.Context, userID domain.UserID, bindingID uint64) error
}

type TokenRepository interface {
	Save(ctx context.Context, token *domain.AuthToken) error
	// Get is a direct lookup by token value.
	Get(ctx context.Context, token string) (*domain.AuthToken, error)
	Revoke(ctx context.Context, token string, at time.Time) error
	// DeleteExpired removes tokens that expired before the cutoff and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PasswordResetRepository interface {
	Save(ctx context.Context, reset *domain.PasswordReset) error
	Get(ctx context.Context, code string) (*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, code string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uint64) (*domain.Comment, error)
	ListByMessage(ctx context.Context, messageID string) ([]*domain.Comment, error)
	Delete(ctx context.Context, id uint64) error
	DeleteByMessage(ctx context.Context, messageID string) error
}

// MessageRepository is the document store for MessageInfo records.
type MessageRepository interface {
	// Create fails with domain.ErrConflict when the id is already stored.
	Create(ctx context.Context, info *domain.MessageInfo) error
	GetByID(ctx context.Context, id string) (*domain.MessageInfo, error)
	// Modify applies fn to the stored document and saves the result
	// atomically. fn may run more than once when a concurrent write wins; an
	// error from fn aborts without saving.
	Modify(ctx context.Context, id string, fn func(info *domain.MessageInfo) error) (*domain.MessageInfo, error)
	Delete(ctx context.Context, id string) error
	ListByTag(ctx context.Context, tag string) ([]*domain.MessageInfo, error)
	ListByState(ctx context.Context, state domain.ApprovedState) ([]*domain.MessageInfo, error)
	ListByUploader(ctx context.Context, userID domain.UserID) ([]*domain.MessageInfo, error)
}
