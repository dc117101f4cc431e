package ports

import (
	"context"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
)

type AuthService interface {
	Register(ctx context.Context, name, password string) (*domain.User, error)
	Login(ctx context.Context, name, password string) (*domain.AuthToken, error)
	// Authenticate resolves a token value to its owner. Any failure is
	// domain.ErrAuthenticationRequired.
	Authenticate(ctx context.Context, token string) (domain.UserID, error)
	Logout(ctx context.Context, token string) error
	ForgetPassword(ctx context.Context, name string) error
	ResetPassword(ctx context.Context, code, newPassword string) error
}

type AccessService interface {
	EffectivePermissions(ctx context.Context, userID domain.UserID) (permission.Set, error)
	Authorize(ctx context.Context, userID domain.UserID, required permission.Set) error
}

type RoleService interface {
	Create(ctx context.Context, name, description string) (*domain.Role, error)
	Get(ctx context.Context, id domain.RoleID) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Grant(ctx context.Context, id domain.RoleID, code permission.Code) error
	Revoke(ctx context.Context, id domain.RoleID, code permission.Code) error
	Delete(ctx context.Context, id domain.RoleID) error
}

type UserService interface {
	Get(ctx context.Context, id domain.UserID) (*domain.UserProfile, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	AssignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error
	UnassignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error
	AdjustPoints(ctx context.Context, id domain.UserID, delta int64) (*domain.User, error)
	AddBinding(ctx context.Context, id domain.UserID, platform domain.Platform, externalID string) (*domain.Binding, error)
	ListBindings(ctx context.Context, id domain.UserID) ([]*domain.Binding, error)
	RemoveBinding(ctx context.Context, id domain.UserID, bindingID uint64) error
}

// UploadRequest carries an already decoded upload.
type UploadRequest struct {
	UploaderID domain.UserID
	Type       domain.MessageType
	Content    domain.Message
	Tags       []string
	Metas      domain.MetaList
}

type MediaService interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.MessageInfo, error)
	Get(ctx context.Context, id string) (*domain.MessageInfo, error)
	Texts(ctx context.Context, id string) ([]string, error)
	ListByTag(ctx context.Context, tag string) ([]*domain.MessageInfo, error)
	ListPending(ctx context.Context) ([]*domain.MessageInfo, error)
	ListMine(ctx context.Context, userID domain.UserID) ([]*domain.MessageInfo, error)
	AddTags(ctx context.Context, id string, tags []string) (*domain.MessageInfo, error)
	RemoveTag(ctx context.Context, id, tag string) (*domain.MessageInfo, error)
	Review(ctx context.Context, id string, approved bool) (*domain.MessageInfo, error)
	Delete(ctx context.Context, id string) error
}

type CommentService interface {
	Create(ctx context.Context, messageID string, userID domain.UserID, content string) (*domain.Comment, error)
	List(ctx context.Context, messageID string) ([]*domain.Comment, error)
	// Delete succeeds for the author, or for a holder of comment:delete.
	Delete(ctx context.Context, commentID uint64, actorID domain.UserID) error
}

// ResetNotifier delivers password reset codes to their owner.
type ResetNotifier interface {
	NotifyReset(ctx context.Context, user *domain.User, code string, expiresAt time.Time) error
}

// AuditRecorder receives one entry per guarded call.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// Clock abstracts time for services that evaluate expiry.
type Clock func() time.Time
