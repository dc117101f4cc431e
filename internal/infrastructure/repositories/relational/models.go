package relational

import (
	"time"

	"mediahub/internal/core/domain"
)

type userModel struct {
	ID           uint64 `gorm:"primaryKey"`
	Name         string `gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	Points       int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain(roles []domain.RoleID) *domain.User {
	return &domain.User{
		ID:           domain.UserID(m.ID),
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Points:       m.Points,
		RoleIDs:      roles,
		CreatedAt:    m.CreatedAt,
	}
}

type roleModel struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"size:32;not null;uniqueIndex"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
}

func (roleModel) TableName() string { return "roles" }

type rolePermissionModel struct {
	RoleID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Code   string `gorm:"primaryKey;size:64"`

	Role roleModel `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

func (rolePermissionModel) TableName() string { return "role_permissions" }

// userRoleModel links are the holders that keep a role from being deleted.
type userRoleModel struct {
	UserID uint64 `gorm:"primaryKey;autoIncrement:false"`
	RoleID uint64 `gorm:"primaryKey;autoIncrement:false;index"`

	User userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role roleModel `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
}

func (userRoleModel) TableName() string { return "user_roles" }

type bindingModel struct {
	ID         uint64 `gorm:"primaryKey"`
	UserID     uint64 `gorm:"not null;index"`
	Platform   string `gorm:"size:16;not null;uniqueIndex:idx_binding_external"`
	ExternalID string `gorm:"size:64;not null;uniqueIndex:idx_binding_external"`
	CreatedAt  time.Time
}

func (bindingModel) TableName() string { return "bindings" }

func (m *bindingModel) toDomain() *domain.Binding {
	return &domain.Binding{
		ID:         m.ID,
		UserID:     domain.UserID(m.UserID),
		Platform:   domain.Platform(m.Platform),
		ExternalID: m.ExternalID,
		CreatedAt:  domain.NewDateTime(m.CreatedAt),
	}
}

type authTokenModel struct {
	Token     string    `gorm:"primaryKey;size:512"`
	UserID    uint64    `gorm:"not null;index"`
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	RevokedAt *time.Time
}

func (authTokenModel) TableName() string { return "auth_tokens" }

func (m *authTokenModel) toDomain() *domain.AuthToken {
	return &domain.AuthToken{
		Token:     m.Token,
		UserID:    domain.UserID(m.UserID),
		IssuedAt:  m.IssuedAt,
		ExpiresAt: m.ExpiresAt,
		RevokedAt: m.RevokedAt,
	}
}

type passwordResetModel struct {
	Code      string    `gorm:"primaryKey;size:64"`
	UserID    uint64    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	UsedAt    *time.Time
}

func (passwordResetModel) TableName() string { return "password_resets" }

type commentModel struct {
	ID        uint64 `gorm:"primaryKey"`
	MessageID string `gorm:"size:64;not null;index"`
	UserID    uint64 `gorm:"not null;index"`
	Content   string `gorm:"size:4000;not null"`
	CreatedAt time.Time
}

func (commentModel) TableName() string { return "comments" }

func (m *commentModel) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        m.ID,
		MessageID: m.MessageID,
		UserID:    domain.UserID(m.UserID),
		Content:   m.Content,
		CreatedAt: domain.NewDateTime(m.CreatedAt),
	}
}
