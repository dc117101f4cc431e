package domain

import "time"

type UserID uint64
type RoleID uint64

type User struct {
	ID           UserID    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Points       int64     `json:"points"`
	RoleIDs      []RoleID  `json:"roleIds"`
	CreatedAt    time.Time `json:"-"`
}

type Role struct {
	ID          RoleID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// Well-known roles created at bootstrap.
const (
	RoleNameUser  = "user"
	RoleNameAdmin = "admin"
)

// Binding links a local account to an identity on an external platform.
type Binding struct {
	ID         uint64   `json:"id"`
	UserID     UserID   `json:"userId"`
	Platform   Platform `json:"platform"`
	ExternalID string   `json:"externalId"`
	CreatedAt  DateTime `json:"createdAt"`
}

// UserProfile is the read model returned by user lookups.
type UserProfile struct {
	User        User      `json:"user"`
	Roles       []Role    `json:"roles"`
	Permissions []string  `json:"permissions"`
	Bindings    []Binding `json:"bindings,omitempty"`
}
