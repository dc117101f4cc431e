package domain

import "time"

type TokenState string

const (
	TokenActive  TokenState = "ACTIVE"
	TokenExpired TokenState = "EXPIRED"
	TokenRevoked TokenState = "REVOKED"
)

// AuthToken is an issued login token. Tokens are active from the moment they
// are created; expiry is evaluated lazily against ExpiresAt.
type AuthToken struct {
	Token     string     `json:"token"`
	UserID    UserID     `json:"userId"`
	IssuedAt  time.Time  `json:"issuedAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

// State reports the lifecycle state at now. Revocation wins over expiry.
func (t *AuthToken) State(now time.Time) TokenState {
	if t.RevokedAt != nil {
		return TokenRevoked
	}
	if !now.Before(t.ExpiresAt) {
		return TokenExpired
	}
	return TokenActive
}

// PasswordReset is a one-shot code allowing a password change.
type PasswordReset struct {
	Code      string
	UserID    UserID
	ExpiresAt time.Time
	UsedAt    *time.Time
}

func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
