package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
)

type MemoryTokenRepository struct {
	tokens map[string]domain.AuthToken
	mu     sync.RWMutex
}

func NewMemoryTokenRepository() ports.TokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[string]domain.AuthToken),
	}
}

func (r *MemoryTokenRepository) Save(ctx context.Context, token *domain.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.Token]; exists {
		return fmt.Errorf("token: %w", domain.ErrConflict)
	}
	r.tokens[token.Token] = copyToken(*token)
	return nil
}

func (r *MemoryTokenRepository) Get(ctx context.Context, token string) (*domain.AuthToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tokens[token]
	if !exists {
		return nil, fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	out := copyToken(t)
	return &out, nil
}

func (r *MemoryTokenRepository) Revoke(ctx context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.tokens[token]
	if !exists {
		return fmt.Errorf("token: %w", domain.ErrNotFound)
	}
	if t.RevokedAt == nil {
		t.RevokedAt = &at
		r.tokens[token] = t
	}
	return nil
}

func (r *MemoryTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, key)
			n++
		}
	}
	return n, nil
}

func copyToken(t domain.AuthToken) domain.AuthToken {
	if t.RevokedAt != nil {
		at := *t.RevokedAt
		t.RevokedAt = &at
	}
	return t
}
