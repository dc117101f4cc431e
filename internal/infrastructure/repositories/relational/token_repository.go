package relational

import (
	"context"
	"fmt"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"

	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) ports.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Save(ctx context.Context, token *domain.AuthToken) error {
	model := authTokenModel{
		Token:     token.Token,
		UserID:    uint64(token.UserID),
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		RevokedAt: token.RevokedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return classify(err, "token")
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, token string) (*domain.AuthToken, error) {
	var model authTokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		return nil, classify(err, "token")
	}
	return model.toDomain(), nil
}

// Revoke keeps the first revocation time.
func (r *TokenRepository) Revoke(ctx context.Context, token string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&authTokenModel{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to revoke token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, token); err != nil {
			return err
		}
	}
	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&authTokenModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
