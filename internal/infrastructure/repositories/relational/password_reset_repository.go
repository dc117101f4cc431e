package relational

import (
	"context"
	"fmt"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"

	"gorm.io/gorm"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) ports.PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Save(ctx context.Context, reset *domain.PasswordReset) error {
	model := passwordResetModel{
		Code:      reset.Code,
		UserID:    uint64(reset.UserID),
		ExpiresAt: reset.ExpiresAt,
		UsedAt:    reset.UsedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return classify(err, "reset code")
	}
	return nil
}

func (r *PasswordResetRepository) Get(ctx context.Context, code string) (*domain.PasswordReset, error) {
	var model passwordResetModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, classify(err, "reset code")
	}
	return &domain.PasswordReset{
		Code:      model.Code,
		UserID:    domain.UserID(model.UserID),
		ExpiresAt: model.ExpiresAt,
		UsedAt:    model.UsedAt,
	}, nil
}

// MarkUsed succeeds once per code; a second call reports domain.ErrNotFound.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, code string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&passwordResetModel{}).
		Where("code = ? AND used_at IS NULL", code).
		Update("used_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to mark reset code used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("unused reset code: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&passwordResetModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired reset codes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
