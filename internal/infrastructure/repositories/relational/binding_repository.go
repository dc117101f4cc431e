package relational

import (
	"context"
	"fmt"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"

	"gorm.io/gorm"
)

type BindingRepository struct {
	db *gorm.DB
}

func NewBindingRepository(db *gorm.DB) ports.BindingRepository {
	return &BindingRepository{db: db}
}

// Add fails with domain.ErrConflict when the external account is already
// bound to any user.
func (r *BindingRepository) Add(ctx context.Context, binding *domain.Binding) error {
	model := bindingModel{
		UserID:     uint64(binding.UserID),
		Platform:   string(binding.Platform),
		ExternalID: binding.ExternalID,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return classify(err, "binding %s/%s", binding.Platform, binding.ExternalID)
	}
	*binding = *model.toDomain()
	return nil
}

func (r *BindingRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]*domain.Binding, error) {
	var models []bindingModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", uint64(userID)).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bindings of user %d: %w", userID, err)
	}
	out := make([]*domain.Binding, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

// Remove only deletes bindings owned by userID.
func (r *BindingRepository) Remove(ctx context.Context, userID domain.UserID, bindingID uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bindingID, uint64(userID)).
		Delete(&bindingModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove binding %d: %w", bindingID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("binding %d: %w", bindingID, domain.ErrNotFound)
	}
	return nil
}
