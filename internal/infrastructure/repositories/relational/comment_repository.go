package relational

import (
	"context"
	"fmt"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) ports.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	model := commentModel{
		MessageID: comment.MessageID,
		UserID:    uint64(comment.UserID),
		Content:   comment.Content,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	*comment = *model.toDomain()
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uint64) (*domain.Comment, error) {
	var model commentModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, classify(err, "comment %d", id)
	}
	return model.toDomain(), nil
}

// ListByMessage returns comments oldest first.
func (r *CommentRepository) ListByMessage(ctx context.Context, messageID string) ([]*domain.Comment, error) {
	var models []commentModel
	if err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at, id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	out := make([]*domain.Comment, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&commentModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *CommentRepository) DeleteByMessage(ctx context.Context, messageID string) error {
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Delete(&commentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete comments of message %s: %w", messageID, err)
	}
	return nil
}
