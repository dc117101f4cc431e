package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/permission"
	"mediahub/internal/core/ports"
	"mediahub/pkg/utils"
	"mediahub/pkg/validation"
)

type CommentService struct {
	comments ports.CommentRepository
	messages ports.MessageRepository
	access   ports.AccessService
	now      ports.Clock
	logger   *zap.SugaredLogger
}

func NewCommentService(comments ports.CommentRepository, messages ports.MessageRepository, access ports.AccessService, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{
		comments: comments,
		messages: messages,
		access:   access,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *CommentService) Create(ctx context.Context, messageID string, userID domain.UserID, content string) (*domain.Comment, error) {
	content = utils.SanitizeString(content)
	if err := validation.ValidateStringLength(content, 1, domain.MaxCommentLength, "comment"); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		MessageID: messageID,
		UserID:    userID,
		Content:   content,
		CreatedAt: domain.NewDateTime(s.now()),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Infow("comment created", "comment_id", comment.ID, "message_id", messageID, "user_id", userID)
	return comment, nil
}

// List returns the comments of a message, oldest first.
func (s *CommentService) List(ctx context.Context, messageID string) ([]*domain.Comment, error) {
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return nil, err
	}
	return s.comments.ListByMessage(ctx, messageID)
}

// Delete removes a comment. Anyone but the author needs comment:delete.
func (s *CommentService) Delete(ctx context.Context, commentID uint64, actorID domain.UserID) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		if err := s.access.Authorize(ctx, actorID, permission.NewSet(permission.CommentDelete)); err != nil {
			s.logger.Warnw("comment delete refused", "comment_id", commentID, "actor_id", actorID)
			return fmt.Errorf("comment %d: %w", commentID, err)
		}
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	s.logger.Infow("comment deleted", "comment_id", commentID, "actor_id", actorID)
	return nil
}
