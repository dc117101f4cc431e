package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
	apperrors "mediahub/pkg/errors"
)

type MediaConfig struct {
	ApprovalPoints int64
	MaxTags        int
}

type MediaService struct {
	cfg      MediaConfig
	messages ports.MessageRepository
	comments ports.CommentRepository
	users    ports.UserRepository
	now      ports.Clock
	logger   *zap.SugaredLogger
}

func NewMediaService(
	cfg MediaConfig,
	messages ports.MessageRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	logger *zap.SugaredLogger,
) *MediaService {
	return &MediaService{
		cfg:      cfg,
		messages: messages,
		comments: comments,
		users:    users,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *MediaService) WithClock(clock ports.Clock) *MediaService {
	s.now = clock
	return s
}

// Upload stores a new pending message. Content already stored under the same
// id is reported as a conflict carrying that id.
func (s *MediaService) Upload(ctx context.Context, req ports.UploadRequest) (*domain.MessageInfo, error) {
	if err := s.checkTagCount(len(req.Tags)); err != nil {
		return nil, err
	}

	metas := append(domain.MetaList{}, req.Metas...)
	if !hasUploaderMeta(metas) {
		metas = append(metas, domain.Uploader{
			Platform:   domain.PlatformWeb,
			UploaderID: strconv.FormatUint(uint64(req.UploaderID), 10),
		})
	}

	info, err := domain.NewMessageInfo(req.UploaderID, domain.NewDateTime(s.now()), req.Type, req.Content, req.Tags, metas)
	if err != nil {
		return nil, err
	}
	if err := s.checkTagCount(len(info.Tags)); err != nil {
		return nil, err
	}

	if err := s.messages.Create(ctx, info); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperrors.WrapError(err, apperrors.ErrCodeConflict, "message already exists", http.StatusConflict).
				WithContext("id", info.ID)
		}
		return nil, err
	}

	s.logger.Infow("message uploaded",
		"message_id", info.ID,
		"uploader_id", info.UploaderID,
		"type", info.Type,
		"tags", info.Tags,
	)
	return info, nil
}

func hasUploaderMeta(metas domain.MetaList) bool {
	for _, m := range metas {
		if m != nil && m.MetaKind() == domain.KindUploader {
			return true
		}
	}
	return false
}

func (s *MediaService) checkTagCount(n int) error {
	if s.cfg.MaxTags > 0 && n > s.cfg.MaxTags {
		return fmt.Errorf("at most %d tags are allowed: %w", s.cfg.MaxTags, domain.ErrValidation)
	}
	return nil
}

func (s *MediaService) Get(ctx context.Context, id string) (*domain.MessageInfo, error) {
	return s.messages.GetByID(ctx, id)
}

// Texts returns the leaf fragments in visit order.
func (s *MediaService) Texts(ctx context.Context, id string) ([]string, error) {
	info, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	texts := domain.Texts(info.Content)
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

func (s *MediaService) ListByTag(ctx context.Context, tag string) ([]*domain.MessageInfo, error) {
	normalized, err := domain.NormalizeTag(tag)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByTag(ctx, normalized)
}

func (s *MediaService) ListPending(ctx context.Context) ([]*domain.MessageInfo, error) {
	return s.messages.ListByState(ctx, domain.StatePending)
}

func (s *MediaService) ListMine(ctx context.Context, userID domain.UserID) ([]*domain.MessageInfo, error) {
	return s.messages.ListByUploader(ctx, userID)
}

func (s *MediaService) AddTags(ctx context.Context, id string, tags []string) (*domain.MessageInfo, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("no tags given: %w", domain.ErrValidation)
	}
	var added []string
	info, err := s.messages.Modify(ctx, id, func(info *domain.MessageInfo) error {
		var err error
		added, err = info.AddTags(tags)
		if err != nil {
			return err
		}
		return s.checkTagCount(len(info.Tags))
	})
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		s.logger.Infow("tags added", "message_id", id, "tags", added)
	}
	return info, nil
}

func (s *MediaService) RemoveTag(ctx context.Context, id, tag string) (*domain.MessageInfo, error) {
	info, err := s.messages.Modify(ctx, id, func(info *domain.MessageInfo) error {
		if !info.RemoveTag(tag) {
			return fmt.Errorf("tag %q on message %s: %w", tag, id, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("tag removed", "message_id", id, "tag", tag)
	return info, nil
}

// Review records the moderation decision. The uploader is credited once, on
// the first approval the message ever receives: the award is claimed in the
// same atomic write that sets the state, so only one reviewer pays.
func (s *MediaService) Review(ctx context.Context, id string, approved bool) (*domain.MessageInfo, error) {
	var award bool
	info, err := s.messages.Modify(ctx, id, func(info *domain.MessageInfo) error {
		award = false
		if !approved {
			info.State = domain.StateRejected
			return nil
		}
		info.State = domain.StateApproved
		if !info.PointsAwarded && s.cfg.ApprovalPoints != 0 {
			info.PointsAwarded = true
			award = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if award {
		if err := s.users.AddPoints(ctx, info.UploaderID, s.cfg.ApprovalPoints); err != nil {
			s.logger.Errorw("failed to award approval points",
				"message_id", id,
				"uploader_id", info.UploaderID,
				"error", err,
			)
			s.releaseAward(ctx, id)
			return nil, fmt.Errorf("failed to award points: %w", err)
		}
	}

	s.logger.Infow("message reviewed", "message_id", id, "state", info.State, "awarded", award)
	return info, nil
}

// releaseAward clears a claimed award whose points could not be paid, so the
// next approval retries the payment.
func (s *MediaService) releaseAward(ctx context.Context, id string) {
	_, err := s.messages.Modify(ctx, id, func(info *domain.MessageInfo) error {
		info.PointsAwarded = false
		return nil
	})
	if err != nil {
		s.logger.Errorw("failed to release approval award", "message_id", id, "error", err)
	}
}

func (s *MediaService) Delete(ctx context.Context, id string) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DeleteByMessage(ctx, id); err != nil {
		s.logger.Warnw("failed to delete comments of message", "message_id", id, "error", err)
		return err
	}
	s.logger.Infow("message deleted", "message_id", id)
	return nil
}
