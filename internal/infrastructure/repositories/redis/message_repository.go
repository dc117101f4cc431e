package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
	"mediahub/pkg/retry"
	"mediahub/pkg/tracing"

	"github.com/redis/go-redis/v9"
)

const (
	messageKeyPrefix  = keyPrefix + "message:"
	tagKeyPrefix      = keyPrefix + "tag:"
	stateKeyPrefix    = keyPrefix + "state:"
	uploaderKeyPrefix = keyPrefix + "uploader:"
)

// modifyPolicy bounds optimistic retries when writers contend on one message.
var modifyPolicy = retry.Policy{
	Attempts:     10,
	InitialDelay: 2 * time.Millisecond,
	MaxDelay:     50 * time.Millisecond,
	Multiplier:   2,
}

func messageKey(id string) string                { return messageKeyPrefix + id }
func tagKey(tag string) string                   { return tagKeyPrefix + tag }
func stateKey(state domain.ApprovedState) string { return stateKeyPrefix + string(state) }
func uploaderKey(id uint64) string               { return uploaderKeyPrefix + strconv.FormatUint(id, 10) }

// RedisMessageRepository keeps each MessageInfo as a JSON document with set
// indexes by tag, state and uploader.
type RedisMessageRepository struct {
	client *redis.Client
}

func NewRedisMessageRepository(client *redis.Client) ports.MessageRepository {
	return &RedisMessageRepository{client: client}
}

// Create watches the content id so the same content is stored once. The
// document and its index entries are written in one MULTI block.
func (r *RedisMessageRepository) Create(ctx context.Context, info *domain.MessageInfo) error {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "create", "message")
	defer span.End()

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := messageKey(info.ID)
	conflict := fmt.Errorf("message %s: %w", info.ID, domain.ErrConflict)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check message in Redis: %w", err)
		}
		if n > 0 {
			return conflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			addIndexes(ctx, pipe, info)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// another writer created the key between WATCH and EXEC
		return conflict
	}
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		err = fmt.Errorf("failed to store message in Redis: %w", err)
		tracing.RecordError(ctx, err)
	}
	return err
}

func (r *RedisMessageRepository) GetByID(ctx context.Context, id string) (*domain.MessageInfo, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "get", "message")
	defer span.End()

	data, err := r.client.Get(ctx, messageKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message from Redis: %w", err)
	}

	var info domain.MessageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", id, err)
	}
	return &info, nil
}

// Modify is an optimistic read-modify-write: WATCH the document, apply fn,
// then rewrite it and its indexes in MULTI. A lost race runs fn again.
func (r *RedisMessageRepository) Modify(ctx context.Context, id string, fn func(info *domain.MessageInfo) error) (*domain.MessageInfo, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "modify", "message")
	defer span.End()

	key := messageKey(id)
	var saved *domain.MessageInfo
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get message from Redis: %w", err)
		}

		var previous, next domain.MessageInfo
		if err := json.Unmarshal(data, &previous); err != nil {
			return fmt.Errorf("failed to unmarshal message %s: %w", id, err)
		}
		if err := json.Unmarshal(data, &next); err != nil {
			return fmt.Errorf("failed to unmarshal message %s: %w", id, err)
		}
		if err := fn(&next); err != nil {
			return err
		}
		if next.ID != id {
			return fmt.Errorf("message id cannot change from %s: %w", id, domain.ErrValidation)
		}
		encoded, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			removeIndexes(ctx, pipe, &previous)
			addIndexes(ctx, pipe, &next)
			return nil
		})
		if err != nil {
			return err
		}
		saved = &next
		return nil
	}

	err := retry.Do(ctx, modifyPolicy, func(ctx context.Context) error {
		err := r.client.Watch(ctx, txf, key)
		if err == nil || errors.Is(err, redis.TxFailedErr) {
			return err
		}
		return retry.Permanent(err)
	})
	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("message %s kept changing: %w", id, domain.ErrConflict)
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return saved, nil
}

func (r *RedisMessageRepository) Delete(ctx context.Context, id string) error {
	previous, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, messageKey(id))
		removeIndexes(ctx, pipe, previous)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete message from Redis: %w", err)
	}
	return nil
}

func (r *RedisMessageRepository) ListByTag(ctx context.Context, tag string) ([]*domain.MessageInfo, error) {
	return r.listIndex(ctx, tagKey(tag))
}

func (r *RedisMessageRepository) ListByState(ctx context.Context, state domain.ApprovedState) ([]*domain.MessageInfo, error) {
	return r.listIndex(ctx, stateKey(state))
}

func (r *RedisMessageRepository) ListByUploader(ctx context.Context, userID domain.UserID) ([]*domain.MessageInfo, error) {
	return r.listIndex(ctx, uploaderKey(uint64(userID)))
}

func (r *RedisMessageRepository) listIndex(ctx context.Context, index string) ([]*domain.MessageInfo, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "list", "message")
	defer span.End()

	ids, err := r.client.SMembers(ctx, index).Result()
	if err != nil {
		err = fmt.Errorf("failed to read index %s: %w", index, err)
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.MessageInfo{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = messageKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	out := make([]*domain.MessageInfo, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry outlived its document
			continue
		}
		var info domain.MessageInfo
		if err := json.Unmarshal([]byte(s), &info); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message %s: %w", ids[i], err)
		}
		out = append(out, &info)
	}
	sortMessages(out)
	return out, nil
}

func addIndexes(ctx context.Context, pipe redis.Pipeliner, info *domain.MessageInfo) {
	for _, tag := range info.Tags {
		pipe.SAdd(ctx, tagKey(tag), info.ID)
	}
	pipe.SAdd(ctx, stateKey(info.State), info.ID)
	pipe.SAdd(ctx, uploaderKey(uint64(info.UploaderID)), info.ID)
}

func removeIndexes(ctx context.Context, pipe redis.Pipeliner, info *domain.MessageInfo) {
	for _, tag := range info.Tags {
		pipe.SRem(ctx, tagKey(tag), info.ID)
	}
	pipe.SRem(ctx, stateKey(info.State), info.ID)
	pipe.SRem(ctx, uploaderKey(uint64(info.UploaderID)), info.ID)
}

// sortMessages orders newest first, then by id.
func sortMessages(list []*domain.MessageInfo) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UploadedAt.Equal(list[j].UploadedAt.Time) {
			return list[i].UploadedAt.After(list[j].UploadedAt.Time)
		}
		return list[i].ID < list[j].ID
	})
}
