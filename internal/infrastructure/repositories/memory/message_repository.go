package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"
)

// MemoryMessageRepository keeps encoded documents so callers never share
// state with the store.
type MemoryMessageRepository struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

func NewMemoryMessageRepository() ports.MessageRepository {
	return &MemoryMessageRepository{
		docs: make(map[string][]byte),
	}
}

func (r *MemoryMessageRepository) Create(ctx context.Context, info *domain.MessageInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[info.ID]; exists {
		return fmt.Errorf("message %s: %w", info.ID, domain.ErrConflict)
	}
	r.docs[info.ID] = data
	return nil
}

func (r *MemoryMessageRepository) GetByID(ctx context.Context, id string) (*domain.MessageInfo, error) {
	r.mu.RLock()
	data, exists := r.docs[id]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	return decode(data)
}

// Modify holds the write lock across decode, fn and encode.
func (r *MemoryMessageRepository) Modify(ctx context.Context, id string, fn func(info *domain.MessageInfo) error) (*domain.MessageInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists := r.docs[id]
	if !exists {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	info, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := fn(info); err != nil {
		return nil, err
	}
	if info.ID != id {
		return nil, fmt.Errorf("message id cannot change from %s: %w", id, domain.ErrValidation)
	}

	encoded, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	r.docs[id] = encoded
	return decode(encoded)
}

func (r *MemoryMessageRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[id]; !exists {
		return fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	delete(r.docs, id)
	return nil
}

func (r *MemoryMessageRepository) ListByTag(ctx context.Context, tag string) ([]*domain.MessageInfo, error) {
	return r.filter(func(m *domain.MessageInfo) bool { return m.HasTag(tag) })
}

func (r *MemoryMessageRepository) ListByState(ctx context.Context, state domain.ApprovedState) ([]*domain.MessageInfo, error) {
	return r.filter(func(m *domain.MessageInfo) bool { return m.State == state })
}

func (r *MemoryMessageRepository) ListByUploader(ctx context.Context, userID domain.UserID) ([]*domain.MessageInfo, error) {
	return r.filter(func(m *domain.MessageInfo) bool { return m.UploaderID == userID })
}

func (r *MemoryMessageRepository) filter(keep func(*domain.MessageInfo) bool) ([]*domain.MessageInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.MessageInfo, 0)
	for _, data := range r.docs {
		info, err := decode(data)
		if err != nil {
			return nil, err
		}
		if keep(info) {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt.Time) {
			return out[i].UploadedAt.After(out[j].UploadedAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func decode(data []byte) (*domain.MessageInfo, error) {
	var info domain.MessageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &info, nil
}
