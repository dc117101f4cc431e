package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MessageType is the declared type of an upload. It must match the content variant.
type MessageType string

const (
	MessageTypeText    MessageType = KindText
	MessageTypeDiscuss MessageType = KindDiscuss
)

func ParseMessageType(s string) (MessageType, error) {
	switch t := MessageType(strings.ToLower(strings.TrimSpace(s))); t {
	case MessageTypeText, MessageTypeDiscuss:
		return t, nil
	default:
		return "", fmt.Errorf("message type %q: %w", s, ErrValidation)
	}
}

// ApprovedState is the moderation state of a message.
type ApprovedState string

const (
	StatePending  ApprovedState = "PENDING"
	StateApproved ApprovedState = "APPROVED"
	StateRejected ApprovedState = "REJECTED"
)

const MaxTagLength = 32

// MessageInfo is the stored aggregate for one uploaded message.
type MessageInfo struct {
	ID         string        `json:"id"`
	UploaderID UserID        `json:"uploaderId"`
	UploadedAt DateTime      `json:"uploadedAt"`
	Type       MessageType   `json:"type"`
	State      ApprovedState `json:"state"`
	Tags       []string      `json:"tags"`
	Metas      MetaList      `json:"metas"`
	Content    Message       `json:"-"`

	// PointsAwarded is set once the uploader has been credited for the first approval.
	PointsAwarded bool `json:"pointsAwarded"`
}

type messageInfoJSON struct {
	ID         string          `json:"id"`
	UploaderID UserID          `json:"uploaderId"`
	UploadedAt DateTime        `json:"uploadedAt"`
	Type       MessageType     `json:"type"`
	State      ApprovedState   `json:"state"`
	Tags       []string        `json:"tags"`
	Metas      MetaList        `json:"metas"`
	Content    json.RawMessage `json:"content"`
	Awarded    bool            `json:"pointsAwarded"`
}

func (m MessageInfo) MarshalJSON() ([]byte, error) {
	content, err := EncodeMessage(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(messageInfoJSON{
		ID:         m.ID,
		UploaderID: m.UploaderID,
		UploadedAt: m.UploadedAt,
		Type:       m.Type,
		State:      m.State,
		Tags:       m.Tags,
		Metas:      m.Metas,
		Content:    content,
		Awarded:    m.PointsAwarded,
	})
}

func (m *MessageInfo) UnmarshalJSON(data []byte) error {
	var raw messageInfoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := DecodeMessage(raw.Content)
	if err != nil {
		return err
	}
	*m = MessageInfo{
		ID:            raw.ID,
		UploaderID:    raw.UploaderID,
		UploadedAt:    raw.UploadedAt,
		Type:          raw.Type,
		State:         raw.State,
		Tags:          raw.Tags,
		Metas:         raw.Metas,
		Content:       content,
		PointsAwarded: raw.Awarded,
	}
	return nil
}

// ContentID is the hex SHA-256 of the canonical content encoding. Tags and
// metadata are not part of it, so identical content always collides.
func ContentID(content Message) (string, error) {
	encoded, err := EncodeMessage(content)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// NewMessageInfo builds a complete pending aggregate or fails.
func NewMessageInfo(uploader UserID, uploadedAt DateTime, typ MessageType, content Message, tags []string, metas MetaList) (*MessageInfo, error) {
	if uploader == 0 {
		return nil, fmt.Errorf("uploader is required: %w", ErrValidation)
	}
	if uploadedAt.IsZero() {
		return nil, fmt.Errorf("upload time is required: %w", ErrValidation)
	}
	if content == nil {
		return nil, fmt.Errorf("content is required: %w", ErrValidation)
	}
	if string(typ) != content.Kind() {
		return nil, fmt.Errorf("declared type %q does not match content %q: %w", typ, content.Kind(), ErrValidation)
	}
	if len(Texts(content)) == 0 {
		return nil, fmt.Errorf("content is empty: %w", ErrValidation)
	}
	normalized, err := NormalizeTags(tags)
	if err != nil {
		return nil, err
	}
	for _, m := range metas {
		if m == nil {
			return nil, fmt.Errorf("meta entry is nil: %w", ErrValidation)
		}
	}
	id, err := ContentID(content)
	if err != nil {
		return nil, err
	}
	if metas == nil {
		metas = MetaList{}
	}
	return &MessageInfo{
		ID:         id,
		UploaderID: uploader,
		UploadedAt: uploadedAt,
		Type:       typ,
		State:      StatePending,
		Tags:       normalized,
		Metas:      metas,
		Content:    content,
	}, nil
}

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(tag string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return "", fmt.Errorf("tag is empty: %w", ErrValidation)
	}
	if utf8.RuneCountInString(t) > MaxTagLength {
		return "", fmt.Errorf("tag %q is longer than %d characters: %w", t, MaxTagLength, ErrValidation)
	}
	return t, nil
}

// NormalizeTags returns the unique normalized tags, sorted.
func NormalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t, err := NormalizeTag(tag)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// AddTags merges tags into the set and reports which ones were new.
func (m *MessageInfo) AddTags(tags []string) ([]string, error) {
	incoming, err := NormalizeTags(tags)
	if err != nil {
		return nil, err
	}
	merged, err := NormalizeTags(append(append([]string{}, m.Tags...), incoming...))
	if err != nil {
		return nil, err
	}
	var added []string
	for _, t := range incoming {
		if !m.HasTag(t) {
			added = append(added, t)
		}
	}
	m.Tags = merged
	return added, nil
}

// RemoveTag drops tag and reports whether it was present.
func (m *MessageInfo) RemoveTag(tag string) bool {
	t, err := NormalizeTag(tag)
	if err != nil {
		return false
	}
	for i, existing := range m.Tags {
		if existing == t {
			m.Tags = append(m.Tags[:i:i], m.Tags[i+1:]...)
			return true
		}
	}
	return false
}

func (m *MessageInfo) HasTag(tag string) bool {
	for _, existing := range m.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
