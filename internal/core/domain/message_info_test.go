package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploadTime = NewDateTime(time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC))

func TestContentID_IgnoresTagsAndMetas(t *testing.T) {
	content := Text{Content: "same words"}

	a, err := NewMessageInfo(1, uploadTime, MessageTypeText, content, []string{"x"}, nil)
	require.NoError(t, err)
	b, err := NewMessageInfo(2, NewDateTime(time.Now()), MessageTypeText, Text{Content: "same words"},
		[]string{"y", "z"}, MetaList{Uploader{Platform: PlatformQQ, UploaderID: "9"}})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Len(t, a.ID, 64)

	other, err := ContentID(Text{Content: "different words"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, other)
}

func TestContentID_DiscussOrderMatters(t *testing.T) {
	ab, err := ContentID(Discuss{Items: []SpeakMessage{{Content: Text{Content: "a"}}, {Content: Text{Content: "b"}}}})
	require.NoError(t, err)
	ba, err := ContentID(Discuss{Items: []SpeakMessage{{Content: Text{Content: "b"}}, {Content: Text{Content: "a"}}}})
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba)
}

func TestNewMessageInfo_Validation(t *testing.T) {
	tests := []struct {
		name     string
		uploader UserID
		at       DateTime
		typ      MessageType
		content  Message
		tags     []string
		metas    MetaList
	}{
		{"no uploader", 0, uploadTime, MessageTypeText, Text{Content: "a"}, nil, nil},
		{"no time", 1, DateTime{}, MessageTypeText, Text{Content: "a"}, nil, nil},
		{"nil content", 1, uploadTime, MessageTypeText, nil, nil, nil},
		{"type mismatch", 1, uploadTime, MessageTypeDiscuss, Text{Content: "a"}, nil, nil},
		{"empty discuss", 1, uploadTime, MessageTypeDiscuss, Discuss{}, nil, nil},
		{"empty tag", 1, uploadTime, MessageTypeText, Text{Content: "a"}, []string{"  "}, nil},
		{"long tag", 1, uploadTime, MessageTypeText, Text{Content: "a"}, []string{strings.Repeat("t", MaxTagLength+1)}, nil},
		{"nil meta", 1, uploadTime, MessageTypeText, Text{Content: "a"}, nil, MetaList{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewMessageInfo(tt.uploader, tt.at, tt.typ, tt.content, tt.tags, tt.metas)
			assert.Nil(t, info)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestNewMessageInfo_Defaults(t *testing.T) {
	info, err := NewMessageInfo(5, uploadTime, MessageTypeText, Text{Content: "a"}, []string{" Cat", "cat", "DOG "}, nil)
	require.NoError(t, err)

	assert.Equal(t, StatePending, info.State)
	assert.Equal(t, []string{"cat", "dog"}, info.Tags)
	assert.NotNil(t, info.Metas)
}

func TestMessageInfo_JSONRoundTrip(t *testing.T) {
	info, err := NewMessageInfo(5, uploadTime, MessageTypeDiscuss,
		Discuss{Items: []SpeakMessage{{Speaker: "a", Content: Text{Content: "hi"}}}},
		[]string{"greeting"}, MetaList{Uploader{Platform: PlatformWeb, UploaderID: "5"}})
	require.NoError(t, err)

	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"uploadedAt":"2024-03-01 12:30:45"`)

	var out MessageInfo
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, *info, out)
}

func TestMessageInfo_Tags(t *testing.T) {
	info, err := NewMessageInfo(5, uploadTime, MessageTypeText, Text{Content: "a"}, []string{"b"}, nil)
	require.NoError(t, err)

	added, err := info.AddTags([]string{"A", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, added)
	assert.Equal(t, []string{"a", "b", "c"}, info.Tags)

	assert.True(t, info.RemoveTag("B"))
	assert.False(t, info.RemoveTag("b"))
	assert.Equal(t, []string{"a", "c"}, info.Tags)

	_, err = info.AddTags([]string{""})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"a", "c"}, info.Tags)
}

func TestDateTime_JSON(t *testing.T) {
	var d DateTime
	require.NoError(t, json.Unmarshal([]byte(`"2023-12-31 23:59:59"`), &d))
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), d.Time)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2023-12-31 23:59:59"`, string(data))

	err = json.Unmarshal([]byte(`"2023-12-31T23:59:59Z"`), &d)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAuthToken_State(t *testing.T) {
	now := time.Now()
	token := &AuthToken{Token: "t", UserID: 1, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.Equal(t, TokenActive, token.State(now))
	assert.Equal(t, TokenExpired, token.State(now.Add(time.Hour)))

	token.RevokedAt = &now
	assert.Equal(t, TokenRevoked, token.State(now))
}

func TestPasswordReset_Usable(t *testing.T) {
	now := time.Now()
	reset := &PasswordReset{Code: "c", UserID: 1, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, reset.Usable(now))
	assert.False(t, reset.Usable(now.Add(time.Minute)))

	reset.UsedAt = &now
	assert.False(t, reset.Usable(now))
}
