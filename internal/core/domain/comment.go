package domain

const MaxCommentLength = 1000

type Comment struct {
	ID        uint64   `json:"id"`
	MessageID string   `json:"messageId"`
	UserID    UserID   `json:"userId"`
	Content   string   `json:"content"`
	CreatedAt DateTime `json:"createdAt"`
}
