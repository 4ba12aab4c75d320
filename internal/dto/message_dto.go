package dto

import (
	"time"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// SendMessageRequest posts one direct message.
type SendMessageRequest struct {
	Recipient string `json:"recipient" validate:"required,min=3,max=64"`
	Content   string `json:"content" validate:"required,max=2000"`
}

// MessageResponse is one stored message.
type MessageResponse struct {
	ID         uint      `json:"id"`
	Sender     string    `json:"sender"`
	SenderRole string    `json:"sender_role"`
	Recipient  string    `json:"recipient"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMessageResponse converts a message row.
func NewMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Sender:     m.SenderUsername,
		SenderRole: m.SenderRole,
		Recipient:  m.RecipientUsername,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

// NewMessageResponses converts a slice of message rows.
func NewMessageResponses(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewMessageResponse(m))
	}
	return out
}
