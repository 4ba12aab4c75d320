package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// MessageRepository stores direct messages between TPO staff and students.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListConversation(ctx context.Context, userA, userB string, limit int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, recipient, sender string) error
	UnreadCount(ctx context.Context, recipient string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListConversation(ctx context.Context, userA, userB string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_username = ? AND recipient_username = ?) OR (sender_username = ? AND recipient_username = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, recipient, sender string) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_username = ? AND sender_username = ? AND is_read = ?", recipient, sender, false).
		Update("is_read", true).Error
}

func (r *messageRepository) UnreadCount(ctx context.Context, recipient string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_username = ? AND is_read = ?", recipient, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
