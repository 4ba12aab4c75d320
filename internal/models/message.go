package models

import "time"

// Message is a persisted chat message between a student and the TPO office.
type Message struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SenderUsername    string    `gorm:"size:128;index;not null" json:"sender_username"`
	SenderRole        string    `gorm:"size:32;not null" json:"sender_role"`
	RecipientUsername string    `gorm:"size:128;index;not null" json:"recipient_username"`
	Content           string    `gorm:"type:text;not null" json:"content"`
	IsRead            bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt         time.Time `json:"created_at"`
}
