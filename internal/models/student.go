package models

import "time"

// Student represents a learner who can take assessments and receive messages.
type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255" json:"email"`
	Department   string    `gorm:"size:128" json:"department,omitempty"`
	Year         *int      `json:"year,omitempty"`
	IsRegistered bool      `gorm:"not null;default:false" json:"is_registered"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
