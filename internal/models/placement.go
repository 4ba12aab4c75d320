package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlacementRound is a company hiring round announced by the TPO office.
type PlacementRound struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyName  string    `gorm:"size:255;not null" json:"company_name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Requirements string    `gorm:"type:text" json:"requirements,omitempty"`
	Location     string    `gorm:"size:255" json:"location,omitempty"`
	RoundDate    time.Time `gorm:"not null" json:"round_date"`
	Status       string    `gorm:"size:32;default:upcoming" json:"status"`
	CreatedBy    string    `gorm:"size:128" json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ShortlistedStudent records a student shortlisted for a placement round.
type ShortlistedStudent struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	RoundID            uint            `gorm:"index;not null" json:"round_id"`
	Round              *PlacementRound `json:"round,omitempty"`
	StudentUsername    string          `gorm:"size:128;index;not null" json:"student_username"`
	NotificationSent   bool            `gorm:"not null;default:false" json:"notification_sent"`
	NotificationStatus string          `gorm:"size:32" json:"notification_status,omitempty"`
	SentAt             *time.Time      `json:"sent_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// BatchUpload tracks the outcome of a bulk student import.
type BatchUpload struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	FileName       string         `gorm:"size:255;not null" json:"file_name"`
	UploadedBy     string         `gorm:"size:128;not null" json:"uploaded_by"`
	TotalRecords   int            `gorm:"not null" json:"total_records"`
	ProcessedCount int            `gorm:"not null" json:"processed_count"`
	FailedCount    int            `gorm:"not null" json:"failed_count"`
	Status         string         `gorm:"size:32;default:pending" json:"status"`
	ErrorDetails   datatypes.JSON `gorm:"type:json" json:"error_details,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
