package dto

import (
	"time"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// CreateRoundRequest registers a new placement round.
type CreateRoundRequest struct {
	CompanyName  string    `json:"company_name" validate:"required,max=200"`
	Description  string    `json:"description" validate:"omitempty,max=2000"`
	Requirements string    `json:"requirements" validate:"omitempty,max=2000"`
	Location     string    `json:"location" validate:"omitempty,max=200"`
	RoundDate    time.Time `json:"round_date" validate:"required"`
}

// UpdateRoundStatusRequest transitions a round's lifecycle status.
type UpdateRoundStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=upcoming ongoing completed cancelled"`
}

// RoundResponse is one placement round.
type RoundResponse struct {
	ID           uint      `json:"id"`
	CompanyName  string    `json:"company_name"`
	Description  string    `json:"description,omitempty"`
	Requirements string    `json:"requirements,omitempty"`
	Location     string    `json:"location,omitempty"`
	RoundDate    time.Time `json:"round_date"`
	Status       string    `json:"status"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRoundResponse converts a placement round row.
func NewRoundResponse(round models.PlacementRound) RoundResponse {
	return RoundResponse{
		ID:           round.ID,
		CompanyName:  round.CompanyName,
		Description:  round.Description,
		Requirements: round.Requirements,
		Location:     round.Location,
		RoundDate:    round.RoundDate,
		Status:       round.Status,
		CreatedBy:    round.CreatedBy,
		CreatedAt:    round.CreatedAt,
	}
}

// NewRoundResponses converts a slice of placement round rows.
func NewRoundResponses(rounds []models.PlacementRound) []RoundResponse {
	out := make([]RoundResponse, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, NewRoundResponse(round))
	}
	return out
}

// ShortlistRequest shortlists students for a round.
type ShortlistRequest struct {
	Usernames []string `json:"usernames" validate:"required,min=1,dive,min=3,max=64"`
}

// ShortlistEntryResponse is one shortlisted student.
type ShortlistEntryResponse struct {
	ID                 uint       `json:"id"`
	RoundID            uint       `json:"round_id"`
	StudentUsername    string     `json:"student_username"`
	NotificationSent   bool       `json:"notification_sent"`
	NotificationStatus string     `json:"notification_status,omitempty"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
	CompanyName        string     `json:"company_name,omitempty"`
	RoundDate          *time.Time `json:"round_date,omitempty"`
}

// NewShortlistEntryResponse converts a shortlist row, including round details if loaded.
func NewShortlistEntryResponse(entry models.ShortlistedStudent) ShortlistEntryResponse {
	response := ShortlistEntryResponse{
		ID:                 entry.ID,
		RoundID:            entry.RoundID,
		StudentUsername:    entry.StudentUsername,
		NotificationSent:   entry.NotificationSent,
		NotificationStatus: entry.NotificationStatus,
		SentAt:             entry.SentAt,
	}
	if entry.Round != nil {
		response.CompanyName = entry.Round.CompanyName
		roundDate := entry.Round.RoundDate
		response.RoundDate = &roundDate
	}
	return response
}

// NewShortlistEntryResponses converts a slice of shortlist rows.
func NewShortlistEntryResponses(entries []models.ShortlistedStudent) []ShortlistEntryResponse {
	out := make([]ShortlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewShortlistEntryResponse(entry))
	}
	return out
}

// BatchStudent is one row of a batch student import.
type BatchStudent struct {
	Username   string `json:"username" validate:"required,min=3,max=64"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department" validate:"omitempty,max=120"`
	Year       *int   `json:"year" validate:"omitempty,min=1,max=6"`
}

// BatchImportRequest imports students in bulk.
type BatchImportRequest struct {
	FileName string         `json:"file_name" validate:"omitempty,max=255"`
	Students []BatchStudent `json:"students" validate:"required,min=1,dive"`
}

// BatchUploadResponse reports the outcome of a batch import.
type BatchUploadResponse struct {
	ID             uint     `json:"id"`
	FileName       string   `json:"file_name"`
	TotalRecords   int      `json:"total_records"`
	ProcessedCount int      `json:"processed_count"`
	FailedCount    int      `json:"failed_count"`
	Status         string   `json:"status"`
	Errors         []string `json:"errors,omitempty"`
}
