package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssessmentResult is the persisted outcome of one submitted assessment attempt.
// Rows are immutable once written; a student accumulates one row per attempt
// and readers only ever consult the newest.
type AssessmentResult struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	StudentUsername   string         `gorm:"size:128;index;not null" json:"student_username"`
	Track             string         `gorm:"size:64;index;not null" json:"track"`
	CorrectAnswers    int            `gorm:"not null" json:"correct_answers"`
	TotalQuestions    int            `gorm:"not null" json:"total_questions"`
	Level             string         `gorm:"size:32;not null" json:"level"`
	Gaps              datatypes.JSON `gorm:"type:json" json:"gaps"`
	QuestionResponses datatypes.JSON `gorm:"type:json" json:"question_responses"`
	AIPrediction      datatypes.JSON `gorm:"type:json" json:"ai_prediction,omitempty"`
	ConfidenceScore   *float64       `json:"confidence_score,omitempty"`
	Degraded          bool           `gorm:"not null;default:false" json:"degraded"`
	CreatedAt         time.Time      `json:"created_at"`
}
