package models

import (
	"time"

	"gorm.io/datatypes"
)

// Resume stores the latest uploaded resume and its analysis for a student.
type Resume struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	StudentUsername string         `gorm:"size:128;uniqueIndex;not null" json:"student_username"`
	FileName        string         `gorm:"size:255" json:"file_name,omitempty"`
	FileURL         string         `gorm:"size:512" json:"file_url,omitempty"`
	ExtractedText   string         `gorm:"type:text" json:"extracted_text,omitempty"`
	OverallScore    *int           `json:"overall_score,omitempty"`
	SkillsFound     datatypes.JSON `gorm:"type:json" json:"skills_found,omitempty"`
	AnalysisJSON    datatypes.JSON `gorm:"type:json" json:"analysis_json,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
