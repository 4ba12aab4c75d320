package models

import "time"

// Course is a catalog entry that learning paths can point students at.
type Course struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Platform        string    `gorm:"size:128;not null" json:"platform"`
	URL             string    `gorm:"size:512;not null" json:"url"`
	Track           string    `gorm:"size:64;index;not null" json:"track"`
	SkillCovered    string    `gorm:"size:128;index;not null" json:"skill_covered"`
	DifficultyLevel string    `gorm:"size:32;default:Beginner" json:"difficulty_level"`
	DurationHours   *int      `json:"duration_hours,omitempty"`
	Rating          *float64  `json:"rating,omitempty"`
	IsFree          bool      `gorm:"not null;default:true" json:"is_free"`
	Instructor      string    `gorm:"size:128" json:"instructor,omitempty"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LearningPathItem links a student's skill gap to a recommended course.
type LearningPathItem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StudentUsername string     `gorm:"size:128;index;not null" json:"student_username"`
	SkillGap        string     `gorm:"size:128;not null" json:"skill_gap"`
	CourseID        *uint      `gorm:"index" json:"course_id,omitempty"`
	Course          *Course    `json:"course,omitempty"`
	Reason          string     `gorm:"type:text" json:"reason,omitempty"`
	Priority        string     `gorm:"size:16;not null;default:Medium" json:"priority"`
	IsCompleted     bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
