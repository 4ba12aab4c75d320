package dto

import (
	"time"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// CourseView is one catalog entry.
type CourseView struct {
	ID              uint     `json:"id"`
	Title           string   `json:"title"`
	Platform        string   `json:"platform"`
	URL             string   `json:"url"`
	Track           string   `json:"track"`
	SkillCovered    string   `json:"skill_covered"`
	DifficultyLevel string   `json:"difficulty_level"`
	DurationHours   *int     `json:"duration_hours,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	IsFree          bool     `json:"is_free"`
	Instructor      string   `json:"instructor,omitempty"`
	Description     string   `json:"description,omitempty"`
}

// NewCourseView converts a course row.
func NewCourseView(c models.Course) CourseView {
	return CourseView{
		ID:              c.ID,
		Title:           c.Title,
		Platform:        c.Platform,
		URL:             c.URL,
		Track:           c.Track,
		SkillCovered:    c.SkillCovered,
		DifficultyLevel: c.DifficultyLevel,
		DurationHours:   c.DurationHours,
		Rating:          c.Rating,
		IsFree:          c.IsFree,
		Instructor:      c.Instructor,
		Description:     c.Description,
	}
}

// NewCourseViews converts a slice of course rows.
func NewCourseViews(courses []models.Course) []CourseView {
	out := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseView(c))
	}
	return out
}

// LearningPathItemView is one recommended step of a student's path.
type LearningPathItemView struct {
	ID          uint        `json:"id"`
	SkillGap    string      `json:"skill_gap"`
	Course      *CourseView `json:"course,omitempty"`
	Reason      string      `json:"reason"`
	Priority    string      `json:"priority"`
	IsCompleted bool        `json:"is_completed"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// NewLearningPathItemView converts a path row, including its course if loaded.
func NewLearningPathItemView(item models.LearningPathItem) LearningPathItemView {
	view := LearningPathItemView{
		ID:          item.ID,
		SkillGap:    item.SkillGap,
		Reason:      item.Reason,
		Priority:    item.Priority,
		IsCompleted: item.IsCompleted,
		CompletedAt: item.CompletedAt,
	}
	if item.Course != nil {
		course := NewCourseView(*item.Course)
		view.Course = &course
	}
	return view
}

// NewLearningPathItemViews converts a slice of path rows.
func NewLearningPathItemViews(items []models.LearningPathItem) []LearningPathItemView {
	out := make([]LearningPathItemView, 0, len(items))
	for _, item := range items {
		out = append(out, NewLearningPathItemView(item))
	}
	return out
}
