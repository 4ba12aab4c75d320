package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// ResumeRepository stores resume uploads and their analysis.
type ResumeRepository interface {
	// Upsert keeps one resume per student, replacing any previous upload.
	Upsert(ctx context.Context, resume models.Resume) (models.Resume, error)
	GetByUsername(ctx context.Context, username string) (models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository constructs a resume repository.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Upsert(ctx context.Context, resume models.Resume) (models.Resume, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_username"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"file_name", "file_url", "extracted_text", "overall_score", "skills_found", "analysis_json", "updated_at",
		}),
	}).Create(&resume).Error
	if err != nil {
		return models.Resume{}, err
	}

	return r.GetByUsername(ctx, resume.StudentUsername)
}

func (r *resumeRepository) GetByUsername(ctx context.Context, username string) (models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("student_username = ?", username).First(&resume).Error; err != nil {
		return models.Resume{}, err
	}

	return resume, nil
}
