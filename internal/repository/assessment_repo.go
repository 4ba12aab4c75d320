package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// LevelCount is one bucket of the readiness level distribution.
type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

// TrackCount is one bucket of the per-track attempt distribution.
type TrackCount struct {
	Track string `json:"track"`
	Count int64  `json:"count"`
}

// AssessmentRepository stores and aggregates assessment results.
type AssessmentRepository interface {
	Create(ctx context.Context, result *models.AssessmentResult) error
	LatestByUsername(ctx context.Context, username string) (models.AssessmentResult, error)
	ListByUsername(ctx context.Context, username string) ([]models.AssessmentResult, error)
	// ListRecent returns the newest results; gap topics live in a JSON
	// column, so cross-student gap aggregation happens in Go.
	ListRecent(ctx context.Context, limit int) ([]models.AssessmentResult, error)
	Count(ctx context.Context) (int64, error)
	LevelDistribution(ctx context.Context) ([]LevelCount, error)
	TrackDistribution(ctx context.Context) ([]TrackCount, error)
	AverageScorePercent(ctx context.Context) (float64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs an assessment repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, result *models.AssessmentResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *assessmentRepository) LatestByUsername(ctx context.Context, username string) (models.AssessmentResult, error) {
	var result models.AssessmentResult
	err := r.db.WithContext(ctx).
		Where("student_username = ?", username).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		return models.AssessmentResult{}, err
	}

	return result, nil
}

func (r *assessmentRepository) ListByUsername(ctx context.Context, username string) ([]models.AssessmentResult, error) {
	var results []models.AssessmentResult
	err := r.db.WithContext(ctx).
		Where("student_username = ?", username).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *assessmentRepository) ListRecent(ctx context.Context, limit int) ([]models.AssessmentResult, error) {
	if limit <= 0 {
		limit = 200
	}

	var results []models.AssessmentResult
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *assessmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssessmentResult{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *assessmentRepository) LevelDistribution(ctx context.Context) ([]LevelCount, error) {
	var buckets []LevelCount
	err := r.db.WithContext(ctx).
		Model(&models.AssessmentResult{}).
		Select("level, COUNT(*) AS count").
		Group("level").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	return buckets, nil
}

func (r *assessmentRepository) TrackDistribution(ctx context.Context) ([]TrackCount, error) {
	var buckets []TrackCount
	err := r.db.WithContext(ctx).
		Model(&models.AssessmentResult{}).
		Select("track, COUNT(*) AS count").
		Group("track").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	return buckets, nil
}

func (r *assessmentRepository) AverageScorePercent(ctx context.Context) (float64, error) {
	var average *float64
	err := r.db.WithContext(ctx).
		Model(&models.AssessmentResult{}).
		Select("AVG(correct_answers * 100.0 / total_questions)").
		Where("total_questions > 0").
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	if average == nil {
		return 0, nil
	}

	return *average, nil
}
