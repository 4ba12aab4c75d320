package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// LearningPathRepository stores per-student course recommendations.
type LearningPathRepository interface {
	// ReplaceForStudent swaps the student's path atomically so a regenerated
	// plan never interleaves with the previous one.
	ReplaceForStudent(ctx context.Context, username string, items []models.LearningPathItem) error
	ListByUsername(ctx context.Context, username string) ([]models.LearningPathItem, error)
	MarkCompleted(ctx context.Context, username string, itemID uint) error
}

type learningPathRepository struct {
	db *gorm.DB
}

// NewLearningPathRepository constructs a learning path repository.
func NewLearningPathRepository(db *gorm.DB) LearningPathRepository {
	return &learningPathRepository{db: db}
}

func (r *learningPathRepository) ReplaceForStudent(ctx context.Context, username string, items []models.LearningPathItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_username = ?", username).Delete(&models.LearningPathItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *learningPathRepository) ListByUsername(ctx context.Context, username string) ([]models.LearningPathItem, error) {
	var items []models.LearningPathItem
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_username = ?", username).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *learningPathRepository) MarkCompleted(ctx context.Context, username string, itemID uint) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.LearningPathItem{}).
		Where("id = ? AND student_username = ?", itemID, username).
		Updates(map[string]interface{}{"is_completed": true, "completed_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
