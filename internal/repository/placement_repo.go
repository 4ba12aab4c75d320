package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// PlacementRepository stores placement rounds, shortlists and batch uploads.
type PlacementRepository interface {
	CreateRound(ctx context.Context, round *models.PlacementRound) error
	ListRounds(ctx context.Context) ([]models.PlacementRound, error)
	GetRound(ctx context.Context, id uint) (models.PlacementRound, error)
	UpdateRoundStatus(ctx context.Context, id uint, status string) error

	AddShortlist(ctx context.Context, entries []models.ShortlistedStudent) error
	ListShortlist(ctx context.Context, roundID uint) ([]models.ShortlistedStudent, error)
	ListShortlistsForStudent(ctx context.Context, username string) ([]models.ShortlistedStudent, error)
	MarkNotified(ctx context.Context, entryID uint, status string) error

	CreateBatchUpload(ctx context.Context, upload *models.BatchUpload) error
	UpdateBatchUpload(ctx context.Context, upload *models.BatchUpload) error
	GetBatchUpload(ctx context.Context, id uint) (models.BatchUpload, error)
}

type placementRepository struct {
	db *gorm.DB
}

// NewPlacementRepository constructs a placement repository.
func NewPlacementRepository(db *gorm.DB) PlacementRepository {
	return &placementRepository{db: db}
}

func (r *placementRepository) CreateRound(ctx context.Context, round *models.PlacementRound) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *placementRepository) ListRounds(ctx context.Context) ([]models.PlacementRound, error) {
	var rounds []models.PlacementRound
	if err := r.db.WithContext(ctx).Order("round_date ASC").Find(&rounds).Error; err != nil {
		return nil, err
	}

	return rounds, nil
}

func (r *placementRepository) GetRound(ctx context.Context, id uint) (models.PlacementRound, error) {
	var round models.PlacementRound
	if err := r.db.WithContext(ctx).First(&round, id).Error; err != nil {
		return models.PlacementRound{}, err
	}

	return round, nil
}

func (r *placementRepository) UpdateRoundStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PlacementRound{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *placementRepository) AddShortlist(ctx context.Context, entries []models.ShortlistedStudent) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *placementRepository) ListShortlist(ctx context.Context, roundID uint) ([]models.ShortlistedStudent, error) {
	var entries []models.ShortlistedStudent
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("student_username").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *placementRepository) ListShortlistsForStudent(ctx context.Context, username string) ([]models.ShortlistedStudent, error) {
	var entries []models.ShortlistedStudent
	err := r.db.WithContext(ctx).
		Preload("Round").
		Where("student_username = ?", username).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *placementRepository) MarkNotified(ctx context.Context, entryID uint, status string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.ShortlistedStudent{}).
		Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"notification_sent":   true,
			"notification_status": status,
			"sent_at":             now,
		}).Error
}

func (r *placementRepository) CreateBatchUpload(ctx context.Context, upload *models.BatchUpload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *placementRepository) UpdateBatchUpload(ctx context.Context, upload *models.BatchUpload) error {
	return r.db.WithContext(ctx).Save(upload).Error
}

func (r *placementRepository) GetBatchUpload(ctx context.Context, id uint) (models.BatchUpload, error) {
	var upload models.BatchUpload
	if err := r.db.WithContext(ctx).First(&upload, id).Error; err != nil {
		return models.BatchUpload{}, err
	}

	return upload, nil
}
