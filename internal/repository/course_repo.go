package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// CourseRepository provides access to the course catalog.
type CourseRepository interface {
	BulkCreate(ctx context.Context, courses []models.Course) error
	Count(ctx context.Context) (int64, error)
	ListByTrack(ctx context.Context, track string) ([]models.Course, error)
	// ListBySkills matches catalog entries whose covered skill overlaps any
	// of the given gap topics, case-insensitively in either direction.
	ListBySkills(ctx context.Context, track string, skills []string) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) BulkCreate(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&courses).Error
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *courseRepository) ListByTrack(ctx context.Context, track string) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("track = ?", track).
		Order("rating DESC NULLS LAST").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) ListBySkills(ctx context.Context, track string, skills []string) ([]models.Course, error) {
	if len(skills) == 0 {
		return r.ListByTrack(ctx, track)
	}

	query := r.db.WithContext(ctx).Where("track = ?", track)
	var conditions *gorm.DB
	for _, skill := range skills {
		pattern := "%" + strings.ToLower(strings.TrimSpace(skill)) + "%"
		clause := r.db.Where("LOWER(skill_covered) LIKE ?", pattern).
			Or("? LIKE '%' || LOWER(skill_covered) || '%'", strings.ToLower(skill))
		if conditions == nil {
			conditions = clause
		} else {
			conditions = conditions.Or(clause)
		}
	}
	if conditions != nil {
		query = query.Where(conditions)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}
