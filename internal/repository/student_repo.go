package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prepnexus/prepnexus-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	GetByUsername(ctx context.Context, username string) (models.Student, error)
	// Upsert creates the student or refreshes mutable profile fields in a
	// single statement, so concurrent first submissions cannot race.
	Upsert(ctx context.Context, student models.Student) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByUsername(ctx context.Context, username string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Upsert(ctx context.Context, student models.Student) (models.Student, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "department", "year", "is_registered", "updated_at"}),
	}).Create(&student).Error
	if err != nil {
		return models.Student{}, err
	}

	return r.GetByUsername(ctx, student.Username)
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Order("username").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
