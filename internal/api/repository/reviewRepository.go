package repository

import (
	"context"
	"errors"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, workID, reviewID int64) error
	GetByID(ctx context.Context, workID, reviewID int64) (*models.Review, error)
	GetByWork(ctx context.Context, workID int64, page, pageSize int) ([]models.Review, int64, error)
	ExistsByAuthorAndWork(ctx context.Context, authorID string, workID int64) (bool, error)
	AverageScore(ctx context.Context, workID int64) (*float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. A concurrent duplicate by the same author slips
// past the service pre-check and lands here as ErrConflict from the
// composite unique index.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Create(review).Error)
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Save(review).Error)
}

func (r *reviewRepository) Delete(ctx context.Context, workID, reviewID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND work_id = ?", reviewID, workID).
		Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, workID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND work_id = ?", reviewID, workID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByWork(ctx context.Context, workID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("work_id = ?", workID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) ExistsByAuthorAndWork(ctx context.Context, authorID string, workID int64) (bool, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Select("id").
		Where("author_id = ? AND work_id = ?", authorID, workID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AverageScore returns the raw mean of all scores for a work, or nil when
// the work has no reviews. No COALESCE: absence and zero are different.
func (r *reviewRepository) AverageScore(ctx context.Context, workID int64) (*float64, error) {
	var row struct {
		Average *float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(score) as average").
		Where("work_id = ?", workID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Average, nil
}
