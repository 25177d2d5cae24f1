package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

// WorkFilter narrows a work listing. Zero values mean "no filter".
type WorkFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
	HasYear      bool
}

type WorkRepository interface {
	Create(ctx context.Context, w *models.Work) error
	Update(ctx context.Context, w *models.Work) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Work, error)
	List(ctx context.Context, filter WorkFilter, page, pageSize int) ([]models.Work, int64, error)
	ReplaceGenres(ctx context.Context, w *models.Work, genres []models.Genre) error
}

type workRepository struct {
	db *gorm.DB
}

func NewWorkRepository(db *gorm.DB) WorkRepository {
	return &workRepository{db: db}
}

func (r *workRepository) Create(ctx context.Context, w *models.Work) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("create work: %w", err)
	}
	return nil
}

func (r *workRepository) Update(ctx context.Context, w *models.Work) error {
	// Save does not touch many2many rows; genres go through ReplaceGenres
	if err := r.db.WithContext(ctx).Omit("Genres", "Category").Save(w).Error; err != nil {
		return fmt.Errorf("update work: %w", err)
	}
	return nil
}

func (r *workRepository) Delete(ctx context.Context, id int64) error {
	// Select(clause.Associations) is not needed: reviews cascade at the
	// database level and work_genres rows go with the join constraint.
	result := r.db.WithContext(ctx).Delete(&models.Work{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete work: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *workRepository) GetByID(ctx context.Context, id int64) (*models.Work, error) {
	var w models.Work
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("Category").
		First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workRepository) List(ctx context.Context, filter WorkFilter, page, pageSize int) ([]models.Work, int64, error) {
	var list []models.Work
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Work{})
	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = works.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		query = query.Joins("JOIN work_genres wg ON wg.work_id = works.id").
			Joins("JOIN genres ON genres.id = wg.genre_id").
			Where("genres.slug = ?", filter.GenreSlug)
	}
	if filter.Name != "" {
		query = query.Where("works.name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.HasYear {
		query = query.Where("works.year = ?", filter.Year)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.
		Preload("Genres").
		Preload("Category").
		Order("works.name asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list works: %w", err)
	}
	return list, total, nil
}

func (r *workRepository) ReplaceGenres(ctx context.Context, w *models.Work, genres []models.Genre) error {
	if err := r.db.WithContext(ctx).Model(w).Association("Genres").Replace(genres); err != nil {
		return fmt.Errorf("replace work genres: %w", err)
	}
	return nil
}
