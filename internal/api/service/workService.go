package service

import (
	"context"
	"errors"
	"time"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrYearOutOfRange   = errors.New("year must not be negative or beyond the current year")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
)

type WorkService interface {
	Create(ctx context.Context, in dto.CreateWorkDTO) (*dto.WorkResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateWorkDTO) (*dto.WorkResponse, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*dto.WorkResponse, error)
	List(ctx context.Context, filter repository.WorkFilter, page, pageSize int) (*dto.Paginated[dto.WorkResponse], error)
}

type workService struct {
	workRepo     repository.WorkRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	now          func() time.Time
}

// NewWorkService builds the work catalog service. The clock is injected so
// year validation is testable and evaluated at validation time.
func NewWorkService(
	workRepo repository.WorkRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	now func() time.Time,
) WorkService {
	if now == nil {
		now = time.Now
	}
	return &workService{
		workRepo:     workRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		now:          now,
	}
}

func (s *workService) validateYear(year int) error {
	if year < 0 || year > s.now().Year() {
		return ErrYearOutOfRange
	}
	return nil
}

func (s *workService) Create(ctx context.Context, in dto.CreateWorkDTO) (*dto.WorkResponse, error) {
	if err := s.validateYear(*in.Year); err != nil {
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}

	work := &models.Work{
		Name:        in.Name,
		Year:        *in.Year,
		Description: in.Description,
	}
	if in.Category != nil {
		category, err := s.categoryRepo.FindBySlug(ctx, *in.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		work.CategoryID = &category.ID
	}
	work.Genres = genres

	if err := s.workRepo.Create(ctx, work); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, work.ID)
}

func (s *workService) Update(ctx context.Context, id int64, in dto.UpdateWorkDTO) (*dto.WorkResponse, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkNotFound
		}
		return nil, err
	}

	if in.Year != nil {
		if err := s.validateYear(*in.Year); err != nil {
			return nil, err
		}
		work.Year = *in.Year
	}
	if in.Name != nil {
		work.Name = *in.Name
	}
	if in.Description != nil {
		work.Description = in.Description
	}
	if in.Category != nil {
		if *in.Category == "" {
			work.CategoryID = nil
		} else {
			category, err := s.categoryRepo.FindBySlug(ctx, *in.Category)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrCategoryNotFound
				}
				return nil, err
			}
			work.CategoryID = &category.ID
		}
	}

	if err := s.workRepo.Update(ctx, work); err != nil {
		return nil, err
	}

	if in.Genre != nil {
		genres, err := s.resolveGenres(ctx, in.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.workRepo.ReplaceGenres(ctx, work, genres); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

func (s *workService) Delete(ctx context.Context, id int64) error {
	err := s.workRepo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrWorkNotFound
	}
	return err
}

func (s *workService) GetByID(ctx context.Context, id int64) (*dto.WorkResponse, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkNotFound
		}
		return nil, err
	}

	avg, err := s.reviewRepo.AverageScore(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToWorkResponse(work, roundScore(avg)), nil
}

func (s *workService) List(ctx context.Context, filter repository.WorkFilter, page, pageSize int) (*dto.Paginated[dto.WorkResponse], error) {
	works, total, err := s.workRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.WorkResponse, 0, len(works))
	for i := range works {
		avg, err := s.reviewRepo.AverageScore(ctx, works[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *dto.FromModelToWorkResponse(&works[i], roundScore(avg)))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *workService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	genres, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return genres, nil
}
