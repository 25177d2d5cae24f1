package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrSlugInvalid      = errors.New("slug may only contain letters, digits, hyphens and underscores")
	ErrNameRequired     = errors.New("name required")
	ErrSlugAlreadyTaken = errors.New("name or slug already taken")
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type CategoryService interface {
	Create(ctx context.Context, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error)
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !slugRe.MatchString(in.Slug) {
		return nil, ErrSlugInvalid
	}

	category := models.Category{Name: name, Slug: in.Slug}
	if err := s.repo.Create(ctx, &category); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugAlreadyTaken
		}
		return nil, err
	}
	resp := dto.CategoryFromModel(category)
	return &resp, nil
}

func (s *categoryService) DeleteBySlug(ctx context.Context, slug string) error {
	err := s.repo.DeleteBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		responses = append(responses, dto.CategoryFromModel(c))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}
