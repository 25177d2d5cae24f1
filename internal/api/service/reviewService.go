package service

import (
	"context"
	"errors"
	"math"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrScoreOutOfRange = errors.New("score must be an integer between 1 and 10")
	ErrAlreadyReviewed = errors.New("author has already reviewed this work")
	ErrWorkNotFound    = errors.New("work not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewAuthor = errors.New("only the author, a moderator or an admin may change a review")
)

type ReviewService interface {
	Create(ctx context.Context, author *models.User, workID int64, text string, score int) (*dto.ReviewResponse, error)
	Update(ctx context.Context, requester *models.User, workID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, requester *models.User, workID, reviewID int64) error
	GetByID(ctx context.Context, workID, reviewID int64) (*dto.ReviewResponse, error)
	GetByWork(ctx context.Context, workID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	WorkRating(ctx context.Context, workID int64) (*float64, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	workRepo   repository.WorkRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, workRepo repository.WorkRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		workRepo:   workRepo,
	}
}

func validateScore(score int) error {
	if score < 1 || score > 10 {
		return ErrScoreOutOfRange
	}
	return nil
}

// roundScore rounds a mean score to one decimal place, half away from zero.
func roundScore(avg *float64) *float64 {
	if avg == nil {
		return nil
	}
	rounded := math.Round(*avg*10) / 10
	return &rounded
}

// Create posts a new review. The one-review-per-(author, work) rule is
// pre-checked here and enforced again by the composite unique index; a
// concurrent duplicate comes back as repository.ErrConflict.
func (s *reviewService) Create(ctx context.Context, author *models.User, workID int64, text string, score int) (*dto.ReviewResponse, error) {
	if err := validateScore(score); err != nil {
		return nil, err
	}

	if _, err := s.workRepo.GetByID(ctx, workID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkNotFound
		}
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByAuthorAndWork(ctx, author.ID, workID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		Text:     text,
		Score:    score,
		AuthorID: author.ID,
		WorkID:   workID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	// Reload with author data
	review, err = s.reviewRepo.GetByID(ctx, workID, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Update edits text and score only; uniqueness is not re-checked because
// the (author, work) pair is immutable after creation.
func (s *reviewService) Update(ctx context.Context, requester *models.User, workID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, workID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if review.AuthorID != requester.ID && !requester.CanModerate() {
		return nil, ErrNotReviewAuthor
	}

	if in.Score != nil {
		if err := validateScore(*in.Score); err != nil {
			return nil, err
		}
		review.Score = *in.Score
	}
	if in.Text != nil {
		review.Text = *in.Text
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, requester *models.User, workID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, workID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.AuthorID != requester.ID && !requester.CanModerate() {
		return ErrNotReviewAuthor
	}
	return s.reviewRepo.Delete(ctx, workID, reviewID)
}

func (s *reviewService) GetByID(ctx context.Context, workID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, workID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) GetByWork(ctx context.Context, workID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if _, err := s.workRepo.GetByID(ctx, workID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByWork(ctx, workID, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

// WorkRating is the mean of all scores for a work rounded to one decimal,
// or nil when the work has no reviews.
func (s *reviewService) WorkRating(ctx context.Context, workID int64) (*float64, error) {
	avg, err := s.reviewRepo.AverageScore(ctx, workID)
	if err != nil {
		return nil, err
	}
	return roundScore(avg), nil
}
