package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentAuthor = errors.New("only the author, a moderator or an admin may change a comment")
)

type CommentService interface {
	Create(ctx context.Context, author *models.User, workID, reviewID int64, text string) (*dto.CommentResponse, error)
	Update(ctx context.Context, requester *models.User, workID, reviewID, commentID int64, text string) (*dto.CommentResponse, error)
	Delete(ctx context.Context, requester *models.User, workID, reviewID, commentID int64) error
	GetByID(ctx context.Context, workID, reviewID, commentID int64) (*dto.CommentResponse, error)
	GetByReview(ctx context.Context, workID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// getReview resolves the parent review scoped to its work, so a comment
// path with a mismatched work id 404s instead of leaking.
func (s *commentService) getReview(ctx context.Context, workID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, workID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *commentService) Create(ctx context.Context, author *models.User, workID, reviewID int64, text string) (*dto.CommentResponse, error) {
	review, err := s.getReview(ctx, workID, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		AuthorID: author.ID,
		ReviewID: review.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err = s.commentRepo.GetByID(ctx, review.ID, comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Update(ctx context.Context, requester *models.User, workID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	if _, err := s.getReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	if comment.AuthorID != requester.ID && !requester.CanModerate() {
		return nil, ErrNotCommentAuthor
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, requester *models.User, workID, reviewID, commentID int64) error {
	if _, err := s.getReview(ctx, workID, reviewID); err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.AuthorID != requester.ID && !requester.CanModerate() {
		return ErrNotCommentAuthor
	}
	return s.commentRepo.Delete(ctx, reviewID, commentID)
}

func (s *commentService) GetByID(ctx context.Context, workID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if _, err := s.getReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) GetByReview(ctx context.Context, workID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if _, err := s.getReview(ctx, workID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}
