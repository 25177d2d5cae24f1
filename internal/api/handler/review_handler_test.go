package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReviewService mocks the ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, author *models.User, workID int64, text string, score int) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, author, workID, text, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, requester *models.User, workID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, requester, workID, reviewID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, requester *models.User, workID, reviewID int64) error {
	args := m.Called(ctx, requester, workID, reviewID)
	return args.Error(0)
}

func (m *MockReviewService) GetByID(ctx context.Context, workID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, workID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) GetByWork(ctx context.Context, workID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	args := m.Called(ctx, workID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Paginated[dto.ReviewResponse]), args.Error(1)
}

func (m *MockReviewService) WorkRating(ctx context.Context, workID int64) (*float64, error) {
	args := m.Called(ctx, workID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

// asUser injects an already authenticated user, standing in for the token
// middleware.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	}
}

func denyAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
		}
	}
}

func setupReviewRouter(svc service.ReviewService, authRequired gin.HandlerFunc) *gin.Engine {
	router := setupRouter()
	h := NewReviewHandler(svc)
	h.RegisterRoutes(router.Group("/works"), authRequired)
	return router
}

func TestCreateReview_Created(t *testing.T) {
	mockSvc := new(MockReviewService)
	author := &models.User{ID: "author-id", Username: "reader"}
	router := setupReviewRouter(mockSvc, asUser(author))

	resp := &dto.ReviewResponse{ID: 42, Text: "great stuff", Author: "reader", Score: 8}
	mockSvc.On("Create", mock.Anything, author, int64(1), "great stuff", 8).Return(resp, nil)

	body, _ := json.Marshal(dto.CreateReviewDTO{Text: "great stuff", Score: 8})
	req, _ := http.NewRequest("POST", "/works/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got dto.ReviewResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "reader", got.Author)
	mockSvc.AssertExpectations(t)
}

func TestCreateReview_AnonymousRejected(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, denyAnonymous())

	body, _ := json.Marshal(dto.CreateReviewDTO{Text: "great stuff", Score: 8})
	req, _ := http.NewRequest("POST", "/works/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReview_Duplicate(t *testing.T) {
	mockSvc := new(MockReviewService)
	author := &models.User{ID: "author-id"}
	router := setupReviewRouter(mockSvc, asUser(author))

	mockSvc.On("Create", mock.Anything, author, int64(1), "again", 7).
		Return(nil, service.ErrAlreadyReviewed)

	body, _ := json.Marshal(dto.CreateReviewDTO{Text: "again", Score: 7})
	req, _ := http.NewRequest("POST", "/works/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCreateReview_ScoreRejectedByBinding(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, asUser(&models.User{ID: "author-id"}))

	body, _ := json.Marshal(map[string]any{"text": "meh", "score": 11})
	req, _ := http.NewRequest("POST", "/works/1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListReviews_Public(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, denyAnonymous())

	page := dto.NewPaginated([]dto.ReviewResponse{{ID: 1, Score: 9}}, 1, 1, 20)
	mockSvc.On("GetByWork", mock.Anything, int64(1), 1, 20).Return(page, nil)

	req, _ := http.NewRequest("GET", "/works/1/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestGetReview_NotFound(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, denyAnonymous())

	mockSvc.On("GetByID", mock.Anything, int64(1), int64(404)).
		Return(nil, service.ErrReviewNotFound)

	req, _ := http.NewRequest("GET", "/works/1/reviews/404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReview_BadWorkID(t *testing.T) {
	mockSvc := new(MockReviewService)
	router := setupReviewRouter(mockSvc, denyAnonymous())

	req, _ := http.NewRequest("GET", "/works/abc/reviews/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteReview_Forbidden(t *testing.T) {
	mockSvc := new(MockReviewService)
	stranger := &models.User{ID: "stranger-id", Role: models.RoleUser}
	router := setupReviewRouter(mockSvc, asUser(stranger))

	mockSvc.On("Delete", mock.Anything, stranger, int64(1), int64(5)).
		Return(service.ErrNotReviewAuthor)

	req, _ := http.NewRequest("DELETE", "/works/1/reviews/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDeleteReview_NoContent(t *testing.T) {
	mockSvc := new(MockReviewService)
	owner := &models.User{ID: "owner-id"}
	router := setupReviewRouter(mockSvc, asUser(owner))

	mockSvc.On("Delete", mock.Anything, owner, int64(1), int64(5)).Return(nil)

	req, _ := http.NewRequest("DELETE", "/works/1/reviews/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}
