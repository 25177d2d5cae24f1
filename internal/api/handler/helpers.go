package handler

import (
	"errors"
	"net/http"
	"strconv"

	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

// errorStatus maps service errors onto the response taxonomy: validation
// failures 400, permission failures 403, missing entities 404, storage
// uniqueness races 409.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrScoreOutOfRange),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrYearOutOfRange),
		errors.Is(err, service.ErrReservedUsername),
		errors.Is(err, service.ErrUsernameInvalid),
		errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrInvalidConfirmationCode),
		errors.Is(err, service.ErrSlugInvalid),
		errors.Is(err, service.ErrSlugAlreadyTaken),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrRoleInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotReviewAuthor),
		errors.Is(err, service.ErrNotCommentAuthor):
		return http.StatusForbidden
	case errors.Is(err, service.ErrWorkNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrGenreNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrSignupThrottled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
