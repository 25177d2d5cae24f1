package handler

import (
	"net/http"
	"strconv"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"

	"github.com/gin-gonic/gin"
)

type WorkHandler struct {
	svc service.WorkService
}

func NewWorkHandler(svc service.WorkService) *WorkHandler {
	return &WorkHandler{svc: svc}
}

// RegisterRoutes wires work routes: public read, admin write. PUT and
// PATCH share the partial-update path.
func (h *WorkHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:work_id", h.Get)
	rg.POST("", authRequired, middleware.RequireAdmin(), h.Create)
	rg.PATCH("/:work_id", authRequired, middleware.RequireAdmin(), h.Update)
	rg.PUT("/:work_id", authRequired, middleware.RequireAdmin(), h.Update)
	rg.DELETE("/:work_id", authRequired, middleware.RequireAdmin(), h.Delete)
}

// List retrieves works filtered by category slug, genre slug, name
// substring and year, with the derived rating on each item
// GET /api/v1/works?category=&genre=&name=&year=
func (h *WorkHandler) List(c *gin.Context) {
	filter := repository.WorkFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filter.Year = year
		filter.HasYear = true
	}

	page, pageSize := parsePagination(c)
	resp, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/v1/works/:work_id
func (h *WorkHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "work_id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/v1/works
func (h *WorkHandler) Create(c *gin.Context) {
	var in dto.CreateWorkDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PATCH/PUT /api/v1/works/:work_id
func (h *WorkHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "work_id")
	if !ok {
		return
	}

	var in dto.UpdateWorkDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /api/v1/works/:work_id
func (h *WorkHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "work_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
