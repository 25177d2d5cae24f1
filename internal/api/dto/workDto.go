package dto

import "reviewhub/internal/api/models"

// CreateWorkDTO used for POST /api/v1/works. Genre and category reference
// existing slugs. Year is a pointer so the zero year still binds.
type CreateWorkDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre" binding:"required,min=1"`
	Category    *string  `json:"category,omitempty"`
}

// UpdateWorkDTO used for PATCH/PUT /api/v1/works/:work_id (partial updates allowed)
type UpdateWorkDTO struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// WorkResponse carries the derived rating: nil until the first review lands.
type WorkResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description,omitempty"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func FromModelToWorkResponse(w *models.Work, rating *float64) *WorkResponse {
	genres := make([]GenreResponse, 0, len(w.Genres))
	for _, g := range w.Genres {
		genres = append(genres, GenreFromModel(g))
	}
	var category *CategoryResponse
	if w.Category != nil {
		c := CategoryFromModel(*w.Category)
		category = &c
	}
	return &WorkResponse{
		ID:          w.ID,
		Name:        w.Name,
		Year:        w.Year,
		Rating:      rating,
		Description: w.Description,
		Genre:       genres,
		Category:    category,
	}
}
