package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkashlan/muallim/internal/service"
)

type ReviewHandler struct {
	svc *service.ReviewService
}

func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// AddReview handles POST /v1/instructors/:id/reviews.
func (h *ReviewHandler) AddReview(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	var body struct {
		UserID      int64  `json:"user_id"`
		StudentName string `json:"student_name"`
		Rating      int    `json:"rating"`
		Comment     string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	review, err := h.svc.AddReview(c.Request().Context(), service.AddReviewRequest{
		InstructorID: id,
		UserID:       body.UserID,
		StudentName:  body.StudentName,
		Rating:       body.Rating,
		Comment:      body.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// ListReviews handles GET /v1/instructors/:id/reviews.
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	reviews, err := h.svc.ListReviews(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}

// GetAverageRating handles GET /v1/instructors/:id/rating.
func (h *ReviewHandler) GetAverageRating(c echo.Context) error {
	id, ok := instructorID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid instructor id"})
	}

	avg, err := h.svc.AverageRating(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"average_rating": avg})
}
