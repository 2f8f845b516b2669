package handlers

import (
	"net/http"

	"fundigo/middleware"
	"fundigo/models"
	"fundigo/services/rating"
	"fundigo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RatingHandler exposes the read-only eligibility gate and the one-shot
// review creation to the Rating collaborator.
type RatingHandler struct {
	Gate rating.EligibilityGate
}

func NewRatingHandler(gate rating.EligibilityGate) *RatingHandler {
	return &RatingHandler{Gate: gate}
}

// Eligibility reports whether a review may be created for the direction.
func (h *RatingHandler) Eligibility(c *gin.Context) {
	direction := c.Query("direction")
	can, err := h.Gate.CanReview(c.Request.Context(), c.Param("bookingID"), direction)
	if err != nil {
		h.respondRatingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canReview": can, "direction": direction})
}

// CreateReview performs the one-shot review creation for a direction.
func (h *RatingHandler) CreateReview(c *gin.Context) {
	var input models.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	review, err := h.Gate.CreateReview(c.Request.Context(), c.Param("bookingID"), middleware.ActorID(c), input)
	if err != nil {
		h.respondRatingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListReviews returns the booking's reviews with the dual-blind rule applied
// for the requesting viewer.
func (h *RatingHandler) ListReviews(c *gin.Context) {
	reviews, err := h.Gate.ListVisible(c.Request.Context(), c.Param("bookingID"), middleware.ActorID(c))
	if err != nil {
		h.respondRatingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *RatingHandler) respondRatingError(c *gin.Context, err error) {
	if re, ok := err.(*rating.Error); ok {
		switch re.Code {
		case rating.CodeInvalidReview:
			utils.JSONError(c, http.StatusBadRequest, "validation failed", err.Error())
			return
		case rating.CodeNotCompleted:
			utils.JSONError(c, http.StatusConflict, "booking not completed", err.Error())
			return
		case rating.CodeAlreadyReviewed:
			utils.JSONError(c, http.StatusConflict, "already reviewed", err.Error())
			return
		}
	}
	getLogger(c).Error("rating request failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "internal error", "an unexpected error occurred")
}
