package rating

import (
	"context"
	"fmt"
	"time"

	bookingRepo "fundigo/database/repository/booking"
	reviewRepo "fundigo/database/repository/review"
	"fundigo/models"

	"github.com/google/uuid"
)

// Stable error codes for the rating gate.
const (
	CodeNotCompleted    = "not_completed"
	CodeAlreadyReviewed = "already_reviewed"
	CodeInvalidReview   = "invalid_review"
)

// Error is a coded rating-gate error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// EligibilityGate derives review eligibility from the booking's terminal
// state. Each direction is independently gated and one-shot.
type EligibilityGate interface {
	CanReview(ctx context.Context, bookingID, direction string) (bool, error)
	CreateReview(ctx context.Context, bookingID, authorID string, input models.CreateReviewInput) (*models.Review, error)
	// ListVisible applies the dual-blind rule: the rating and comment a
	// party wrote are hidden from that same party's own view, while
	// messages stay mutually visible.
	ListVisible(ctx context.Context, bookingID, viewerID string) ([]models.Review, error)
}

// DefaultEligibilityGate implements EligibilityGate.
type DefaultEligibilityGate struct {
	BookingRepo bookingRepo.BookingRepository
	ReviewRepo  reviewRepo.ReviewRepository
}

// CanReview is true only when the booking is completed and no review exists
// for the (booking, direction) pair yet.
func (g *DefaultEligibilityGate) CanReview(ctx context.Context, bookingID, direction string) (bool, error) {
	if err := validateDirection(direction); err != nil {
		return false, err
	}
	booking, err := g.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking == nil || booking.Status != models.BookingStatusCompleted {
		return false, nil
	}
	exists, err := g.ReviewRepo.Exists(ctx, bookingID, direction)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CreateReview creates the one-shot review for a direction. A second attempt
// fails with already_reviewed, never a silent overwrite.
func (g *DefaultEligibilityGate) CreateReview(ctx context.Context, bookingID, authorID string, input models.CreateReviewInput) (*models.Review, error) {
	if err := validateDirection(input.Direction); err != nil {
		return nil, err
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, NewError(CodeInvalidReview, "rating must be between 0 and 5")
	}

	booking, err := g.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil || booking.Status != models.BookingStatusCompleted {
		return nil, NewError(CodeNotCompleted, "reviews open only after completion")
	}

	var subjectID string
	switch input.Direction {
	case models.ReviewDirectionCustomerToProvider:
		if authorID != booking.CustomerID {
			return nil, NewError(CodeInvalidReview, "only the booking customer may review the provider")
		}
		subjectID = booking.ProviderID
	case models.ReviewDirectionProviderToCustomer:
		if authorID != booking.ProviderID {
			return nil, NewError(CodeInvalidReview, "only the bound provider may review the customer")
		}
		subjectID = booking.CustomerID
	}

	exists, err := g.ReviewRepo.Exists(ctx, bookingID, input.Direction)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewError(CodeAlreadyReviewed, "this direction already has a review")
	}

	review := &models.Review{
		ID:        uuid.New().String(),
		BookingID: bookingID,
		Direction: input.Direction,
		AuthorID:  authorID,
		SubjectID: subjectID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Message:   input.Message,
		CreatedAt: time.Now(),
	}
	if err := g.ReviewRepo.Create(ctx, review); err != nil {
		if err == reviewRepo.ErrDuplicateReview {
			// Concurrent creation lost against the unique index.
			return nil, NewError(CodeAlreadyReviewed, "this direction already has a review")
		}
		return nil, err
	}
	return review, nil
}

func (g *DefaultEligibilityGate) ListVisible(ctx context.Context, bookingID, viewerID string) ([]models.Review, error) {
	reviews, err := g.ReviewRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.AuthorID == viewerID {
			// Dual-blind: authors do not see their own rating/comment back.
			r.Rating = 0
			r.Comment = ""
		}
		visible = append(visible, r)
	}
	return visible, nil
}

func validateDirection(direction string) error {
	switch direction {
	case models.ReviewDirectionCustomerToProvider, models.ReviewDirectionProviderToCustomer:
		return nil
	}
	return NewError(CodeInvalidReview, "unknown review direction: "+direction)
}
