package rating

import (
	"context"
	"testing"
	"time"

	reviewRepo "fundigo/database/repository/review"
	"fundigo/models"
)

// stubBookingRepo serves bookings by id; the gate only ever reads.
type stubBookingRepo struct {
	bookings map[string]*models.Booking
}

func (r *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *stubBookingRepo) Create(ctx context.Context, booking *models.Booking) error { return nil }
func (r *stubBookingRepo) BindProvider(ctx context.Context, bookingID, providerID, offerID string) (bool, error) {
	return false, nil
}
func (r *stubBookingRepo) ArmBatch(ctx context.Context, bookingID string, batchIndex int, expiresAt time.Time, providerIDs []string) (bool, error) {
	return false, nil
}
func (r *stubBookingRepo) RollbackBatch(ctx context.Context, bookingID string, prevIndex int, prevExpiresAt *time.Time, providerIDs []string) error {
	return nil
}
func (r *stubBookingRepo) MarkUnfulfillable(ctx context.Context, bookingID string) (bool, error) {
	return false, nil
}
func (r *stubBookingRepo) CancelRequested(ctx context.Context, bookingID, reason string) (bool, error) {
	return false, nil
}
func (r *stubBookingRepo) CancelAccepted(ctx context.Context, bookingID, reason string) (bool, error) {
	return false, nil
}
func (r *stubBookingRepo) SetCompletionFlag(ctx context.Context, bookingID string, byProvider bool) (*models.Booking, error) {
	return nil, nil
}
func (r *stubBookingRepo) ListPendingDeadlines(ctx context.Context) ([]models.Booking, error) {
	return nil, nil
}

type memReviewRepo struct {
	reviews []models.Review
}

func (r *memReviewRepo) key(bookingID, direction string) int {
	for i, rv := range r.reviews {
		if rv.BookingID == bookingID && rv.Direction == direction {
			return i
		}
	}
	return -1
}

func (r *memReviewRepo) Exists(ctx context.Context, bookingID, direction string) (bool, error) {
	return r.key(bookingID, direction) >= 0, nil
}

func (r *memReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if r.key(review.BookingID, review.Direction) >= 0 {
		return reviewRepo.ErrDuplicateReview
	}
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *memReviewRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range r.reviews {
		if rv.BookingID == bookingID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func newTestGate(status string) (*DefaultEligibilityGate, *memReviewRepo) {
	reviews := &memReviewRepo{}
	gate := &DefaultEligibilityGate{
		BookingRepo: &stubBookingRepo{bookings: map[string]*models.Booking{
			"B1": {
				ID:         "B1",
				CustomerID: "CUST1",
				ProviderID: "PROV1",
				Status:     status,
			},
		}},
		ReviewRepo: reviews,
	}
	return gate, reviews
}

func codeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

func TestCanReviewGatedOnCompletion(t *testing.T) {
	for _, status := range []string{
		models.BookingStatusRequested,
		models.BookingStatusAccepted,
		models.BookingStatusInProgress,
		models.BookingStatusCancelled,
		models.BookingStatusUnfulfillable,
	} {
		t.Run(status, func(t *testing.T) {
			gate, _ := newTestGate(status)
			ok, err := gate.CanReview(context.Background(), "B1", models.ReviewDirectionCustomerToProvider)
			if err != nil {
				t.Fatalf("CanReview failed: %v", err)
			}
			if ok {
				t.Errorf("review allowed on %s booking", status)
			}
		})
	}

	gate, _ := newTestGate(models.BookingStatusCompleted)
	ok, err := gate.CanReview(context.Background(), "B1", models.ReviewDirectionCustomerToProvider)
	if err != nil {
		t.Fatalf("CanReview failed: %v", err)
	}
	if !ok {
		t.Error("review denied on completed booking")
	}
}

func TestCreateReviewOneShotPerDirection(t *testing.T) {
	gate, _ := newTestGate(models.BookingStatusCompleted)
	ctx := context.Background()

	review, err := gate.CreateReview(ctx, "B1", "CUST1", models.CreateReviewInput{
		Direction: models.ReviewDirectionCustomerToProvider,
		Rating:    4.5,
		Comment:   "spotless work",
	})
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if review.SubjectID != "PROV1" {
		t.Errorf("subject = %q, want PROV1", review.SubjectID)
	}

	_, err = gate.CreateReview(ctx, "B1", "CUST1", models.CreateReviewInput{
		Direction: models.ReviewDirectionCustomerToProvider,
		Rating:    1,
	})
	if codeOf(err) != CodeAlreadyReviewed {
		t.Errorf("second create error = %v, want %q", err, CodeAlreadyReviewed)
	}

	ok, err := gate.CanReview(ctx, "B1", models.ReviewDirectionCustomerToProvider)
	if err != nil || ok {
		t.Errorf("CanReview after create = %v, %v; want false", ok, err)
	}

	// The opposite direction stays independently open.
	ok, err = gate.CanReview(ctx, "B1", models.ReviewDirectionProviderToCustomer)
	if err != nil || !ok {
		t.Errorf("CanReview opposite direction = %v, %v; want true", ok, err)
	}
	if _, err := gate.CreateReview(ctx, "B1", "PROV1", models.CreateReviewInput{
		Direction: models.ReviewDirectionProviderToCustomer,
		Rating:    5,
	}); err != nil {
		t.Errorf("opposite-direction create failed: %v", err)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	gate, _ := newTestGate(models.BookingStatusCompleted)
	ctx := context.Background()

	t.Run("unknown direction", func(t *testing.T) {
		_, err := gate.CreateReview(ctx, "B1", "CUST1", models.CreateReviewInput{Direction: "sideways", Rating: 3})
		if codeOf(err) != CodeInvalidReview {
			t.Errorf("error = %v, want %q", err, CodeInvalidReview)
		}
	})
	t.Run("rating out of range", func(t *testing.T) {
		_, err := gate.CreateReview(ctx, "B1", "CUST1", models.CreateReviewInput{
			Direction: models.ReviewDirectionCustomerToProvider, Rating: 6,
		})
		if codeOf(err) != CodeInvalidReview {
			t.Errorf("error = %v, want %q", err, CodeInvalidReview)
		}
	})
	t.Run("wrong author for direction", func(t *testing.T) {
		_, err := gate.CreateReview(ctx, "B1", "PROV1", models.CreateReviewInput{
			Direction: models.ReviewDirectionCustomerToProvider, Rating: 3,
		})
		if codeOf(err) != CodeInvalidReview {
			t.Errorf("error = %v, want %q", err, CodeInvalidReview)
		}
	})
}

func TestCreateReviewBeforeCompletion(t *testing.T) {
	gate, _ := newTestGate(models.BookingStatusInProgress)
	_, err := gate.CreateReview(context.Background(), "B1", "CUST1", models.CreateReviewInput{
		Direction: models.ReviewDirectionCustomerToProvider,
		Rating:    4,
	})
	if codeOf(err) != CodeNotCompleted {
		t.Errorf("error = %v, want %q", err, CodeNotCompleted)
	}
}

// racingReviewRepo reports Exists=false even when a review is already stored,
// standing in for a concurrent writer that lands between the existence check
// and the insert. The unique index still rejects the insert.
type racingReviewRepo struct {
	memReviewRepo
}

func (r *racingReviewRepo) Exists(ctx context.Context, bookingID, direction string) (bool, error) {
	return false, nil
}

func TestCreateReviewDuplicateIndexRace(t *testing.T) {
	gate, _ := newTestGate(models.BookingStatusCompleted)
	racing := &racingReviewRepo{}
	racing.reviews = append(racing.reviews, models.Review{
		BookingID: "B1",
		Direction: models.ReviewDirectionCustomerToProvider,
	})
	gate.ReviewRepo = racing

	_, err := gate.CreateReview(context.Background(), "B1", "CUST1", models.CreateReviewInput{
		Direction: models.ReviewDirectionCustomerToProvider,
		Rating:    3,
	})
	if codeOf(err) != CodeAlreadyReviewed {
		t.Fatalf("raced create error = %v, want %q", err, CodeAlreadyReviewed)
	}
}

func TestListVisibleDualBlind(t *testing.T) {
	gate, _ := newTestGate(models.BookingStatusCompleted)
	ctx := context.Background()

	if _, err := gate.CreateReview(ctx, "B1", "CUST1", models.CreateReviewInput{
		Direction: models.ReviewDirectionCustomerToProvider,
		Rating:    4.5,
		Comment:   "spotless work",
		Message:   "thanks again",
	}); err != nil {
		t.Fatalf("customer review failed: %v", err)
	}
	if _, err := gate.CreateReview(ctx, "B1", "PROV1", models.CreateReviewInput{
		Direction: models.ReviewDirectionProviderToCustomer,
		Rating:    5,
		Comment:   "great customer",
	}); err != nil {
		t.Fatalf("provider review failed: %v", err)
	}

	asCustomer, err := gate.ListVisible(ctx, "B1", "CUST1")
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	for _, r := range asCustomer {
		switch r.AuthorID {
		case "CUST1":
			if r.Rating != 0 || r.Comment != "" {
				t.Errorf("author sees own rating/comment back: %+v", r)
			}
			if r.Message != "thanks again" {
				t.Errorf("message hidden from author: %+v", r)
			}
		case "PROV1":
			if r.Rating != 5 || r.Comment != "great customer" {
				t.Errorf("counterparty review redacted for viewer: %+v", r)
			}
		}
	}

	asProvider, err := gate.ListVisible(ctx, "B1", "PROV1")
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	for _, r := range asProvider {
		switch r.AuthorID {
		case "PROV1":
			if r.Rating != 0 || r.Comment != "" {
				t.Errorf("author sees own rating/comment back: %+v", r)
			}
		case "CUST1":
			if r.Rating != 4.5 || r.Comment != "spotless work" {
				t.Errorf("counterparty review redacted for viewer: %+v", r)
			}
		}
	}
}
