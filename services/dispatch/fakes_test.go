package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	providerRepo "fundigo/database/repository/provider"
	"fundigo/models"

	"go.uber.org/zap"
)

// memStore backs the repository fakes. A single mutex spans bookings and
// offers so the fake BindProvider has the same all-or-nothing visibility as
// the Mongo transaction it stands in for.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	offers   map[string]*models.Offer
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[string]*models.Booking),
		offers:   make(map[string]*models.Offer),
	}
}

type fakeBookingRepo struct {
	store *memStore
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *booking
	r.store.bookings[booking.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	cp.OfferedProviderIDs = append([]string(nil), b.OfferedProviderIDs...)
	return &cp, nil
}

func (r *fakeBookingRepo) BindProvider(ctx context.Context, bookingID, providerID, offerID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return false, fmt.Errorf("booking %s not found", bookingID)
	}
	if b.ProviderID != "" || b.Status != models.BookingStatusRequested {
		return false, nil
	}
	win, ok := r.store.offers[offerID]
	if !ok || win.ResponseState != models.OfferStatePending {
		return false, nil
	}
	now := time.Now()
	b.ProviderID = providerID
	b.Status = models.BookingStatusAccepted
	b.ResolvedAt = &now
	b.BatchExpiresAt = nil
	win.ResponseState = models.OfferStateAccepted
	for _, o := range r.store.offers {
		if o.BookingID == bookingID && o.ResponseState == models.OfferStatePending {
			o.ResponseState = models.OfferStateExpired
		}
	}
	return true, nil
}

func (r *fakeBookingRepo) ArmBatch(ctx context.Context, bookingID string, batchIndex int, expiresAt time.Time, providerIDs []string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusRequested || b.OfferBatchIndex != batchIndex-1 {
		return false, nil
	}
	b.OfferBatchIndex = batchIndex
	t := expiresAt
	b.BatchExpiresAt = &t
	b.OfferedProviderIDs = append(b.OfferedProviderIDs, providerIDs...)
	return true, nil
}

func (r *fakeBookingRepo) RollbackBatch(ctx context.Context, bookingID string, prevIndex int, prevExpiresAt *time.Time, providerIDs []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil
	}
	b.OfferBatchIndex = prevIndex
	b.BatchExpiresAt = prevExpiresAt
	drop := make(map[string]bool, len(providerIDs))
	for _, id := range providerIDs {
		drop[id] = true
	}
	kept := b.OfferedProviderIDs[:0]
	for _, id := range b.OfferedProviderIDs {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	b.OfferedProviderIDs = kept
	return nil
}

func (r *fakeBookingRepo) MarkUnfulfillable(ctx context.Context, bookingID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusRequested {
		return false, nil
	}
	now := time.Now()
	b.Status = models.BookingStatusUnfulfillable
	b.ResolvedAt = &now
	return true, nil
}

func (r *fakeBookingRepo) CancelRequested(ctx context.Context, bookingID, reason string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusRequested {
		return false, nil
	}
	now := time.Now()
	b.Status = models.BookingStatusCancelled
	b.CancelReason = reason
	b.ResolvedAt = &now
	b.BatchExpiresAt = nil
	for _, o := range r.store.offers {
		if o.BookingID == bookingID && o.ResponseState == models.OfferStatePending {
			o.ResponseState = models.OfferStateExpired
		}
	}
	return true, nil
}

func (r *fakeBookingRepo) CancelAccepted(ctx context.Context, bookingID, reason string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return false, nil
	}
	if b.Status != models.BookingStatusAccepted && b.Status != models.BookingStatusInProgress {
		return false, nil
	}
	now := time.Now()
	b.Status = models.BookingStatusCancelled
	b.CancelReason = reason
	b.ResolvedAt = &now
	return true, nil
}

func (r *fakeBookingRepo) SetCompletionFlag(ctx context.Context, bookingID string, byProvider bool) (*models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	if b.Status != models.BookingStatusAccepted && b.Status != models.BookingStatusInProgress {
		return nil, nil
	}
	if byProvider {
		b.ProviderConfirmed = true
	} else {
		b.CustomerConfirmed = true
	}
	b.Status = models.BookingStatusInProgress
	if b.ProviderConfirmed && b.CustomerConfirmed {
		now := time.Now()
		b.Status = models.BookingStatusCompleted
		b.ResolvedAt = &now
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ListPendingDeadlines(ctx context.Context) ([]models.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Booking
	for _, b := range r.store.bookings {
		if b.Status == models.BookingStatusRequested && b.BatchExpiresAt != nil {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeOfferRepo struct {
	store *memStore
}

func (r *fakeOfferRepo) CreateMany(ctx context.Context, offers []models.Offer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range offers {
		cp := o
		r.store.offers[o.ID] = &cp
	}
	return nil
}

func (r *fakeOfferRepo) GetPending(ctx context.Context, bookingID, providerID string) (*models.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.offers {
		if o.BookingID == bookingID && o.ProviderID == providerID && o.ResponseState == models.OfferStatePending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOfferRepo) MarkDeclined(ctx context.Context, offerID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	o, ok := r.store.offers[offerID]
	if !ok || o.ResponseState != models.OfferStatePending {
		return false, nil
	}
	o.ResponseState = models.OfferStateDeclined
	return true, nil
}

func (r *fakeOfferRepo) ExpirePendingInBatch(ctx context.Context, bookingID string, batchIndex int) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, o := range r.store.offers {
		if o.BookingID == bookingID && o.BatchIndex == batchIndex && o.ResponseState == models.OfferStatePending {
			o.ResponseState = models.OfferStateExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeOfferRepo) CountPending(ctx context.Context, bookingID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, o := range r.store.offers {
		if o.BookingID == bookingID && o.ResponseState == models.OfferStatePending {
			n++
		}
	}
	return n, nil
}

func (r *fakeOfferRepo) DeleteBatch(ctx context.Context, bookingID string, batchIndex int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, o := range r.store.offers {
		if o.BookingID == bookingID && o.BatchIndex == batchIndex {
			delete(r.store.offers, id)
		}
	}
	return nil
}

func (r *fakeOfferRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Offer
	for _, o := range r.store.offers {
		if o.BookingID == bookingID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BatchIndex != out[j].BatchIndex {
			return out[i].BatchIndex < out[j].BatchIndex
		}
		return out[i].ProviderID < out[j].ProviderID
	})
	return out, nil
}

type fakeProviderRepo struct {
	providers []models.Provider
}

func (r *fakeProviderRepo) Search(ctx context.Context, criteria providerRepo.ProviderSearchCriteria) ([]models.Provider, error) {
	exclude := make(map[string]bool, len(criteria.ExcludeIDs))
	for _, id := range criteria.ExcludeIDs {
		exclude[id] = true
	}
	var out []models.Provider
	for _, p := range r.providers {
		if exclude[p.ID] {
			continue
		}
		if p.Profile.Status != models.ProviderStatusActive && p.Profile.Status != models.ProviderStatusOnline {
			continue
		}
		if criteria.TemplateID != "" && !containsString(p.ServiceTemplates, criteria.TemplateID) {
			continue
		}
		if criteria.MaxDistanceKm > 0 && len(criteria.LocationGeo.Coordinates) == 2 && len(p.Profile.LocationGeo.Coordinates) == 2 {
			dist := haversine(criteria.LocationGeo.Lat(), criteria.LocationGeo.Lng(),
				p.Profile.LocationGeo.Lat(), p.Profile.LocationGeo.Lng())
			if dist > criteria.MaxDistanceKm {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	for _, p := range r.providers {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

type armCall struct {
	bookingID  string
	batchIndex int
	at         time.Time
}

type fakeScheduler struct {
	mu      sync.Mutex
	armed   []armCall
	failErr error
}

func (s *fakeScheduler) ArmExpiry(ctx context.Context, bookingID string, batchIndex int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.armed = append(s.armed, armCall{bookingID: bookingID, batchIndex: batchIndex, at: at})
	return nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	offersIssued  []models.Offer
	resolved      []string // winner ids
	losers        [][]string
	unfulfillable []string
	cancelled     []string
}

func (n *fakeNotifier) OfferIssued(ctx context.Context, booking *models.Booking, offer models.Offer) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offersIssued = append(n.offersIssued, offer)
	return nil
}

func (n *fakeNotifier) BookingResolved(ctx context.Context, booking *models.Booking, winnerID string, loserIDs []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, winnerID)
	n.losers = append(n.losers, loserIDs)
	return nil
}

func (n *fakeNotifier) BookingUnfulfillable(ctx context.Context, booking *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unfulfillable = append(n.unfulfillable, booking.ID)
	return nil
}

func (n *fakeNotifier) BookingCancelled(ctx context.Context, booking *models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, booking.ID)
	return nil
}

// newTestEngine wires a dispatch engine against in-memory fakes.
func newTestEngine(providers []models.Provider, batchSize int) (*DefaultDispatchService, *memStore, *fakeScheduler, *fakeNotifier) {
	store := newMemStore()
	scheduler := &fakeScheduler{}
	notifier := &fakeNotifier{}
	engine := &DefaultDispatchService{
		BookingRepo: &fakeBookingRepo{store: store},
		OfferRepo:   &fakeOfferRepo{store: store},
		Selector: &DefaultCandidateSelector{
			ProviderRepo: &fakeProviderRepo{providers: providers},
			Weights:      Weights{Distance: 0.6, Rating: 0.4},
		},
		Scheduler:   scheduler,
		Notifier:    notifier,
		Logger:      zap.NewNop(),
		BatchSize:   batchSize,
		OfferWindow: 5 * time.Minute,
	}
	return engine, store, scheduler, notifier
}

// testProvider builds a live candidate offset north of the origin by
// roughly distKm.
func testProvider(id string, distKm, rating float64) models.Provider {
	return models.Provider{
		ID: id,
		Profile: models.ProviderProfile{
			DisplayName: id,
			Status:      models.ProviderStatusActive,
			Rating:      rating,
			LocationGeo: models.NewGeoPoint(0, distKm/111.195),
		},
		ServiceTemplates: []string{"cleaning"},
	}
}
