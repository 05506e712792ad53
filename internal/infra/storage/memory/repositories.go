package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainreviews "staynest/internal/domain/reviews"
	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/events"
)

// PropertyRepository is an in-memory implementation with optimistic locking.
// Saves compare the aggregate's version against the stored copy and reject
// stale writers, mirroring the behavior of the Mongo repository.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{
		items: make(map[domainproperty.ID]*domainproperty.Property),
	}
}

// ByID returns a copy of the property so callers can mutate freely before
// saving.
func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prop, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	return cloneProperty(prop), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[p.ID]; ok && existing.Version != p.Version {
		return domainbooking.ErrConflict
	}
	stored := cloneProperty(p)
	stored.Version++
	r.items[p.ID] = stored
	p.Version = stored.Version
	return nil
}

// Search returns properties that satisfy the provided filters.
func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) (domainproperty.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainproperty.Property, 0, len(r.items))
	for _, prop := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainproperty.SearchResult{}, ctx.Err()
			default:
			}
		}

		if opts.OnlyPublished && prop.Status != domainproperty.StatusPublished {
			continue
		}
		if opts.Host != "" && prop.Host != opts.Host {
			continue
		}
		if len(opts.Statuses) > 0 && !statusIncluded(prop.Status, opts.Statuses) {
			continue
		}
		if opts.City != "" && !strings.EqualFold(prop.Address.City, opts.City) {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(prop.Address.Country, opts.Country) {
			continue
		}
		if opts.LocationQuery != "" && !matchLocation(prop, opts.LocationQuery) {
			continue
		}
		if opts.MinGuests > 0 && prop.MaxGuests < opts.MinGuests {
			continue
		}
		if opts.PriceMin > 0 && prop.Pricing.BasePrice.Amount < opts.PriceMin {
			continue
		}
		if opts.PriceMax > 0 && prop.Pricing.BasePrice.Amount > opts.PriceMax {
			continue
		}
		if !opts.CheckIn.IsZero() && !opts.CheckOut.IsZero() && !coversStay(prop, opts.CheckIn, opts.CheckOut) {
			continue
		}
		if !tokensMatch(prop.Amenities, opts.Amenities) {
			continue
		}
		if len(opts.PropertyTypes) > 0 && !propertyTypeMatches(prop.PropertyType, opts.PropertyTypes) {
			continue
		}
		matches = append(matches, prop)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainproperty.SortByPriceDesc:
			if matches[i].Pricing.BasePrice.Amount == matches[j].Pricing.BasePrice.Amount {
				return matches[i].Rating > matches[j].Rating
			}
			return matches[i].Pricing.BasePrice.Amount > matches[j].Pricing.BasePrice.Amount
		case domainproperty.SortByRating:
			if matches[i].Rating == matches[j].Rating {
				return matches[i].Pricing.BasePrice.Amount < matches[j].Pricing.BasePrice.Amount
			}
			return matches[i].Rating > matches[j].Rating
		case domainproperty.SortByNewest:
			if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].Pricing.BasePrice.Amount < matches[j].Pricing.BasePrice.Amount
			}
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		default:
			if matches[i].Pricing.BasePrice.Amount == matches[j].Pricing.BasePrice.Amount {
				return matches[i].Rating > matches[j].Rating
			}
			return matches[i].Pricing.BasePrice.Amount < matches[j].Pricing.BasePrice.Amount
		}
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	items := make([]*domainproperty.Property, 0, end-start)
	for _, prop := range matches[start:end] {
		items = append(items, cloneProperty(prop))
	}

	return domainproperty.SearchResult{Items: items, Total: total}, nil
}

// coversStay checks that some availability range fully contains the stay.
func coversStay(p *domainproperty.Property, checkIn, checkOut time.Time) bool {
	stay, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return false
	}
	for _, r := range p.AvailabilityRanges {
		half, err := r.HalfOpen()
		if err != nil {
			continue
		}
		if half.Contains(stay) {
			return true
		}
	}
	return false
}

func tokensMatch(values []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(values) == 0 {
		return false
	}
	index := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value == "" {
			continue
		}
		index[value] = struct{}{}
	}
	for _, token := range required {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := index[token]; !ok {
			return false
		}
	}
	return true
}

func matchLocation(p *domainproperty.Property, needle string) bool {
	if p == nil {
		return false
	}
	full := strings.ToLower(strings.Join([]string{
		p.Address.City,
		p.Address.Country,
		p.Address.Line1,
		p.Title,
	}, " "))
	return strings.Contains(full, needle)
}

func propertyTypeMatches(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	current := strings.TrimSpace(strings.ToLower(value))
	if current == "" {
		return false
	}
	for _, option := range allowed {
		if current == option {
			return true
		}
	}
	return false
}

func statusIncluded(status domainproperty.Status, allowed []domainproperty.Status) bool {
	for _, candidate := range allowed {
		if status == candidate {
			return true
		}
	}
	return false
}

func cloneProperty(p *domainproperty.Property) *domainproperty.Property {
	clone := *p
	clone.Amenities = append([]string(nil), p.Amenities...)
	clone.AvailabilityRanges = append([]domainproperty.AvailabilityRange(nil), p.AvailabilityRanges...)
	clone.BlockedDates = append([]domainproperty.BlockedRange(nil), p.BlockedDates...)
	clone.Photos = append([]string(nil), p.Photos...)
	clone.EventRecorder = events.EventRecorder{}
	return &clone
}

// BookingRepository stores bookings in memory with the same optimistic
// locking discipline as properties.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

// Save applies the versioned write and, for bookings that still hold their
// nights, re-runs the overlap check under the same lock as the insert. Two
// racing requests can both pass OpenOverlapping, but only one clears this
// guard; the other returns ErrConflict.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[b.ID]; ok && existing.Version != b.Version {
		return domainbooking.ErrConflict
	}
	if b.Status.Open() {
		for _, other := range r.items {
			if other.ID == b.ID || other.PropertyID != b.PropertyID {
				continue
			}
			if other.Status.Open() && other.Range.Overlaps(b.Range) {
				return domainbooking.ErrConflict
			}
		}
	}
	stored := cloneBooking(b)
	stored.Version++
	r.items[b.ID] = stored
	b.Version = stored.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(guestID)
	if id == "" {
		return nil, errors.New("memory: guest id required")
	}
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.GuestID == id {
			matches = append(matches, cloneBooking(b))
		}
	}
	sortByCreated(matches)
	return matches, nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.PropertyID == propertyID {
			matches = append(matches, cloneBooking(b))
		}
	}
	sortByCreated(matches)
	return matches, nil
}

// OpenOverlapping returns pending and confirmed bookings whose range overlaps
// the given one.
func (r *BookingRepository) OpenOverlapping(ctx context.Context, propertyID domainproperty.ID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.PropertyID != propertyID {
			continue
		}
		if !b.Status.Open() {
			continue
		}
		if b.Range.Overlaps(dr) {
			matches = append(matches, cloneBooking(b))
		}
	}
	sortByCreated(matches)
	return matches, nil
}

func sortByCreated(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	clone := *b
	clone.EventRecorder = events.EventRecorder{}
	return &clone
}

// ReviewsRepository is a lightweight in-memory review store.
type ReviewsRepository struct {
	mu    sync.RWMutex
	items map[string]*domainreviews.Review
}

func NewReviewsRepository() *ReviewsRepository {
	return &ReviewsRepository{items: make(map[string]*domainreviews.Review)}
}

func (r *ReviewsRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID, authorID string) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := bookingReviewKey(bookingID, authorID)
	if review, ok := r.items[key]; ok {
		return review, nil
	}
	return nil, domainreviews.ErrNotFound
}

func (r *ReviewsRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.PropertyID == propertyID {
			matches = append(matches, review)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if offset > 0 {
		if offset > len(matches) {
			offset = len(matches)
		}
		matches = matches[offset:]
	}
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *ReviewsRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bookingReviewKey(review.BookingID, review.AuthorID)
	r.items[key] = review
	return nil
}

func bookingReviewKey(bookingID domainbooking.ID, authorID string) string {
	return string(bookingID) + ":" + authorID
}
