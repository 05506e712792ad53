package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"staynest/internal/domain/shared/daterange"
	"staynest/internal/domain/shared/events"
)

var (
	ErrTitleRequired      = errors.New("property: title is required")
	ErrHostRequired       = errors.New("property: host is required")
	ErrMaxGuests          = errors.New("property: max guests must be at least 1")
	ErrInvalidState       = errors.New("property: invalid state transition")
	ErrAddressRequired    = errors.New("property: address must be provided when publishing")
	ErrPricingRequired    = errors.New("property: pricing must be set before publishing")
	ErrOverlappingRange   = errors.New("property: range overlaps an existing one")
	ErrRangeNotFound      = errors.New("property: range not found")
	ErrNotFound           = errors.New("property: not found")
	ErrPhotoLimitExceeded = errors.New("property: photo limit exceeded")
)

const maxPhotos = 20

type ID string
type HostID string

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

type Address struct {
	Line1   string
	Line2   string
	City    string
	Region  string
	Country string
	Lat     float64
	Lon     float64
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

type BlockReason string

const (
	ReasonBooked    BlockReason = "booked"
	ReasonHostBlock BlockReason = "host_block"
	ReasonUpkeep    BlockReason = "maintenance"
)

// AvailabilityRange is a host-declared period during which the property may
// be booked. Stored with inclusive dates, the way hosts pick them on a
// calendar: EndDate is the last bookable night.
type AvailabilityRange struct {
	StartDate time.Time
	EndDate   time.Time
}

// HalfOpen converts the inclusive stored form into the half-open interval
// used by the overlap math.
func (r AvailabilityRange) HalfOpen() (daterange.DateRange, error) {
	return daterange.FromInclusive(r.StartDate, r.EndDate)
}

// BlockedRange excludes a sub-period from booking. Reference ties
// system-created blocks back to the booking that caused them.
type BlockedRange struct {
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

type Property struct {
	ID                 ID
	Host               HostID
	Title              string
	Description        string
	PropertyType       string
	Address            Address
	Amenities          []string
	MaxGuests          int
	Status             Status
	Pricing            PricingSchedule
	AvailabilityRanges []AvailabilityRange
	BlockedDates       []BlockedRange
	Photos             []string
	ThumbnailURL       string
	Rating             float64
	ReviewCount        int
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	Save(ctx context.Context, p *Property) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID           ID
	Host         HostID
	Title        string
	Description  string
	PropertyType string
	Address      Address
	Amenities    []string
	MaxGuests    int
	Pricing      PricingSchedule
	Now          time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("property: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.MaxGuests < 1 {
		return nil, ErrMaxGuests
	}
	if !params.Pricing.IsZero() {
		if err := params.Pricing.Validate(); err != nil {
			return nil, err
		}
	}
	now := params.Now.UTC()
	p := &Property{
		ID:           params.ID,
		Host:         params.Host,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		PropertyType: strings.TrimSpace(params.PropertyType),
		Address:      params.Address,
		Amenities:    append([]string(nil), params.Amenities...),
		MaxGuests:    params.MaxGuests,
		Pricing:      params.Pricing,
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.Record(PropertyCreated{PropertyID: p.ID, Host: p.Host, At: now})
	return p, nil
}

type UpdateParams struct {
	Title        string
	Description  string
	PropertyType string
	Address      Address
	Amenities    []string
	MaxGuests    int
}

func (p *Property) Update(params UpdateParams, now time.Time) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.MaxGuests < 1 {
		return ErrMaxGuests
	}
	p.Title = strings.TrimSpace(params.Title)
	p.Description = strings.TrimSpace(params.Description)
	p.PropertyType = strings.TrimSpace(params.PropertyType)
	p.Address = params.Address
	p.Amenities = append([]string(nil), params.Amenities...)
	p.MaxGuests = params.MaxGuests
	p.touch(now)
	return nil
}

func (p *Property) SetPricing(schedule PricingSchedule, now time.Time) error {
	if err := schedule.Validate(); err != nil {
		return err
	}
	p.Pricing = schedule
	p.touch(now)
	p.Record(PricingUpdated{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

// Publish makes the property bookable. Listings without an address or
// pricing stay in draft.
func (p *Property) Publish(now time.Time) error {
	if p.Status == StatusPublished {
		return ErrInvalidState
	}
	if !p.Address.Valid() {
		return ErrAddressRequired
	}
	if p.Pricing.IsZero() {
		return ErrPricingRequired
	}
	if err := p.Pricing.Validate(); err != nil {
		return err
	}
	p.Status = StatusPublished
	p.touch(now)
	p.Record(PropertyPublished{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

func (p *Property) Unpublish(now time.Time) error {
	if p.Status != StatusPublished {
		return ErrInvalidState
	}
	p.Status = StatusDraft
	p.touch(now)
	p.Record(PropertyUnpublished{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

// AddAvailability appends a host-declared bookable period. Ranges must not
// overlap each other; the insert is rejected wholesale on any overlap.
func (p *Property) AddAvailability(startDate, endDate time.Time, now time.Time) error {
	candidate := AvailabilityRange{StartDate: daterange.Day(startDate), EndDate: daterange.Day(endDate)}
	half, err := candidate.HalfOpen()
	if err != nil {
		return err
	}
	for _, existing := range p.AvailabilityRanges {
		other, err := existing.HalfOpen()
		if err != nil {
			return err
		}
		if half.Overlaps(other) {
			return ErrOverlappingRange
		}
	}
	p.AvailabilityRanges = append(p.AvailabilityRanges, candidate)
	p.touch(now)
	p.Record(AvailabilityAdded{PropertyID: p.ID, StartDate: candidate.StartDate, EndDate: candidate.EndDate, At: p.UpdatedAt})
	return nil
}

// RemoveAvailability deletes an exactly matching availability range.
func (p *Property) RemoveAvailability(startDate, endDate time.Time, now time.Time) error {
	start := daterange.Day(startDate)
	end := daterange.Day(endDate)
	for i, existing := range p.AvailabilityRanges {
		if existing.StartDate.Equal(start) && existing.EndDate.Equal(end) {
			p.AvailabilityRanges = append(p.AvailabilityRanges[:i], p.AvailabilityRanges[i+1:]...)
			p.touch(now)
			p.Record(AvailabilityRemoved{PropertyID: p.ID, StartDate: start, EndDate: end, At: p.UpdatedAt})
			return nil
		}
	}
	return ErrRangeNotFound
}

// Block excludes a half-open range from booking. Blocks must not overlap
// each other; they may freely overlap availability ranges — that is their
// purpose.
func (p *Property) Block(r daterange.DateRange, reason BlockReason, reference string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if reason == "" {
		reason = ReasonHostBlock
	}
	for _, existing := range p.BlockedDates {
		if existing.Range.Overlaps(r) {
			return ErrOverlappingRange
		}
	}
	p.BlockedDates = append(p.BlockedDates, BlockedRange{
		Range:     r,
		Reason:    reason,
		Reference: reference,
		CreatedAt: now.UTC(),
	})
	p.touch(now)
	p.Record(DatesBlocked{PropertyID: p.ID, Range: r, Reason: reason, At: p.UpdatedAt})
	return nil
}

// Unblock removes the block carrying the given reference.
func (p *Property) Unblock(reference string, now time.Time) error {
	for i, existing := range p.BlockedDates {
		if existing.Reference == reference {
			removed := p.BlockedDates[i]
			p.BlockedDates = append(p.BlockedDates[:i], p.BlockedDates[i+1:]...)
			p.touch(now)
			p.Record(DatesUnblocked{PropertyID: p.ID, Range: removed.Range, Reason: removed.Reason, At: p.UpdatedAt})
			return nil
		}
	}
	return ErrRangeNotFound
}

// UnblockRange removes a block matching the exact half-open range.
func (p *Property) UnblockRange(r daterange.DateRange, now time.Time) error {
	for i, existing := range p.BlockedDates {
		if existing.Range.Equal(r) {
			removed := p.BlockedDates[i]
			p.BlockedDates = append(p.BlockedDates[:i], p.BlockedDates[i+1:]...)
			p.touch(now)
			p.Record(DatesUnblocked{PropertyID: p.ID, Range: removed.Range, Reason: removed.Reason, At: p.UpdatedAt})
			return nil
		}
	}
	return ErrRangeNotFound
}

func (p *Property) AttachPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("property: photo url is required")
	}
	if len(p.Photos) >= maxPhotos {
		return ErrPhotoLimitExceeded
	}
	p.Photos = append(p.Photos, url)
	if p.ThumbnailURL == "" {
		p.ThumbnailURL = url
	}
	p.touch(now)
	return nil
}

// RecordReview folds a new review score into the running average.
func (p *Property) RecordReview(score int, now time.Time) {
	total := p.Rating*float64(p.ReviewCount) + float64(score)
	p.ReviewCount++
	p.Rating = total / float64(p.ReviewCount)
	p.touch(now)
}

func (p *Property) touch(now time.Time) {
	p.UpdatedAt = now.UTC()
}
