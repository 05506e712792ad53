package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staynest/internal/domain/booking"
	domainproperty "staynest/internal/domain/property"
	domainrange "staynest/internal/domain/shared/daterange"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("agg_property")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save performs a versioned upsert, same contract as the booking repository.
// The blocked-dates array rides along with the aggregate, so a booking
// confirmation and its calendar change land in one document write.
func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainbooking.ErrConflict
	}
	p.Version = doc.Version
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, params domainproperty.SearchParams) (domainproperty.SearchResult, error) {
	opts := params.Normalized()

	filter := bson.M{}
	if opts.OnlyPublished {
		filter["status"] = string(domainproperty.StatusPublished)
	} else if len(opts.Statuses) > 0 {
		statuses := make([]string, 0, len(opts.Statuses))
		for _, s := range opts.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if opts.Host != "" {
		filter["host_id"] = string(opts.Host)
	}
	if opts.City != "" {
		filter["address.city_lc"] = opts.City
	}
	if opts.Country != "" {
		filter["address.country_lc"] = opts.Country
	}
	if opts.MinGuests > 0 {
		filter["max_guests"] = bson.M{"$gte": opts.MinGuests}
	}
	price := bson.M{}
	if opts.PriceMin > 0 {
		price["$gte"] = opts.PriceMin
	}
	if opts.PriceMax > 0 {
		price["$lte"] = opts.PriceMax
	}
	if len(price) > 0 {
		filter["pricing.base_price.amount"] = price
	}
	if len(opts.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": opts.Amenities}
	}
	if len(opts.PropertyTypes) > 0 {
		filter["property_type_lc"] = bson.M{"$in": opts.PropertyTypes}
	}

	findOpts := options.Find().SetSort(sortSpec(opts.Sort))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainproperty.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	// Date coverage and free-text matching are cheaper to finish in memory
	// than to express as aggregation stages at this collection size.
	matches := make([]*domainproperty.Property, 0)
	for cursor.Next(ctx) {
		var doc propertyDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainproperty.SearchResult{}, err
		}
		prop := doc.toAggregate()
		if opts.LocationQuery != "" && !locationMatches(prop, opts.LocationQuery) {
			continue
		}
		if !opts.CheckIn.IsZero() && !opts.CheckOut.IsZero() && !staysWithinAvailability(prop, opts.CheckIn, opts.CheckOut) {
			continue
		}
		matches = append(matches, prop)
	}
	if err := cursor.Err(); err != nil {
		return domainproperty.SearchResult{}, err
	}

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return domainproperty.SearchResult{Items: matches[start:end], Total: total}, nil
}

func sortSpec(sort domainproperty.CatalogSort) bson.D {
	switch sort {
	case domainproperty.SortByPriceDesc:
		return bson.D{{Key: "pricing.base_price.amount", Value: -1}}
	case domainproperty.SortByRating:
		return bson.D{{Key: "rating", Value: -1}}
	case domainproperty.SortByNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "pricing.base_price.amount", Value: 1}}
	}
}

func locationMatches(p *domainproperty.Property, needle string) bool {
	full := strings.ToLower(strings.Join([]string{
		p.Address.City,
		p.Address.Country,
		p.Address.Line1,
		p.Title,
	}, " "))
	return strings.Contains(full, needle)
}

func staysWithinAvailability(p *domainproperty.Property, checkIn, checkOut time.Time) bool {
	stay, err := domainrange.New(checkIn, checkOut)
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

type propertyDocument struct {
	ID                 string                  `bson:"_id"`
	HostID             string                  `bson:"host_id"`
	Title              string                  `bson:"title"`
	Description        string                  `bson:"description,omitempty"`
	PropertyType       string                  `bson:"property_type,omitempty"`
	PropertyTypeLC     string                  `bson:"property_type_lc,omitempty"`
	Address            addressDocument         `bson:"address"`
	Amenities          []string                `bson:"amenities,omitempty"`
	MaxGuests          int                     `bson:"max_guests"`
	Status             string                  `bson:"status"`
	Pricing            pricingScheduleDocument `bson:"pricing"`
	AvailabilityRanges []availabilityDocument  `bson:"availability_ranges,omitempty"`
	BlockedDates       []blockedRangeDocument  `bson:"blocked_dates,omitempty"`
	Photos             []string                `bson:"photos,omitempty"`
	ThumbnailURL       string                  `bson:"thumbnail_url,omitempty"`
	Rating             float64                 `bson:"rating"`
	ReviewCount        int                     `bson:"review_count"`
	Version            int64                   `bson:"version"`
	CreatedAt          int64                   `bson:"created_at"`
	UpdatedAt          int64                   `bson:"updated_at"`
}

type addressDocument struct {
	Line1     string  `bson:"line1"`
	Line2     string  `bson:"line2,omitempty"`
	City      string  `bson:"city"`
	CityLC    string  `bson:"city_lc"`
	Region    string  `bson:"region,omitempty"`
	Country   string  `bson:"country"`
	CountryLC string  `bson:"country_lc"`
	Lat       float64 `bson:"lat,omitempty"`
	Lon       float64 `bson:"lon,omitempty"`
}

type pricingScheduleDocument struct {
	BasePrice              moneyDocument `bson:"base_price"`
	CleaningFee            moneyDocument `bson:"cleaning_fee"`
	ServiceFee             moneyDocument `bson:"service_fee"`
	TaxRatePercent         int           `bson:"tax_rate_percent"`
	MinimumStayNights      int           `bson:"minimum_stay_nights"`
	MaximumStayNights      int           `bson:"maximum_stay_nights"`
	WeeklyDiscountPercent  int           `bson:"weekly_discount_percent"`
	MonthlyDiscountPercent int           `bson:"monthly_discount_percent"`
}

type availabilityDocument struct {
	StartDate int64 `bson:"start_date"`
	EndDate   int64 `bson:"end_date"`
}

type blockedRangeDocument struct {
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	Reference string        `bson:"reference,omitempty"`
	CreatedAt int64         `bson:"created_at"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	availability := make([]availabilityDocument, 0, len(p.AvailabilityRanges))
	for _, r := range p.AvailabilityRanges {
		availability = append(availability, availabilityDocument{StartDate: r.StartDate.UnixMilli(), EndDate: r.EndDate.UnixMilli()})
	}
	blocked := make([]blockedRangeDocument, 0, len(p.BlockedDates))
	for _, b := range p.BlockedDates {
		blocked = append(blocked, blockedRangeDocument{
			Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
			Reason:    string(b.Reason),
			Reference: b.Reference,
			CreatedAt: b.CreatedAt.UnixMilli(),
		})
	}
	return propertyDocument{
		ID:             string(p.ID),
		HostID:         string(p.Host),
		Title:          p.Title,
		Description:    p.Description,
		PropertyType:   p.PropertyType,
		PropertyTypeLC: strings.ToLower(p.PropertyType),
		Address: addressDocument{
			Line1:     p.Address.Line1,
			Line2:     p.Address.Line2,
			City:      p.Address.City,
			CityLC:    strings.ToLower(p.Address.City),
			Region:    p.Address.Region,
			Country:   p.Address.Country,
			CountryLC: strings.ToLower(p.Address.Country),
			Lat:       p.Address.Lat,
			Lon:       p.Address.Lon,
		},
		Amenities: lowercaseAll(p.Amenities),
		MaxGuests: p.MaxGuests,
		Status:    string(p.Status),
		Pricing: pricingScheduleDocument{
			BasePrice:              newMoneyDocument(p.Pricing.BasePrice),
			CleaningFee:            newMoneyDocument(p.Pricing.CleaningFee),
			ServiceFee:             newMoneyDocument(p.Pricing.ServiceFee),
			TaxRatePercent:         p.Pricing.TaxRatePercent,
			MinimumStayNights:      p.Pricing.MinimumStayNights,
			MaximumStayNights:      p.Pricing.MaximumStayNights,
			WeeklyDiscountPercent:  p.Pricing.WeeklyDiscountPercent,
			MonthlyDiscountPercent: p.Pricing.MonthlyDiscountPercent,
		},
		AvailabilityRanges: availability,
		BlockedDates:       blocked,
		Photos:             p.Photos,
		ThumbnailURL:       p.ThumbnailURL,
		Rating:             p.Rating,
		ReviewCount:        p.ReviewCount,
		Version:            p.Version,
		CreatedAt:          p.CreatedAt.UnixMilli(),
		UpdatedAt:          p.UpdatedAt.UnixMilli(),
	}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	availability := make([]domainproperty.AvailabilityRange, 0, len(d.AvailabilityRanges))
	for _, r := range d.AvailabilityRanges {
		availability = append(availability, domainproperty.AvailabilityRange{
			StartDate: timestampToTime(r.StartDate),
			EndDate:   timestampToTime(r.EndDate),
		})
	}
	blocked := make([]domainproperty.BlockedRange, 0, len(d.BlockedDates))
	for _, b := range d.BlockedDates {
		blocked = append(blocked, domainproperty.BlockedRange{
			Range:     domainrange.DateRange{CheckIn: timestampToTime(b.Range.CheckIn), CheckOut: timestampToTime(b.Range.CheckOut)},
			Reason:    domainproperty.BlockReason(b.Reason),
			Reference: b.Reference,
			CreatedAt: timestampToTime(b.CreatedAt),
		})
	}
	return &domainproperty.Property{
		ID:           domainproperty.ID(d.ID),
		Host:         domainproperty.HostID(d.HostID),
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: d.PropertyType,
		Address: domainproperty.Address{
			Line1:   d.Address.Line1,
			Line2:   d.Address.Line2,
			City:    d.Address.City,
			Region:  d.Address.Region,
			Country: d.Address.Country,
			Lat:     d.Address.Lat,
			Lon:     d.Address.Lon,
		},
		Amenities: d.Amenities,
		MaxGuests: d.MaxGuests,
		Status:    domainproperty.Status(d.Status),
		Pricing: domainproperty.PricingSchedule{
			BasePrice:              d.Pricing.BasePrice.toMoney(),
			CleaningFee:            d.Pricing.CleaningFee.toMoney(),
			ServiceFee:             d.Pricing.ServiceFee.toMoney(),
			TaxRatePercent:         d.Pricing.TaxRatePercent,
			MinimumStayNights:      d.Pricing.MinimumStayNights,
			MaximumStayNights:      d.Pricing.MaximumStayNights,
			WeeklyDiscountPercent:  d.Pricing.WeeklyDiscountPercent,
			MonthlyDiscountPercent: d.Pricing.MonthlyDiscountPercent,
		},
		AvailabilityRanges: availability,
		BlockedDates:       blocked,
		Photos:             d.Photos,
		ThumbnailURL:       d.ThumbnailURL,
		Rating:             d.Rating,
		ReviewCount:        d.ReviewCount,
		Version:            d.Version,
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
	}
}

func lowercaseAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}

var _ domainproperty.Repository = (*PropertyRepository)(nil)
