package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staynest/internal/domain/booking"
	domainpricing "staynest/internal/domain/pricing"
	domainproperty "staynest/internal/domain/property"
	domainrange "staynest/internal/domain/shared/daterange"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	// At most one open booking per property night. Two transactions racing
	// past the overlap read insert distinct documents, so the unique multikey
	// index is what actually arbitrates; the loser's insert fails with a
	// duplicate key error that Save maps to ErrConflict.
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "reserved_nights", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"open": true}),
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "guest_id", Value: 1}}})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save performs a versioned upsert. A stale writer matches nothing and gets
// the conflict error, which the transport layer maps to a retryable status.
// Open bookings also claim their nights in the reserved_nights unique index,
// so a concurrent insert for an overlapping stay comes back as ErrConflict
// even though the two writers touch different documents.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"property_id": string(propertyID)})
}

// OpenOverlapping finds pending/confirmed bookings whose half-open range
// overlaps the given one: existing.check_in < wanted.check_out AND
// existing.check_out > wanted.check_in. Runs inside the caller's session when
// one is bound to the context.
func (r *BookingRepository) OpenOverlapping(ctx context.Context, propertyID domainproperty.ID, dr domainrange.DateRange) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"property_id":     string(propertyID),
		"status":          bson.M{"$in": []string{string(domainbooking.StatusPending), string(domainbooking.StatusConfirmed)}},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
	return r.list(ctx, filter)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cursor.Err()
}

type bookingDocument struct {
	ID                 string            `bson:"_id"`
	PropertyID         string            `bson:"property_id"`
	GuestID            string            `bson:"guest_id"`
	HostID             string            `bson:"host_id"`
	Range              rangeDocument     `bson:"range"`
	Guests             int               `bson:"guests"`
	TotalNights        int               `bson:"total_nights"`
	Price              breakdownDocument `bson:"price"`
	Status             string            `bson:"status"`
	Open               bool              `bson:"open"`
	ReservedNights     []string          `bson:"reserved_nights,omitempty"`
	Policy             policyDocument    `bson:"cancellation_policy"`
	CancellationReason string            `bson:"cancellation_reason,omitempty"`
	CancellationDate   int64             `bson:"cancellation_date,omitempty"`
	Refund             moneyDocument     `bson:"refund"`
	Penalty            moneyDocument     `bson:"penalty"`
	CreatedAt          int64             `bson:"created_at"`
	UpdatedAt          int64             `bson:"updated_at"`
	Version            int64             `bson:"version"`
}

type policyDocument struct {
	FreeUntil          int64 `bson:"free_until,omitempty"`
	PreCheckInPercent  int   `bson:"pre_check_in_percent"`
	PostCheckInPercent int   `bson:"post_check_in_percent"`
}

func newPolicyDocument(p domainbooking.CancellationPolicy) policyDocument {
	doc := policyDocument{
		PreCheckInPercent:  p.PreCheckInPenaltyPercent,
		PostCheckInPercent: p.PostCheckInPenaltyPercent,
	}
	if !p.FreeCancellationUntil.IsZero() {
		doc.FreeUntil = p.FreeCancellationUntil.UnixMilli()
	}
	return doc
}

func (d policyDocument) toPolicy() domainbooking.CancellationPolicy {
	p := domainbooking.CancellationPolicy{
		PreCheckInPenaltyPercent:  d.PreCheckInPercent,
		PostCheckInPenaltyPercent: d.PostCheckInPercent,
	}
	if d.FreeUntil != 0 {
		p.FreeCancellationUntil = timestampToTime(d.FreeUntil)
	}
	return p
}

type breakdownDocument struct {
	Nights         int           `bson:"nights"`
	BasePrice      moneyDocument `bson:"base_price"`
	BaseTotal      moneyDocument `bson:"base_total"`
	DiscountType   string        `bson:"discount_type"`
	DiscountAmount moneyDocument `bson:"discount_amount"`
	CleaningFee    moneyDocument `bson:"cleaning_fee"`
	ServiceFee     moneyDocument `bson:"service_fee"`
	TaxRatePercent int           `bson:"tax_rate_percent"`
	TaxAmount      moneyDocument `bson:"tax_amount"`
	Total          moneyDocument `bson:"total"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:                 string(b.ID),
		PropertyID:         string(b.PropertyID),
		GuestID:            b.GuestID,
		HostID:             b.HostID,
		Range:              rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:             b.Guests,
		TotalNights:        b.TotalNights,
		Price:              newBreakdownDocument(b.Price),
		Status:             string(b.Status),
		Open:               b.Status.Open(),
		Policy:             newPolicyDocument(b.Policy),
		CancellationReason: b.CancellationReason,
		Refund:             newMoneyDocument(b.RefundAmount),
		Penalty:            newMoneyDocument(b.PenaltyAmount),
		CreatedAt:          b.CreatedAt.UnixMilli(),
		UpdatedAt:          b.UpdatedAt.UnixMilli(),
		Version:            b.Version,
	}
	if doc.Open {
		doc.ReservedNights = nightKeys(b.Range)
	}
	if !b.CancellationDate.IsZero() {
		doc.CancellationDate = b.CancellationDate.UnixMilli()
	}
	return doc
}

// nightKeys enumerates the stay's nights as day strings, one index entry per
// night. The half-open range keeps back-to-back stays from sharing a key.
func nightKeys(dr domainrange.DateRange) []string {
	keys := make([]string, 0, dr.Nights())
	for d := domainrange.Day(dr.CheckIn); d.Before(dr.CheckOut); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format("2006-01-02"))
	}
	return keys
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	agg := &domainbooking.Booking{
		ID:                 domainbooking.ID(d.ID),
		PropertyID:         domainproperty.ID(d.PropertyID),
		GuestID:            d.GuestID,
		HostID:             d.HostID,
		Range:              domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:             d.Guests,
		TotalNights:        d.TotalNights,
		Price:              d.Price.toBreakdown(),
		Status:             domainbooking.Status(d.Status),
		Policy:             d.Policy.toPolicy(),
		CancellationReason: d.CancellationReason,
		RefundAmount:       d.Refund.toMoney(),
		PenaltyAmount:      d.Penalty.toMoney(),
		CreatedAt:          timestampToTime(d.CreatedAt),
		UpdatedAt:          timestampToTime(d.UpdatedAt),
		Version:            d.Version,
	}
	if d.CancellationDate != 0 {
		agg.CancellationDate = timestampToTime(d.CancellationDate)
	}
	return agg
}

func newBreakdownDocument(b domainpricing.Breakdown) breakdownDocument {
	return breakdownDocument{
		Nights:         b.Nights,
		BasePrice:      newMoneyDocument(b.BasePrice),
		BaseTotal:      newMoneyDocument(b.BaseTotal),
		DiscountType:   string(b.DiscountType),
		DiscountAmount: newMoneyDocument(b.DiscountAmount),
		CleaningFee:    newMoneyDocument(b.CleaningFee),
		ServiceFee:     newMoneyDocument(b.ServiceFee),
		TaxRatePercent: b.TaxRatePercent,
		TaxAmount:      newMoneyDocument(b.TaxAmount),
		Total:          newMoneyDocument(b.Total),
	}
}

func (d breakdownDocument) toBreakdown() domainpricing.Breakdown {
	return domainpricing.Breakdown{
		Nights:         d.Nights,
		BasePrice:      d.BasePrice.toMoney(),
		BaseTotal:      d.BaseTotal.toMoney(),
		DiscountType:   domainpricing.DiscountType(d.DiscountType),
		DiscountAmount: d.DiscountAmount.toMoney(),
		CleaningFee:    d.CleaningFee.toMoney(),
		ServiceFee:     d.ServiceFee.toMoney(),
		TaxRatePercent: d.TaxRatePercent,
		TaxAmount:      d.TaxAmount.toMoney(),
		Total:          d.Total.toMoney(),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
