package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/page"
)

const bookingsCollection = "bookings"

type BookingStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewBookingStore(ctx context.Context, db *mongo.Database) *BookingStore {
	col := db.Collection(bookingsCollection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "accommodation_id", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return &BookingStore{col: col, now: time.Now}
}

func (s *BookingStore) ByAccommodation(ctx context.Context, id booking.AccommodationID) ([]booking.Booking, error) {
	cur, err := s.col.Find(ctx, bson.M{"accommodation_id": string(id)})
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return toBookings(docs), nil
}

// ByGuest pages on the server, newest first.
func (s *BookingStore) ByGuest(ctx context.Context, q ports.GuestPage) (page.Page[booking.Booking], error) {
	pageIndex := max(q.Page, 1)
	size := q.Size
	if size < 1 {
		size = page.DefaultSize
	}
	filter := guestFilter(q)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return page.Page[booking.Booking]{}, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "range.check_in", Value: -1}}).
		SetSkip(int64((pageIndex - 1) * size)).
		SetLimit(int64(size))
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return page.Page[booking.Booking]{}, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return page.Page[booking.Booking]{}, err
	}
	return page.Page[booking.Booking]{
		Items:      toBookings(docs),
		Page:       pageIndex,
		PageSize:   size,
		Total:      int(total),
		TotalPages: page.CountPages(int(total), size),
	}, nil
}

// CreateBooking stores the request as a pending booking with a fresh id.
func (s *BookingStore) CreateBooking(ctx context.Context, req booking.Request) (booking.Booking, error) {
	b, err := booking.New(booking.CreateParams{
		ID:              booking.BookingID(uuid.NewString()),
		AccommodationID: req.AccommodationID,
		GuestID:         req.GuestID,
		Range:           req.Range,
		Guests:          req.Guests,
		Status:          booking.StatusPending,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return booking.Booking{}, err
	}
	if _, err := s.col.InsertOne(ctx, newBookingDocument(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return booking.Booking{}, fmt.Errorf("mongo: booking %s already stored", b.ID)
		}
		return booking.Booking{}, err
	}
	return b, nil
}

func guestFilter(q ports.GuestPage) bson.M {
	filter := bson.M{"guest_id": q.GuestID}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}
	return filter
}

type rangeDocument struct {
	CheckIn  string `bson:"check_in"`
	CheckOut string `bson:"check_out"`
}

type guestDocument struct {
	Name  string `bson:"name,omitempty"`
	Email string `bson:"email,omitempty"`
}

// bookingDocument keeps stay days as ISO calendar days so a stored stay never
// moves with the reader's time zone.
type bookingDocument struct {
	ID              string         `bson:"_id"`
	AccommodationID string         `bson:"accommodation_id"`
	GuestID         string         `bson:"guest_id"`
	Range           rangeDocument  `bson:"range"`
	Guests          int            `bson:"guests"`
	Status          string         `bson:"status"`
	Guest           *guestDocument `bson:"guest,omitempty"`
	CreatedAt       int64          `bson:"created_at"`
}

func newBookingDocument(b booking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:              string(b.ID),
		AccommodationID: string(b.AccommodationID),
		GuestID:         b.GuestID,
		Range:           rangeDocument{CheckIn: daterange.DayKey(b.Range.CheckIn), CheckOut: daterange.DayKey(b.Range.CheckOut)},
		Guests:          b.Guests,
		Status:          string(b.Status),
	}
	if !b.CreatedAt.IsZero() {
		doc.CreatedAt = b.CreatedAt.UnixMilli()
	}
	if b.Guest != nil {
		doc.Guest = &guestDocument{Name: b.Guest.Name, Email: b.Guest.Email}
	}
	return doc
}

var errBadRange = errors.New("mongo: stored booking has unreadable dates")

func (d bookingDocument) toBooking() (booking.Booking, error) {
	checkIn, okIn := daterange.Parse(d.Range.CheckIn)
	checkOut, okOut := daterange.Parse(d.Range.CheckOut)
	if !okIn || !okOut {
		return booking.Booking{}, fmt.Errorf("%w: %s", errBadRange, d.ID)
	}
	b := booking.Normalize(booking.Booking{
		ID:              booking.BookingID(d.ID),
		AccommodationID: booking.AccommodationID(d.AccommodationID),
		GuestID:         d.GuestID,
		Range:           daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut},
		Guests:          d.Guests,
		Status:          booking.Status(d.Status),
	})
	if d.CreatedAt != 0 {
		b.CreatedAt = timestampToTime(d.CreatedAt)
	}
	if d.Guest != nil {
		b.Guest = &booking.GuestSummary{Name: d.Guest.Name, Email: d.Guest.Email}
	}
	return b, nil
}

func toBookings(docs []bookingDocument) []booking.Booking {
	out := make([]booking.Booking, 0, len(docs))
	for _, d := range docs {
		b, err := d.toBooking()
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var (
	_ ports.BookingSource = (*BookingStore)(nil)
	_ ports.BookingWriter = (*BookingStore)(nil)
)
