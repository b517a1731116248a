package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/money"
)

const accommodationsCollection = "accommodations"

type AccommodationStore struct {
	col *mongo.Collection
}

func NewAccommodationStore(ctx context.Context, db *mongo.Database) *AccommodationStore {
	col := db.Collection(accommodationsCollection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "host_id", Value: 1}}})
	return &AccommodationStore{col: col}
}

func (s *AccommodationStore) HostAccommodations(ctx context.Context, host listings.HostID) ([]listings.Accommodation, error) {
	return s.find(ctx, bson.M{"host_id": string(host)})
}

func (s *AccommodationStore) Accommodations(ctx context.Context) ([]listings.Accommodation, error) {
	return s.find(ctx, bson.M{})
}

func (s *AccommodationStore) Summary(ctx context.Context, id booking.AccommodationID) (booking.AccommodationSummary, error) {
	acc, err := s.byID(ctx, id)
	if err != nil {
		return booking.AccommodationSummary{}, err
	}
	return acc.Summary(), nil
}

func (s *AccommodationStore) AverageRating(ctx context.Context, id booking.AccommodationID) (float64, error) {
	acc, err := s.byID(ctx, id)
	if err != nil {
		return 0, err
	}
	return acc.AverageRating, nil
}

func (s *AccommodationStore) byID(ctx context.Context, id booking.AccommodationID) (listings.Accommodation, error) {
	var doc accommodationDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return listings.Accommodation{}, fmt.Errorf("%w: accommodation %s", ports.ErrNotFound, id)
		}
		return listings.Accommodation{}, err
	}
	return doc.toAccommodation(), nil
}

func (s *AccommodationStore) find(ctx context.Context, filter bson.M) ([]listings.Accommodation, error) {
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []accommodationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]listings.Accommodation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAccommodation())
	}
	return out, nil
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

type imageDocument struct {
	URL       string `bson:"url"`
	Principal bool   `bson:"principal"`
}

type accommodationDocument struct {
	ID            string          `bson:"_id"`
	HostID        string          `bson:"host_id"`
	Title         string          `bson:"title"`
	Description   string          `bson:"description,omitempty"`
	City          string          `bson:"city"`
	Address       string          `bson:"address,omitempty"`
	Lat           float64         `bson:"lat"`
	Lon           float64         `bson:"lon"`
	NightlyPrice  moneyDocument   `bson:"nightly_price"`
	Capacity      int             `bson:"capacity"`
	Services      []string        `bson:"services"`
	Images        []imageDocument `bson:"images"`
	State         string          `bson:"state"`
	AverageRating float64         `bson:"average_rating"`
}

func (d accommodationDocument) toAccommodation() listings.Accommodation {
	images := make([]listings.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, listings.Image{URL: img.URL, Principal: img.Principal})
	}
	price := money.Zero(d.NightlyPrice.Currency)
	price.Amount = d.NightlyPrice.Amount
	return listings.Accommodation{
		ID:            booking.AccommodationID(d.ID),
		Host:          listings.HostID(d.HostID),
		Title:         d.Title,
		Description:   d.Description,
		Location:      listings.Location{Address: d.Address, City: d.City, Lat: d.Lat, Lon: d.Lon},
		NightlyPrice:  price,
		Capacity:      max(d.Capacity, 1),
		Services:      listings.ParseServices(d.Services),
		Images:        images,
		State:         listings.ParseState(d.State),
		AverageRating: d.AverageRating,
	}
}

var (
	_ ports.HostCatalog         = (*AccommodationStore)(nil)
	_ ports.Catalog             = (*AccommodationStore)(nil)
	_ ports.AccommodationLookup = (*AccommodationStore)(nil)
	_ ports.RatingSource        = (*AccommodationStore)(nil)
)
