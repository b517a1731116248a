package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/dto"
	"bookingengine/internal/app/enrich"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/ports"
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
)

const RequestBookingKey = "booking.request"

var (
	ErrWriterMissing    = errors.New("bookings: booking writer not configured")
	ErrDatesUnavailable = errors.New("bookings: requested dates are already taken")
)

type RequestBookingCommand struct {
	AccommodationID string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return RequestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &dto.Booking{} }

func (c RequestBookingCommand) Validate() error {
	if strings.TrimSpace(c.AccommodationID) == "" {
		return errors.New("accommodation id is required")
	}
	if strings.TrimSpace(c.GuestID) == "" {
		return errors.New("guest id is required")
	}
	return nil
}

// RequestBookingHandler checks the stay against the accommodation's occupied
// days and forwards it upstream. Bookings is optional; without it the
// availability check is left to the upstream API. Events failures are logged
// and never fail the request.
type RequestBookingHandler struct {
	Bookings ports.BookingSource
	Writer   ports.BookingWriter
	Events   ports.EventPublisher
	Enricher *enrich.Enricher
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (dto.Booking, error) {
	if err := cmd.Validate(); err != nil {
		return dto.Booking{}, err
	}
	if h.Writer == nil {
		return dto.Booking{}, ErrWriterMissing
	}
	now := handlersupport.Now(h.Now)

	req := domainbooking.Request{
		AccommodationID: domainbooking.AccommodationID(strings.TrimSpace(cmd.AccommodationID)),
		GuestID:         strings.TrimSpace(cmd.GuestID),
		Range:           daterange.DateRange{CheckIn: cmd.CheckIn, CheckOut: cmd.CheckOut},
		Guests:          cmd.Guests,
	}
	if err := req.Validate(now); err != nil {
		return dto.Booking{}, fmt.Errorf("%w: %w", middleware.ErrInvalidArgument, err)
	}

	if h.Bookings != nil {
		existing, err := h.Bookings.ByAccommodation(ctx, req.AccommodationID)
		if err != nil {
			return dto.Booking{}, err
		}
		occupied := domainavailability.OccupiedDates(domainavailability.Holding(domainbooking.NormalizeAll(existing)))
		if occupied.Blocks(req.Range) {
			return dto.Booking{}, ErrDatesUnavailable
		}
	}

	created, err := h.Writer.CreateBooking(ctx, req)
	if err != nil {
		return dto.Booking{}, err
	}
	created = h.Enricher.Enrich(ctx, domainbooking.Normalize(created))

	if h.Events != nil {
		ev := domainbooking.Requested{
			BookingID:       created.ID,
			AccommodationID: created.AccommodationID,
			GuestID:         created.GuestID,
			CheckIn:         daterange.DayKey(created.Range.CheckIn),
			CheckOut:        daterange.DayKey(created.Range.CheckOut),
			Guests:          created.Guests,
			At:              now,
		}
		if err := h.Events.Publish(ctx, ev); err != nil && h.Logger != nil {
			h.Logger.Warn("booking event not published", "booking_id", created.ID, "err", err)
		}
	}
	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", created.ID, "accommodation_id", req.AccommodationID, "nights", req.Range.Nights())
	}
	return dto.MapBooking(created, now), nil
}

var (
	_ commands.Handler[RequestBookingCommand, dto.Booking] = (*RequestBookingHandler)(nil)
	_ middleware.IdempotentCommand                         = RequestBookingCommand{}
)
