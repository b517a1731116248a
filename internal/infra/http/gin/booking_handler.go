package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/dto"
	bookingsapp "bookingengine/internal/app/handlers/bookings"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/domain/shared/daterange"
)

type BookingHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
}

type requestBookingBody struct {
	AccommodationID string `json:"accommodation_id" binding:"required"`
	GuestID         string `json:"guest_id" binding:"required"`
	CheckIn         string `json:"check_in" binding:"required"`
	CheckOut        string `json:"check_out" binding:"required"`
	Guests          int    `json:"guests"`
}

func (h BookingHandler) GuestBookings(c *gin.Context) {
	filter, err := bookingFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	pageIndex, size, err := pageQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	query := bookingsapp.ListGuestBookingsQuery{GuestID: c.Param("id"), Filter: filter, Page: pageIndex, PageSize: size}
	result, err := queries.Ask[bookingsapp.ListGuestBookingsQuery, dto.BookingPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) HostBookings(c *gin.Context) {
	filter, err := bookingFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	pageIndex, size, err := pageQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	query := bookingsapp.ListHostBookingsQuery{HostID: c.Param("id"), Filter: filter, Page: pageIndex, PageSize: size}
	result, err := queries.Ask[bookingsapp.ListHostBookingsQuery, dto.BookingPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Request accepts a reservation. A repeated Idempotency-Key replays the first
// successful answer.
func (h BookingHandler) Request(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var body requestBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, okIn := daterange.Parse(body.CheckIn)
	checkOut, okOut := daterange.Parse(body.CheckOut)
	if !okIn || !okOut {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in and check_out must be dates"})
		return
	}
	cmd := bookingsapp.RequestBookingCommand{
		AccommodationID: body.AccommodationID,
		GuestID:         body.GuestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          body.Guests,
		IdempotencyKeyV: c.GetHeader(IdempotencyHeader),
	}
	result, err := commands.Dispatch[bookingsapp.RequestBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ BookingHTTP = BookingHandler{}
