package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/commands"
	bookingsapp "bookingengine/internal/app/handlers/bookings"
	listingsapp "bookingengine/internal/app/handlers/listings"
	metricsapp "bookingengine/internal/app/handlers/metrics"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/infra/remote"
)

// errParam marks a malformed path or query parameter.
var errParam = errors.New("invalid parameter")

var unavailable = []error{
	bookingsapp.ErrCatalogMissing,
	bookingsapp.ErrWriterMissing,
	metricsapp.ErrCatalogMissing,
	metricsapp.ErrLookupMissing,
	metricsapp.ErrReportsMissing,
	listingsapp.ErrCatalogMissing,
	handlersupport.ErrSourceMissing,
	queries.ErrHandlerNotFound,
	commands.ErrHandlerNotFound,
	remote.ErrNotConfigured,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errParam),
		errors.Is(err, middleware.ErrInvalidArgument),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrInvalidGuests):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bookingsapp.ErrDatesUnavailable):
		return http.StatusConflict
	case errors.Is(err, remote.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, remote.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, remote.ErrUnavailable):
		return http.StatusBadGateway
	}
	for _, target := range unavailable {
		if errors.Is(err, target) {
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Server-side failures hide their
// cause from the client.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
