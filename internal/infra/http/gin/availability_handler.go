package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/dto"
	availabilityapp "bookingengine/internal/app/handlers/availability"
	"bookingengine/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Occupancy(c *gin.Context) {
	month, err := monthQuery(c, "month")
	if err != nil {
		writeError(c, err)
		return
	}
	query := availabilityapp.GetOccupancyQuery{AccommodationID: c.Param("id"), Month: month}
	result, err := queries.Ask[availabilityapp.GetOccupancyQuery, dto.Occupancy](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
