package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/dto"
	metricsapp "bookingengine/internal/app/handlers/metrics"
	"bookingengine/internal/app/queries"
)

type MetricsHandler struct {
	Queries queries.Bus
}

func (h MetricsHandler) Accommodation(c *gin.Context) {
	from, to, err := windowQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	query := metricsapp.GetAccommodationMetricsQuery{AccommodationID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[metricsapp.GetAccommodationMetricsQuery, dto.AccommodationMetrics](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h MetricsHandler) Host(c *gin.Context) {
	from, to, err := windowQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	query := metricsapp.GetHostMetricsQuery{HostID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[metricsapp.GetHostMetricsQuery, dto.HostMetrics](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HostReport serves the dashboard precomputed upstream.
func (h MetricsHandler) HostReport(c *gin.Context) {
	from, to, err := windowQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	query := metricsapp.GetHostReportQuery{HostID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[metricsapp.GetHostReportQuery, dto.HostMetrics](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MetricsHTTP = MetricsHandler{}
