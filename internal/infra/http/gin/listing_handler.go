package ginserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/dto"
	listingsapp "bookingengine/internal/app/handlers/listings"
	"bookingengine/internal/app/queries"
	domainlistings "bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/money"
)

type ListingHandler struct {
	Queries queries.Bus
}

// Search filters the public catalog. Prices are in major units; services may
// repeat or be comma separated; active=false includes deleted listings.
func (h ListingHandler) Search(c *gin.Context) {
	filter, err := searchFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	pageIndex, size, err := pageQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}
	query := listingsapp.SearchQuery{Filter: filter, Page: pageIndex, PageSize: size}
	result, err := queries.Ask[listingsapp.SearchQuery, dto.ListingPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func searchFilter(c *gin.Context) (domainlistings.SearchFilter, error) {
	minCents, err := priceQuery(c, "price_min")
	if err != nil {
		return domainlistings.SearchFilter{}, err
	}
	maxCents, err := priceQuery(c, "price_max")
	if err != nil {
		return domainlistings.SearchFilter{}, err
	}
	checkIn, err := dateQuery(c, "check_in")
	if err != nil {
		return domainlistings.SearchFilter{}, err
	}
	checkOut, err := dateQuery(c, "check_out")
	if err != nil {
		return domainlistings.SearchFilter{}, err
	}
	var services []domainlistings.Service
	for _, s := range listQuery(c, "services") {
		services = append(services, domainlistings.ParseService(s))
	}
	return domainlistings.SearchFilter{
		City:          c.Query("city"),
		PriceMinCents: minCents,
		PriceMaxCents: maxCents,
		Services:      services,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		OnlyActive:    !strings.EqualFold(strings.TrimSpace(c.Query("active")), "false"),
	}, nil
}

func priceQuery(c *gin.Context, key string) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errParam, key, raw)
	}
	return money.FromMajor(v, "").Amount, nil
}

var _ ListingHTTP = ListingHandler{}
