package ginserver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
)

const IdempotencyHeader = "Idempotency-Key"

// intQuery returns 0 for an absent parameter.
func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errParam, key, raw)
	}
	return n, nil
}

func pageQuery(c *gin.Context) (int, int, error) {
	pageIndex, err := intQuery(c, "page")
	if err != nil {
		return 0, 0, err
	}
	size, err := intQuery(c, "size")
	if err != nil {
		return 0, 0, err
	}
	return pageIndex, size, nil
}

func dateQuery(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := daterange.Parse(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s=%q", errParam, key, raw)
	}
	return t, nil
}

// monthQuery accepts YYYY-MM or any full date inside the month.
func monthQuery(c *gin.Context, key string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01", raw, time.Local); err == nil {
		return t, nil
	}
	return dateQuery(c, key)
}

func windowQuery(c *gin.Context) (time.Time, time.Time, error) {
	from, err := dateQuery(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func bookingFilter(c *gin.Context) (domainbooking.Filter, error) {
	from, to, err := windowQuery(c)
	if err != nil {
		return domainbooking.Filter{}, err
	}
	return domainbooking.Filter{
		Status: domainbooking.ParseStatus(c.Query("status")),
		From:   from,
		To:     to,
	}, nil
}

func listQuery(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
