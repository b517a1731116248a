package obs

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check probes one dependency; nil means healthy.
type Check func(ctx context.Context) error

// HealthHandlers exposes liveness and readiness. Readiness runs every check
// with Timeout and reports each failing dependency by name.
type HealthHandlers struct {
	Checks  map[string]Check
	Timeout time.Duration
	// Queries lists the registered query keys, shown on readiness.
	Queries func() []string
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := gin.H{}
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	body := gin.H{"status": "ready"}
	if h.Queries != nil {
		body["queries"] = h.Queries()
	}
	if len(failures) > 0 {
		body["status"] = "not ready"
		body["failures"] = failures
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
