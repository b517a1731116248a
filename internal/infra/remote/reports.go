package remote

import (
	"context"
	"fmt"
	"net/url"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/metrics"
	"bookingengine/internal/domain/shared/daterange"
)

// HostReport fetches the dashboard the API computes itself. Window bounds are
// sent as ISO days when set.
func (c *Client) HostReport(ctx context.Context, host listings.HostID, window metrics.Window) (metrics.Metrics, error) {
	query := url.Values{}
	if !window.From.IsZero() {
		query.Set("from", daterange.DayKey(window.From))
	}
	if !window.To.IsZero() {
		query.Set("to", daterange.DayKey(window.To))
	}
	data, err := c.get(ctx, "/hosts/"+escape(string(host))+"/metrics", query)
	if err != nil {
		return metrics.Metrics{}, err
	}
	m, err := metrics.DecodeReport(data, c.Currency)
	if err != nil {
		return metrics.Metrics{}, fmt.Errorf("remote: host %s report: %w", host, err)
	}
	return m, nil
}

var _ ports.ReportSource = (*Client)(nil)
