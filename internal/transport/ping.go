package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/askline/askline/internal/metrics"
)

// Pinger checks that an inference endpoint is reachable. Used by the
// readiness handler, never by the request path.
type Pinger struct {
	URL        string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewPinger(url string) *Pinger {
	return &Pinger{
		URL:     url,
		Timeout: 1 * time.Second,
		HTTPClient: &http.Client{
			Timeout: 1 * time.Second,
		},
	}
}

func (p *Pinger) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	to := p.Timeout
	if to <= 0 {
		to = 1 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: to}
	}

	resp, err := retryHTTP(ctx, 3, 50*time.Millisecond, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
		if err != nil {
			return nil, err
		}
		return httpClient.Do(req)
	})
	if err != nil {
		metrics.Pings.Inc(map[string]string{"outcome": "error"})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.Pings.Inc(map[string]string{"outcome": "error"})
		return fmt.Errorf("endpoint ping failed: status %d", resp.StatusCode)
	}
	metrics.Pings.Inc(map[string]string{"outcome": "ok"})
	return nil
}
