package driven

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alorle/iptv-collector/internal/probe"
)

// HTTPReachabilityChecker implements the ReachabilityChecker port with a
// plain GET that only looks at the status line.
type HTTPReachabilityChecker struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPReachabilityChecker creates a checker whose requests give up after timeout.
// ratePerSecond limits request starts across all callers; 0 disables limiting.
func NewHTTPReachabilityChecker(timeout time.Duration, ratePerSecond float64) *HTTPReachabilityChecker {
	c := &HTTPReachabilityChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
	if ratePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), max(1, int(ratePerSecond)))
	}
	return c
}

// SetHTTPClient allows replacing the default HTTP client.
func (c *HTTPReachabilityChecker) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Check returns nil only for a 200 OK answer. The body is never read.
func (c *HTTPReachabilityChecker) Check(ctx context.Context, rawURL string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach stream: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", probe.ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
