package sdmx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BESSER-PEARL/statec-hackathon/internal/logger"
)

// Retrieval is synchronous with a bounded timeout and never retried; a
// failure aborts the current dataset only.
const defaultTimeout = 60 * time.Second

type Client struct {
	http *http.Client
	log  *logger.Logger
}

func NewClient(log *logger.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: defaultTimeout},
		log:  log.With("service", "SDMXClient"),
	}
}

func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	c.log.Info("Fetching document", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return body, nil
}
