package speakerapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client sends command URLs to the speaker system's HTTP API. Responses are
// drained and discarded.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "speaker-remote",
	}
}

func (c *Client) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Close = true

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	n, _ := io.Copy(io.Discard, resp.Body)
	log.WithFields(log.Fields{
		"status": resp.StatusCode,
		"bytes":  n,
	}).Debug("speaker api response")

	if resp.StatusCode >= 400 {
		return fmt.Errorf("speaker API error: %d", resp.StatusCode)
	}
	return nil
}
