package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/updatelog/internal/models"
)

const probeSize = 512

// HTTPChecker checks items by fetching their URL.
//
// A transport error, a non-2xx status, or an unreadable body is a failure.
type HTTPChecker struct {
	client    *http.Client
	userAgent string
}

// NewHTTPChecker creates an HTTPChecker. A nil client uses [http.DefaultClient].
func NewHTTPChecker(client *http.Client, userAgent string) *HTTPChecker {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChecker{client: client, userAgent: userAgent}
}

func (c *HTTPChecker) Check(ctx context.Context, item *models.LibraryItem) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL(), nil)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return urlErr.Err
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, probeSize)); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return nil
}
