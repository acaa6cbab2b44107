// Package pypi queries the PyPI JSON API for distribution metadata.
package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ben-ranford/reqtracker/internal/mapping"
)

// ErrNotFound indicates the distribution does not exist on the index.
var ErrNotFound = errors.New("package not found on index")

const defaultBaseURL = "https://pypi.org"

// Client talks to a PyPI-compatible JSON API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for the public index with a request timeout.
func NewClient() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LatestVersion fetches the latest released version of a distribution. The
// name is normalized before the request so any accepted spelling resolves to
// the same project page.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", c.BaseURL, url.PathEscape(mapping.Normalize(name)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query index for %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query index for %s: unexpected status %s", name, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read index response for %s: %w", name, err)
	}
	var payload struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode index response for %s: %w", name, err)
	}
	if payload.Info.Version == "" {
		return "", fmt.Errorf("index response for %s has no version", name)
	}
	return payload.Info.Version, nil
}
