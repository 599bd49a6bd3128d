// Package tiles implements the TileSource port by proxying a slippy-map tile
// server through an in-memory HTTP cache.
package tiles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TileSource = (*Client)(nil)

// DefaultURLTemplate is the public OpenStreetMap tile server.
const DefaultURLTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

const (
	userAgent   = "couplemap/1.0 (+https://github.com/impossibleiman/couplemap)"
	maxTileSize = 2 << 20
)

// Client fetches tiles from a URL template containing {z}, {x} and {y}.
type Client struct {
	http        *http.Client
	urlTemplate string
}

// NewClient creates a tile client whose responses are cached in memory
// according to the upstream cache headers.
func NewClient(urlTemplate string) *Client {
	return NewClientWithHTTPClient(&http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   15 * time.Second,
	}, urlTemplate)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing.
func NewClientWithHTTPClient(httpClient *http.Client, urlTemplate string) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Client{http: httpClient, urlTemplate: urlTemplate}
}

// FetchTile downloads the tile at zoom z, column x and row y. A 404 from the
// upstream maps to driven.ErrTileNotFound.
func (c *Client) FetchTile(ctx context.Context, z, x, y int) (*driven.Tile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tileURL(z, x, y), nil)
	if err != nil {
		return nil, fmt.Errorf("build tile request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %d/%d/%d: %w", z, x, y, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, driven.ErrTileNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch tile %d/%d/%d: upstream status %d", z, x, y, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileSize))
	if err != nil {
		return nil, fmt.Errorf("read tile %d/%d/%d: %w", z, x, y, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &driven.Tile{ContentType: contentType, Data: data}, nil
}

func (c *Client) tileURL(z, x, y int) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(c.urlTemplate)
}
