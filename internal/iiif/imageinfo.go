package iiif

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// Dimensions assumed when the image server cannot be reached.
	defaultImageWidth  = 1000
	defaultImageHeight = 1000

	dimensionsTimeout = 5 * time.Second
	pageProbeTimeout  = 3 * time.Second

	// maxProbedPages caps sequential page probing for multi-page images.
	maxProbedPages = 100
)

// ImageClient probes a IIIF Image API server for pixel dimensions and page
// counts.
type ImageClient struct {
	baseURL string
	client  *http.Client
}

// NewImageClient returns a client for the image server at baseURL. A nil
// httpClient uses http.DefaultClient.
func NewImageClient(baseURL string, httpClient *http.Client) *ImageClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ImageClient{baseURL: baseURL, client: httpClient}
}

type imageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimensions returns the pixel size reported by the identifier's info.json.
// Failures fall back to 1000x1000 so manifest generation never blocks on a
// flaky image server.
func (c *ImageClient) Dimensions(ctx context.Context, identifier string) (int, int) {
	info, err := c.fetchInfo(ctx, identifier, dimensionsTimeout)
	if err != nil || info.Width <= 0 || info.Height <= 0 {
		return defaultImageWidth, defaultImageHeight
	}
	return info.Width, info.Height
}

// PageCount counts the pages of a multi-page image by probing meta
// identifiers ("identifier[page]") until one stops resolving. The base
// identifier itself always resolves as a page, so the count is one more
// than the number of meta identifiers that answer: an identifier whose
// "[1]" page resolves but whose "[2]" page does not has two pages, and an
// identifier with no resolving meta pages at all has one.
func (c *ImageClient) PageCount(ctx context.Context, identifier string) int {
	pages := 1
	for pages <= maxProbedPages {
		if _, err := c.fetchInfo(ctx, PageIdentifier(identifier, pages), pageProbeTimeout); err != nil {
			break
		}
		pages++
	}
	return pages
}

// PageIdentifier builds the meta identifier for one page of a multi-page
// image.
func PageIdentifier(identifier string, page int) string {
	return fmt.Sprintf("%s[%d]", identifier, page)
}

// InfoURL returns the Image API info.json URL for an identifier.
func (c *ImageClient) InfoURL(identifier string) string {
	return c.baseURL + "/" + url.PathEscape(identifier) + "/info.json"
}

// ImageURL returns the full-size image URL for an identifier.
func (c *ImageClient) ImageURL(identifier string) string {
	return c.baseURL + "/" + url.PathEscape(identifier) + "/full/max/0/default.jpg"
}

// ServiceID returns the Image API service base for an identifier.
func (c *ImageClient) ServiceID(identifier string) string {
	return c.baseURL + "/" + url.PathEscape(identifier)
}

func (c *ImageClient) fetchInfo(ctx context.Context, identifier string, timeout time.Duration) (imageInfo, error) {
	if c.baseURL == "" {
		return imageInfo{}, fmt.Errorf("no image server configured")
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.InfoURL(identifier), nil)
	if err != nil {
		return imageInfo{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return imageInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return imageInfo{}, fmt.Errorf("info.json: status %d", resp.StatusCode)
	}

	var info imageInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return imageInfo{}, fmt.Errorf("info.json: %w", err)
	}
	return info, nil
}

// ThumbnailHeight scales a thumbnail to 200 pixels wide, preserving the
// aspect ratio. Unknown widths fall back to a square 200 pixel box.
func ThumbnailHeight(width, height int) int {
	if width <= 0 {
		return 200
	}
	scaled := float64(height) * (200.0 / float64(width))
	return int(scaled + 0.5)
}
