// Package barcode looks up product details for a UPC/EAN code in UPCitemDB.
package barcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the UPCitemDB trial lookup endpoint.
const DefaultBaseURL = "https://api.upcitemdb.com/prod/trial/lookup"

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound means the upstream answered but had no product for the code.
	ErrNotFound = errors.New("barcode: product not found")
	// ErrMalformed means the upstream answered with something we could not decode.
	ErrMalformed = errors.New("barcode: malformed response")
	// ErrUnavailable wraps transport failures and non-2xx answers.
	ErrUnavailable = errors.New("barcode: lookup service unavailable")
)

// Product is the subset of UPCitemDB fields used to prefill a catalog entry.
type Product struct {
	UPC          string `json:"upc"`
	Title        string `json:"title"`
	Brand        string `json:"brand"`
	Manufacturer string `json:"manufacturer"`
}

// Client queries UPCitemDB.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a lookup client. Empty baseURL and zero timeout fall
// back to the trial endpoint and DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Items   []Product `json:"items"`
}

// Lookup fetches the first product registered for upc.
func (c *Client) Lookup(ctx context.Context, upc string) (*Product, error) {
	upc = strings.TrimSpace(upc)
	if upc == "" {
		return nil, fmt.Errorf("barcode: empty code")
	}

	endpoint := c.baseURL + "?upc=" + url.QueryEscape(upc)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("barcode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("user_key", c.apiKey)
		req.Header.Set("key_type", "3scale")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Code != "OK" || len(payload.Items) == 0 {
		return nil, ErrNotFound
	}

	p := payload.Items[0]
	if p.UPC == "" {
		p.UPC = upc
	}
	return &p, nil
}
