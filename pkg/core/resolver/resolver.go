// Package resolver maps free-text company names to equity ticker symbols
// using the provider's public search endpoint.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"public_diligence/pkg/core/config"
	"public_diligence/pkg/core/logger"
)

// ErrTickerNotFound is returned when no equity entry matches the company
// name, for whatever reason (no match, network failure, malformed payload).
// Resolution failures are never fatal to a batch.
var ErrTickerNotFound = errors.New("ticker not found")

// searchResponse models the provider's search payload. Entries are
// heterogeneous (equities, ETFs, indices, news), so only the fields needed
// for equity selection are decoded.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		QuoteType string `json:"quoteType"`
		ShortName string `json:"shortname"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// Resolver looks up ticker symbols via a remote search service. Each call is
// independent and stateless: no retries, no caching.
type Resolver struct {
	searchURL  string
	userAgent  string
	httpClient *http.Client
}

// New creates a Resolver against the configured search endpoint.
func New(cfg config.ProviderConfig) *Resolver {
	return &Resolver{
		searchURL: cfg.SearchURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// Resolve returns the symbol of the first EQUITY entry in the search result
// for companyName. The first-match tie-break is deliberate: no fuzzy ranking
// and no disambiguation between dual listings.
func (r *Resolver) Resolve(ctx context.Context, companyName string) (string, error) {
	reqURL := fmt.Sprintf("%s?q=%s", r.searchURL, url.QueryEscape(companyName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrTickerNotFound, err)
	}

	// The provider rejects requests without a browser-like identity.
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: search request failed: %v", ErrTickerNotFound, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: search returned status %d", ErrTickerNotFound, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read search response: %v", ErrTickerNotFound, err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: failed to parse search response: %v", ErrTickerNotFound, err)
	}

	for _, quote := range result.Quotes {
		if quote.QuoteType == "EQUITY" && quote.Symbol != "" {
			logger.Log.WithFields(map[string]interface{}{
				"company": companyName,
				"ticker":  quote.Symbol,
			}).Info("Resolved ticker")
			return quote.Symbol, nil
		}
	}

	return "", fmt.Errorf("%w: no equity match for %q", ErrTickerNotFound, companyName)
}

// SetTimeout overrides the HTTP client timeout. Useful in tests.
func (r *Resolver) SetTimeout(d time.Duration) {
	r.httpClient.Timeout = d
}
