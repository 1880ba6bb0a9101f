// Package fetch retrieves company profile and financial statement data from
// the remote provider's quoteSummary API.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"public_diligence/pkg/core/config"
	"public_diligence/pkg/core/logger"
	"public_diligence/pkg/models"
)

// profileModules are flattened, in this order, into the Overview profile.
var profileModules = []string{
	"assetProfile",
	"summaryDetail",
	"financialData",
	"defaultKeyStatistics",
}

// statementModules are the six history tables the report renders.
var statementModules = []string{
	"incomeStatementHistory",
	"incomeStatementHistoryQuarterly",
	"balanceSheetHistory",
	"balanceSheetHistoryQuarterly",
	"cashflowStatementHistory",
	"cashflowStatementHistoryQuarterly",
}

// currencyKey is the profile attribute carrying the reporting currency.
const currencyKey = "financialCurrency"

// quoteSummaryEnvelope is the provider's top-level response shape. Modules
// are kept raw so their key order can be preserved during flattening.
type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fetcher retrieves FinancialRecords from the quoteSummary API. The fetch is
// atomic: either a full record is produced or none is. No retries, no
// backoff.
type Fetcher struct {
	quoteURL   string
	userAgent  string
	httpClient *http.Client
}

// New creates a Fetcher against the configured quote endpoint.
func New(cfg config.ProviderConfig) *Fetcher {
	return &Fetcher{
		quoteURL:  cfg.QuoteURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// Fetch retrieves the profile and all six statement tables for ticker in one
// logical call.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) (*models.FinancialRecord, error) {
	modules := append(append([]string{}, profileModules...), statementModules...)
	reqURL := fmt.Sprintf("%s/%s?modules=%s",
		f.quoteURL, url.PathEscape(ticker), strings.Join(modules, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d for %s", resp.StatusCode, ticker)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response for %s: %w", ticker, err)
	}

	var envelope quoteSummaryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse quote response for %s: %w", ticker, err)
	}
	if envelope.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s", ticker, envelope.QuoteSummary.Error.Description)
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("provider returned no data for %s", ticker)
	}

	record := buildRecord(envelope.QuoteSummary.Result[0])

	logger.Log.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"currency": record.Currency,
		"profile":  len(record.Profile),
	}).Info("Fetched financial record")

	return record, nil
}

// buildRecord assembles a FinancialRecord from the raw module map.
func buildRecord(result map[string]json.RawMessage) *models.FinancialRecord {
	record := &models.FinancialRecord{Currency: "Unknown"}

	for _, module := range profileModules {
		raw, ok := result[module]
		if !ok {
			continue
		}
		record.Profile = append(record.Profile, flattenModule(raw)...)
	}

	for _, attr := range record.Profile {
		if attr.Key == currencyKey {
			if currency, ok := attr.Value.(string); ok && currency != "" {
				record.Currency = currency
			}
			break
		}
	}

	record.Income = buildTable(result["incomeStatementHistory"])
	record.QuarterlyIncome = buildTable(result["incomeStatementHistoryQuarterly"])
	record.Balance = buildTable(result["balanceSheetHistory"])
	record.QuarterlyBalance = buildTable(result["balanceSheetHistoryQuarterly"])
	record.Cashflow = buildTable(result["cashflowStatementHistory"])
	record.QuarterlyCashflow = buildTable(result["cashflowStatementHistoryQuarterly"])

	return record
}
