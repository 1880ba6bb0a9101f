package pipeline

import (
	"context"

	"public_diligence/pkg/core/config"
	"public_diligence/pkg/core/fetch"
	"public_diligence/pkg/core/resolver"
	"public_diligence/pkg/models"
)

// LiveProvider binds the real search and quoteSummary clients to the Provider
// capability.
type LiveProvider struct {
	resolver *resolver.Resolver
	fetcher  *fetch.Fetcher
}

var _ Provider = (*LiveProvider)(nil)

// NewLiveProvider creates the production provider from the configured
// endpoints.
func NewLiveProvider(cfg config.ProviderConfig) *LiveProvider {
	return &LiveProvider{
		resolver: resolver.New(cfg),
		fetcher:  fetch.New(cfg),
	}
}

func (p *LiveProvider) ResolveTicker(ctx context.Context, companyName string) (string, error) {
	return p.resolver.Resolve(ctx, companyName)
}

func (p *LiveProvider) FetchFinancials(ctx context.Context, ticker string) (*models.FinancialRecord, error) {
	return p.fetcher.Fetch(ctx, ticker)
}
