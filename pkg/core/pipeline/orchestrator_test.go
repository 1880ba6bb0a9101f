package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"public_diligence/pkg/core/report"
	"public_diligence/pkg/models"
)

// --- Mocks ---

type MockProvider struct {
	ResolveTickerFunc   func(ctx context.Context, companyName string) (string, error)
	FetchFinancialsFunc func(ctx context.Context, ticker string) (*models.FinancialRecord, error)

	ResolveCalls []string
	FetchCalls   []string
}

func (m *MockProvider) ResolveTicker(ctx context.Context, companyName string) (string, error) {
	m.ResolveCalls = append(m.ResolveCalls, companyName)
	if m.ResolveTickerFunc != nil {
		return m.ResolveTickerFunc(ctx, companyName)
	}
	return "TEST", nil
}

func (m *MockProvider) FetchFinancials(ctx context.Context, ticker string) (*models.FinancialRecord, error) {
	m.FetchCalls = append(m.FetchCalls, ticker)
	if m.FetchFinancialsFunc != nil {
		return m.FetchFinancialsFunc(ctx, ticker)
	}
	return &models.FinancialRecord{Currency: "USD"}, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testBuilder() *report.Builder {
	return report.NewBuilderWithClock(fixedClock{t: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)})
}

func cannedRecord() *models.FinancialRecord {
	revenue := 100000000.0
	return &models.FinancialRecord{
		Currency: "USD",
		Profile:  []models.ProfileAttribute{{Key: "sector", Value: "Technology"}},
		Income: models.StatementTable{
			Periods: []string{"2024-09-28"},
			Rows:    []models.StatementRow{{Label: "Total Revenue", Values: []*float64{&revenue}}},
		},
	}
}

// --- Tests ---

func TestRunBatch_TwoCompanies(t *testing.T) {
	tickers := map[string]string{"Apple": "AAPL", "Microsoft": "MSFT"}
	provider := &MockProvider{
		ResolveTickerFunc: func(ctx context.Context, name string) (string, error) {
			return tickers[name], nil
		},
		FetchFinancialsFunc: func(ctx context.Context, ticker string) (*models.FinancialRecord, error) {
			return cannedRecord(), nil
		},
	}

	o := NewWithBuilder(provider, testBuilder())
	outcomes := o.RunBatch(context.Background(), []string{"Apple", "Microsoft"})

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	wantFiles := []string{
		"AAPL_public_diligence_20240115.xlsx",
		"MSFT_public_diligence_20240115.xlsx",
	}
	for i, outcome := range outcomes {
		if !outcome.Succeeded() {
			t.Fatalf("outcome %d failed: %v", i, outcome.Err)
		}
		if outcome.Report == nil {
			t.Fatalf("outcome %d has no report", i)
		}
		if outcome.Report.FileName != wantFiles[i] {
			t.Errorf("outcome %d file name = %s, want %s", i, outcome.Report.FileName, wantFiles[i])
		}
	}
}

func TestRunBatch_NotFoundSkipsFetch(t *testing.T) {
	provider := &MockProvider{
		ResolveTickerFunc: func(ctx context.Context, name string) (string, error) {
			return "", errors.New("no equity match")
		},
	}

	o := NewWithBuilder(provider, testBuilder())
	outcomes := o.RunBatch(context.Background(), []string{"Zzzznotarealcompany123"})

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	outcome := outcomes[0]
	if outcome.Succeeded() {
		t.Fatal("expected a failed outcome")
	}
	if outcome.Stage != StageResolve {
		t.Errorf("stage = %s, want %s", outcome.Stage, StageResolve)
	}
	var resErr *ResolutionError
	if !errors.As(outcome.Err, &resErr) {
		t.Errorf("expected ResolutionError, got %T", outcome.Err)
	}
	if outcome.Notice() != "Ticker not found for Zzzznotarealcompany123" {
		t.Errorf("unexpected notice: %q", outcome.Notice())
	}
	if len(provider.FetchCalls) != 0 {
		t.Errorf("fetch should not be attempted after NotFound, got %d calls", len(provider.FetchCalls))
	}
}

func TestRunBatch_FailureNeverAbortsBatch(t *testing.T) {
	provider := &MockProvider{
		ResolveTickerFunc: func(ctx context.Context, name string) (string, error) {
			if name == "Ghost Corp" {
				return "", errors.New("no equity match")
			}
			return "TICK", nil
		},
		FetchFinancialsFunc: func(ctx context.Context, ticker string) (*models.FinancialRecord, error) {
			return nil, fmt.Errorf("provider returned status 500")
		},
	}

	o := NewWithBuilder(provider, testBuilder())
	names := []string{"Ghost Corp", "Broken Inc", "Also Broken"}
	outcomes := o.RunBatch(context.Background(), names)

	// Batch processing is total: N names, N outcomes, no early exit.
	if len(outcomes) != len(names) {
		t.Fatalf("expected %d outcomes, got %d", len(names), len(outcomes))
	}
	if outcomes[0].Stage != StageResolve {
		t.Errorf("outcome 0 stage = %s, want %s", outcomes[0].Stage, StageResolve)
	}
	for i := 1; i < 3; i++ {
		if outcomes[i].Stage != StageFetch {
			t.Errorf("outcome %d stage = %s, want %s", i, outcomes[i].Stage, StageFetch)
		}
		var fetchErr *FetchError
		if !errors.As(outcomes[i].Err, &fetchErr) {
			t.Errorf("outcome %d: expected FetchError, got %T", i, outcomes[i].Err)
		}
		if outcomes[i].Report != nil {
			t.Errorf("outcome %d: failed company must not produce a report", i)
		}
	}
}

func TestRunBatch_SequentialOrder(t *testing.T) {
	provider := &MockProvider{}
	o := NewWithBuilder(provider, testBuilder())

	names := []string{"One", "Two", "Three"}
	o.RunBatch(context.Background(), names)

	if len(provider.ResolveCalls) != 3 {
		t.Fatalf("expected 3 resolve calls, got %d", len(provider.ResolveCalls))
	}
	for i, name := range names {
		if provider.ResolveCalls[i] != name {
			t.Errorf("resolve call %d = %s, want %s", i, provider.ResolveCalls[i], name)
		}
	}
}

func TestSplitCompanies(t *testing.T) {
	got := SplitCompanies(" Apple, Microsoft ,,  ")
	if len(got) != 2 || got[0] != "Apple" || got[1] != "Microsoft" {
		t.Errorf("unexpected split: %#v", got)
	}
	if names := SplitCompanies("   "); names != nil {
		t.Errorf("blank input should yield no names, got %#v", names)
	}
}
