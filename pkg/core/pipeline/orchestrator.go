// Package pipeline drives one company at a time through ticker resolution,
// data fetching, and report building. Failures at any stage are reported and
// skipped; the batch always runs to completion.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"public_diligence/pkg/core/logger"
	"public_diligence/pkg/core/report"
	"public_diligence/pkg/models"
)

// Provider is the injected data-provider capability. Implementations wrap the
// live search and quoteSummary clients; tests supply canned records.
type Provider interface {
	ResolveTicker(ctx context.Context, companyName string) (string, error)
	FetchFinancials(ctx context.Context, ticker string) (*models.FinancialRecord, error)
}

// Stage identifies where in the per-company state machine processing stopped.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageBuild   Stage = "build"
	StageBuilt   Stage = "built"
)

// ResolutionError covers ticker lookup failures: no equity match, network
// failure, or malformed search payload.
type ResolutionError struct {
	Company string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("ticker not found for %s: %v", e.Company, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError covers any failure retrieving financial data for a resolved
// ticker. The fetch is atomic, so there is never a partial record to salvage.
type FetchError struct {
	Company string
	Ticker  string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch financial data for %s (%s): %v", e.Company, e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// BuildError covers normalization or serialization failures while assembling
// the report.
type BuildError struct {
	Company string
	Ticker  string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("could not build report for %s (%s): %v", e.Company, e.Ticker, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Outcome is the per-company result: either a Report or a stage-tagged error
// behind a user-visible notice. A batch of N names always yields N outcomes.
type Outcome struct {
	Company string
	Ticker  string
	Stage   Stage
	Report  *models.Report
	Err     error
}

// Succeeded reports whether the company reached the Built state.
func (o Outcome) Succeeded() bool {
	return o.Stage == StageBuilt && o.Err == nil
}

// Notice returns the user-visible message for a failed outcome. Empty for
// successes.
func (o Outcome) Notice() string {
	if o.Err == nil {
		return ""
	}
	switch o.Stage {
	case StageResolve:
		return fmt.Sprintf("Ticker not found for %s", o.Company)
	case StageFetch:
		return fmt.Sprintf("Could not fetch financial data for %s", o.Company)
	default:
		return fmt.Sprintf("Could not build report for %s", o.Company)
	}
}

// Orchestrator runs batches of companies through the diligence pipeline.
type Orchestrator struct {
	provider Provider
	builder  *report.Builder
}

// New creates an Orchestrator over the given provider, building reports with
// the system clock.
func New(provider Provider) *Orchestrator {
	return &Orchestrator{provider: provider, builder: report.NewBuilder()}
}

// NewWithBuilder creates an Orchestrator with an injected report builder
// (e.g. one carrying a fixed clock in tests).
func NewWithBuilder(provider Provider, builder *report.Builder) *Orchestrator {
	return &Orchestrator{provider: provider, builder: builder}
}

// SplitCompanies turns the shell's comma-separated input into trimmed,
// non-empty company names.
func SplitCompanies(input string) []string {
	var names []string
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// RunBatch processes each company independently and sequentially. One
// company's failure never aborts the batch.
func (o *Orchestrator) RunBatch(ctx context.Context, companyNames []string) []Outcome {
	outcomes := make([]Outcome, 0, len(companyNames))
	for _, name := range companyNames {
		outcomes = append(outcomes, o.runCompany(ctx, name))
	}
	return outcomes
}

// runCompany walks one company through the state machine:
// Resolving -> Fetching -> Building -> Built, stopping at the first failure.
func (o *Orchestrator) runCompany(ctx context.Context, companyName string) Outcome {
	ticker, err := o.provider.ResolveTicker(ctx, companyName)
	if err != nil {
		stageErr := &ResolutionError{Company: companyName, Err: err}
		logger.Log.WithFields(map[string]interface{}{
			"company": companyName,
			"stage":   StageResolve,
		}).Warn(stageErr.Error())
		return Outcome{Company: companyName, Stage: StageResolve, Err: stageErr}
	}

	record, err := o.provider.FetchFinancials(ctx, ticker)
	if err != nil {
		stageErr := &FetchError{Company: companyName, Ticker: ticker, Err: err}
		logger.Log.WithFields(map[string]interface{}{
			"company": companyName,
			"ticker":  ticker,
			"stage":   StageFetch,
		}).Warn(stageErr.Error())
		return Outcome{Company: companyName, Ticker: ticker, Stage: StageFetch, Err: stageErr}
	}

	rep, err := o.builder.Build(companyName, ticker, record)
	if err != nil {
		stageErr := &BuildError{Company: companyName, Ticker: ticker, Err: err}
		logger.Log.WithFields(map[string]interface{}{
			"company": companyName,
			"ticker":  ticker,
			"stage":   StageBuild,
		}).Warn(stageErr.Error())
		return Outcome{Company: companyName, Ticker: ticker, Stage: StageBuild, Err: stageErr}
	}

	return Outcome{Company: companyName, Ticker: ticker, Stage: StageBuilt, Report: rep}
}
