// Package store holds generated reports in memory so the HTTP shell can
// serve downloads after a batch returns. Nothing is persisted; reports live
// until the process exits.
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"public_diligence/pkg/models"
)

// ReportStore is a uuid-keyed in-memory report registry. Safe for concurrent
// handlers.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
}

// NewReportStore creates an empty store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[string]*models.Report),
	}
}

// Put registers a report and returns its download id.
func (s *ReportStore) Put(report *models.Report) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.reports[id] = report
	s.mu.Unlock()
	return id
}

// Get returns the report for id.
func (s *ReportStore) Get(id string) (*models.Report, error) {
	s.mu.RLock()
	report, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("report %s not found", id)
	}
	return report, nil
}

// Delete removes a report once the shell is done with it.
func (s *ReportStore) Delete(id string) {
	s.mu.Lock()
	delete(s.reports, id)
	s.mu.Unlock()
}

// Len returns the number of stored reports.
func (s *ReportStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
