package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"public_diligence/pkg/models"
)

func TestReportStore(t *testing.T) {
	s := NewReportStore()

	report := &models.Report{FileName: "AAPL_public_diligence_20240115.xlsx", Data: []byte("xlsx")}
	id := s.Put(report)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, report.FileName, got.FileName)

	s.Delete(id)
	assert.Equal(t, 0, s.Len())
	_, err = s.Get(id)
	assert.Error(t, err)
}

func TestReportStore_IndependentIDs(t *testing.T) {
	s := NewReportStore()
	a := s.Put(&models.Report{FileName: "a.xlsx"})
	b := s.Put(&models.Report{FileName: "b.xlsx"})
	assert.NotEqual(t, a, b)
}
