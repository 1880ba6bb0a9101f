package models

import (
	"bytes"
	"io"
)

// ProfileAttribute is a single company profile entry (e.g. "sector": "Technology").
// Profile order follows the provider's wire order, so the profile is a slice,
// not a map.
type ProfileAttribute struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// StatementRow holds one line item across all reporting periods.
// Values are aligned to StatementTable.Periods; nil means the provider did not
// publish a value for that period (rendered blank, never zero).
type StatementRow struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
}

// StatementTable is a financial statement indexed by (line item, period).
// Periods are ordered as delivered by the provider, newest first.
type StatementTable struct {
	Periods []string       `json:"periods"`
	Rows    []StatementRow `json:"rows"`
}

// Empty reports whether the provider published no usable table.
func (t StatementTable) Empty() bool {
	return len(t.Periods) == 0 || len(t.Rows) == 0
}

// FinancialRecord aggregates everything fetched for one ticker. It lives for
// the duration of a single pipeline run and is discarded after the report is
// built.
type FinancialRecord struct {
	Profile  []ProfileAttribute `json:"profile"`
	Currency string             `json:"currency"`

	Income   StatementTable `json:"income"`
	Balance  StatementTable `json:"balance"`
	Cashflow StatementTable `json:"cashflow"`

	QuarterlyIncome   StatementTable `json:"quarterly_income"`
	QuarterlyBalance  StatementTable `json:"quarterly_balance"`
	QuarterlyCashflow StatementTable `json:"quarterly_cashflow"`
}

// Report is a serialized workbook plus its download file name. Reports carry
// no cross-company state.
type Report struct {
	FileName string `json:"file_name"`
	Data     []byte `json:"-"`
}

// Reader returns a fresh reader positioned at the start of the document so a
// consumer can stream it immediately.
func (r *Report) Reader() io.Reader {
	return bytes.NewReader(r.Data)
}
