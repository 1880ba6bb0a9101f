// Package report assembles fetched financial records into multi-sheet xlsx
// workbooks held in memory.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"public_diligence/pkg/core/logger"
	"public_diligence/pkg/models"
)

// Clock supplies the current date for report file names. Injected so tests
// can pin a fixed date.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used by the binaries.
func SystemClock() Clock { return systemClock{} }

// million is the display scale divisor: raw currency values are reported
// "in millions".
var million = decimal.NewFromInt(1_000_000)

// overviewSheet is the profile sheet name.
const overviewSheet = "Overview"

// statementSheet pairs a deterministic sheet name with its source table.
type statementSheet struct {
	name  string
	table models.StatementTable
}

// Builder serializes FinancialRecords into xlsx reports.
type Builder struct {
	clock Clock
}

// NewBuilder creates a Builder using the system clock.
func NewBuilder() *Builder {
	return &Builder{clock: systemClock{}}
}

// NewBuilderWithClock creates a Builder with an injected clock.
func NewBuilderWithClock(clock Clock) *Builder {
	return &Builder{clock: clock}
}

// Build renders the record into a workbook. Empty statement tables produce no
// sheet; an empty profile produces no Overview sheet.
func (b *Builder) Build(companyName, ticker string, record *models.FinancialRecord) (*models.Report, error) {
	fileName := fmt.Sprintf("%s_public_diligence_%s.xlsx", ticker, b.clock.Now().Format("20060102"))

	f := excelize.NewFile()
	defer f.Close()

	firstSheet := true
	addSheet := func(name string) error {
		if firstSheet {
			// Reuse the default sheet for the first written sheet so the
			// workbook never carries an empty placeholder.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
			firstSheet = false
			return nil
		}
		_, err := f.NewSheet(name)
		return err
	}

	if len(record.Profile) > 0 {
		if err := addSheet(overviewSheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", overviewSheet, err)
		}
		if err := writeOverview(f, record.Profile); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", overviewSheet, err)
		}
	}

	sheets := []statementSheet{
		{"Annual_Income", record.Income},
		{"Annual_Balance", record.Balance},
		{"Annual_Cashflow", record.Cashflow},
		{"Quarterly_Income", record.QuarterlyIncome},
		{"Quarterly_Balance", record.QuarterlyBalance},
		{"Quarterly_Cashflow", record.QuarterlyCashflow},
	}
	for _, s := range sheets {
		if s.table.Empty() {
			continue
		}
		if err := addSheet(s.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeStatement(f, s.name, s.table, record.Currency); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", s.name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook for %s: %w", ticker, err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"company": companyName,
		"ticker":  ticker,
		"file":    fileName,
	}).Info("Report generated")

	return &models.Report{FileName: fileName, Data: buf.Bytes()}, nil
}

// writeOverview renders the profile as a two-column Attribute/Value table in
// provider attribute order.
func writeOverview(f *excelize.File, profile []models.ProfileAttribute) error {
	if err := setRow(f, overviewSheet, 1, []interface{}{"Attribute", "Value"}); err != nil {
		return err
	}
	for i, attr := range profile {
		if err := setRow(f, overviewSheet, i+2, []interface{}{attr.Key, attr.Value}); err != nil {
			return err
		}
	}
	return nil
}

// writeStatement renders one statement table: a currency note row, a header
// row with the line-item column promoted from the row index, then data rows
// scaled to millions. Missing cells stay blank.
func writeStatement(f *excelize.File, sheet string, table models.StatementTable, currency string) error {
	width := len(table.Periods) + 1

	note := make([]interface{}, width)
	note[0] = fmt.Sprintf("Currency: %s (in millions)", currency)
	for i := 1; i < width; i++ {
		note[i] = ""
	}
	if err := setRow(f, sheet, 1, note); err != nil {
		return err
	}

	header := make([]interface{}, width)
	header[0] = "Line Item"
	for i, period := range table.Periods {
		header[i+1] = period
	}
	if err := setRow(f, sheet, 2, header); err != nil {
		return err
	}

	for rowIdx, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx+3)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, row.Label); err != nil {
			return err
		}
		for colIdx, value := range row.Values {
			if value == nil {
				continue
			}
			scaled, _ := decimal.NewFromFloat(*value).Div(million).Float64()
			cell, err := excelize.CoordinatesToCellName(colIdx+2, rowIdx+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, scaled); err != nil {
				return err
			}
		}
	}

	return nil
}

// setRow writes one row of values starting at column A.
func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
