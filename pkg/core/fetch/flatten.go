package fetch

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"public_diligence/pkg/models"
)

// The provider wraps most numeric fields as {"raw": 1234, "fmt": "1.23k"}.
// flattenModule and coerceNumber unwrap these to their raw scalar.

// flattenModule walks a module object in wire order and returns one profile
// attribute per top-level key. Scalars are kept as-is, value wrappers are
// unwrapped, nested objects and arrays are skipped.
func flattenModule(raw json.RawMessage) []models.ProfileAttribute {
	var attrs []models.ProfileAttribute

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return attrs
		}
		key, ok := keyTok.(string)
		if !ok {
			return attrs
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return attrs
		}

		if key == "maxAge" {
			continue
		}

		scalar, ok := scalarValue(value)
		if !ok {
			continue
		}
		attrs = append(attrs, models.ProfileAttribute{Key: key, Value: scalar})
	}

	return attrs
}

// scalarValue extracts a natural scalar representation from a raw JSON value.
// Objects are only accepted when they are {raw, fmt} value wrappers.
func scalarValue(raw json.RawMessage) (interface{}, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, false
	}

	switch trimmed[0] {
	case '[':
		return nil, false
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, false
		}
		inner, ok := wrapper["raw"]
		if !ok {
			return nil, false
		}
		return scalarValue(inner)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, false
		}
		return s, true
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, false
		}
		return b, true
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return nil, false
		}
		if f, err := n.Float64(); err == nil {
			return f, true
		}
		return n.String(), true
	}
}

// coerceNumber converts a raw statement cell to a float. Missing,
// unparseable, or non-numeric cells yield nil, never zero.
func coerceNumber(raw json.RawMessage) *float64 {
	scalar, ok := scalarValue(raw)
	if !ok {
		return nil
	}

	switch v := scalar.(type) {
	case float64:
		return &v
	case string:
		return parseFormattedNumber(v)
	default:
		return nil
	}
}

// parseFormattedNumber handles display-formatted values such as "1,234",
// "$5.6" or "(789)". Placeholders like "N/A" or "-" are treated as missing.
func parseFormattedNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || strings.EqualFold(s, "N/A") {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return &f
}

// humanizeLabel turns a provider field key into a display label:
// "totalRevenue" -> "Total Revenue".
func humanizeLabel(key string) string {
	if key == "" {
		return key
	}
	var b strings.Builder
	runes := []rune(key)
	b.WriteRune(unicode.ToUpper(runes[0]))
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// periodLabel extracts the period end date label from an endDate value, which
// arrives as {"raw": <unix>, "fmt": "2024-09-30"}.
func periodLabel(raw json.RawMessage) string {
	var wrapper struct {
		Raw int64  `json:"raw"`
		Fmt string `json:"fmt"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		if wrapper.Fmt != "" {
			return wrapper.Fmt
		}
		if wrapper.Raw != 0 {
			return time.Unix(wrapper.Raw, 0).UTC().Format("2006-01-02")
		}
	}
	return ""
}

// buildTable normalizes one statement history module into a
// (line item x period) table. Each entry in the module's single array is one
// reporting period; line items keep first-seen wire order.
func buildTable(module json.RawMessage) models.StatementTable {
	var table models.StatementTable
	if len(module) == 0 {
		return table
	}

	// The array key varies per statement (incomeStatementHistory,
	// balanceSheetStatements, cashflowStatements); take whichever value is
	// an array.
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(module, &wrapper); err != nil {
		return table
	}
	var entries []json.RawMessage
	for _, v := range wrapper {
		trimmed := bytes.TrimSpace(v)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &entries); err == nil {
				break
			}
		}
	}
	if len(entries) == 0 {
		return table
	}

	var labels []string
	cells := make([]map[string]*float64, 0, len(entries))

	for _, entry := range entries {
		period, periodCells := parsePeriodEntry(entry, &labels)
		if period == "" {
			continue
		}
		table.Periods = append(table.Periods, period)
		cells = append(cells, periodCells)
	}

	for _, label := range labels {
		row := models.StatementRow{
			Label:  humanizeLabel(label),
			Values: make([]*float64, len(table.Periods)),
		}
		for i, periodCells := range cells {
			row.Values[i] = periodCells[label]
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

// parsePeriodEntry walks one period object in wire order, returning its
// period label and line-item values. New line items are appended to labels in
// first-seen order.
func parsePeriodEntry(entry json.RawMessage, labels *[]string) (string, map[string]*float64) {
	dec := json.NewDecoder(bytes.NewReader(entry))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return "", nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", nil
	}

	period := ""
	cells := make(map[string]*float64)
	seen := make(map[string]bool, len(*labels))
	for _, l := range *labels {
		seen[l] = true
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := keyTok.(string)
		if !ok {
			break
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			break
		}

		switch key {
		case "endDate":
			period = periodLabel(value)
		case "maxAge":
			// metadata, not a line item
		default:
			if !seen[key] {
				seen[key] = true
				*labels = append(*labels, key)
			}
			cells[key] = coerceNumber(value)
		}
	}

	return period, cells
}
