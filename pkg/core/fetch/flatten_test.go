package fetch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want *float64
	}{
		{"plain number", `42.5`, floatPtr(42.5)},
		{"raw wrapper", `{"raw":1234,"fmt":"1.23k"}`, floatPtr(1234)},
		{"formatted string", `"1,234,567"`, floatPtr(1234567)},
		{"dollar string", `"$5.6"`, floatPtr(5.6)},
		{"parenthesized negative", `"(789)"`, floatPtr(-789)},
		{"not applicable", `"N/A"`, nil},
		{"dash placeholder", `"-"`, nil},
		{"null", `null`, nil},
		{"array", `[1,2]`, nil},
		{"wrapper without raw", `{"fmt":"n/a"}`, nil},
		{"free text", `"see note 12"`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := coerceNumber(json.RawMessage(tc.raw))
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestHumanizeLabel(t *testing.T) {
	assert.Equal(t, "Total Revenue", humanizeLabel("totalRevenue"))
	assert.Equal(t, "Goodwill", humanizeLabel("goodwill"))
	assert.Equal(t, "Total Cash From Operating Activities", humanizeLabel("totalCashFromOperatingActivities"))
	assert.Equal(t, "", humanizeLabel(""))
}

func TestFlattenModule_SkipsNestedStructures(t *testing.T) {
	raw := json.RawMessage(`{
		"sector":"Technology",
		"maxAge":1,
		"officers":[{"name":"x"}],
		"address":{"city":"Cupertino"},
		"employees":{"raw":164000,"fmt":"164k"},
		"audited":true
	}`)

	attrs := flattenModule(raw)
	require.Len(t, attrs, 3)
	assert.Equal(t, "sector", attrs[0].Key)
	assert.Equal(t, "employees", attrs[1].Key)
	assert.Equal(t, float64(164000), attrs[1].Value)
	assert.Equal(t, "audited", attrs[2].Key)
	assert.Equal(t, true, attrs[2].Value)
}

func TestBuildTable_EmptyInputs(t *testing.T) {
	assert.True(t, buildTable(nil).Empty())
	assert.True(t, buildTable(json.RawMessage(`{}`)).Empty())
	assert.True(t, buildTable(json.RawMessage(`{"cashflowStatements":[]}`)).Empty())
	assert.True(t, buildTable(json.RawMessage(`not json`)).Empty())
}

func floatPtr(f float64) *float64 { return &f }
