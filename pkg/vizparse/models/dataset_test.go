package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFloat(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		want    float64
		numeric bool
	}{
		{"integer text", StringValue("10"), 10, true},
		{"padded text", StringValue("  2.5 "), 2.5, true},
		{"exponent", StringValue("1e3"), 1000, true},
		{"negative", StringValue("-7"), -7, true},
		{"number", NumberValue(3.25), 3.25, true},
		{"word", StringValue("abc"), 0, false},
		{"empty", StringValue(""), 0, false},
		{"blank", StringValue("   "), 0, false},
		{"absent", Value{}, 0, false},
		{"nan text", StringValue("NaN"), 0, false},
		{"nan number", NumberValue(math.NaN()), 0, false},
		{"infinity text", StringValue("Inf"), 0, false},
		{"infinity number", NumberValue(math.Inf(-1)), 0, false},
		{"overflow", StringValue("1e400"), 0, false},
		{"thousands separator", StringValue("1,000"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Float()
			assert.Equal(t, tt.numeric, ok)
			if tt.numeric {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "A", StringValue("A").Text())
	assert.Equal(t, "10", NumberValue(10).Text())
	assert.Equal(t, "2.5", NumberValue(2.5).Text())
	assert.Equal(t, "", Value{}.Text())
}

func TestValueJSON(t *testing.T) {
	rec := Record{"city": StringValue("A"), "pop": NumberValue(10)}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"A","pop":10}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal([]byte(`{"city":"B","pop":20,"gone":null}`), &back))
	assert.True(t, back["city"].Equal(StringValue("B")))
	assert.True(t, back["pop"].Equal(NumberValue(20)))
	assert.True(t, back["gone"].IsAbsent())
}

func TestValueJSONLeavesHTMLToEncoder(t *testing.T) {
	data, err := StringValue("<b>x&y</b>").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"<b>x&y</b>"`, string(data))

	data, err = json.Marshal(StringValue("x&y"))
	require.NoError(t, err)
	assert.Equal(t, `"x\u0026y"`, string(data))
}

func TestNewDatasetRejectsBadHeaders(t *testing.T) {
	_, err := NewDataset(nil)
	assert.ErrorIs(t, err, ErrInvalidHeaders)

	_, err = NewDataset([]string{"a", "b", "a"})
	assert.ErrorIs(t, err, ErrInvalidHeaders)
}

func TestAppendRowZipsPositionally(t *testing.T) {
	ds, err := NewDataset([]string{"a", "b", "c"})
	require.NoError(t, err)

	dropped := ds.AppendRow([]Value{StringValue("1"), StringValue("2"), StringValue("3"), StringValue("4")})
	assert.Equal(t, 1, dropped)

	dropped = ds.AppendRow([]Value{StringValue("x")})
	assert.Equal(t, 0, dropped)

	require.Equal(t, 2, ds.Len())
	v, err := ds.Value(1, "c")
	require.NoError(t, err)
	assert.True(t, v.IsAbsent())

	_, err = ds.Value(0, "missing")
	assert.True(t, errors.Is(err, ErrUnknownHeader))
}

func TestDatasetColumnAfterJSONRoundTrip(t *testing.T) {
	ds, err := NewDataset([]string{"city", "pop"})
	require.NoError(t, err)
	ds.AppendRow([]Value{StringValue("A"), StringValue("10")})

	data, err := json.Marshal(ds)
	require.NoError(t, err)

	var back Dataset
	require.NoError(t, json.Unmarshal(data, &back))
	col, err := back.Column("pop")
	require.NoError(t, err)
	require.Len(t, col, 1)
	assert.Equal(t, "10", col[0].Text())
}

func TestChartConfigCloneIsDeep(t *testing.T) {
	cfg := &ChartConfig{
		ChartType: ChartBar,
		Labels:    []string{"A"},
		Series:    []Series{{Name: "pop", Values: []float64{1}, FillColors: []string{"#FF6384"}, StrokeColors: []string{"#FF6384"}}},
	}
	cp := cfg.Clone()
	cp.Labels[0] = "B"
	cp.Series[0].FillColors[0] = "#000000"

	assert.Equal(t, "A", cfg.Labels[0])
	assert.Equal(t, "#FF6384", cfg.Series[0].FillColors[0])
}

func TestChartConfigValidate(t *testing.T) {
	ds, err := NewDataset([]string{"city", "pop"})
	require.NoError(t, err)

	cfg := &ChartConfig{ChartType: ChartLine, XField: "city", YField: "pop", Labels: []string{"A"},
		Series: []Series{{Values: []float64{1}}}}
	assert.NoError(t, cfg.Validate(ds))

	cfg.Series[0].Values = nil
	assert.ErrorIs(t, cfg.Validate(ds), ErrInvalidConfig)

	cfg.Series[0].Values = []float64{1}
	cfg.YField = "area"
	assert.ErrorIs(t, cfg.Validate(ds), ErrInvalidConfig)
}

func TestParseChartType(t *testing.T) {
	got, err := ParseChartType(" Doughnut ")
	require.NoError(t, err)
	assert.Equal(t, ChartDoughnut, got)

	_, err = ParseChartType("scatter")
	assert.Error(t, err)
}
