package chart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
)

func sales(t *testing.T) *models.Dataset {
	return dataset(t, []string{"month", "region", "units", "revenue"},
		[]string{"Jan", "north", "5", "50.5"},
		[]string{"Feb", "south", "7", "70"},
		[]string{"Mar", "north", "x", "90"},
	)
}

func TestSetChartType(t *testing.T) {
	cfg, ok := DefaultInferrer().Infer(sales(t))
	require.True(t, ok)
	before := cfg.Clone()

	for _, ct := range models.ChartTypes {
		out, err := SetChartType(cfg, ct)
		require.NoError(t, err)
		assert.Equal(t, ct, out.ChartType)

		// Everything else is untouched.
		out.ChartType = cfg.ChartType
		assert.Empty(t, cmp.Diff(cfg, out))
	}

	_, err := SetChartType(cfg, "scatter")
	assert.ErrorIs(t, err, ErrInvalidChartType)

	_, err = SetChartType(nil, models.ChartLine)
	assert.ErrorIs(t, err, ErrNoChart)

	assert.Empty(t, cmp.Diff(before, cfg), "input must not be mutated")
}

func TestSetColor(t *testing.T) {
	cfg, _ := DefaultInferrer().Infer(sales(t))
	before := cfg.Clone()

	out, err := SetColor(cfg, 0, 1, "#123abc")
	require.NoError(t, err)
	assert.Equal(t, "#123abc", out.Series[0].FillColors[1])
	assert.Equal(t, out.Series[0].FillColors, out.Series[0].StrokeColors)
	assert.Equal(t, cfg.Series[0].FillColors[0], out.Series[0].FillColors[0])

	assert.Empty(t, cmp.Diff(before, cfg), "input must not be mutated")
}

func TestSetColorErrors(t *testing.T) {
	cfg, _ := DefaultInferrer().Infer(sales(t))

	tests := []struct {
		name   string
		series int
		index  int
		color  string
		err    error
	}{
		{"bad color", 0, 0, "blue", ErrInvalidColor},
		{"short hex", 0, 0, "#12", ErrInvalidColor},
		{"series too high", 1, 0, "#fff", ErrIndexOutOfRange},
		{"negative series", -1, 0, "#fff", ErrIndexOutOfRange},
		{"index too high", 0, 3, "#fff", ErrIndexOutOfRange},
		{"negative index", 0, -1, "#fff", ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SetColor(cfg, tt.series, tt.index, tt.color)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSetAxisX(t *testing.T) {
	ds := sales(t)
	cfg, _ := DefaultInferrer().Infer(ds)
	before := cfg.Clone()

	once, err := SetAxis(cfg, ds, AxisX, "region")
	require.NoError(t, err)
	assert.Equal(t, "region", once.XField)
	assert.Equal(t, []string{"north", "south", "north"}, once.Labels)

	twice, err := SetAxis(once, ds, AxisX, "region")
	require.NoError(t, err)
	assert.Equal(t, once.Labels, twice.Labels)
	assert.Empty(t, cmp.Diff(once, twice))

	// Any header may label the x axis, numeric or not.
	num, err := SetAxis(cfg, ds, AxisX, "revenue")
	require.NoError(t, err)
	assert.Equal(t, []string{"50.5", "70", "90"}, num.Labels)

	assert.Empty(t, cmp.Diff(before, cfg), "input must not be mutated")
}

func TestSetAxisY(t *testing.T) {
	ds := sales(t)
	cfg, ok := DefaultInferrer().Infer(ds)
	require.True(t, ok)
	require.Equal(t, "revenue", cfg.YField)

	_, err := SetAxis(cfg, ds, AxisY, "units")
	assert.ErrorIs(t, err, ErrNonNumericField)

	_, err = SetAxis(cfg, ds, AxisY, "region")
	assert.ErrorIs(t, err, ErrNonNumericField)

	ds2 := dataset(t, []string{"k", "a", "b"}, []string{"x", "1", "3"}, []string{"y", "2", "4"})
	cfg2, _ := DefaultInferrer().Infer(ds2)
	out, err := SetAxis(cfg2, ds2, AxisY, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", out.YField)
	assert.Equal(t, "b", out.Series[0].Name)
	assert.Equal(t, []float64{3, 4}, out.Series[0].Values)
	assert.Equal(t, cfg2.Series[0].FillColors, out.Series[0].FillColors)
	assert.Equal(t, "a", cfg2.YField)
}

func TestSetAxisErrors(t *testing.T) {
	ds := sales(t)
	cfg, _ := DefaultInferrer().Infer(ds)

	_, err := SetAxis(cfg, ds, AxisX, "missing")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = SetAxis(cfg, ds, Axis("z"), "month")
	assert.ErrorIs(t, err, ErrInvalidAxis)

	_, err = SetAxis(nil, ds, AxisX, "month")
	assert.ErrorIs(t, err, ErrNoChart)
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis(" X ")
	require.NoError(t, err)
	assert.Equal(t, AxisX, a)

	a, err = ParseAxis("y")
	require.NoError(t, err)
	assert.Equal(t, AxisY, a)

	_, err = ParseAxis("z")
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestNumericHeaders(t *testing.T) {
	assert.Equal(t, []string{"revenue"}, NumericHeaders(sales(t)))
	assert.Empty(t, NumericHeaders(nil))
	assert.Empty(t, NumericHeaders(dataset(t, []string{"a"})))
}
