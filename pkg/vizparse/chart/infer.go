package chart

import "github.com/ukaji3/vizparse-go/pkg/vizparse/models"

// DefaultStrokeWidth is the border width of inferred series.
const DefaultStrokeWidth = 1

// Inferrer picks default axes, chart type and colors for a dataset.
// The zero value uses DefaultPalette, PolicyCycle and a bar chart.
type Inferrer struct {
	Palette     []string
	Policy      ColorPolicy
	StrokeWidth float64
	DefaultType models.ChartType
	// UseHint lets a chart embedded in the uploaded file choose the type.
	UseHint bool
}

// DefaultInferrer returns an Inferrer with the default palette and policy.
func DefaultInferrer() Inferrer {
	return Inferrer{
		Palette:     DefaultPalette,
		Policy:      PolicyCycle,
		StrokeWidth: DefaultStrokeWidth,
		DefaultType: models.ChartBar,
	}
}

// Infer builds the default configuration for ds.
//
// The y field is the first header whose value in every record is numeric;
// the x field is always the first header, even when it is numeric or the
// same as the y field. A dataset with no rows or without a fully numeric
// column has no default chart and Infer reports false. An empty dataset
// does not count every column as numeric, so it never yields a chart with
// empty labels.
func (in Inferrer) Infer(ds *models.Dataset) (*models.ChartConfig, bool) {
	if ds == nil || len(ds.Headers) == 0 {
		return nil, false
	}
	numeric := NumericHeaders(ds)
	if len(numeric) == 0 {
		return nil, false
	}
	xField := ds.Headers[0]
	yField := numeric[0]

	palette := in.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	policy := in.Policy
	if policy == "" {
		policy = PolicyCycle
	}
	width := in.StrokeWidth
	if width <= 0 {
		width = DefaultStrokeWidth
	}

	fill := colors(palette, policy, ds.Len())
	cfg := &models.ChartConfig{
		ChartType: in.chartType(ds),
		XField:    xField,
		YField:    yField,
		Labels:    labels(ds, xField),
		Series: []models.Series{{
			Name:         yField,
			Values:       values(ds, yField),
			FillColors:   fill,
			StrokeColors: append([]string(nil), fill...),
			StrokeWidth:  width,
		}},
	}
	return cfg, true
}

func (in Inferrer) chartType(ds *models.Dataset) models.ChartType {
	if in.UseHint && ds.Hint != nil && ds.Hint.ChartType.Valid() {
		return ds.Hint.ChartType
	}
	if in.DefaultType.Valid() {
		return in.DefaultType
	}
	return models.ChartBar
}

// NumericHeaders returns, in header order, the headers whose value is
// numeric in every record. These are the only valid y-axis choices.
// A dataset without rows has none.
func NumericHeaders(ds *models.Dataset) []string {
	out := []string{}
	if ds == nil || ds.Len() == 0 {
		return out
	}
	for _, h := range ds.Headers {
		if isNumericColumn(ds, h) {
			out = append(out, h)
		}
	}
	return out
}

func isNumericColumn(ds *models.Dataset, h string) bool {
	for _, rec := range ds.Rows {
		if !rec[h].IsNumeric() {
			return false
		}
	}
	return true
}

func labels(ds *models.Dataset, field string) []string {
	out := make([]string, len(ds.Rows))
	for i, rec := range ds.Rows {
		out[i] = rec[field].Text()
	}
	return out
}

// values coerces field to numbers; callers check the column is numeric.
func values(ds *models.Dataset, field string) []float64 {
	out := make([]float64, len(ds.Rows))
	for i, rec := range ds.Rows {
		out[i], _ = rec[field].Float()
	}
	return out
}
