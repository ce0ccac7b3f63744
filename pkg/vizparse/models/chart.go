package models

import (
	"errors"
	"fmt"
	"strings"
)

// ChartType is the kind of chart a configuration renders as.
type ChartType string

const (
	// ChartBar draws one vertical bar per record.
	ChartBar ChartType = "bar"
	// ChartLine joins the records' values with a line.
	ChartLine ChartType = "line"
	// ChartPie draws each record as a slice of a circle.
	ChartPie ChartType = "pie"
	// ChartDoughnut is a pie chart with a hollow center.
	ChartDoughnut ChartType = "doughnut"
	// ChartRadar plots each record on its own spoke.
	ChartRadar ChartType = "radar"
)

// ChartTypes lists the supported chart types in menu order.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartDoughnut, ChartRadar}

// Valid reports whether t is a supported chart type.
func (t ChartType) Valid() bool {
	for _, c := range ChartTypes {
		if t == c {
			return true
		}
	}
	return false
}

// ParseChartType parses a chart type name, ignoring case and surrounding space.
func ParseChartType(s string) (ChartType, error) {
	t := ChartType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unsupported chart type %q", s)
	}
	return t, nil
}

// Series is one plotted data sequence with its styling.
type Series struct {
	// Name is the series label, the y field it was built from.
	Name string `json:"name"`
	// Values holds one number per label.
	Values []float64 `json:"values"`
	// FillColors holds per-point fill colors.
	FillColors []string `json:"fill_colors"`
	// StrokeColors holds per-point border colors; kept identical to FillColors.
	StrokeColors []string `json:"stroke_colors"`
	// StrokeWidth is the border width in pixels.
	StrokeWidth float64 `json:"stroke_width"`
}

// ChartConfig describes how a dataset is charted.
type ChartConfig struct {
	ChartType ChartType `json:"chart_type"`
	// XField is the header the labels come from.
	XField string `json:"x_field"`
	// YField is the header the first series' values come from.
	YField string   `json:"y_field"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Clone returns a deep copy of c.
func (c *ChartConfig) Clone() *ChartConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Labels = append([]string(nil), c.Labels...)
	out.Series = make([]Series, len(c.Series))
	for i, s := range c.Series {
		out.Series[i] = Series{
			Name:         s.Name,
			Values:       append([]float64(nil), s.Values...),
			FillColors:   append([]string(nil), s.FillColors...),
			StrokeColors: append([]string(nil), s.StrokeColors...),
			StrokeWidth:  s.StrokeWidth,
		}
	}
	return &out
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid chart configuration")

// Validate checks that c is consistent with the dataset it was derived from.
func (c *ChartConfig) Validate(ds *Dataset) error {
	if !c.ChartType.Valid() {
		return fmt.Errorf("%w: chart type %q", ErrInvalidConfig, c.ChartType)
	}
	if ds != nil {
		if !ds.HasHeader(c.XField) {
			return fmt.Errorf("%w: x field %q is not a header", ErrInvalidConfig, c.XField)
		}
		if !ds.HasHeader(c.YField) {
			return fmt.Errorf("%w: y field %q is not a header", ErrInvalidConfig, c.YField)
		}
	}
	for i, s := range c.Series {
		if len(s.Values) != len(c.Labels) {
			return fmt.Errorf("%w: series %d has %d values for %d labels",
				ErrInvalidConfig, i, len(s.Values), len(c.Labels))
		}
	}
	return nil
}

// ChartHint is chart metadata found inside an uploaded file.
type ChartHint struct {
	// ChartType is the mapped chart type, empty when the source type has no equivalent.
	ChartType ChartType `json:"chart_type,omitempty"`
	// SourceType is the chart type name as found in the file (e.g. Line, 3DBar).
	SourceType string `json:"source_type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// SeriesName is the name of the first series.
	SeriesName string `json:"series_name,omitempty"`
}
