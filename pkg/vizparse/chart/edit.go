package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
)

var (
	// ErrNoChart is returned when an edit is applied to a missing configuration.
	ErrNoChart = errors.New("no chart configuration")
	// ErrInvalidChartType is returned for a chart type outside models.ChartTypes.
	ErrInvalidChartType = errors.New("invalid chart type")
	// ErrIndexOutOfRange is returned for a series or color index that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidColor is returned for a color that is not #RGB or #RRGGBB.
	ErrInvalidColor = errors.New("invalid color")
	// ErrUnknownField is returned when an axis names a header the dataset lacks.
	ErrUnknownField = errors.New("unknown field")
	// ErrNonNumericField is returned when the y axis is set to a column that
	// is not numeric in every record.
	ErrNonNumericField = errors.New("field is not numeric")
	// ErrInvalidAxis is returned for an axis other than x or y.
	ErrInvalidAxis = errors.New("invalid axis")
)

// Axis selects which side of the chart SetAxis changes.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// ParseAxis parses "x" or "y", ignoring case.
func ParseAxis(s string) (Axis, error) {
	switch a := Axis(strings.ToLower(strings.TrimSpace(s))); a {
	case AxisX, AxisY:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}
}

// SetChartType returns a copy of cfg rendered as t.
func SetChartType(cfg *models.ChartConfig, t models.ChartType) (*models.ChartConfig, error) {
	if cfg == nil {
		return nil, ErrNoChart
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChartType, t)
	}
	out := cfg.Clone()
	out.ChartType = t
	return out, nil
}

// SetColor returns a copy of cfg where point index of series is painted
// color. Fill and stroke colors stay identical.
func SetColor(cfg *models.ChartConfig, series, index int, color string) (*models.ChartConfig, error) {
	if cfg == nil {
		return nil, ErrNoChart
	}
	if !ValidColor(color) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}
	if series < 0 || series >= len(cfg.Series) {
		return nil, fmt.Errorf("%w: series %d of %d", ErrIndexOutOfRange, series, len(cfg.Series))
	}
	s := cfg.Series[series]
	if index < 0 || index >= len(s.FillColors) {
		return nil, fmt.Errorf("%w: color %d of %d", ErrIndexOutOfRange, index, len(s.FillColors))
	}

	out := cfg.Clone()
	out.Series[series].FillColors[index] = color
	out.Series[series].StrokeColors[index] = color
	return out, nil
}

// SetAxis returns a copy of cfg with one axis bound to field.
//
// Setting x recomputes the labels. Setting y recomputes the first series'
// values and renames it, and fails with ErrNonNumericField unless field is
// numeric in every record.
func SetAxis(cfg *models.ChartConfig, ds *models.Dataset, axis Axis, field string) (*models.ChartConfig, error) {
	if cfg == nil {
		return nil, ErrNoChart
	}
	if ds == nil || !ds.HasHeader(field) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	out := cfg.Clone()
	switch axis {
	case AxisX:
		out.XField = field
		out.Labels = labels(ds, field)
	case AxisY:
		if ds.Len() == 0 || !isNumericColumn(ds, field) {
			return nil, fmt.Errorf("%w: %q", ErrNonNumericField, field)
		}
		out.YField = field
		if len(out.Series) == 0 {
			out.Series = append(out.Series, models.Series{StrokeWidth: DefaultStrokeWidth})
		}
		out.Series[0].Name = field
		out.Series[0].Values = values(ds, field)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAxis, axis)
	}
	return out, nil
}
