package chart

import (
	"fmt"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
)

// ChartJS is a chart.js configuration object.
type ChartJS struct {
	Type    models.ChartType `json:"type"`
	Data    ChartJSData      `json:"data"`
	Options ChartJSOptions   `json:"options"`
}

// ChartJSData holds the x labels and the plotted series.
type ChartJSData struct {
	Labels   []string         `json:"labels"`
	Datasets []ChartJSDataset `json:"datasets"`
}

// ChartJSDataset is one plotted series with per-point colors.
type ChartJSDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     []string  `json:"borderColor"`
	BorderWidth     float64   `json:"borderWidth"`
}

// ChartJSOptions is the subset of chart.js options vizparse sets.
type ChartJSOptions struct {
	Responsive bool           `json:"responsive"`
	Plugins    ChartJSPlugins `json:"plugins"`
}

// ChartJSPlugins configures the legend and title plugins.
type ChartJSPlugins struct {
	Legend ChartJSLegend `json:"legend"`
	Title  ChartJSTitle  `json:"title"`
}

// ChartJSLegend places the legend.
type ChartJSLegend struct {
	Position string `json:"position"`
}

// ChartJSTitle is the caption shown above the chart.
type ChartJSTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Title returns the chart caption, "<y field> vs <x field>".
func Title(cfg *models.ChartConfig) string {
	return fmt.Sprintf("%s vs %s", cfg.YField, cfg.XField)
}

// ToChartJS renders cfg as a chart.js document.
func ToChartJS(cfg *models.ChartConfig) (*ChartJS, error) {
	if cfg == nil {
		return nil, ErrNoChart
	}
	if !cfg.ChartType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChartType, cfg.ChartType)
	}

	c := cfg.Clone()
	datasets := make([]ChartJSDataset, len(c.Series))
	for i, s := range c.Series {
		datasets[i] = ChartJSDataset{
			Label:           s.Name,
			Data:            s.Values,
			BackgroundColor: s.FillColors,
			BorderColor:     s.StrokeColors,
			BorderWidth:     s.StrokeWidth,
		}
	}

	return &ChartJS{
		Type: c.ChartType,
		Data: ChartJSData{
			Labels:   c.Labels,
			Datasets: datasets,
		},
		Options: ChartJSOptions{
			Responsive: true,
			Plugins: ChartJSPlugins{
				Legend: ChartJSLegend{Position: "top"},
				Title:  ChartJSTitle{Display: true, Text: Title(c)},
			},
		},
	}, nil
}
