package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"github.com/xuri/excelize/v2"
)

// ExportSheet is the name of the worksheet ExportXLSX writes the data to.
const ExportSheet = "Data"

// excelChartTypes maps chart types to native Excel chart types.
// Excel calls a vertical bar chart a column chart.
var excelChartTypes = map[models.ChartType]excelize.ChartType{
	models.ChartBar:      excelize.Col,
	models.ChartLine:     excelize.Line,
	models.ChartPie:      excelize.Pie,
	models.ChartDoughnut: excelize.Doughnut,
	models.ChartRadar:    excelize.Radar,
}

// ExportXLSX writes ds to the Data sheet of a new workbook and adds a
// native chart drawn from cfg next to the table.
//
// Cells of the y field are written as numbers so Excel can plot them.
// The Excel series is filled with the first fill color only; per-point
// colors set with SetColor on later indexes are not exported.
func ExportXLSX(ds *models.Dataset, cfg *models.ChartConfig, w io.Writer) error {
	if cfg == nil {
		return ErrNoChart
	}
	if ds == nil || ds.Len() == 0 {
		return errors.New("export: dataset has no rows")
	}
	if err := cfg.Validate(ds); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := writeTable(f, ds, cfg.YField); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	chart, err := excelChart(ds, cfg)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	anchor, err := excelize.CoordinatesToCellName(len(ds.Headers)+2, 2)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.AddChart(ExportSheet, anchor, chart); err != nil {
		return fmt.Errorf("export: add chart: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, ds *models.Dataset, yField string) error {
	header := make([]any, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return err
	}

	for r, rec := range ds.Rows {
		row := make([]any, len(ds.Headers))
		for i, h := range ds.Headers {
			v := rec[h]
			switch {
			case v.IsAbsent():
				row[i] = nil
			case h == yField || v.Kind() == models.KindNumber:
				if n, ok := v.Float(); ok {
					row[i] = n
				} else {
					row[i] = v.Text()
				}
			default:
				row[i] = v.Text()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func excelChart(ds *models.Dataset, cfg *models.ChartConfig) (*excelize.Chart, error) {
	chartType, ok := excelChartTypes[cfg.ChartType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidChartType, cfg.ChartType)
	}

	xCol, err := columnName(ds, cfg.XField)
	if err != nil {
		return nil, err
	}
	yCol, err := columnName(ds, cfg.YField)
	if err != nil {
		return nil, err
	}
	last := ds.Len() + 1

	series := excelize.ChartSeries{
		Name:       fmt.Sprintf("%s!$%s$1", ExportSheet, yCol),
		Categories: fmt.Sprintf("%s!$%s$2:$%s$%d", ExportSheet, xCol, xCol, last),
		Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", ExportSheet, yCol, yCol, last),
	}
	// excelize has no per-point fill, so the series takes the first color.
	if len(cfg.Series) > 0 && len(cfg.Series[0].FillColors) > 0 {
		series.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{excelColor(cfg.Series[0].FillColors[0])},
		}
	}

	return &excelize.Chart{
		Type:   chartType,
		Series: []excelize.ChartSeries{series},
		Title:  []excelize.RichTextRun{{Text: Title(cfg)}},
		Legend: excelize.ChartLegend{Position: "top"},
	}, nil
}

func columnName(ds *models.Dataset, field string) (string, error) {
	for i, h := range ds.Headers {
		if h == field {
			return excelize.ColumnNumberToName(i + 1)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// excelColor converts #RGB or #RRGGBB to the RRGGBB form Excel stores.
func excelColor(c string) string {
	c = strings.TrimPrefix(c, "#")
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	return strings.ToUpper(c)
}
