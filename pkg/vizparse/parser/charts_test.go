package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"github.com/xuri/excelize/v2"
)

func workbookWithChart(t *testing.T, chartType excelize.ChartType) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	rows := [][]any{{"city", "pop"}, {"A", 10}, {"B", 20}}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Data", cell, &row))
	}
	require.NoError(t, f.AddChart("Data", "D2", &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       "Data!$B$1",
			Categories: "Data!$A$2:$A$3",
			Values:     "Data!$B$2:$B$3",
		}},
		Title: []excelize.RichTextRun{{Text: "Population"}},
	}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadChartHint(t *testing.T) {
	data := workbookWithChart(t, excelize.Line)

	hint, err := ReadChartHint(data, "Data")
	require.NoError(t, err)
	assert.Equal(t, "Line", hint.SourceType)
	assert.Equal(t, models.ChartLine, hint.ChartType)
	assert.Equal(t, "Population", hint.Title)
}

func TestReadChartHintNoChart(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "x"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	hint, err := ReadChartHint(buf.Bytes(), "Sheet1")
	assert.Nil(t, hint)
	assert.ErrorIs(t, err, errNoChart)
}

func TestParseXLSXReadsChartHint(t *testing.T) {
	data := workbookWithChart(t, excelize.Doughnut)

	ds, err := ParseXLSX(data, XLSXOptions{ReadChartHint: true})
	require.NoError(t, err)
	require.NotNil(t, ds.Hint)
	assert.Equal(t, models.ChartDoughnut, ds.Hint.ChartType)

	ds, err = ParseXLSX(data, XLSXOptions{})
	require.NoError(t, err)
	assert.Nil(t, ds.Hint)
}

func TestParseChartXMLUnmappedType(t *testing.T) {
	xml := []byte(`<c:chartSpace xmlns:c="c"><c:chart><c:plotArea><c:scatterChart><c:ser><c:tx><c:v>s1</c:v></c:tx></c:ser></c:scatterChart>` +
		`<c:valAx><c:title><c:tx><c:rich><a:p xmlns:a="a"><a:r><a:t>axis</a:t></a:r></a:p></c:rich></c:tx></c:title></c:valAx></c:plotArea></c:chart></c:chartSpace>`)

	hint := parseChartXML(xml)
	assert.Equal(t, "XYScatter", hint.SourceType)
	assert.Equal(t, models.ChartType(""), hint.ChartType)
	assert.Equal(t, "s1", hint.SeriesName)
	assert.Empty(t, hint.Title, "axis titles are not chart titles")
}

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		target   string
		baseDir  string
		expected string
	}{
		{"../charts/chart1.xml", "xl/drawings", "xl/charts/chart1.xml"},
		{"../drawings/drawing1.xml", "xl/worksheets", "xl/drawings/drawing1.xml"},
		{"/xl/worksheets/sheet1.xml", "xl", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl", "xl/worksheets/sheet1.xml"},
	}

	for _, tt := range tests {
		result := resolveRelativePath(tt.target, tt.baseDir)
		if result != tt.expected {
			t.Errorf("resolveRelativePath(%q, %q) = %q, expected %q",
				tt.target, tt.baseDir, result, tt.expected)
		}
	}
}
