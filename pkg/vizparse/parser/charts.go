package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      "Line",
	"line3DChart":    "3DLine",
	"barChart":       "Bar",
	"bar3DChart":     "3DBar",
	"areaChart":      "Area",
	"area3DChart":    "3DArea",
	"pieChart":       "Pie",
	"pie3DChart":     "3DPie",
	"doughnutChart":  "Doughnut",
	"scatterChart":   "XYScatter",
	"bubbleChart":    "Bubble",
	"radarChart":     "Radar",
	"surfaceChart":   "Surface",
	"surface3DChart": "3DSurface",
	"stockChart":     "Stock",
	"ofPieChart":     "PieOfPie",
}

// sourceChartTypes maps OOXML chart type names to the chart types we can render.
var sourceChartTypes = map[string]models.ChartType{
	"Line":     models.ChartLine,
	"3DLine":   models.ChartLine,
	"Bar":      models.ChartBar,
	"3DBar":    models.ChartBar,
	"Pie":      models.ChartPie,
	"3DPie":    models.ChartPie,
	"PieOfPie": models.ChartPie,
	"Doughnut": models.ChartDoughnut,
	"Radar":    models.ChartRadar,
}

// errNoChart is returned by ReadChartHint when the sheet has no chart.
var errNoChart = errors.New("sheet has no chart")

// ReadChartHint reads the first chart anchored on the named sheet of an
// xlsx package. It returns errNoChart (wrapped) when there is none.
func ReadChartHint(data []byte, sheetName string) (*models.ChartHint, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	sheetPath, err := sheetPartPath(r, sheetName)
	if err != nil {
		return nil, err
	}

	relsPath := strings.Replace(sheetPath, "worksheets/", "worksheets/_rels/", 1) + ".rels"
	sheetRels, err := readZipFile(r, relsPath)
	if err != nil || sheetRels == nil {
		return nil, fmt.Errorf("%w: %q", errNoChart, sheetName)
	}
	drawingTarget := findRelationship(sheetRels, "drawing")
	if drawingTarget == "" {
		return nil, fmt.Errorf("%w: %q", errNoChart, sheetName)
	}
	drawingPath := resolveRelativePath(drawingTarget, "xl/worksheets")

	drawingXML, err := readZipFile(r, drawingPath)
	if err != nil || drawingXML == nil {
		return nil, fmt.Errorf("%w: drawing %s unreadable", errNoChart, drawingPath)
	}
	chartRID := firstChartRelID(drawingXML)
	if chartRID == "" {
		return nil, fmt.Errorf("%w: %q", errNoChart, sheetName)
	}

	drawingRelsPath := strings.Replace(drawingPath, "drawings/", "drawings/_rels/", 1) + ".rels"
	drawingRels, err := readZipFile(r, drawingRelsPath)
	if err != nil || drawingRels == nil {
		return nil, fmt.Errorf("%w: drawing rels %s unreadable", errNoChart, drawingRelsPath)
	}
	chartTarget := relationshipTarget(drawingRels, chartRID)
	if chartTarget == "" {
		return nil, fmt.Errorf("%w: chart relationship %s not found", errNoChart, chartRID)
	}

	chartXML, err := readZipFile(r, resolveRelativePath(chartTarget, "xl/drawings"))
	if err != nil || chartXML == nil {
		return nil, fmt.Errorf("%w: chart part %s unreadable", errNoChart, chartTarget)
	}
	return parseChartXML(chartXML), nil
}

// sheetPartPath resolves a sheet name to its part path through workbook.xml
// and its relationships.
func sheetPartPath(r *zip.Reader, sheetName string) (string, error) {
	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return "", errors.New("workbook part missing")
	}

	var rID string
	decoder := xml.NewDecoder(bytes.NewReader(workbookXML))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" && attr(se, "name") == sheetName {
			rID = attr(se, "id")
			break
		}
	}
	if rID == "" {
		return "", fmt.Errorf("sheet %q not found in workbook", sheetName)
	}

	wbRels, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || wbRels == nil {
		return "", errors.New("workbook relationships missing")
	}
	target := relationshipTarget(wbRels, rID)
	if target == "" {
		return "", fmt.Errorf("relationship %s not found", rID)
	}
	return resolveRelativePath(target, "xl"), nil
}

// firstChartRelID returns the relationship id of the first chart frame of a drawing.
func firstChartRelID(data []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "chart" {
			if id := attr(se, "id"); id != "" {
				return id
			}
		}
	}
}

// parseChartXML reads the chart type, title and first series name of a chart part.
func parseChartXML(data []byte) *models.ChartHint {
	hint := &models.ChartHint{}
	decoder := xml.NewDecoder(bytes.NewReader(data))

	// Element names from the root to the current element.
	var path []string
	inAxis := func() bool {
		for _, p := range path {
			if p == "valAx" || p == "catAx" || p == "dateAx" || p == "serAx" {
				return true
			}
		}
		return false
	}
	within := func(name string) bool {
		for _, p := range path {
			if p == name {
				return true
			}
		}
		return false
	}

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if ct, ok := ChartTypeMap[name]; ok && hint.SourceType == "" {
				hint.SourceType = ct
			}

			switch {
			case name == "t" && within("title") && !within("ser") && !inAxis() && hint.Title == "":
				if txt, err := readElementText(decoder); err == nil {
					hint.Title = strings.TrimSpace(txt)
				}
				continue
			case name == "v" && within("ser") && within("tx") && hint.SeriesName == "":
				if txt, err := readElementText(decoder); err == nil {
					hint.SeriesName = strings.TrimSpace(txt)
				}
				continue
			}
			path = append(path, name)

		case xml.EndElement:
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	if hint.SourceType == "" {
		hint.SourceType = "unknown"
	}
	hint.ChartType = sourceChartTypes[hint.SourceType]
	return hint
}

// findRelationship returns the target of the first relationship whose type contains kind.
func findRelationship(data []byte, kind string) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			if strings.Contains(strings.ToLower(attr(se, "Type")), kind) {
				return attr(se, "Target")
			}
		}
	}
}

// relationshipTarget returns the target of the relationship with the given id.
func relationshipTarget(data []byte, rID string) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" && attr(se, "Id") == rID {
			return attr(se, "Target")
		}
	}
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// resolveRelativePath resolves a relationship target against the directory
// of the part that owns the relationship.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	dir := baseDir
	for strings.HasPrefix(target, "../") {
		target = strings.TrimPrefix(target, "../")
		if idx := strings.LastIndex(dir, "/"); idx >= 0 {
			dir = dir[:idx]
		} else {
			dir = ""
		}
	}
	if dir == "" {
		return target
	}
	return dir + "/" + target
}
