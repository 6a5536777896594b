package reportq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format selects an output encoding
type Format string

const (
	// FormatStructured is the json columns and data shape
	FormatStructured Format = "json"
	// FormatText is the tab separated download
	FormatText Format = "csv"
	// FormatXLSX is a single sheet workbook download
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a request value to a Format, empty meaning structured
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatStructured, nil
	case "csv", "txt", "text":
		return FormatText, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Filename is the download name for a report called name
// tab text keeps the .csv suffix
func (f Format) Filename(name string) string {
	switch f {
	case FormatXLSX:
		return name + ".xlsx"
	case FormatText:
		return name + ".csv"
	}
	return name + ".json"
}

// ContentType is the declared media type of the download
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatText:
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// EncodeText renders headers and rows tab separated, one line each
// there is no trailing newline
func EncodeText(res Result) string {
	lines := make([]string, 0, len(res.Data)+1)
	lines = append(lines, strings.Join(res.Columns, "\t"))
	for _, row := range res.Data {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cellText(c)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// EncodeXLSX renders the result as one sheet with a bold header row
func EncodeXLSX(res Result, sheet string) ([]byte, error) {
	if sheet == "" {
		sheet = "Report"
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range res.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, header); err != nil {
			return nil, err
		}
	}
	for r, row := range res.Data {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	for i := range res.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
