package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
)

const maxColumnWidth = 40

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1)

// grid is a value flattened to rows of text.
type grid struct {
	headers []string
	rows    [][]string
}

// render writes v in format. xlsx needs a file path in output; the other
// formats write to output when it is set and to w otherwise.
func render(w io.Writer, format, title string, v any, output string) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatCSV:
		return writeCSV(w, tabulate(v))
	case FormatXLSX:
		if output == "" {
			return fmt.Errorf("xlsx output needs --output")
		}
		if err := writeXLSX(output, title, tabulate(v)); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Report written to: %s\n", output)
		return err
	case FormatTable, "":
		return writeTable(w, title, tabulate(v))
	default:
		return fmt.Errorf("unknown format %q (table, json, csv, xlsx)", format)
	}
}

func writeTable(w io.Writer, title string, g grid) error {
	if len(g.rows) == 0 {
		_, err := fmt.Fprintf(w, "%s\nNo rows.\n", titleStyle.Render(title))
		return err
	}

	columns := make([]table.Column, len(g.headers))
	for i, h := range g.headers {
		width := len(h)
		for _, row := range g.rows {
			width = max(width, len(row[i]))
		}
		columns[i] = table.Column{Title: h, Width: min(width, maxColumnWidth)}
	}
	rows := make([]table.Row, len(g.rows))
	for i, row := range g.rows {
		rows[i] = table.Row(row)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// Static output, nothing is selected.
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), t.View()))
	return err
}

func writeCSV(w io.Writer, g grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.headers); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := cw.WriteAll(g.rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeXLSX(path, title string, g grid) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(title)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range g.headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for r, row := range g.rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			// Numbers stay numeric so the sheet can sum them.
			var v any = value
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				v = n
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetName trims title to the 31 characters a sheet name allows.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, title)
	if name == "" {
		return "Sheet1"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

var timeType = reflect.TypeOf(time.Time{})

// tabulate flattens a report. A slice of structs becomes one row per
// element; a struct or map becomes field/value rows. Nested collections are
// left out; the json format carries them.
func tabulate(v any) grid {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return grid{headers: []string{"value"}}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elem := rv.Type().Elem()
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct && elem != timeType {
			fields := scalarFields(elem)
			g := grid{headers: fieldNames(fields)}
			for i := 0; i < rv.Len(); i++ {
				item := indirect(rv.Index(i))
				row := make([]string, len(fields))
				if item.IsValid() {
					for j, f := range fields {
						row[j] = formatScalar(item.FieldByIndex(f.Index))
					}
				}
				g.rows = append(g.rows, row)
			}
			return g
		}
		g := grid{headers: []string{"value"}}
		for i := 0; i < rv.Len(); i++ {
			g.rows = append(g.rows, []string{formatScalar(rv.Index(i))})
		}
		return g

	case reflect.Struct:
		if rv.Type() == timeType {
			return grid{headers: []string{"value"}, rows: [][]string{{formatScalar(rv)}}}
		}
		g := grid{headers: []string{"field", "value"}}
		for _, f := range scalarFields(rv.Type()) {
			g.rows = append(g.rows, []string{jsonName(f), formatScalar(rv.FieldByIndex(f.Index))})
		}
		return g

	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
		g := grid{headers: []string{"key", "value"}}
		for _, k := range keys {
			val := indirect(rv.MapIndex(k))
			if !isScalar(val.Type()) {
				continue
			}
			g.rows = append(g.rows, []string{fmt.Sprint(k), formatScalar(val)})
		}
		return g

	default:
		return grid{headers: []string{"value"}, rows: [][]string{{formatScalar(rv)}}}
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func scalarFields(t reflect.Type) []reflect.StructField {
	var out []reflect.StructField
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous || jsonName(f) == "-" {
			continue
		}
		if isScalar(f.Type) {
			out = append(out, f)
		}
	}
	return out
}

func isScalar(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func fieldNames(fields []reflect.StructField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = jsonName(f)
	}
	return names
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func formatScalar(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return ""
		}
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	}
	if s, ok := v.Interface().(fmt.Stringer); ok && v.Kind() != reflect.String {
		return s.String()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(v.Float()).Round(4).String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprint(v.Interface())
	}
}
