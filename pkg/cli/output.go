package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is aligned plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON, FormatCSV:
		return OutputFormat(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be text, json or csv)", s)
	}
}

// Table is a rectangular result ready for rendering. Cells are pre-formatted
// strings so each command controls its own numeric precision.
type Table struct {
	Header []string
	Rows   [][]string
}

// AddRow appends a row of cells.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Float formats a float for table cells.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Formatter renders a result table, or an arbitrary value for JSON.
type Formatter interface {
	FormatTable(w io.Writer, t *Table) error
	FormatValue(w io.Writer, v interface{}) error
}

// NewFormatter creates a formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter renders tables as aligned columns.
type TextFormatter struct{}

// FormatTable writes the table with tab-aligned columns.
func (f *TextFormatter) FormatTable(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(t.Header) > 0 {
		if err := writeTabRow(tw, t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := writeTabRow(tw, row); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// FormatValue prints the value with fmt.
func (f *TextFormatter) FormatValue(w io.Writer, v interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", v)
	return err
}

func writeTabRow(w io.Writer, cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// JSONFormatter renders output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTable writes the table as an array of objects keyed by header.
func (f *JSONFormatter) FormatTable(w io.Writer, t *Table) error {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]string, len(row))
		for i, c := range row {
			if i < len(t.Header) {
				obj[t.Header[i]] = c
			}
		}
		out = append(out, obj)
	}
	return f.FormatValue(w, out)
}

// FormatValue encodes the value as JSON.
func (f *JSONFormatter) FormatValue(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// CSVFormatter renders tables as CSV with a header row.
type CSVFormatter struct{}

// FormatTable writes the header and all rows as CSV records.
func (f *CSVFormatter) FormatTable(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatValue falls back to JSON encoding, since arbitrary values have no
// natural CSV shape.
func (f *CSVFormatter) FormatValue(w io.Writer, v interface{}) error {
	return (&JSONFormatter{}).FormatValue(w, v)
}
