package simulate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"latentlab/binocular/pkg/model"
)

// WriteCSV writes a dataset with a ystar,x1..xp,z1..zq header.
func WriteCSV(d *model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ystar"}
	for c := 1; c <= d.P(); c++ {
		header = append(header, fmt.Sprintf("x%d", c))
	}
	for c := 1; c <= d.Q(); c++ {
		header = append(header, fmt.Sprintf("z%d", c))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	record := make([]string, len(header))
	for i := 0; i < d.N(); i++ {
		record[0] = strconv.Itoa(d.YStar(i))
		for c, v := range d.XRow(i) {
			record[1+c] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		for c, v := range d.ZRow(i) {
			record[1+d.P()+c] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write dataset: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV reads a dataset written by WriteCSV. Column counts for X and Z are
// recovered from the header prefixes.
func ReadCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("read dataset %q: no data rows", path)
	}

	header := records[0]
	if len(header) == 0 || header[0] != "ystar" {
		return nil, fmt.Errorf("read dataset %q: first column must be ystar", path)
	}
	var p, q int
	for _, col := range header[1:] {
		switch {
		case strings.HasPrefix(col, "x"):
			p++
		case strings.HasPrefix(col, "z"):
			q++
		default:
			return nil, fmt.Errorf("read dataset %q: unexpected column %q", path, col)
		}
	}
	if 1+p+q != len(header) {
		return nil, fmt.Errorf("read dataset %q: malformed header", path)
	}

	n := len(records) - 1
	ystar := make([]int, n)
	x := make([][]float64, n)
	z := make([][]float64, n)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("read dataset %q: row %d has %d fields, want %d", path, i+1, len(rec), len(header))
		}
		ystar[i], err = strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read dataset %q: row %d: %w", path, i+1, err)
		}
		x[i] = make([]float64, p)
		z[i] = make([]float64, q)
		for c := 0; c < p; c++ {
			if x[i][c], err = strconv.ParseFloat(rec[1+c], 64); err != nil {
				return nil, fmt.Errorf("read dataset %q: row %d: %w", path, i+1, err)
			}
		}
		for c := 0; c < q; c++ {
			if z[i][c], err = strconv.ParseFloat(rec[1+p+c], 64); err != nil {
				return nil, fmt.Errorf("read dataset %q: row %d: %w", path, i+1, err)
			}
		}
	}
	return model.NewDataset(ystar, x, z)
}
