// Package report renders per-run statistics as text or CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names, in report order.
const (
	FieldDirectory = "directory"
	FieldMinimum   = "minimum"
	FieldMaximum   = "maximum"
	FieldAverage   = "average"
	FieldCollect   = "collect"
)

// Record is the summary of one run directory.
type Record struct {
	Directory string
	Minimum   int64
	Maximum   int64
	Average   float64
	// Collect is the measured collect time in seconds, if requested.
	Collect *float64
}

// Fields returns the ordered column names for a report.
func Fields(withCollect bool) []string {
	fields := []string{FieldDirectory, FieldMinimum, FieldMaximum, FieldAverage}
	if withCollect {
		fields = append(fields, FieldCollect)
	}
	return fields
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Value returns the plain decimal text of the named field.
func (r Record) Value(field string) string {
	switch field {
	case FieldDirectory:
		return r.Directory
	case FieldMinimum:
		return strconv.FormatInt(r.Minimum, 10)
	case FieldMaximum:
		return strconv.FormatInt(r.Maximum, 10)
	case FieldAverage:
		return formatFloat(r.Average)
	case FieldCollect:
		if r.Collect == nil {
			return ""
		}
		return formatFloat(*r.Collect)
	}
	return ""
}

// WriteText writes one "key=value ..." line per record.
func WriteText(w io.Writer, records []Record, fields []string) error {
	for _, rec := range records {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f+"="+rec.Value(f))
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

// EncodeCSV writes a header row and one row per record.
func EncodeCSV(w io.Writer, records []Record, fields []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	row := make([]string, len(fields))
	for _, rec := range records {
		for i, f := range fields {
			row[i] = rec.Value(f)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the report to path, replacing any existing file.
func WriteCSV(path string, records []Record, fields []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeCSV(f, records, fields); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads a report written by WriteCSV.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading %s: missing header", path)
	}

	header := rows[0]
	var records []Record
	for line, row := range rows[1:] {
		var rec Record
		for i, field := range header {
			if err := rec.set(field, row[i]); err != nil {
				return nil, fmt.Errorf("%s:%d: %s: %w", path, line+2, field, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Record) set(field, value string) error {
	var err error
	switch field {
	case FieldDirectory:
		r.Directory = value
	case FieldMinimum:
		r.Minimum, err = strconv.ParseInt(value, 10, 64)
	case FieldMaximum:
		r.Maximum, err = strconv.ParseInt(value, 10, 64)
	case FieldAverage:
		r.Average, err = strconv.ParseFloat(value, 64)
	case FieldCollect:
		if value == "" {
			return nil
		}
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		r.Collect = &v
	default:
		return fmt.Errorf("unknown column")
	}
	return err
}
