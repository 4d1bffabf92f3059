// Package source loads nucleotide-context statistics tables from CSV files,
// HTTP endpoints and MongoDB collections.
//
// All loaders produce the same shapes: a keyed [table.Table] for the
// split-triangle and conformation figures, or a [corr.Flat] matrix for the
// basepair correlation figure. Values that are absent or non-numeric parse to
// the missing sentinel rather than failing the whole load.
package source

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dnamaps/arlequin/pkg/corr"
	"github.com/dnamaps/arlequin/pkg/errors"
	"github.com/dnamaps/arlequin/pkg/table"
)

// LoadCSV reads a keyed statistics table. The first header field names the
// key column; every remaining field is a value column. Empty cells and the
// literals "NaN"/"nan" load as missing.
func LoadCSV(r io.Reader) (*table.Table, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"table needs a key column and at least one value column, header has %d fields", len(header))
	}

	keys := make([]string, len(records))
	cols := make([]table.Column, len(header)-1)
	for c := range cols {
		cols[c] = table.Column{Name: header[c+1], Values: make([]float64, len(records))}
	}
	for i, rec := range records {
		keys[i] = rec[0]
		for c := range cols {
			cols[c].Values[i] = parseCell(rec[c+1])
		}
	}
	return table.New(keys, cols...)
}

// LoadCSVFile reads a keyed statistics table from disk.
func LoadCSVFile(path string) (*table.Table, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadFlatCSV reads a correlation matrix with plain string row keys. The
// layout matches LoadCSV: key column first, one field per matrix column.
func LoadFlatCSV(r io.Reader) (*corr.Flat, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"matrix needs a key column and at least one value column, header has %d fields", len(header))
	}

	index := make([]string, len(records))
	values := make([][]float64, len(records))
	for i, rec := range records {
		index[i] = rec[0]
		row := make([]float64, len(header)-1)
		for c := range row {
			row[c] = parseCell(rec[c+1])
		}
		values[i] = row
	}
	return corr.NewFlat(index, header[1:], values)
}

// LoadFlatCSVFile reads a flat correlation matrix from disk.
func LoadFlatCSVFile(path string) (*corr.Flat, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadFlatCSV(f)
}

// LoadMatrixCSV reads a correlation matrix with two-level composite keys.
// Composite keys are written "coordinate/unit", both in the key column and
// in the header, mirroring how the analysis notebooks export them.
func LoadMatrixCSV(r io.Reader) (*corr.Matrix, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"matrix needs a key column and at least one value column, header has %d fields", len(header))
	}

	cols := make([]corr.Key, len(header)-1)
	for c, h := range header[1:] {
		key, err := splitKey(h)
		if err != nil {
			return nil, err
		}
		cols[c] = key
	}

	rows := make([]corr.Key, len(records))
	values := make([][]float64, len(records))
	for i, rec := range records {
		key, err := splitKey(rec[0])
		if err != nil {
			return nil, err
		}
		rows[i] = key
		row := make([]float64, len(cols))
		for c := range row {
			row[c] = parseCell(rec[c+1])
		}
		values[i] = row
	}
	return corr.New(rows, cols, values)
}

// LoadMatrixCSVFile reads a two-level correlation matrix from disk.
func LoadMatrixCSVFile(path string) (*corr.Matrix, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadMatrixCSV(f)
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no such table: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	return f, nil
}

// readAll reads the header and all records. encoding/csv enforces uniform
// field counts, so record width never needs re-checking.
func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "empty document")
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header")
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read records")
	}
	return header, records, nil
}

func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return table.Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return table.Missing()
	}
	return v
}

func splitKey(s string) (corr.Key, error) {
	coord, unit, ok := strings.Cut(s, "/")
	if !ok || coord == "" || unit == "" {
		return corr.Key{}, errors.New(errors.ErrCodeInvalidFormat,
			"composite key %q must be coordinate/unit", s)
	}
	return corr.Key{Coordinate: coord, Unit: unit}, nil
}
