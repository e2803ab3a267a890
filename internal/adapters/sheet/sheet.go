// Package sheet reads spreadsheet inputs into tables and writes the
// consolidated table back out. .xlsx and .csv are supported.
package sheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/debtscore/internal/domain/table"
)

// Supported extensions.
const (
	ExtXLSX = ".xlsx"
	ExtCSV  = ".csv"
)

// Name derives a table name from a file path: the base name without
// extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Read loads the first sheet of an .xlsx file or a whole .csv file. The
// first row is the header; blank cells are nil and fully blank rows are
// skipped.
func Read(ctx context.Context, path string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXLSX:
		rows, err = readXLSX(path)
	case ExtCSV:
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrRead, path, err)
	}
	return build(Name(path), rows)
}

// Write stores t at path, choosing the format from the extension.
func Write(ctx context.Context, path string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXLSX:
		err = writeXLSX(path, t)
	case ExtCSV:
		err = writeCSV(path, t)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, path, err)
	}
	return nil
}

func build(name string, rows [][]string) (*table.Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, name)
	}
	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	t := table.New(name, header)
	for _, raw := range rows[1:] {
		row := make([]any, len(header))
		blank := true
		for j := 0; j < len(header) && j < len(raw); j++ {
			if strings.TrimSpace(raw[j]) == "" {
				continue
			}
			row[j] = raw[j]
			blank = false
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}
