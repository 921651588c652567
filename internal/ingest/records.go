// Package ingest turns POS export files into sales and order rows.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRecords reads every row of a CSV file, or of the first sheet of an
// XLSX workbook, chosen by the file extension.
func ReadRecords(name string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return readSheet(name, r)
	case ".csv", "":
		return readCSV(name, r)
	default:
		return nil, fmt.Errorf("unsupported export format %q", filepath.Ext(name))
	}
}

func readCSV(name string, r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	// Excel writes a UTF-8 BOM in front of the header.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return records, nil
}

func readSheet(name string, r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", name)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", name, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", name, err)
	}
	return records, nil
}

// columns maps trimmed, case-folded header names to their index.
type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	return cols
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func (c columns) has(name string) bool {
	_, ok := c[normalizeHeader(name)]
	return ok
}

func (c columns) require(names ...string) error {
	for _, name := range names {
		if !c.has(name) {
			return fmt.Errorf("missing required column: %s", name)
		}
	}
	return nil
}

func (c columns) get(record []string, name string) string {
	if idx, ok := c[normalizeHeader(name)]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
