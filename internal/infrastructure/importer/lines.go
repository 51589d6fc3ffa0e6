// Package importer reads reconciliation input files for the batch CLI:
// plain text (one description per line), CSV, and XLSX worksheets.
package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Line is one reconciliation input: a free-text description and an
// optional product code.
type Line struct {
	Code        string
	Description string
}

// ReadFile reads input lines from path, dispatching on the extension:
// .csv and .xlsx are parsed as tables (one column = description; two or
// more columns = code, description), anything else as plain text lines.
// Blank lines are skipped; skipHeader drops the first non-blank row.
func ReadFile(path string, skipHeader bool) ([]Line, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path, skipHeader)
	case ".xlsx":
		return readXLSX(path, skipHeader)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		return ReadPlain(file, skipHeader)
	}
}

// ReadPlain reads one description per line from r.
func ReadPlain(r io.Reader, skipHeader bool) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, Line{Description: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return dropHeader(lines, skipHeader), nil
}

func readCSV(path string, skipHeader bool) ([]Line, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are common in exported invoices

	var lines []Line
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		if line, ok := lineFromRecord(record); ok {
			lines = append(lines, line)
		}
	}
	return dropHeader(lines, skipHeader), nil
}

func readXLSX(path string, skipHeader bool) ([]Line, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	rows, err := file.GetRows(file.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}

	var lines []Line
	for _, record := range rows {
		if line, ok := lineFromRecord(record); ok {
			lines = append(lines, line)
		}
	}
	return dropHeader(lines, skipHeader), nil
}

// lineFromRecord maps a table row to a Line. Single-column rows carry only
// a description; wider rows carry code then description.
func lineFromRecord(record []string) (Line, bool) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	switch {
	case len(record) == 0:
		return Line{}, false
	case len(record) == 1:
		if record[0] == "" {
			return Line{}, false
		}
		return Line{Description: record[0]}, true
	default:
		if record[0] == "" && record[1] == "" {
			return Line{}, false
		}
		return Line{Code: record[0], Description: record[1]}, true
	}
}

func dropHeader(lines []Line, skipHeader bool) []Line {
	if skipHeader && len(lines) > 0 {
		return lines[1:]
	}
	return lines
}
