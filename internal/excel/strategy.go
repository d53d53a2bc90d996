package excel

import (
	"context"
	"strings"
)

// Row is one data row keyed by its trimmed header text. Number is the 1-based
// line in the source file, so the first data row under the header is 2.
type Row struct {
	Number int
	Cells  map[string]string
}

// Get returns the trimmed cell under header, or "" when the column is absent.
func (r Row) Get(header string) string {
	return strings.TrimSpace(r.Cells[header])
}

// Has reports whether the header exists on this row at all.
func (r Row) Has(header string) bool {
	_, ok := r.Cells[header]
	return ok
}

// ParsingStrategy turns an uploaded tabular file into header-keyed rows.
type ParsingStrategy interface {
	Parse(ctx context.Context, data []byte) ([]Row, error)
}

type ExcelStrategy struct {
	parser *Parser
}

func NewExcelStrategy() ParsingStrategy {
	return &ExcelStrategy{parser: NewParser()}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]Row, error) {
	return s.parser.Parse(ctx, data)
}

type CSVStrategy struct {
	parser *CSVParser
}

func NewCSVStrategy() ParsingStrategy {
	return &CSVStrategy{parser: NewCSVParser()}
}

func (s *CSVStrategy) Parse(ctx context.Context, data []byte) ([]Row, error) {
	return s.parser.Parse(ctx, data)
}

// rowsFromGrid converts a header-first grid into rows, dropping rows with no content.
func rowsFromGrid(grid [][]string) []Row {
	if len(grid) == 0 {
		return nil
	}

	header := make([]string, len(grid[0]))
	for i, col := range grid[0] {
		header[i] = strings.TrimSpace(col)
	}

	var rows []Row
	for i, record := range grid[1:] {
		cells := make(map[string]string, len(header))
		blank := true
		for idx, name := range header {
			if name == "" {
				continue
			}
			if _, dup := cells[name]; dup {
				continue
			}
			value := ""
			if idx < len(record) {
				value = strings.TrimSpace(record[idx])
			}
			if value != "" {
				blank = false
			}
			cells[name] = value
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Number: i + 2, Cells: cells})
	}
	return rows
}
