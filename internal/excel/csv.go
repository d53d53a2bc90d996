package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads comma-delimited exports with a header line. A leading BOM is
// stripped and ragged rows are tolerated.
type CSVParser struct {
	Comma rune
}

func NewCSVParser() *CSVParser {
	return &CSVParser{Comma: ','}
}

func (p *CSVParser) Parse(ctx context.Context, data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.Comma = p.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
		}
		grid = append(grid, record)
	}

	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty file", errors.ErrInvalidFileFormat)
	}

	return rowsFromGrid(grid), nil
}
