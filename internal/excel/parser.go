package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Parser reads the first worksheet of an xlsx workbook.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(ctx context.Context, data []byte) ([]Row, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}

	grid, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rows: %v", errors.ErrInvalidFileFormat, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return rowsFromGrid(grid), nil
}
