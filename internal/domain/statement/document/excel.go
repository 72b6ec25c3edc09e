package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Excel is an XLSX workbook. Each sheet becomes a page with one table.
type Excel struct {
	data []byte
}

func NewExcel(data []byte) *Excel {
	return &Excel{data: data}
}

func (x *Excel) Pages(ctx context.Context) ([]statement.RawPage, error) {
	f, err := excelize.OpenReader(bytes.NewReader(x.data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %w", statement.ErrDocumentUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	pages := make([]statement.RawPage, 0, len(sheets))
	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read sheet %s: %w", statement.ErrDocumentUnreadable, sheet, err)
		}

		var table statement.RawTable
		for _, cells := range rows {
			row := normalizeRow(cells)
			if len(row) == 0 {
				continue
			}
			table = append(table, row)
		}

		page := statement.RawPage{Index: i}
		if len(table) > 0 {
			page.Tables = []statement.RawTable{table}
		}
		pages = append(pages, page)
	}
	return pages, nil
}
