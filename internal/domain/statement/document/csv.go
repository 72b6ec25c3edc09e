package document

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
)

// CSV is a delimited export decoded as one page holding one table.
type CSV struct {
	data []byte
}

func NewCSV(data []byte) *CSV {
	return &CSV{data: data}
}

func (c *CSV) Pages(ctx context.Context) ([]statement.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := bytes.TrimPrefix(c.data, []byte("\uFEFF"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffer.DetectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", statement.ErrDocumentUnreadable, err)
	}

	var table statement.RawTable
	for _, rec := range records {
		row := normalizeRow(rec)
		if len(row) == 0 {
			continue
		}
		table = append(table, row)
	}

	page := statement.RawPage{Index: 0}
	if len(table) > 0 {
		page.Tables = []statement.RawTable{table}
	}
	return []statement.RawPage{page}, nil
}
