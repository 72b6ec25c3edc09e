package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// PDF is a text-layer PDF. Table detection is not attempted; each page is
// rebuilt line by line from the text rows the PDF reader reports.
type PDF struct {
	data []byte
}

func NewPDF(data []byte) *PDF {
	return &PDF{data: data}
}

// Pages decodes every page. The pdf package panics on some malformed files,
// so panics are reported as ErrDocumentUnreadable.
func (p *PDF) Pages(ctx context.Context) (pages []statement.RawPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: pdf reader: %v", statement.ErrDocumentUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(p.data), int64(len(p.data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", statement.ErrDocumentUnreadable, err)
	}
	n := reader.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("%w: %w", statement.ErrDocumentUnreadable, errors.New("pdf has no pages"))
	}

	pages = make([]statement.RawPage, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		raw := statement.RawPage{Index: i - 1}
		if !page.V.IsNull() {
			text, err := pageText(page)
			if err != nil {
				return nil, fmt.Errorf("%w: page %d: %w", statement.ErrDocumentUnreadable, i, err)
			}
			raw.Text = text
		}
		pages = append(pages, raw)
	}
	return pages, nil
}

func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(normalizeText(strings.Join(parts, " ")))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
