package document

import (
	"context"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Text is a plain-text export. Form feeds separate pages.
type Text struct {
	text string
}

func NewText(text string) *Text {
	return &Text{text: text}
}

func (t *Text) Pages(ctx context.Context) ([]statement.RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(t.text, "\uFEFF")
	parts := strings.Split(text, "\f")
	pages := make([]statement.RawPage, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, statement.RawPage{Index: i, Text: normalizeText(p)})
	}
	return pages, nil
}
