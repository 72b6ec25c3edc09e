// Package document adapts statement exports (PDF, XLSX, CSV/TSV, plain text)
// to the statement.Document interface consumed by the extractor.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Format identifies a supported export type.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatText  Format = "text"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// Open reads the file at path and returns a decoder for its format.
func Open(path string) (statement.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", statement.ErrDocumentUnreadable, err)
	}
	return FromBytes(filepath.Base(path), data)
}

// FromBytes picks an adapter by content, then by the extension of name.
func FromBytes(name string, data []byte) (statement.Document, error) {
	switch f := DetectFormat(name, data); f {
	case FormatPDF:
		return NewPDF(data), nil
	case FormatExcel:
		return NewExcel(data), nil
	case FormatCSV:
		return NewCSV(data), nil
	case FormatText:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: %s is not a supported format", statement.ErrDocumentUnreadable, name)
		}
		return NewText(string(data)), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", statement.ErrDocumentUnreadable, f)
	}
}

// DetectFormat sniffs magic bytes before falling back to the file extension.
func DetectFormat(name string, data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(data, zipMagic):
		return FormatExcel
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".xlsx", ".xlsm":
		return FormatExcel
	case ".csv", ".tsv":
		return FormatCSV
	default:
		return FormatText
	}
}

// normalizeText folds compatibility characters (NBSP, full-width digits)
// and drops carriage returns.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	return strings.ReplaceAll(s, "\r", "")
}

// normalizeRow trims every cell and drops trailing empty cells.
func normalizeRow(cells []string) statement.RawRow {
	row := make(statement.RawRow, len(cells))
	for i, c := range cells {
		row[i] = strings.TrimSpace(normalizeText(c))
	}
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	return row
}
