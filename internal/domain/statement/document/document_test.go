package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want Format
	}{
		{name: "pdf magic", file: "statement.bin", data: []byte("%PDF-1.7\n"), want: FormatPDF},
		{name: "zip magic", file: "export", data: []byte("PK\x03\x04rest"), want: FormatExcel},
		{name: "csv extension", file: "export.CSV", data: []byte("a,b"), want: FormatCSV},
		{name: "tsv extension", file: "export.tsv", data: []byte("a\tb"), want: FormatCSV},
		{name: "pdf extension", file: "broken.pdf", data: []byte("nope"), want: FormatPDF},
		{name: "default text", file: "notes", data: []byte("hello"), want: FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.file, tt.data))
		})
	}
}

func TestText_Pages(t *testing.T) {
	doc := NewText("\uFEFF15/01/2024 Amazon.in ₹1,299.00 Paid\r\n\fpage two\u00a0text")

	pages, err := doc.Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 0, pages[0].Index)
	assert.Equal(t, "15/01/2024 Amazon.in ₹1,299.00 Paid\n", pages[0].Text)
	assert.Equal(t, 1, pages[1].Index)
	assert.Equal(t, "page two text", pages[1].Text)
	assert.Empty(t, pages[1].Tables)
}

func TestCSV_Pages(t *testing.T) {
	data := []byte("\uFEFFDate;Description;Amount;Type\r\n2025-07-16; Mobile recharge ;302.00;DEBIT\r\n\r\n2025-07-17;\"Swiggy; order\";450.00;DEBIT;\r\n")

	pages, err := NewCSV(data).Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Tables, 1)

	table := pages[0].Tables[0]
	require.Len(t, table, 3)
	assert.Equal(t, statement.RawRow{"Date", "Description", "Amount", "Type"}, table[0])
	assert.Equal(t, statement.RawRow{"2025-07-16", "Mobile recharge", "302.00", "DEBIT"}, table[1])
	assert.Equal(t, statement.RawRow{"2025-07-17", "Swiggy; order", "450.00", "DEBIT"}, table[2])
}

func TestCSV_Empty(t *testing.T) {
	pages, err := NewCSV(nil).Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Tables)
}

func TestExcel_Pages(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Description", "Amount", "Type"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2025-07-16", "Mobile recharge", "302.00", "DEBIT"}))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	pages, err := NewExcel(buf.Bytes()).Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)

	require.Len(t, pages[0].Tables, 1)
	assert.Equal(t, statement.RawTable{
		{"Date", "Description", "Amount", "Type"},
		{"2025-07-16", "Mobile recharge", "302.00", "DEBIT"},
	}, pages[0].Tables[0])
	assert.Equal(t, 1, pages[1].Index)
	assert.Empty(t, pages[1].Tables)
}

func TestExcel_Unreadable(t *testing.T) {
	_, err := NewExcel([]byte("PK\x03\x04 not a workbook")).Pages(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, statement.ErrDocumentUnreadable))
}

func TestPDF_Unreadable(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("%PDF-1.4\ngarbage")} {
		pages, err := NewPDF(data).Pages(context.Background())
		require.Error(t, err)
		assert.Nil(t, pages)
		assert.True(t, errors.Is(err, statement.ErrDocumentUnreadable))
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Description,Amount\n2025-07-16,Mobile recharge,302.00\n"), 0o600))

	doc, err := Open(path)
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, doc)

	_, err = Open(filepath.Join(dir, "missing.pdf"))
	assert.True(t, errors.Is(err, statement.ErrDocumentUnreadable))

	_, err = FromBytes("blob", []byte{0xff, 0xfe, 0x00})
	assert.True(t, errors.Is(err, statement.ErrDocumentUnreadable))
}
