package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStatement(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AMOUNT_POLICY", "heuristic")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ENABLED", "false")
}

func TestRun_JSON(t *testing.T) {
	setEnv(t)
	path := writeStatement(t, "statement.txt", "15/01/2024  Amazon.in  ₹1,299.00  Paid\n14/01/2024 Swiggy ₹450.50 Failed\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{path}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var records []record
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &records))
	require.Len(t, records, 2)

	assert.Equal(t, "2024-01-14", records[0].Date)
	assert.Equal(t, "Food & Dining", records[0].Category)
	assert.Equal(t, "failed", records[0].Status)

	assert.Equal(t, "Amazon.in", records[1].Description)
	assert.Equal(t, "1299.00", records[1].Amount)
	assert.Equal(t, "₹1,299.00", records[1].Display)
	assert.Equal(t, "INR", records[1].Currency)
	assert.Equal(t, "Shopping", records[1].Category)
	assert.Equal(t, "PhonePe", records[1].PaymentMethod)
	assert.Equal(t, "cascade", records[1].Strategy)
}

func TestRun_CSV(t *testing.T) {
	setEnv(t)
	path := writeStatement(t, "statement.csv", "Date,Description,Amount,Type\n2025-07-16,Mobile recharge,302.00,DEBIT\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-format", "csv", path}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "date,description,amount,display,currency,transaction_type"))
	assert.Contains(t, lines[1], "2025-07-16,Mobile recharge,302.00")
	assert.Contains(t, lines[1], "Utilities")
	assert.Contains(t, lines[1], "UPI")
}

func TestRun_PolicyFlag(t *testing.T) {
	setEnv(t)
	t.Setenv("AMOUNT_POLICY", "")
	path := writeStatement(t, "statement.csv", "Date,Description,Amount\n2025-07-16,Mobile recharge,30200\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-policy", "simple", path}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var records []record
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "302.00", records[0].Amount)
	assert.Empty(t, os.Getenv("AMOUNT_POLICY"))
}

func TestRun_InvalidPolicyFlag(t *testing.T) {
	setEnv(t)
	path := writeStatement(t, "statement.csv", "Date,Description,Amount\n2025-07-16,Mobile recharge,302.00\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-policy", "guess", path}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "must be simple or heuristic")
	assert.Empty(t, stdout.String())
}

func TestRun_NoTransactions(t *testing.T) {
	setEnv(t)
	path := writeStatement(t, "statement.txt", "Statement summary\nNo activity this period\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{path}, &stdout, &stderr)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "no transactions found")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args func(t *testing.T) []string
		want int
	}{
		{
			name: "missing file",
			args: func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "missing.pdf")} },
			want: exitFailure,
		},
		{
			name: "unreadable pdf",
			args: func(t *testing.T) []string { return []string{writeStatement(t, "broken.pdf", "%PDF-1.4 garbage")} },
			want: exitFailure,
		},
		{
			name: "no policy",
			env:  map[string]string{"AMOUNT_POLICY": ""},
			args: func(t *testing.T) []string { return []string{writeStatement(t, "s.txt", "x")} },
			want: exitUsage,
		},
		{
			name: "bad format",
			args: func(t *testing.T) []string { return []string{"-format", "xml", writeStatement(t, "s.txt", "x")} },
			want: exitUsage,
		},
		{
			name: "no file argument",
			args: func(t *testing.T) []string { return nil },
			want: exitUsage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(context.Background(), tt.args(t), &stdout, &stderr))
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_Metrics(t *testing.T) {
	setEnv(t)
	t.Setenv("METRICS_ENABLED", "true")
	path := writeStatement(t, "statement.txt", "15/01/2024  Amazon.in  ₹1,299.00  Paid\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{path}, &stdout, &stderr)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr.String(), `statement_pages_processed_total{strategy="cascade"} 1`)
	assert.Contains(t, stderr.String(), "statement_extraction_duration_seconds")
}
