package statement

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() CandidateFields {
	return CandidateFields{
		TransactionID: " TXN123 ",
		Date:          time.Date(2024, 1, 15, 13, 45, 0, 0, time.FixedZone("IST", 5*3600+1800)),
		Description:   "  Amazon.in ",
		Amount:        decimal.RequireFromString("1299.005"),
		PaymentMethod: "PhonePe",
		Provenance:    Provenance{Page: 2, Line: IntPtr(4), Strategy: StrategyCascade},
		RawData:       map[string]any{"line": "raw"},
	}
}

func TestNewCandidate(t *testing.T) {
	c, err := NewCandidate(validFields())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), c.Date)
	assert.Equal(t, "Amazon.in", c.Description)
	assert.Equal(t, "1299.01", c.Amount.StringFixed(2))
	assert.Equal(t, Debit, c.TransactionType)
	assert.Equal(t, StatusSuccess, c.Status)
	require.NotNil(t, c.TransactionID)
	assert.Equal(t, "TXN123", *c.TransactionID)
	assert.JSONEq(t, `{"line":"raw"}`, string(c.RawData))
}

func TestNewCandidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CandidateFields)
		want   error
	}{
		{"no date", func(f *CandidateFields) { f.Date = time.Time{} }, ErrMissingField},
		{"blank description", func(f *CandidateFields) { f.Description = "   " }, ErrMissingField},
		{"zero amount", func(f *CandidateFields) { f.Amount = decimal.Zero }, ErrInvalidCandidate},
		{"rounds to zero", func(f *CandidateFields) { f.Amount = decimal.RequireFromString("0.004") }, ErrInvalidCandidate},
		{"negative amount", func(f *CandidateFields) { f.Amount = decimal.NewFromInt(-5) }, ErrInvalidCandidate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			_, err := NewCandidate(f)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNewCandidate_KeepsKnownTypeAndStatus(t *testing.T) {
	f := validFields()
	f.TransactionType = Credit
	f.Status = StatusPending
	f.TransactionID = ""

	c, err := NewCandidate(f)
	require.NoError(t, err)
	assert.Equal(t, Credit, c.TransactionType)
	assert.Equal(t, StatusPending, c.Status)
	assert.Nil(t, c.TransactionID)

	f.TransactionType = "refund"
	f.Status = "unknown"
	c, err = NewCandidate(f)
	require.NoError(t, err)
	assert.Equal(t, Debit, c.TransactionType)
	assert.Equal(t, StatusSuccess, c.Status)
}

func TestCandidateTransaction_MarshalJSON(t *testing.T) {
	c, err := NewCandidate(validFields())
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2024-01-15", got["date"])
	assert.Equal(t, "1299.01", got["amount"])
	assert.Equal(t, "TXN123", got["transaction_id"])
	assert.Equal(t, "debit", got["transaction_type"])
	prov, ok := got["provenance"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cascade", prov["strategy"])
	assert.EqualValues(t, 4, prov["line"])
	assert.NotContains(t, prov, "table")
}

func TestCandidateTransaction_Money(t *testing.T) {
	c, err := NewCandidate(validFields())
	require.NoError(t, err)
	m := c.Money("INR")
	assert.Equal(t, "₹1,299.01", m.Display())
	assert.Equal(t, "INR", m.Currency())
}

func TestRecordError(t *testing.T) {
	cause := errors.New("bad date")
	err := RecordError{Page: 1, Table: IntPtr(0), Row: IntPtr(3), Field: "date", Message: "bad date", Err: cause}

	assert.Equal(t, "page 1, table 0, row 3, field date: bad date", err.Error())
	assert.True(t, errors.Is(err, cause))

	line := RecordError{Page: 2, Line: IntPtr(7), Message: "no amount"}
	assert.Equal(t, "page 2, line 7: no amount", line.Error())
}

func TestPages(t *testing.T) {
	doc := Pages{{Index: 0, Text: "a"}, {Index: 1}}
	pages, err := doc.Pages(context.Background())
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}
