// Package statement defines the data model shared by the statement extraction engine.
// Pages and tables come from a document-layout collaborator; the engine turns them
// into validated CandidateTransaction records.
package statement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/pkg/money"
)

var (
	// ErrDocumentUnreadable is returned when the document cannot be opened or decoded.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrMissingField marks a record without a resolvable date, description or amount.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidCandidate marks a record that violates a CandidateTransaction invariant.
	ErrInvalidCandidate = errors.New("invalid candidate")
)

// RawRow is one table row. Cells are already whitespace-trimmed; "" means no value.
type RawRow []string

// RawTable is an ordered sequence of rows.
type RawTable []RawRow

// RawPage is a single decoded page.
type RawPage struct {
	Index  int
	Text   string
	Tables []RawTable
}

// Document is the boundary to the document-layout collaborator.
// Pages returns every page of a fully decoded document, in page order.
type Document interface {
	Pages(ctx context.Context) ([]RawPage, error)
}

// Pages is an in-memory Document.
type Pages []RawPage

// Pages implements Document.
func (p Pages) Pages(_ context.Context) ([]RawPage, error) {
	return p, nil
}

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

// Status is the settlement status of a transaction.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// Strategy names the extraction path that produced a candidate.
type Strategy string

const (
	StrategyTable    Strategy = "table"
	StrategyCascade  Strategy = "cascade"
	StrategyFallback Strategy = "fallback"
)

// Provenance records where a candidate came from. Table, Row and Line are nil
// when not applicable to the strategy.
type Provenance struct {
	Page     int      `json:"page"`
	Table    *int     `json:"table,omitempty"`
	Row      *int     `json:"row,omitempty"`
	Line     *int     `json:"line,omitempty"`
	Strategy Strategy `json:"strategy"`
}

// CandidateTransaction is the engine's only output unit. Values are normalised
// when constructed by NewCandidate and are not modified afterwards.
type CandidateTransaction struct {
	TransactionID   *string         `json:"transaction_id,omitempty"`
	Date            time.Time       `json:"-"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType TransactionType `json:"transaction_type"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	Provenance      Provenance      `json:"provenance"`
	RawData         json.RawMessage `json:"raw_data,omitempty"`
}

// CandidateFields carries unvalidated values into NewCandidate.
type CandidateFields struct {
	TransactionID   string
	Date            time.Time
	Description     string
	Amount          decimal.Decimal
	TransactionType TransactionType
	Status          Status
	PaymentMethod   string
	Provenance      Provenance
	RawData         any
}

// NewCandidate validates the fields and returns an immutable candidate.
// The description must already be cleaned; it is only trimmed here.
func NewCandidate(f CandidateFields) (CandidateTransaction, error) {
	if f.Date.IsZero() {
		return CandidateTransaction{}, fmt.Errorf("%w: date", ErrMissingField)
	}
	desc := strings.TrimSpace(f.Description)
	if desc == "" {
		return CandidateTransaction{}, fmt.Errorf("%w: description", ErrMissingField)
	}
	amount := f.Amount.Round(2)
	if !amount.IsPositive() {
		return CandidateTransaction{}, fmt.Errorf("%w: amount %s is not positive", ErrInvalidCandidate, f.Amount.String())
	}

	txType := f.TransactionType
	if txType != Credit {
		txType = Debit
	}
	status := f.Status
	switch status {
	case StatusSuccess, StatusFailed, StatusPending:
	default:
		status = StatusSuccess
	}

	c := CandidateTransaction{
		Date:            time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC),
		Description:     desc,
		Amount:          amount,
		TransactionType: txType,
		Status:          status,
		PaymentMethod:   f.PaymentMethod,
		Provenance:      f.Provenance,
	}
	if id := strings.TrimSpace(f.TransactionID); id != "" {
		c.TransactionID = &id
	}
	if f.RawData != nil {
		raw, err := json.Marshal(f.RawData)
		if err == nil {
			c.RawData = raw
		}
	}
	return c, nil
}

// DateString returns the date as YYYY-MM-DD.
func (c CandidateTransaction) DateString() string {
	return c.Date.Format(time.DateOnly)
}

// Money returns the amount as a currency value.
func (c CandidateTransaction) Money(currencyCode string) *money.Money {
	return money.NewFromDecimal(c.Amount, currencyCode)
}

// MarshalJSON adds the date in YYYY-MM-DD form and the amount with two decimals.
func (c CandidateTransaction) MarshalJSON() ([]byte, error) {
	type alias CandidateTransaction
	return json.Marshal(struct {
		alias
		Date   string `json:"date"`
		Amount string `json:"amount"`
	}{
		alias:  alias(c),
		Date:   c.DateString(),
		Amount: c.Amount.StringFixed(2),
	})
}

// RecordError describes a record-level failure. It never aborts an extraction.
type RecordError struct {
	Page    int
	Table   *int
	Row     *int
	Line    *int
	Field   string
	Message string
	RawData string
	Err     error
}

func (e RecordError) Error() string {
	loc := fmt.Sprintf("page %d", e.Page)
	if e.Table != nil {
		loc += fmt.Sprintf(", table %d", *e.Table)
	}
	if e.Row != nil {
		loc += fmt.Sprintf(", row %d", *e.Row)
	}
	if e.Line != nil {
		loc += fmt.Sprintf(", line %d", *e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s, field %s: %s", loc, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// IntPtr returns a pointer to v, for Provenance and RecordError positions.
func IntPtr(v int) *int {
	return &v
}
