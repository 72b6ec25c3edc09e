// Package parser turns table rows and free-text lines into candidate
// transactions. Three strategies live here: RowBuilder for interpreted
// tables, Cascade for single text lines and ContextExtractor as the page-level
// last resort.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
)

// DefaultTablePaymentMethod is attached to candidates read from tables.
const DefaultTablePaymentMethod = "UPI"

// minDescriptionLen is the shortest description accepted from a row scan.
const minDescriptionLen = 3

// RowBuilder converts the data rows of an interpreted table into candidates.
type RowBuilder struct {
	Policy        normalizer.AmountPolicy
	PaymentMethod string
}

// rowFields accumulates values for one row before validation.
type rowFields struct {
	date      time.Time
	desc      string
	descCol   int
	amount    decimal.Decimal
	hasAmount bool
	txType    statement.TransactionType
	hasType   bool
	status    statement.Status
	hasStatus bool
	id        string

	// first parse failure per field, reported if the field stays unset
	dateErr   error
	amountErr error
}

// BuildTable converts every non-blank data row of layout. Rows that cannot be
// resolved are returned as record errors and never abort the table.
func (b RowBuilder) BuildTable(layout sniffer.Layout, page, table int) ([]statement.CandidateTransaction, []statement.RecordError) {
	var (
		candidates []statement.CandidateTransaction
		skipped    []statement.RecordError
	)
	for i, row := range layout.Data {
		if isBlank(row) {
			continue
		}
		c, err := b.Build(row, layout.Roles, page, table, layout.DataOffset+i)
		if err != nil {
			var recErr statement.RecordError
			if errors.As(err, &recErr) {
				skipped = append(skipped, recErr)
			}
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, skipped
}

// Build converts a single row. The returned error is a statement.RecordError.
func (b RowBuilder) Build(row statement.RawRow, roles sniffer.ColumnRoleMap, page, table, rowIdx int) (statement.CandidateTransaction, error) {
	f := rowFields{descCol: -1}
	b.applyRoles(&f, row, roles)
	b.scanRow(&f, row)

	recErr := func(field string, cause error) error {
		msg := cause.Error()
		return statement.RecordError{
			Page:    page,
			Table:   statement.IntPtr(table),
			Row:     statement.IntPtr(rowIdx),
			Field:   field,
			Message: msg,
			RawData: strings.Join(row, " | "),
			Err:     cause,
		}
	}

	if f.date.IsZero() {
		return statement.CandidateTransaction{}, recErr("date", missing("date", f.dateErr))
	}
	if f.desc == "" {
		return statement.CandidateTransaction{}, recErr("description", missing("description", nil))
	}
	if !f.hasAmount {
		return statement.CandidateTransaction{}, recErr("amount", missing("amount", f.amountErr))
	}

	c, err := statement.NewCandidate(statement.CandidateFields{
		TransactionID:   f.id,
		Date:            f.date,
		Description:     f.desc,
		Amount:          f.amount,
		TransactionType: f.txType,
		Status:          f.status,
		PaymentMethod:   b.PaymentMethod,
		Provenance: statement.Provenance{
			Page:     page,
			Table:    statement.IntPtr(table),
			Row:      statement.IntPtr(rowIdx),
			Strategy: statement.StrategyTable,
		},
		RawData: map[string]any{
			"page":    page,
			"table":   table,
			"row":     rowIdx,
			"raw_row": []string(row),
		},
	})
	if err != nil {
		return statement.CandidateTransaction{}, recErr("", err)
	}
	return c, nil
}

// roleOrder fixes the order mapped cells are read in.
var roleOrder = []sniffer.Role{
	sniffer.RoleDate,
	sniffer.RoleDescription,
	sniffer.RoleAmount,
	sniffer.RoleType,
	sniffer.RoleTransactionID,
	sniffer.RoleStatus,
}

func (b RowBuilder) applyRoles(f *rowFields, row statement.RawRow, roles sniffer.ColumnRoleMap) {
	for _, role := range roleOrder {
		col, ok := roles.Column(role)
		if !ok || col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}

		switch role {
		case sniffer.RoleDate:
			t, err := parseDateCell(value)
			if err != nil {
				f.dateErr = err
				continue
			}
			f.date = t
		case sniffer.RoleDescription:
			if desc := normalizer.CleanDescription(value); desc != "" {
				f.desc = desc
				f.descCol = col
			}
		case sniffer.RoleAmount:
			amount, err := parseAmountCell(value, b.Policy)
			if err != nil {
				f.amountErr = err
				continue
			}
			f.amount, f.hasAmount = amount, true
		case sniffer.RoleType:
			f.txType, f.hasType = normalizer.TypeFromText(value)
		case sniffer.RoleTransactionID:
			f.id = value
		case sniffer.RoleStatus:
			f.status, f.hasStatus = normalizer.StatusFromText(value)
		}
	}
}

// scanRow fills fields still unset by looking at the row's cells directly.
// The first cell matching a field wins.
func (b RowBuilder) scanRow(f *rowFields, row statement.RawRow) {
	if f.date.IsZero() {
		for _, cell := range row {
			if tok, ok := normalizer.FindDate(cell); ok {
				if t, err := normalizer.ParseDate(tok); err == nil {
					f.date = t
					break
				}
			}
		}
	}

	if f.desc == "" {
		for col, cell := range row {
			if desc, ok := descriptionCandidate(cell); ok {
				f.desc, f.descCol = desc, col
				break
			}
		}
	}

	if !f.hasAmount {
		for _, cell := range row {
			if amount, ok := findAmountInCell(cell, b.Policy); ok {
				f.amount, f.hasAmount = amount, true
				break
			}
		}
	}

	if !f.hasType {
		f.txType, f.hasType = normalizer.TypeFromText(row...)
	}

	if f.id == "" {
		for _, cell := range row {
			if id, ok := normalizer.FindTransactionID(cell); ok {
				f.id = id
				break
			}
		}
	}

	if !f.hasStatus {
		for col, cell := range row {
			if col == f.descCol {
				continue
			}
			if status, ok := normalizer.StatusFromText(cell); ok {
				f.status, f.hasStatus = status, true
				break
			}
		}
	}
}

// descriptionCandidate accepts a cell that is not a date, amount, ID or bare
// keyword and still has at least three characters after cleaning.
func descriptionCandidate(cell string) (string, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", false
	}
	if normalizer.HasDateToken(cell) || normalizer.IsAmount(cell) ||
		normalizer.HasTransactionID(cell) || normalizer.IsKeywordOnly(cell) {
		return "", false
	}
	desc := normalizer.CleanDescription(cell)
	if len([]rune(desc)) < minDescriptionLen {
		return "", false
	}
	return desc, true
}

func parseDateCell(value string) (time.Time, error) {
	t, err := normalizer.ParseDate(value)
	if err == nil {
		return t, nil
	}
	if tok, ok := normalizer.FindDate(value); ok {
		return normalizer.ParseDate(tok)
	}
	return time.Time{}, err
}

func parseAmountCell(value string, policy normalizer.AmountPolicy) (decimal.Decimal, error) {
	amount, err := normalizer.ParseAmount(value, policy)
	if err == nil {
		return amount, nil
	}
	if tok, ok := normalizer.FindCurrencyAmount(value); ok {
		return normalizer.ParseAmount(tok, policy)
	}
	return decimal.Zero, err
}

func findAmountInCell(cell string, policy normalizer.AmountPolicy) (decimal.Decimal, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return decimal.Zero, false
	}
	if normalizer.IsAmount(cell) {
		if amount, err := normalizer.ParseAmount(cell, policy); err == nil {
			return amount, true
		}
	}
	if tok, ok := normalizer.FindCurrencyAmount(cell); ok {
		if amount, err := normalizer.ParseAmount(tok, policy); err == nil {
			return amount, true
		}
	}
	return decimal.Zero, false
}

func missing(field string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", statement.ErrMissingField, field, cause)
	}
	return fmt.Errorf("%w: %s", statement.ErrMissingField, field)
}

func isBlank(row statement.RawRow) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
