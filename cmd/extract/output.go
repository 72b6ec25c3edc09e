package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/FACorreiaa/statement-extractor/internal/domain/categorization"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// record is one output line: a transaction plus its category.
type record struct {
	Date          string `json:"date" csv:"date"`
	Description   string `json:"description" csv:"description"`
	Amount        string `json:"amount" csv:"amount"`
	Display       string `json:"display" csv:"display"`
	Currency      string `json:"currency" csv:"currency"`
	Type          string `json:"transaction_type" csv:"transaction_type"`
	Status        string `json:"status" csv:"status"`
	PaymentMethod string `json:"payment_method" csv:"payment_method"`
	TransactionID string `json:"transaction_id,omitempty" csv:"transaction_id"`
	Category      string `json:"category" csv:"category"`
	Page          int    `json:"page" csv:"page"`
	Strategy      string `json:"strategy" csv:"strategy"`
}

func toRecords(txs []statement.CandidateTransaction, cat *categorization.Categorizer, currency string) []record {
	records := make([]record, 0, len(txs))
	for _, tx := range txs {
		m := tx.Money(currency)
		r := record{
			Date:          tx.DateString(),
			Description:   tx.Description,
			Amount:        tx.Amount.StringFixed(2),
			Display:       m.Display(),
			Currency:      m.Currency(),
			Type:          string(tx.TransactionType),
			Status:        string(tx.Status),
			PaymentMethod: tx.PaymentMethod,
			Category:      cat.Categorize(tx.Description),
			Page:          tx.Provenance.Page,
			Strategy:      string(tx.Provenance.Strategy),
		}
		if tx.TransactionID != nil {
			r.TransactionID = *tx.TransactionID
		}
		records = append(records, r)
	}
	return records
}

func writeRecords(w io.Writer, format string, records []record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "csv":
		return gocsv.Marshal(records, w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeMetrics prints the gathered collectors in the Prometheus text format.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
