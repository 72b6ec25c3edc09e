package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

const (
	// DefaultContextWindow is the number of characters kept on each side of a date token.
	DefaultContextWindow = 100
	// UnknownMerchant is used when no merchant text survives in the window.
	UnknownMerchant = "Unknown Merchant"
)

// fallbackDatePatterns are scanned in order over the whole page. A date can
// match more than one pattern; the duplicates collapse during deduplication.
var fallbackDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b[A-Za-z]{3}\s+\d{1,2},\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+[A-Za-z]{3}\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+[A-Za-z]+\s+\d{4}\b`),
}

var merchantPatterns = []*regexp.Regexp{
	// Amazon.in, flipkart.com
	regexp.MustCompile(`[A-Za-z0-9 \t.]+(?:\.co\.in|\.in|\.com)`),
	regexp.MustCompile(`[A-Za-z]+(?:[ \t]+[A-Za-z]+)*`),
}

// ContextExtractor is the last-resort strategy for pages where no cascade rule
// matched: it looks around every bare date for an amount and a merchant.
type ContextExtractor struct {
	Policy        normalizer.AmountPolicy
	PaymentMethod string
	Window        int
}

// NewContextExtractor returns an extractor with the given window radius;
// a non-positive window uses DefaultContextWindow.
func NewContextExtractor(policy normalizer.AmountPolicy, paymentMethod string, window int) *ContextExtractor {
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &ContextExtractor{Policy: policy, PaymentMethod: paymentMethod, Window: window}
}

// ParsePage scans text for date tokens and builds a candidate from each
// window that also holds a currency amount.
func (e *ContextExtractor) ParsePage(text string, page int) ([]statement.CandidateTransaction, []statement.RecordError) {
	var (
		candidates []statement.CandidateTransaction
		skipped    []statement.RecordError
	)

	for _, re := range fallbackDatePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			cand, err := e.fromWindow(text, loc[0], loc[1], page)
			if err != nil {
				skipped = append(skipped, *err)
				continue
			}
			candidates = append(candidates, cand)
		}
	}
	return candidates, skipped
}

func (e *ContextExtractor) fromWindow(text string, start, end, page int) (statement.CandidateTransaction, *statement.RecordError) {
	dateTok := text[start:end]
	window := contextWindow(text, start, end, e.Window)
	lineIdx := strings.Count(text[:start], "\n")

	recErr := func(field string, cause error) *statement.RecordError {
		return &statement.RecordError{
			Page:    page,
			Line:    statement.IntPtr(lineIdx),
			Field:   field,
			Message: cause.Error(),
			RawData: window,
			Err:     cause,
		}
	}

	amountTok, ok := normalizer.FindCurrencyAmount(window)
	if !ok {
		return statement.CandidateTransaction{}, recErr("amount", fmt.Errorf("%w: no amount near %q", statement.ErrMissingField, dateTok))
	}
	amount, err := normalizer.ParseAmount(amountTok, e.Policy)
	if err != nil {
		return statement.CandidateTransaction{}, recErr("amount", err)
	}
	date, err := normalizer.ParseDate(dateTok)
	if err != nil {
		return statement.CandidateTransaction{}, recErr("date", err)
	}

	merchant := MerchantFromContext(window, dateTok, amountTok)

	cand, err := statement.NewCandidate(statement.CandidateFields{
		Date:            date,
		Description:     normalizer.CleanDescription(merchant),
		Amount:          amount,
		TransactionType: statement.Debit,
		Status:          statement.StatusSuccess,
		PaymentMethod:   e.PaymentMethod,
		Provenance: statement.Provenance{
			Page:     page,
			Line:     statement.IntPtr(lineIdx),
			Strategy: statement.StrategyFallback,
		},
		RawData: map[string]any{
			"page":       page,
			"date_token": dateTok,
			"amount":     amountTok,
			"context":    window,
		},
	})
	if err != nil {
		return statement.CandidateTransaction{}, recErr("", err)
	}
	return cand, nil
}

// MerchantFromContext strips the date and amount tokens from window and
// returns the first domain-style name, else the first alphabetic run, longer
// than two characters.
func MerchantFromContext(window, dateTok, amountTok string) string {
	clean := strings.ReplaceAll(window, dateTok, " ")
	clean = strings.ReplaceAll(clean, amountTok, " ")

	for _, re := range merchantPatterns {
		for _, m := range re.FindAllString(clean, -1) {
			merchant := strings.TrimSpace(m)
			if utf8.RuneCountInString(merchant) > 2 && !allDigits(merchant) {
				return merchant
			}
		}
	}
	return UnknownMerchant
}

// contextWindow returns up to radius runes on either side of text[start:end].
func contextWindow(text string, start, end, radius int) string {
	from := start
	for n := 0; n < radius && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < radius && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return text[from:to]
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
