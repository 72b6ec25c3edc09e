package normalizer

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// CreditKeywords mark money coming in. They are tested before DebitKeywords.
var CreditKeywords = []string{
	"credit", "received", "credited", "incoming", "deposit",
	"refund", "cashback", "reward", "bonus", "interest",
}

// DebitKeywords mark money going out.
var DebitKeywords = []string{
	"debit", "paid", "sent", "outgoing", "withdrawal",
	"purchase", "payment", "bill", "recharge", "transfer",
}

type statusKeywords struct {
	status   statement.Status
	keywords []string
}

// statusVocabulary is checked in order; the first status with a hit wins.
var statusVocabulary = []statusKeywords{
	{statement.StatusSuccess, []string{"success", "completed", "successful", "done", "paid"}},
	{statement.StatusFailed, []string{"failed", "declined", "rejected", "error"}},
	{statement.StatusPending, []string{"pending", "processing", "in progress"}},
}

// TransactionIDPatterns are tried in order.
var TransactionIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`TXN\d+`),
	regexp.MustCompile(`[A-Z]{2,3}\d{6,}`),
	regexp.MustCompile(`\d{10,}`),
}

// DateTokenPatterns locate date tokens inside a cell or line. Matches still
// have to pass ParseDate.
var DateTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b`),
	regexp.MustCompile(`(?i)\b[a-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+[a-z]{3,9}\.?,?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2}\b`),
}

var (
	// amountShape matches a cell that is nothing but an amount, optionally
	// with a currency marker on either side.
	amountShape = regexp.MustCompile(`(?i)^(?:₹|rs\.?|inr|\$)?\s*(?:\d{1,3}(?:,\d{2,3})+|\d{1,9})(?:\.\d{1,2})?\s*(?:₹|rs\.?|inr)?$`)
	// currencyAmount finds an amount introduced by a rupee marker anywhere in text.
	currencyAmount = regexp.MustCompile(`(?i)(?:₹|\brs\.?)\s*\d[\d,]*(?:\.\d+)?`)
)

// ContainsAny reports whether s contains any keyword.
func ContainsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// TypeFromText infers the direction from keywords in any of the given texts.
// ok is false when no keyword matched, in which case the type is Debit.
func TypeFromText(texts ...string) (statement.TransactionType, bool) {
	joined := strings.ToLower(strings.Join(texts, " "))
	if ContainsAny(joined, CreditKeywords) {
		return statement.Credit, true
	}
	if ContainsAny(joined, DebitKeywords) {
		return statement.Debit, true
	}
	return statement.Debit, false
}

// IsTypeKeyword reports whether s contains a credit or debit keyword.
func IsTypeKeyword(s string) bool {
	lower := strings.ToLower(s)
	return ContainsAny(lower, CreditKeywords) || ContainsAny(lower, DebitKeywords)
}

// StatusFromText maps status wording to a Status. ok is false when nothing matched.
func StatusFromText(s string) (statement.Status, bool) {
	lower := strings.ToLower(s)
	for _, sk := range statusVocabulary {
		if ContainsAny(lower, sk.keywords) {
			return sk.status, true
		}
	}
	return statement.StatusSuccess, false
}

// IsKeywordOnly reports whether the whole cell is a single type or status word,
// such as "DEBIT" or "Pending".
func IsKeywordOnly(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, kw := range CreditKeywords {
		if lower == kw {
			return true
		}
	}
	for _, kw := range DebitKeywords {
		if lower == kw {
			return true
		}
	}
	for _, sk := range statusVocabulary {
		for _, kw := range sk.keywords {
			if lower == kw {
				return true
			}
		}
	}
	return false
}

// FindTransactionID returns the first ID-shaped substring of s.
func FindTransactionID(s string) (string, bool) {
	for _, re := range TransactionIDPatterns {
		if m := re.FindString(s); m != "" {
			return m, true
		}
	}
	return "", false
}

// HasTransactionID reports whether s contains an ID-shaped substring.
func HasTransactionID(s string) bool {
	_, ok := FindTransactionID(s)
	return ok
}

// HasDateToken reports whether s contains something shaped like a date.
func HasDateToken(s string) bool {
	for _, re := range DateTokenPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// FindDate returns the first date token in s that parses.
func FindDate(s string) (string, bool) {
	for _, re := range DateTokenPatterns {
		for _, tok := range re.FindAllString(s, -1) {
			if _, err := ParseDate(tok); err == nil {
				return tok, true
			}
		}
	}
	return "", false
}

// IsAmount reports whether the whole of s looks like a single amount.
func IsAmount(s string) bool {
	return amountShape.MatchString(strings.TrimSpace(s))
}

// FindCurrencyAmount returns the first rupee-marked amount in s, e.g. "₹ 1,299.00".
func FindCurrencyAmount(s string) (string, bool) {
	loc := currencyAmount.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[loc[0]:loc[1]], true
}
