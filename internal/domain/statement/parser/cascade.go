package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// DefaultTextPaymentMethod is attached to candidates read from page text.
const DefaultTextPaymentMethod = "PhonePe"

// Field is the role of one capture group in a cascade rule.
type Field int

const (
	FieldDate Field = iota + 1
	FieldDescription
	FieldAmount
	FieldStatus
	FieldType
)

func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldDescription:
		return "description"
	case FieldAmount:
		return "amount"
	case FieldStatus:
		return "status"
	case FieldType:
		return "type"
	default:
		return "unknown"
	}
}

// Rule is one entry of the line cascade: a pattern and the role of each of
// its capture groups, in group order.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Groups  []Field
	// CurrencyImplied prefixes "₹" to the amount capture before parsing, for
	// patterns whose marker sits outside the group.
	CurrencyImplied bool
	// Type and Status apply when the rule has no group for them.
	Type   statement.TransactionType
	Status statement.Status
}

const (
	dmy4      = `\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})`
	dmyAny    = `\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`
	iso       = `(\d{4}-\d{2}-\d{2})`
	monthDay  = `(\w{3}\s+\d{1,2},\s+\d{4})`
	rupee     = `(₹[\d,]+\.?\d*)`
	bare      = `([\d,]+\.?\d*)`
	text      = `(.+?)`
	trailText = `(.+)`
)

func rule(name, pattern string, groups ...Field) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Groups:  groups,
		Type:    statement.Debit,
		Status:  statement.StatusSuccess,
	}
}

func (r Rule) implied() Rule {
	r.CurrencyImplied = true
	return r
}

func (r Rule) withType(t statement.TransactionType) Rule {
	r.Type = t
	return r
}

// DefaultRules returns the line cascade in priority order.
func DefaultRules() []Rule {
	return []Rule{
		rule("date-desc-amount-status", dmy4+`\s+`+text+`\s+`+rupee+`\s+(Paid|Failed|Pending|Success)`,
			FieldDate, FieldDescription, FieldAmount, FieldStatus),
		rule("date-desc-amount", dmy4+`\s+`+text+`\s+`+rupee,
			FieldDate, FieldDescription, FieldAmount),
		rule("desc-date-amount", text+`\s+`+dmy4+`\s+`+rupee,
			FieldDescription, FieldDate, FieldAmount),
		rule("date-amount-desc", dmy4+`\s+`+rupee+`\s+`+trailText,
			FieldDate, FieldAmount, FieldDescription),
		rule("amount-date-desc", rupee+`\s+`+dmy4+`\s+`+trailText,
			FieldAmount, FieldDate, FieldDescription),
		rule("short-year-date-desc-amount", dmyAny+`\s+`+text+`\s+`+rupee,
			FieldDate, FieldDescription, FieldAmount),
		rule("decimal-desc-date", `\b(\d+\.\d{2})\s+`+text+`\s+`+dmy4,
			FieldAmount, FieldDescription, FieldDate).implied(),
		rule("desc-decimal-date", text+`\s+(\d+\.\d{2})\s+`+dmy4,
			FieldDescription, FieldAmount, FieldDate).implied(),
		rule("iso-ref-desc-rs-type", iso+`\s+[A-Z0-9]+\s+`+text+`\s+Rs\.\s*`+bare+`\s+(Debit|Credit)`,
			FieldDate, FieldDescription, FieldAmount, FieldType).implied(),
		rule("iso-desc-rs", iso+`\s+`+text+`\s+Rs\.\s*`+bare,
			FieldDate, FieldDescription, FieldAmount).implied(),
		rule("month-desc-debit", monthDay+`\s+`+text+`\s+DEBIT\s+₹`+bare,
			FieldDate, FieldDescription, FieldAmount).implied().withType(statement.Debit),
		rule("month-desc-credit", monthDay+`\s+`+text+`\s+CREDIT\s+₹`+bare,
			FieldDate, FieldDescription, FieldAmount).implied().withType(statement.Credit),
		rule("month-desc-type", monthDay+`\s+`+text+`\s+((?i:debit|credit))\s+₹`+bare,
			FieldDate, FieldDescription, FieldType, FieldAmount).implied(),
	}
}

// Match is the result of applying the cascade to one line.
type Match struct {
	Rule     Rule
	Index    int
	Captures map[Field]string
}

// Cascade applies an ordered rule list to text lines.
type Cascade struct {
	Rules         []Rule
	Policy        normalizer.AmountPolicy
	PaymentMethod string
}

// NewCascade returns a cascade over DefaultRules.
func NewCascade(policy normalizer.AmountPolicy, paymentMethod string) *Cascade {
	return &Cascade{
		Rules:         DefaultRules(),
		Policy:        policy,
		PaymentMethod: paymentMethod,
	}
}

// MatchLine returns the first rule matching line. Later rules are not
// consulted even if they would also match.
func (c *Cascade) MatchLine(line string) (Match, bool) {
	for i, r := range c.Rules {
		groups := r.Pattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		captures := make(map[Field]string, len(r.Groups))
		for g, field := range r.Groups {
			if g+1 < len(groups) {
				captures[field] = strings.TrimSpace(groups[g+1])
			}
		}
		return Match{Rule: r, Index: i, Captures: captures}, true
	}
	return Match{}, false
}

// ParseLine converts a single line. matched is false when no rule applied;
// err is a statement.RecordError when a rule matched but its fields did not
// resolve.
func (c *Cascade) ParseLine(line string, page, lineIdx int) (cand statement.CandidateTransaction, matched bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return statement.CandidateTransaction{}, false, nil
	}

	m, ok := c.MatchLine(line)
	if !ok {
		return statement.CandidateTransaction{}, false, nil
	}

	recErr := func(field string, cause error) error {
		return statement.RecordError{
			Page:    page,
			Line:    statement.IntPtr(lineIdx),
			Field:   field,
			Message: fmt.Sprintf("rule %s: %v", m.Rule.Name, cause),
			RawData: line,
			Err:     cause,
		}
	}

	date, err := normalizer.ParseDate(m.Captures[FieldDate])
	if err != nil {
		return statement.CandidateTransaction{}, true, recErr("date", err)
	}

	amount, err := c.amount(m)
	if err != nil {
		return statement.CandidateTransaction{}, true, recErr("amount", err)
	}

	desc := normalizer.CleanDescription(m.Captures[FieldDescription])
	if desc == "" {
		return statement.CandidateTransaction{}, true, recErr("description", fmt.Errorf("%w: description", statement.ErrMissingField))
	}

	txType := m.Rule.Type
	if raw, ok := m.Captures[FieldType]; ok {
		txType, _ = normalizer.TypeFromText(raw)
	}
	status := m.Rule.Status
	if raw, ok := m.Captures[FieldStatus]; ok {
		if s, ok := normalizer.StatusFromText(raw); ok {
			status = s
		}
	}
	id, _ := normalizer.FindTransactionID(line)

	cand, err = statement.NewCandidate(statement.CandidateFields{
		TransactionID:   id,
		Date:            date,
		Description:     desc,
		Amount:          amount,
		TransactionType: txType,
		Status:          status,
		PaymentMethod:   c.PaymentMethod,
		Provenance: statement.Provenance{
			Page:     page,
			Line:     statement.IntPtr(lineIdx),
			Strategy: statement.StrategyCascade,
		},
		RawData: map[string]any{
			"page":     page,
			"line":     lineIdx,
			"rule":     m.Rule.Name,
			"raw_line": line,
		},
	})
	if err != nil {
		return statement.CandidateTransaction{}, true, recErr("", err)
	}
	return cand, true, nil
}

// ParsePage runs the cascade over every line of text.
func (c *Cascade) ParsePage(text string, page int) ([]statement.CandidateTransaction, []statement.RecordError) {
	var (
		candidates []statement.CandidateTransaction
		skipped    []statement.RecordError
	)
	for idx, line := range strings.Split(text, "\n") {
		cand, matched, err := c.ParseLine(line, page, idx)
		if !matched {
			continue
		}
		if err != nil {
			if recErr, ok := err.(statement.RecordError); ok {
				skipped = append(skipped, recErr)
			}
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates, skipped
}

func (c *Cascade) amount(m Match) (decimal.Decimal, error) {
	raw := m.Captures[FieldAmount]
	if m.Rule.CurrencyImplied {
		raw = "₹" + raw
	}
	return normalizer.ParseAmount(raw, c.Policy)
}
