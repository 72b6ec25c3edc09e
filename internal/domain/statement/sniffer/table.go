// Package sniffer works out the structure of raw table grids: whether the
// first row is a header and which column holds which transaction field.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// Role is the transaction field a column carries.
type Role string

const (
	RoleDate          Role = "date"
	RoleDescription   Role = "description"
	RoleAmount        Role = "amount"
	RoleType          Role = "type"
	RoleTransactionID Role = "transaction_id"
	RoleStatus        Role = "status"
)

// ColumnRoleMap maps a role to its column index. Missing roles are unmapped.
type ColumnRoleMap map[Role]int

// Column returns the index for role, if mapped.
func (m ColumnRoleMap) Column(role Role) (int, bool) {
	idx, ok := m[role]
	return idx, ok
}

// assign claims role for col unless the role or the column is already taken.
func (m ColumnRoleMap) assign(role Role, col int) {
	if _, taken := m[role]; taken {
		return
	}
	for _, c := range m {
		if c == col {
			return
		}
	}
	m[role] = col
}

// MappingSource records how a ColumnRoleMap was built.
type MappingSource string

const (
	SourceHeader   MappingSource = "header"
	SourceInferred MappingSource = "inferred"
)

// Layout is the interpreted structure of one table.
type Layout struct {
	Header statement.RawRow
	// Data holds the data rows; DataOffset is the table index of Data[0].
	Data        []statement.RawRow
	DataOffset  int
	Roles       ColumnRoleMap
	Source      MappingSource
	Fingerprint string
}

// DefaultSampleRows is the number of rows InferRoles looks at when no limit is given.
const DefaultSampleRows = 5

// headerKeywords flag row 0 as a header when any appears in its joined text.
var headerKeywords = []string{"date", "description", "amount", "type", "transaction", "id", "status"}

type headerRule struct {
	role     Role
	keywords []string
}

// headerRules are evaluated per header cell in order; the first hit decides
// the cell's role.
var headerRules = []headerRule{
	{RoleDate, []string{"date", "time"}},
	{RoleDescription, []string{"description", "desc", "merchant", "payee", "details"}},
	{RoleAmount, []string{"amount", "amt", "value", "sum"}},
	{RoleType, []string{"type", "credit", "debit"}},
	{RoleTransactionID, []string{"id", "ref", "reference"}},
	{RoleStatus, []string{"status", "state"}},
}

// columnStats counts pattern hits over the non-empty cells of one column.
type columnStats struct {
	total   int
	dates   int
	amounts int
	types   int
	ids     int
}

type inferenceRule struct {
	role      Role
	threshold float64
	hits      func(columnStats) int
}

// inferenceRules are evaluated per column in order; the first rule whose hit
// fraction exceeds its threshold decides. Columns matching none are descriptions.
var inferenceRules = []inferenceRule{
	{RoleDate, 0.5, func(s columnStats) int { return s.dates }},
	{RoleAmount, 0.5, func(s columnStats) int { return s.amounts }},
	{RoleType, 0.3, func(s columnStats) int { return s.types }},
	{RoleTransactionID, 0.5, func(s columnStats) int { return s.ids }},
}

// IsHeader reports whether row looks like a header row.
func IsHeader(row statement.RawRow) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	return normalizer.ContainsAny(joined, headerKeywords)
}

// SplitHeader separates a header row from the data rows.
func SplitHeader(table statement.RawTable) (header statement.RawRow, data []statement.RawRow) {
	if len(table) == 0 {
		return nil, nil
	}
	if IsHeader(table[0]) {
		return table[0], table[1:]
	}
	return nil, table
}

// MapFromHeader assigns roles from header cell keywords.
func MapFromHeader(header statement.RawRow) ColumnRoleMap {
	roles := ColumnRoleMap{}
	for idx, cell := range header {
		col := strings.ToLower(strings.TrimSpace(cell))
		if col == "" {
			continue
		}
		for _, rule := range headerRules {
			if normalizer.ContainsAny(col, rule.keywords) {
				roles.assign(rule.role, idx)
				break
			}
		}
	}
	return roles
}

// InferRoles assigns roles statistically from up to sampleLimit rows
// (DefaultSampleRows when sampleLimit is not positive).
func InferRoles(rows []statement.RawRow, sampleLimit int) ColumnRoleMap {
	roles := ColumnRoleMap{}
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleRows
	}
	if len(rows) > sampleLimit {
		rows = rows[:sampleLimit]
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	for col := 0; col < width; col++ {
		stats := analyzeColumn(rows, col)
		if stats.total == 0 {
			continue
		}
		roles.assign(classify(stats), col)
	}
	return roles
}

// Interpret builds the Layout for a table.
func Interpret(table statement.RawTable, sampleLimit int) Layout {
	header, data := SplitHeader(table)
	if header != nil {
		return Layout{
			Header:      header,
			Data:        data,
			DataOffset:  1,
			Roles:       MapFromHeader(header),
			Source:      SourceHeader,
			Fingerprint: Fingerprint(header),
		}
	}
	return Layout{
		Data:   data,
		Roles:  InferRoles(data, sampleLimit),
		Source: SourceInferred,
	}
}

func analyzeColumn(rows []statement.RawRow, col int) columnStats {
	var stats columnStats
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		stats.total++
		if normalizer.HasDateToken(cell) {
			stats.dates++
		}
		if normalizer.IsAmount(cell) {
			stats.amounts++
		}
		if normalizer.IsTypeKeyword(cell) {
			stats.types++
		}
		if normalizer.HasTransactionID(cell) {
			stats.ids++
		}
	}
	return stats
}

func classify(stats columnStats) Role {
	for _, rule := range inferenceRules {
		if float64(rule.hits(stats))/float64(stats.total) > rule.threshold {
			return rule.role
		}
	}
	return RoleDescription
}

// Fingerprint creates a stable hash from header names, so tables exported by
// the same provider can be recognised in logs.
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
