package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func TestSplitHeader(t *testing.T) {
	t.Run("header detected", func(t *testing.T) {
		table := statement.RawTable{
			{"Date", "Description", "Amount", "Type"},
			{"2025-07-16", "Mobile recharge", "302.00", "DEBIT"},
		}
		header, data := SplitHeader(table)
		assert.Equal(t, table[0], header)
		assert.Len(t, data, 1)
	})

	t.Run("no header", func(t *testing.T) {
		table := statement.RawTable{
			{"2025-07-16", "Mobile recharge", "302.00"},
		}
		header, data := SplitHeader(table)
		assert.Nil(t, header)
		assert.Len(t, data, 1)
	})

	t.Run("empty table", func(t *testing.T) {
		header, data := SplitHeader(nil)
		assert.Nil(t, header)
		assert.Nil(t, data)
	})

	t.Run("keyword match is substring based", func(t *testing.T) {
		// "Paid to" contains "id"
		assert.True(t, IsHeader(statement.RawRow{"When", "Paid to", "Rs"}))
		assert.False(t, IsHeader(statement.RawRow{"16/07/2025", "Swiggy", "450.00"}))
	})
}

func TestMapFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header statement.RawRow
		want   ColumnRoleMap
	}{
		{
			name:   "standard header",
			header: statement.RawRow{"Date", "Description", "Amount", "Type"},
			want:   ColumnRoleMap{RoleDate: 0, RoleDescription: 1, RoleAmount: 2, RoleType: 3},
		},
		{
			name:   "wallet export",
			header: statement.RawRow{"Date & Time", "Transaction Details", "Ref No.", "Debit/Credit", "Amt", "Status"},
			want: ColumnRoleMap{
				RoleDate: 0, RoleDescription: 1, RoleTransactionID: 2,
				RoleType: 3, RoleAmount: 4, RoleStatus: 5,
			},
		},
		{
			name:   "amount keyword beats type keyword",
			header: statement.RawRow{"Posting Date", "Payee", "Debit Amount"},
			want:   ColumnRoleMap{RoleDate: 0, RoleDescription: 1, RoleAmount: 2},
		},
		{
			name:   "first column claiming a role keeps it",
			header: statement.RawRow{"Txn Date", "Value Date", "Merchant", "Amount"},
			want:   ColumnRoleMap{RoleDate: 0, RoleDescription: 2, RoleAmount: 3},
		},
		{
			name:   "unknown headers stay unmapped",
			header: statement.RawRow{"Date", "Notes", "", "Amount"},
			want:   ColumnRoleMap{RoleDate: 0, RoleAmount: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFromHeader(tt.header))
		})
	}
}

func TestInferRoles(t *testing.T) {
	t.Run("typical rows", func(t *testing.T) {
		rows := []statement.RawRow{
			{"16/07/2025", "Swiggy order", "450.00", "DEBIT", "TXN1001"},
			{"17/07/2025", "Salary", "50,000.00", "CREDIT", "TXN1002"},
			{"18/07/2025", "Ola ride", "₹210", "DEBIT", "TXN1003"},
		}
		roles := InferRoles(rows, 5)
		assert.Equal(t, ColumnRoleMap{
			RoleDate:          0,
			RoleDescription:   1,
			RoleAmount:        2,
			RoleType:          3,
			RoleTransactionID: 4,
		}, roles)
	})

	t.Run("ragged rows use widest row", func(t *testing.T) {
		rows := []statement.RawRow{
			{"16/07/2025", "Swiggy"},
			{"17/07/2025", "Zomato", "120.00"},
		}
		roles := InferRoles(rows, 5)
		assert.Equal(t, ColumnRoleMap{RoleDate: 0, RoleDescription: 1, RoleAmount: 2}, roles)
	})

	t.Run("type threshold is lower", func(t *testing.T) {
		// one keyword in three cells is above 0.3
		rows := []statement.RawRow{
			{"16/07/2025", "refund", "10.00"},
			{"17/07/2025", "Swiggy", "11.00"},
			{"18/07/2025", "Zomato", "12.00"},
		}
		roles := InferRoles(rows, 5)
		assert.Equal(t, ColumnRoleMap{RoleDate: 0, RoleType: 1, RoleAmount: 2}, roles)
	})

	t.Run("sample limit", func(t *testing.T) {
		rows := []statement.RawRow{
			{"Swiggy"},
			{"16/07/2025"},
			{"17/07/2025"},
		}
		assert.Equal(t, ColumnRoleMap{RoleDescription: 0}, InferRoles(rows, 1))
		assert.Equal(t, ColumnRoleMap{RoleDate: 0}, InferRoles(rows, 3))
	})

	t.Run("first text column is the description", func(t *testing.T) {
		rows := []statement.RawRow{
			{"16/07/2025", "Swiggy", "Bangalore", "450.00"},
			{"17/07/2025", "Zomato", "Mumbai", "120.00"},
		}
		roles := InferRoles(rows, 5)
		assert.Equal(t, ColumnRoleMap{RoleDate: 0, RoleDescription: 1, RoleAmount: 3}, roles)
	})

	t.Run("first date column keeps the date role", func(t *testing.T) {
		rows := []statement.RawRow{
			{"16/07/2025", "17/07/2025", "Swiggy", "450.00"},
		}
		roles := InferRoles(rows, 5)
		assert.Equal(t, ColumnRoleMap{RoleDate: 0, RoleDescription: 2, RoleAmount: 3}, roles)
	})

	t.Run("empty column has no role", func(t *testing.T) {
		rows := []statement.RawRow{
			{"16/07/2025", "", "450.00"},
		}
		roles := InferRoles(rows, 5)
		_, ok := roles.Column(RoleDescription)
		assert.False(t, ok)
		assert.Len(t, roles, 2)
	})
}

func TestInterpret(t *testing.T) {
	t.Run("header layout", func(t *testing.T) {
		table := statement.RawTable{
			{"Date", "Description", "Amount"},
			{"2025-07-16", "Mobile recharge", "302.00"},
		}
		layout := Interpret(table, 5)
		assert.Equal(t, SourceHeader, layout.Source)
		assert.Equal(t, 1, layout.DataOffset)
		require.Len(t, layout.Data, 1)
		assert.NotEmpty(t, layout.Fingerprint)
	})

	t.Run("inferred layout", func(t *testing.T) {
		table := statement.RawTable{
			{"2025-07-16", "Mobile recharge", "302.00"},
		}
		layout := Interpret(table, 5)
		assert.Equal(t, SourceInferred, layout.Source)
		assert.Equal(t, 0, layout.DataOffset)
		assert.Nil(t, layout.Header)
		assert.Empty(t, layout.Fingerprint)
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"Date", "Description", "Amount"})
	b := Fingerprint([]string{" date ", "DESCRIPTION", "amount!"})
	c := Fingerprint([]string{"Date", "Amount", "Description"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Date,Description,Amount\n2025-07-16,Recharge,302.00\n", ','},
		{"semicolon", "\uFEFFDate;Description;Amount\r\n16/07/2025;Recharge;302,00\r\n", ';'},
		{"tab", "Date\tDescription\tAmount\n", '\t'},
		{"pipe", "Date|Description|Amount\n", '|'},
		{"nothing", "just text\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.data)))
		})
	}
}
