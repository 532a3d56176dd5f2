package ledger

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Description: "Coffee Shop",
		Amount:      "4.50",
		Kind:        "expense",
		Category:    "Dining",
		Date:        "2024-01-15",
	}
}

func TestNormalize(t *testing.T) {
	t.Run("accepts a well-formed manual entry", func(t *testing.T) {
		tx, err := Normalize(validInput(), SourceManual)
		require.NoError(t, err)

		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", tx.ID.String())
		assert.Equal(t, "Coffee Shop", tx.Description)
		assert.Equal(t, "4.50", tx.Amount.StringFixed(2))
		assert.Equal(t, KindExpense, tx.Kind)
		assert.Equal(t, "Dining", tx.Category)
		assert.Equal(t, "2024-01-15", tx.DateString())
	})

	t.Run("first failure wins: empty description reported before bad amount", func(t *testing.T) {
		in := validInput()
		in.Description = "   "
		in.Amount = "garbage"

		_, err := Normalize(in, SourceManual)
		var rej *RejectionError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "description", rej.Field)
	})

	t.Run("manual rejects oversized description, extraction truncates", func(t *testing.T) {
		in := validInput()
		in.Description = strings.Repeat("x", MaxDescriptionLen+1)

		_, err := Normalize(in, SourceManual)
		assert.Error(t, err)

		tx, err := Normalize(in, SourceExtraction)
		require.NoError(t, err)
		assert.Len(t, tx.Description, MaxDescriptionLen)
	})

	t.Run("length limits count characters, not bytes", func(t *testing.T) {
		// 150 two-byte characters: 300 bytes, well within the 200-char limit
		in := validInput()
		in.Description = strings.Repeat("é", 150)

		tx, err := Normalize(in, SourceManual)
		require.NoError(t, err)
		assert.Equal(t, in.Description, tx.Description)

		in.Description = strings.Repeat("é", MaxDescriptionLen+1)
		_, err = Normalize(in, SourceManual)
		assert.Error(t, err)
	})

	t.Run("extraction truncation never splits a rune", func(t *testing.T) {
		in := validInput()
		in.Description = strings.Repeat("€", MaxDescriptionLen+50)

		tx, err := Normalize(in, SourceExtraction)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(tx.Description))
		assert.Equal(t, MaxDescriptionLen, utf8.RuneCountInString(tx.Description))
	})

	t.Run("amount is stored as absolute value", func(t *testing.T) {
		in := validInput()
		in.Amount = "-12.30"
		in.Kind = "expense"

		tx, err := Normalize(in, SourceManual)
		require.NoError(t, err)
		assert.Equal(t, "12.30", tx.Amount.StringFixed(2))
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		in := validInput()
		in.Amount = "0"
		_, err := Normalize(in, SourceManual)

		var rej *RejectionError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "amount", rej.Field)
	})

	t.Run("amount bounds", func(t *testing.T) {
		in := validInput()

		in.Amount = "999999999.99"
		_, err := Normalize(in, SourceManual)
		assert.NoError(t, err)

		in.Amount = "1000000000.00"
		_, err = Normalize(in, SourceManual)
		assert.Error(t, err)
	})

	t.Run("unknown kind rejects manually, defaults to expense for extraction", func(t *testing.T) {
		in := validInput()
		in.Kind = "transfer"

		_, err := Normalize(in, SourceManual)
		assert.Error(t, err)

		tx, err := Normalize(in, SourceExtraction)
		require.NoError(t, err)
		assert.Equal(t, KindExpense, tx.Kind)
	})

	t.Run("kind is case-insensitive", func(t *testing.T) {
		in := validInput()
		in.Kind = " Income "
		tx, err := Normalize(in, SourceManual)
		require.NoError(t, err)
		assert.Equal(t, KindIncome, tx.Kind)
	})

	t.Run("category truncated, never rejected", func(t *testing.T) {
		in := validInput()
		in.Category = strings.Repeat("c", MaxCategoryLen+40)

		tx, err := Normalize(in, SourceManual)
		require.NoError(t, err)
		assert.Len(t, tx.Category, MaxCategoryLen)

		in.Category = strings.Repeat("ü", MaxCategoryLen+40)
		tx, err = Normalize(in, SourceManual)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(tx.Category))
		assert.Equal(t, MaxCategoryLen, utf8.RuneCountInString(tx.Category))
	})

	t.Run("missing date defaults to today", func(t *testing.T) {
		in := validInput()
		in.Date = ""

		now := time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)
		tx, err := normalizeAt(in, SourceManual, now)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01", tx.DateString())
	})

	t.Run("idempotent: re-validating a normalized record changes nothing", func(t *testing.T) {
		first, err := Normalize(validInput(), SourceManual)
		require.NoError(t, err)

		second, err := Normalize(Input{
			Description: first.Description,
			Amount:      first.Amount.String(),
			Kind:        string(first.Kind),
			Category:    first.Category,
			Date:        first.DateString(),
		}, SourceManual)
		require.NoError(t, err)

		assert.Equal(t, first.Description, second.Description)
		assert.True(t, first.Amount.Equal(second.Amount))
		assert.Equal(t, first.Kind, second.Kind)
		assert.Equal(t, first.Category, second.Category)
		assert.Equal(t, first.DateString(), second.DateString())
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"2024-02-29", true},  // leap year
		{"2023-02-29", false}, // not a leap year
		{"2024-02-30", false}, // never a real date
		{"2024-13-01", false},
		{"2024-1-05", false}, // must be zero-padded
		{"2024-03-14", true},
		{"03/14/2024", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, got.Format(DateLayout))
		})
	}
}
