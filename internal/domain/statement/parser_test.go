package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func marchPeriod() *Period {
	return &Period{StartMonth: time.March, StartYear: 2024, EndMonth: time.March, EndYear: 2024}
}

func TestDetectPeriod(t *testing.T) {
	t.Run("finds a through phrase", func(t *testing.T) {
		p := DetectPeriod([]string{
			"JPMorgan Chase Bank, N.A.",
			"March 1, 2024 through March 31, 2024",
		})
		require.NotNil(t, p)
		assert.Equal(t, time.March, p.StartMonth)
		assert.Equal(t, 2024, p.StartYear)
		assert.Equal(t, 2024, p.EndYear)
	})

	t.Run("spanning a year boundary", func(t *testing.T) {
		p := DetectPeriod([]string{"December 15, 2023 through January 14, 2024"})
		require.NotNil(t, p)
		assert.Equal(t, 2023, p.YearFor(time.December, testNow))
		assert.Equal(t, 2024, p.YearFor(time.January, testNow))
	})

	t.Run("absent period", func(t *testing.T) {
		assert.Nil(t, DetectPeriod([]string{"no period here"}))
	})

	t.Run("nil period falls back to current year", func(t *testing.T) {
		var p *Period
		assert.Equal(t, 2024, p.YearFor(time.April, testNow))
	})
}

func TestStrictPass(t *testing.T) {
	t.Run("extracts a deposit row inside a recognized section", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"DATE DESCRIPTION AMOUNT",
			"03/14 Payroll Direct Dep 1,250.00",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 1)
		assert.Equal(t, "2024-03-14", got[0].Date)
		assert.Equal(t, ledger.KindIncome, got[0].Kind)
		assert.Equal(t, "1250.00", got[0].Amount.StringFixed(2))
		assert.Equal(t, "Payroll Direct Dep", got[0].Description)
		assert.True(t, got[0].Selected)
	})

	t.Run("expense section assigns expense kind", func(t *testing.T) {
		lines := []string{
			"WITHDRAWALS AND DEBITS",
			"DATE DESCRIPTION AMOUNT",
			"03/16 Card Purchase Shell Oil 34.12",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 1)
		assert.Equal(t, ledger.KindExpense, got[0].Kind)
	})

	t.Run("rows outside any section are ignored", func(t *testing.T) {
		lines := []string{
			"04/02 SHELL OIL 34.12",
		}
		assert.Empty(t, StrictPass(lines, nil, testNow))
	})

	t.Run("rows before the table opens are ignored", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"03/14 Payroll Direct Dep 1,250.00",
		}
		assert.Empty(t, StrictPass(lines, marchPeriod(), testNow))
	})

	t.Run("totals and balance lines are consumed silently", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"DATE DESCRIPTION AMOUNT",
			"Beginning Balance 4,022.87",
			"03/14 Payroll Direct Dep 1,250.00",
			"Total Deposits and Additions 1,250.00",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 1)
		assert.Equal(t, "Payroll Direct Dep", got[0].Description)
	})

	t.Run("section switch flips kind", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"DATE DESCRIPTION AMOUNT",
			"03/14 Payroll Direct Dep 1,250.00",
			"WITHDRAWALS AND DEBITS",
			"DATE DESCRIPTION AMOUNT",
			"03/16 Grocery Market 82.45",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 2)
		assert.Equal(t, ledger.KindIncome, got[0].Kind)
		assert.Equal(t, ledger.KindExpense, got[1].Kind)
	})

	t.Run("impossible calendar date voids the candidate", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"DATE DESCRIPTION AMOUNT",
			"02/30 Ghost Deposit 10.00",
		}
		p := &Period{StartMonth: time.February, StartYear: 2024, EndMonth: time.February, EndYear: 2024}
		assert.Empty(t, StrictPass(lines, p, testNow))
	})

	t.Run("amount bounds void the candidate", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"DATE DESCRIPTION AMOUNT",
			"03/14 Suspicious 1,000,000.00",
			"03/15 Fine 999,999.99",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 1)
		assert.Equal(t, "Fine", got[0].Description)
	})

	t.Run("short description pulls the wrapped next line", func(t *testing.T) {
		lines := []string{
			"WITHDRAWALS AND DEBITS",
			"DATE DESCRIPTION AMOUNT",
			"03/18 AC 120.00",
			"H Market Deli Downtown",
			"03/19 Coffee Corner 4.50",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 2)
		assert.Equal(t, "AC H Market Deli Downtown", got[0].Description)
		assert.Equal(t, "Coffee Corner", got[1].Description)
	})

	t.Run("wrap recovery refuses a following date line", func(t *testing.T) {
		lines := []string{
			"WITHDRAWALS AND DEBITS",
			"DATE DESCRIPTION AMOUNT",
			"03/18 AC 120.00",
			"03/19 Coffee Corner 4.50",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 2)
		assert.Equal(t, "AC", got[0].Description)
	})

	t.Run("table rule characters are scrubbed from descriptions", func(t *testing.T) {
		lines := []string{
			"DEPOSITS AND ADDITIONS",
			"--------------------------------",
			"03/14 Payroll | Direct   Dep 1,250.00",
		}

		got := StrictPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 1)
		assert.Equal(t, "Payroll Direct Dep", got[0].Description)
	})
}

func TestFallbackPass(t *testing.T) {
	t.Run("recovers rows with no recognized section", func(t *testing.T) {
		lines := []string{
			"Some Unrecognized Bank Layout",
			"04/02 SHELL OIL 34.12",
		}

		got := FallbackPass(lines, nil, testNow)
		require.Len(t, got, 1)
		assert.Equal(t, "2024-04-02", got[0].Date)
		assert.Equal(t, ledger.KindExpense, got[0].Kind)
		assert.Equal(t, "34.12", got[0].Amount.StringFixed(2))
	})

	t.Run("income phrase flips kind", func(t *testing.T) {
		lines := []string{
			"03/14 Payroll Direct Dep 1,250.00",
			"03/20 Transfer from Savings 200.00",
			"03/21 Transfer to Savings 200.00",
		}

		got := FallbackPass(lines, marchPeriod(), testNow)
		require.Len(t, got, 3)
		assert.Equal(t, ledger.KindIncome, got[0].Kind)
		assert.Equal(t, ledger.KindIncome, got[1].Kind)
		assert.Equal(t, ledger.KindExpense, got[2].Kind)
	})

	t.Run("within-pass suppression drops repeated rows", func(t *testing.T) {
		lines := []string{
			"03/14 Payroll Direct Dep 1,250.00",
			"03/14 Payroll Direct Dep 1,250.00",
			"03/14 Payroll Direct Dep 1,250.01",
		}

		got := FallbackPass(lines, marchPeriod(), testNow)
		// the exact repeat collapses; the one-cent-different row is a
		// distinct transaction and survives
		assert.Len(t, got, 2)
	})
}

func TestDedupe(t *testing.T) {
	cand := func(date, desc, amount string, kind ledger.Kind) ledger.Candidate {
		return ledger.Candidate{
			Date:        date,
			Description: desc,
			Amount:      decimal.RequireFromString(amount),
			Kind:        kind,
		}
	}

	t.Run("collapses identical candidates across passes, first wins", func(t *testing.T) {
		strict := []ledger.Candidate{cand("2024-03-14", "Payroll Direct Dep", "1250.00", ledger.KindIncome)}
		fallback := []ledger.Candidate{cand("2024-03-14", "Payroll Direct Dep", "1250.00", ledger.KindExpense)}

		got := Dedupe(strict, fallback)
		require.Len(t, got, 1)
		assert.Equal(t, ledger.KindIncome, got[0].Kind)
	})

	t.Run("key uses only the first 30 description characters", func(t *testing.T) {
		long := "A very long merchant descriptor that keeps going"
		a := cand("2024-03-14", long+" branch one", "10.00", ledger.KindExpense)
		b := cand("2024-03-14", long+" branch two", "10.00", ledger.KindExpense)

		got := Dedupe([]ledger.Candidate{a}, []ledger.Candidate{b})
		assert.Len(t, got, 1)
	})

	t.Run("prefix counts characters, not bytes", func(t *testing.T) {
		// 30 shared multibyte characters, diverging after
		long := strings.Repeat("Ü", 30)
		a := cand("2024-03-14", long+" eins", "10.00", ledger.KindExpense)
		b := cand("2024-03-14", long+" zwei", "10.00", ledger.KindExpense)

		got := Dedupe([]ledger.Candidate{a}, []ledger.Candidate{b})
		assert.Len(t, got, 1)
	})

	t.Run("different date or amount survives", func(t *testing.T) {
		a := cand("2024-03-14", "Shop", "10.00", ledger.KindExpense)
		b := cand("2024-03-15", "Shop", "10.00", ledger.KindExpense)
		c := cand("2024-03-14", "Shop", "11.00", ledger.KindExpense)

		got := Dedupe([]ledger.Candidate{a, b, c})
		assert.Len(t, got, 3)
	})
}
