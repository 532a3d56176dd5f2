package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
	"github.com/ABagofRuffles/budget-pwa/pkg/money"
)

// section is the state machine's current document section.
type section int

const (
	sectionNone section = iota
	sectionIncome
	sectionExpense
)

// wrapDescriptionLimit bounds a description recovered across a wrapped line.
const wrapDescriptionLimit = 100

var (
	// Section headings as they appear on US checking statements.
	incomeHeadingPattern = regexp.MustCompile(
		`(?i)^\s*(deposits and additions|deposits and other credits|electronic deposits|deposits|credits|additions)\b`)
	expenseHeadingPattern = regexp.MustCompile(
		`(?i)^\s*(withdrawals and debits|withdrawals and other debits|electronic withdrawals|withdrawals|atm & debit card withdrawals|card purchases|checks paid|debits|fees and service charges|fees|service charges)\b`)

	// Column headers and horizontal table rules, either of which opens a table.
	columnHeaderPattern = regexp.MustCompile(
		`(?i)^\s*date\b.*\b(description|amount)\b|^\s*(description\s+amount)\s*$`)
	tableRulePattern = regexp.MustCompile(`^[\s|_=*·.-]{4,}$`)

	// Totals and balance lines are consumed without producing candidates.
	totalsPattern = regexp.MustCompile(
		`(?i)^\s*(total|subtotal|beginning balance|opening balance|ending balance|closing balance|balance forward|daily ending balance|average balance)\b`)

	// A transaction row starts with a month/day token and ends with a decimal
	// amount token, optionally currency-prefixed and comma-grouped.
	txnRowPattern = regexp.MustCompile(
		`^(\d{1,2})/(\d{1,2})\s+(.*?)[\s|]*\$?(\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2})$`)

	monthDayStartPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}\b`)
	amountOnlyPattern    = regexp.MustCompile(`^\$?\d{1,3}(?:,\d{3})*\.\d{2}$|^\$?\d+\.\d{2}$`)

	descNoisePattern  = regexp.MustCompile(`[|_=*·]+`)
	multiSpacePattern = regexp.MustCompile(`\s{2,}`)
)

// StrictPass walks the reconstructed lines with the section/table state
// machine and extracts rows only inside an open table of a recognized
// section. It maximizes precision on layouts whose headings it knows.
func StrictPass(lines []string, period *Period, now time.Time) []ledger.Candidate {
	var (
		candidates []ledger.Candidate
		state      = sectionNone
		tableOpen  = false
		skipHeader = false
	)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch {
		case incomeHeadingPattern.MatchString(line):
			state, tableOpen, skipHeader = sectionIncome, false, true
		case expenseHeadingPattern.MatchString(line):
			state, tableOpen, skipHeader = sectionExpense, false, true
		case columnHeaderPattern.MatchString(line) || tableRulePattern.MatchString(line):
			// The header line consumed itself; the next line is data.
			tableOpen, skipHeader = true, false
		case totalsPattern.MatchString(line):
			skipHeader = false
		default:
			if state != sectionNone && tableOpen && !skipHeader {
				kind := ledger.KindExpense
				if state == sectionIncome {
					kind = ledger.KindIncome
				}
				if cand, consumed, ok := extractRow(lines, i, kind, period, now); ok {
					candidates = append(candidates, cand)
					i += consumed - 1
				}
			}
			skipHeader = false
		}
	}
	return candidates
}

// extractRow parses lines[i] as a transaction row. It returns the candidate,
// how many lines were consumed (2 when a wrapped description line was pulled
// in), and whether the row qualified.
func extractRow(lines []string, i int, kind ledger.Kind, period *Period, now time.Time) (ledger.Candidate, int, bool) {
	m := txnRowPattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if m == nil {
		return ledger.Candidate{}, 1, false
	}

	date, ok := resolveDate(m[1], m[2], period, now)
	if !ok {
		return ledger.Candidate{}, 1, false
	}

	amount, err := money.Parse(m[4])
	if err != nil || !money.WithinStatementBounds(amount) {
		return ledger.Candidate{}, 1, false
	}

	consumed := 1
	desc := cleanRowDescription(m[3])
	if utf8.RuneCountInString(desc) < 3 && i+1 < len(lines) {
		next := strings.TrimSpace(lines[i+1])
		// Only pull the next line in when it is clearly a wrapped
		// description, not the following row.
		if next != "" && !monthDayStartPattern.MatchString(next) && !amountOnlyPattern.MatchString(next) {
			desc = strings.TrimSpace(desc + " " + cleanRowDescription(next))
			desc = strings.TrimSpace(ledger.TruncateRunes(desc, wrapDescriptionLimit))
			consumed = 2
		}
	}
	if desc == "" {
		return ledger.Candidate{}, consumed, false
	}

	return ledger.Candidate{
		Description: desc,
		Amount:      amount,
		Kind:        kind,
		Date:        date,
		Selected:    true,
	}, consumed, true
}

// resolveDate turns a month/day token pair into a validated YYYY-MM-DD string
// using the statement period (or the current year when none was detected).
func resolveDate(monthTok, dayTok string, period *Period, now time.Time) (string, bool) {
	month, err1 := strconv.Atoi(monthTok)
	day, err2 := strconv.Atoi(dayTok)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return "", false
	}

	year := period.YearFor(time.Month(month), now)
	date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := ledger.ParseDate(date); err != nil {
		return "", false
	}
	return date, true
}

func cleanRowDescription(s string) string {
	s = descNoisePattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
