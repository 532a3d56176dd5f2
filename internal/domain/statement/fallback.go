package statement

import (
	"regexp"
	"time"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
)

// Phrases that mark a row as money in when no section heading classified it.
// "transfer from" is income (money arriving from a party); a bare "transfer"
// is not, since "transfer to" is money out.
var incomePhrasePattern = regexp.MustCompile(
	`(?i)\b(deposit|payroll|direct dep|salary|paycheck|refund|reimbursement|cashback|interest paid|transfer from|credit from|received from)\b`)

// FallbackPass scans every line for the date-token/amount-token row shape with
// no section or table gating. It trades precision for recall: documents whose
// headings the strict pass did not recognize still surrender their rows. Kind
// defaults to expense unless the text carries an income phrase. Within-pass
// duplicate suppression uses the same identity key as Dedupe, so there is one
// notion of "same row" end to end.
func FallbackPass(lines []string, period *Period, now time.Time) []ledger.Candidate {
	var candidates []ledger.Candidate
	seen := make(map[dedupKey]struct{})

	for i := 0; i < len(lines); i++ {
		cand, consumed, ok := extractRow(lines, i, ledger.KindExpense, period, now)
		if !ok {
			continue
		}
		if incomePhrasePattern.MatchString(lines[i]) {
			cand.Kind = ledger.KindIncome
		}
		k := keyFor(cand)
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			candidates = append(candidates, cand)
		}
		i += consumed - 1
	}
	return candidates
}
