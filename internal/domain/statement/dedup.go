package statement

import (
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
)

// dedupPrefixLen is how much of the description participates in the identity
// key. Statement text carries no stable transaction identifier, so
// (date, amount, description prefix) is a heuristic: two genuinely distinct
// rows sharing all three will collapse. Accepted trade-off.
const dedupPrefixLen = 30

type dedupKey struct {
	date   string
	amount string
	prefix string
}

func keyFor(c ledger.Candidate) dedupKey {
	prefix := ledger.TruncateRunes(c.Description, dedupPrefixLen)
	return dedupKey{date: c.Date, amount: c.Amount.StringFixed(2), prefix: prefix}
}

// Dedupe merges candidate lists from the two parser passes, keeping the first
// occurrence of each identity key. Strict-pass candidates are passed first, so
// their section-derived kind wins over the fallback's keyword guess.
func Dedupe(lists ...[]ledger.Candidate) []ledger.Candidate {
	seen := make(map[dedupKey]struct{})
	var merged []ledger.Candidate

	for _, list := range lists {
		for _, c := range list {
			k := keyFor(c)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, c)
		}
	}
	return merged
}
