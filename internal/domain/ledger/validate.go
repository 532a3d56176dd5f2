package ledger

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ABagofRuffles/budget-pwa/pkg/money"
)

// Source tells the validator how much to trust the input. Manual entry is
// strict; extracted text is noisy, so oversized fields are truncated and an
// unknown kind falls back to expense instead of discarding the record.
type Source int

const (
	SourceManual Source = iota
	SourceExtraction
)

// RejectionError reports which schema rule an input failed. Rejections are
// ordinary values: batch callers count them, interactive callers display them.
type RejectionError struct {
	Field  string
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func reject(field, reason string) error {
	return &RejectionError{Field: field, Reason: reason}
}

// TruncateRunes cuts s to at most n characters. Field limits count characters,
// not bytes, so a cut must never land inside a multibyte rune.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Normalize checks an input against the schema rules in order (first failure
// wins) and returns an admitted-shape Transaction with a fresh ID. It is pure
// apart from ID assignment and the current-date default; it never touches
// storage.
func Normalize(in Input, src Source) (Transaction, error) {
	return normalizeAt(in, src, time.Now())
}

// normalizeAt is Normalize with an injectable clock for the date default.
func normalizeAt(in Input, src Source, now time.Time) (Transaction, error) {
	var tx Transaction

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return tx, reject("description", "must not be empty")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		if src == SourceManual {
			return tx, reject("description", fmt.Sprintf("longer than %d characters", MaxDescriptionLen))
		}
		desc = strings.TrimSpace(TruncateRunes(desc, MaxDescriptionLen))
	}

	parsed, err := money.Parse(in.Amount)
	if err != nil {
		return tx, reject("amount", err.Error())
	}
	amount, err := money.ValidateLedgerAmount(parsed)
	if err != nil {
		return tx, reject("amount", err.Error())
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(in.Kind)))
	if kind != KindIncome && kind != KindExpense {
		if src == SourceManual {
			return tx, reject("kind", fmt.Sprintf("must be %q or %q", KindIncome, KindExpense))
		}
		kind = KindExpense
	}

	category := strings.TrimSpace(in.Category)
	if utf8.RuneCountInString(category) > MaxCategoryLen {
		category = strings.TrimSpace(TruncateRunes(category, MaxCategoryLen))
	}

	var date time.Time
	if strings.TrimSpace(in.Date) == "" {
		y, m, d := now.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		date, err = ParseDate(in.Date)
		if err != nil {
			return tx, reject("date", err.Error())
		}
	}

	return Transaction{
		ID:          uuid.New(),
		Description: desc,
		Amount:      amount,
		Kind:        kind,
		Category:    category,
		Date:        date,
	}, nil
}

// ParseDate parses the fixed YYYY-MM-DD layout and rejects dates that do not
// exist on the proleptic Gregorian calendar (2024-02-30 is an error, not a
// rounded March date).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a valid %s date: %q", DateLayout, s)
	}
	// time.Parse rejects out-of-range days itself, but be explicit about the
	// round-trip so a normalized-but-shifted value can never slip through.
	if t.Format(DateLayout) != s {
		return time.Time{}, fmt.Errorf("not a valid %s date: %q", DateLayout, s)
	}
	return t, nil
}
