// Package worksheet holds the free-form key to decimal-value scratch sheet.
// It shares the numeric parsing and bounds primitive with the ledger paths so
// the two cannot drift on what counts as a valid number.
package worksheet

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ABagofRuffles/budget-pwa/pkg/money"
)

// MaxKeyLen bounds a worksheet label.
const MaxKeyLen = 100

var ErrEmptyKey = errors.New("worksheet: key must not be empty")

// Entry is one labeled value in declaration order.
type Entry struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Sheet is an insertion-ordered set of entries. Unlike ledger amounts,
// worksheet values may be zero or negative; only finiteness and magnitude are
// enforced.
type Sheet struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]decimal.Decimal
}

func NewSheet() *Sheet {
	return &Sheet{entries: make(map[string]decimal.Decimal)}
}

// Set parses and stores a value under key, replacing any previous value.
func (s *Sheet) Set(key, raw string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	if utf8.RuneCountInString(key) > MaxKeyLen {
		return fmt.Errorf("worksheet: key longer than %d characters", MaxKeyLen)
	}

	value, err := money.Parse(raw)
	if err != nil {
		return fmt.Errorf("worksheet: %w", err)
	}
	if value.Abs().GreaterThan(money.MaxLedgerAmount) {
		return fmt.Errorf("worksheet: %w", money.ErrAmountTooBig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = value
	return nil
}

// Get returns the value stored under key.
func (s *Sheet) Get(key string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Delete removes an entry. Unknown keys are a no-op.
func (s *Sheet) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Entries returns the sheet in insertion order.
func (s *Sheet) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, Entry{Key: k, Value: s.entries[k]})
	}
	return out
}

// Total sums all values.
func (s *Sheet) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, v := range s.entries {
		total = total.Add(v)
	}
	return total
}
